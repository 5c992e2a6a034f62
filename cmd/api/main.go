package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/launchreel/launchreel/internal/api"
	"github.com/launchreel/launchreel/internal/compose"
	"github.com/launchreel/launchreel/internal/config"
	"github.com/launchreel/launchreel/internal/db"
	"github.com/launchreel/launchreel/internal/queue"
	"github.com/launchreel/launchreel/internal/services"
	"github.com/launchreel/launchreel/internal/storage"
	"github.com/launchreel/launchreel/internal/templates"
	"github.com/launchreel/launchreel/internal/worker"
)

func main() {
	log.Println("Starting LaunchReel API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Initialize storage
	stor := storage.New(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	log.Println("Initialized Supabase storage")

	// Load built-in video templates
	lib, err := templates.Load(cfg.TemplatesDir)
	if err != nil {
		log.Fatalf("Failed to load templates from %s: %v", cfg.TemplatesDir, err)
	}
	log.Printf("Loaded %d video templates", len(lib.List()))

	// Planner is used by both the API (refine) and the worker (generate)
	plannerSvc := services.NewPlannerService(cfg.OpenAIKey, cfg.OpenAIModel)

	// Create API handler
	handler := api.NewHandler(database, q, stor, plannerSvc, lib)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		// Initialize TTS provider — ElevenLabs preferred, Cartesia as fallback
		var ttsSvc services.TTSService
		if cfg.ElevenLabsKey != "" {
			ttsSvc = services.NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
			log.Printf("TTS provider: ElevenLabs (voice: %s)", cfg.ElevenLabsVoiceID)
		} else {
			ttsSvc = services.NewCartesiaService(cfg.CartesiaKey, cfg.CartesiaURL, cfg.CartesiaVoiceID)
			log.Printf("TTS provider: Cartesia (voice: %s)", cfg.CartesiaVoiceID)
		}

		// Background still generation (always on when a Gemini key is set)
		var imageGenSvc *services.ImageGenService
		if cfg.GeminiKey != "" {
			imageGenSvc = services.NewImageGenService(cfg.GeminiKey)
		}

		// Background video providers (both optional)
		var veoSvc *services.VeoService
		if cfg.VeoEnabled {
			veoSvc = services.NewVeoService(cfg.GeminiKey, cfg.VeoModel)
			log.Printf("Veo background video generation enabled (model: %s)", cfg.VeoModel)
		}

		var videoGenSvc *services.VideoGenService
		if cfg.GrokVideoEnabled && cfg.GrokAPIKey != "" {
			videoGenSvc = services.NewVideoGenService(cfg.GrokAPIKey)
			log.Println("Grok Imagine background video generation enabled")
		} else if !cfg.VeoEnabled {
			log.Println("Background video generation disabled — using stills with camera drift")
		}

		renderOpts := compose.Options{
			FPS:    cfg.RenderFPS,
			Width:  cfg.RenderWidth,
			Height: cfg.RenderHeight,
		}

		// Create worker
		w := worker.New(database, q, stor, plannerSvc, ttsSvc, imageGenSvc, veoSvc, videoGenSvc, lib, renderOpts)

		// Start worker in background
		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
