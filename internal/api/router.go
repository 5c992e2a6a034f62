package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds settings for the API router.
// Passed from main.go so the router can configure CORS and auth from env vars.
type RouterConfig struct {
	// BackendAPIKey is the key that must be provided in X-API-Key or Authorization: Bearer <key>.
	// If empty, auth middleware is skipped (development mode).
	BackendAPIKey string

	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// If empty, defaults to "*" (development mode).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (applied to all routes including /health)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// CORS: restrict origins when configured, otherwise allow all (dev mode)
	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check — public, no auth required
	r.Get("/health", h.Health)

	// API routes — protected by API key auth
	r.Route("/v1", func(r chi.Router) {
		// Apply auth middleware only to /v1 routes
		if cfg.BackendAPIKey != "" {
			r.Use(APIKeyAuth(cfg.BackendAPIKey))
		}

		// Projects
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
		r.Get("/projects/{id}", h.GetProject)
		r.Delete("/projects/{id}", h.DeleteProject)
		r.Get("/projects/{id}/assets", h.ListProjectAssets)
		r.Get("/projects/{id}/download", h.GetProjectDownload)
		r.Post("/projects/{id}/export", h.ExportProject)
		r.Post("/projects/{id}/refine", h.RefineProject)
		r.Get("/projects/{id}/debug/jobs", h.GetProjectJobs)

		// Plan revisions
		r.Get("/projects/{id}/revisions", h.GetPlanRevisions)
		r.Get("/projects/{id}/revisions/{revision}", h.GetPlanRevision)

		// Plan editing — each accepted edit writes a new revision
		r.Get("/projects/{id}/plan", h.GetPlan)
		r.Put("/projects/{id}/plan", h.ReplacePlan)
		r.Patch("/projects/{id}/plan", h.PatchPlan)
		r.Post("/projects/{id}/plan/scenes", h.InsertScene)
		r.Patch("/projects/{id}/plan/scenes/{index}", h.PatchScene)
		r.Delete("/projects/{id}/plan/scenes/{index}", h.DeleteScene)
		r.Post("/projects/{id}/plan/scenes/{index}/duplicate", h.DuplicateScene)
		r.Post("/projects/{id}/plan/scenes/{index}/move", h.MoveScene)
		r.Post("/projects/{id}/plan/scenes/{index}/refine", h.RefineScene)
		r.Post("/projects/{id}/plan/scenes/{index}/regenerate", h.RegenerateScene)

		// Templates — built-in starting points for new projects
		r.Get("/templates", h.ListTemplates)
	})

	return r
}
