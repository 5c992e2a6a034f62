package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ---------------------------------------------------------------------------
// Veo 3.1 Video Generation Service
// Uses the Google Gen AI SDK to generate background footage for scenes.
// An optional still image is passed as the first frame, and the scene's
// background_prompt describes the atmosphere the footage should carry.
// ---------------------------------------------------------------------------

const (
	defaultVeoModel    = "veo-3.1-generate-preview"
	veoPollInterval    = 10 * time.Second
	veoMaxPollDuration = 5 * time.Minute // Max time to wait for a single video
)

// VeoService handles background video generation via Google's Veo 3.1 model.
// It's optional — when nil or disabled, the worker falls back to still
// images with camera drift.
type VeoService struct {
	apiKey string
	model  string
}

// NewVeoService creates a new Veo video generation service.
// apiKey: the Gemini API key (same key works for both Gemini and Veo)
// model: the Veo model to use (empty string defaults to veo-3.1-generate-preview)
func NewVeoService(apiKey, model string) *VeoService {
	if model == "" {
		model = defaultVeoModel
	}
	return &VeoService{
		apiKey: apiKey,
		model:  model,
	}
}

// buildVeoPrompt enhances the raw background_prompt with instructions that
// keep the footage usable as a backdrop. Overlaid text and UI are rendered
// on top, so the footage must stay abstract and calm.
func buildVeoPrompt(rawPrompt string) string {
	return fmt.Sprintf(`%s

This is background footage for a product launch video. No text, no letters, no logos, no readable UI anywhere in the frame. Keep the center of the frame visually calm so overlaid content stays legible.

Motion direction: Generate slow, cinematic, ambient movement. Less is more — favor gentle, grounded motion over dramatic or exaggerated movement. Examples of good motion:
- Soft ambient particles (dust motes, light flicker, gentle smoke)
- Slow, barely perceptible camera drift or push-in
- Gradient light sweeping slowly across surfaces
- Abstract shapes rotating or floating at a glacial pace

Avoid: sudden jerky movements, unrealistic morphing, style changes between frames, cartoonish motion, or overly dramatic camera swoops. The movement should feel like a living backdrop — cinematic, calm, and continuous.

No generated audio or dialogue. Silent video only.`, rawPrompt)
}

// GenerateVideo generates a background video using Veo, optionally seeded
// with a still image as the first frame.
//
// The async operation is polled internally with a configurable timeout (5 minutes).
// This blocks the calling goroutine — this is intentional and fits the existing
// worker architecture where each scene is processed in its own goroutine.
//
// Parameters:
//   - prompt: describes the scene atmosphere (the scene's background_prompt)
//   - imageData: raw bytes of a still image to use as the first frame (nil = text-only)
//   - imageMimeType: MIME type of the image (e.g., "image/png")
//   - aspectRatio: "16:9", "9:16", or "1:1" (empty = 16:9)
//
// Returns the raw video bytes (MP4) or an error.
func (s *VeoService) GenerateVideo(ctx context.Context, prompt string, imageData []byte, imageMimeType, aspectRatio string) ([]byte, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	enhancedPrompt := buildVeoPrompt(prompt)

	var firstFrame *genai.Image
	if len(imageData) > 0 {
		firstFrame = &genai.Image{
			ImageBytes: imageData,
			MIMEType:   imageMimeType,
		}
	}

	if aspectRatio == "" {
		aspectRatio = "16:9"
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio:      aspectRatio,
		Resolution:       "4k",
		PersonGeneration: "allow_adult",
		NumberOfVideos:   1,
	}

	log.Printf("[Veo] Starting video generation (model=%s, promptLen=%d, enhancedLen=%d, imageSize=%d bytes)", s.model, len(prompt), len(enhancedPrompt), len(imageData))

	// Start the async video generation operation with the enhanced prompt
	operation, err := client.Models.GenerateVideos(ctx, s.model, enhancedPrompt, firstFrame, config)
	if err != nil {
		return nil, fmt.Errorf("failed to start video generation: %w", err)
	}

	log.Printf("[Veo] Operation started: %s", operation.Name)

	// Poll until done, cancelled, or timed out
	deadline := time.Now().Add(veoMaxPollDuration)
	pollCount := 0
	for !operation.Done {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("video generation timed out after %v (polled %d times)", veoMaxPollDuration, pollCount)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("video generation cancelled: %w", ctx.Err())
		case <-time.After(veoPollInterval):
		}

		pollCount++
		operation, err = client.Operations.GetVideosOperation(ctx, operation, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll operation (attempt %d): %w", pollCount, err)
		}

		log.Printf("[Veo] Poll %d: done=%v", pollCount, operation.Done)
	}

	// Check for operation-level errors (e.g. invalid request, quota exceeded)
	if operation.Error != nil && len(operation.Error) > 0 {
		errJSON, _ := json.Marshal(operation.Error)
		return nil, fmt.Errorf("video generation operation failed: %s", string(errJSON))
	}

	// Check if the response exists
	if operation.Response == nil {
		// Log any metadata that might contain clues
		if operation.Metadata != nil {
			metaJSON, _ := json.Marshal(operation.Metadata)
			log.Printf("[Veo] Operation metadata: %s", string(metaJSON))
		}
		return nil, fmt.Errorf("no response in completed operation after %d polls (operation: %s)", pollCount, operation.Name)
	}

	// Check if videos were blocked by RAI (Responsible AI) safety filters
	if operation.Response.RAIMediaFilteredCount > 0 {
		reasons := "unknown"
		if len(operation.Response.RAIMediaFilteredReasons) > 0 {
			reasons = strings.Join(operation.Response.RAIMediaFilteredReasons, ", ")
		}
		return nil, fmt.Errorf("video blocked by safety filters: %d video(s) filtered, reasons: %s", operation.Response.RAIMediaFilteredCount, reasons)
	}

	// Check if any videos were actually generated
	if len(operation.Response.GeneratedVideos) == 0 {
		respJSON, _ := json.Marshal(operation.Response)
		return nil, fmt.Errorf("no videos in response (full response: %s)", string(respJSON))
	}

	// Validate the video object has data
	video := operation.Response.GeneratedVideos[0]
	if video.Video == nil {
		return nil, fmt.Errorf("generated video object is nil")
	}

	log.Printf("[Veo] Video ready, downloading...")

	// Download the generated video
	downloadURI := genai.NewDownloadURIFromVideo(video.Video)
	videoBytes, err := client.Files.Download(ctx, downloadURI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated video: %w", err)
	}

	if len(videoBytes) == 0 {
		return nil, fmt.Errorf("downloaded video is empty (0 bytes)")
	}

	log.Printf("[Veo] Video generated successfully (%d bytes, %d polls)", len(videoBytes), pollCount)

	return videoBytes, nil
}
