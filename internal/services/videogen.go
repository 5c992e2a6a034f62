package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ---------------------------------------------------------------------------
// xAI Grok Imagine Video Generation Service
// Generates animated background footage for scenes from text prompts.
// Follows a deferred request pattern: submit generation → poll by request_id → download.
// ---------------------------------------------------------------------------

const (
	xaiBaseURL           = "https://api.x.ai/v1"
	xaiVideoModel        = "grok-imagine-video"
	xaiInitialDelay      = 15 * time.Second // Wait before first poll (videos typically take 30-40s)
	xaiPollMinInterval   = 5 * time.Second  // Start polling every 5s
	xaiPollMaxInterval   = 20 * time.Second // Cap at 20s between polls
	xaiPollBackoffFactor = 1.5              // Multiply interval by 1.5 each attempt
	xaiMaxPollDuration   = 5 * time.Minute  // Hard timeout per scene
	xaiMinDuration       = 1                // xAI minimum video duration
	xaiMaxDuration       = 15               // xAI maximum video duration
	xaiDefaultDuration   = 8                // seconds (1-15 allowed)
	xaiDefaultAspect     = "16:9"           // landscape for launch videos
	xaiDefaultResolution = "720p"           // 720p or 480p supported
)

// VideoGenService handles background video generation via xAI's Grok Imagine
// Video API. It's optional — when nil or disabled, the worker falls back to
// still images with camera drift.
type VideoGenService struct {
	apiKey     string
	httpClient *http.Client
}

// NewVideoGenService creates a new xAI video generation service.
func NewVideoGenService(apiKey string) *VideoGenService {
	return &VideoGenService{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second, // Timeout for individual HTTP calls, not the full poll cycle
		},
	}
}

// ---------------------------------------------------------------------------
// Request / Response types
// ---------------------------------------------------------------------------

// xaiGenerationRequest is the body for POST /v1/videos/generations
type xaiGenerationRequest struct {
	Prompt      string         `json:"prompt"`
	Model       string         `json:"model"`
	Image       *xaiImageInput `json:"image,omitempty"`
	Duration    int            `json:"duration,omitempty"`
	AspectRatio string         `json:"aspect_ratio,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
}

// xaiImageInput is an image reference for image-to-video generation
type xaiImageInput struct {
	URL string `json:"url"`
}

// xaiGenerationResponse is the response from POST /v1/videos/generations
type xaiGenerationResponse struct {
	RequestID string `json:"request_id"`
}

// xaiVideoResult is the unified response from GET /v1/videos/{request_id}.
//
// xAI returns two different shapes depending on state:
//   - Pending: {"status":"pending"}
//   - Completed: {"video":{"url":"...","duration":8,"respect_moderation":true},"model":"grok-imagine-video"}
//     (note: no "status" field when completed — status will be "")
//   - Failed: {"status":"failed","error":"..."}
type xaiVideoResult struct {
	Status string          `json:"status"`          // "pending", "failed", or "" (completed)
	Video  *xaiVideoOutput `json:"video,omitempty"` // Present when generation is complete
	Model  string          `json:"model,omitempty"` // Present when generation is complete
	Error  string          `json:"error"`           // Error message if failed
}

// xaiVideoOutput is the nested video object in a completed generation response.
type xaiVideoOutput struct {
	URL               string `json:"url"`
	Duration          int    `json:"duration"`
	RespectModeration bool   `json:"respect_moderation"`
}

// VideoGenOptions holds per-project overrides for background video generation.
type VideoGenOptions struct {
	BrandName   string  // Product name, used to anchor the visual theme
	BrandColor  string  // Hex accent color the footage should feature
	AspectRatio *string // "16:9", "9:16", "1:1"
}

// buildBackgroundVideoPrompt enhances the scene's background_prompt with
// brand styling and constraints that keep the footage usable as a backdrop.
// Text and UI are rendered as overlays on top, so the footage itself must
// stay abstract and legible-free.
func buildBackgroundVideoPrompt(rawPrompt string, opts *VideoGenOptions) string {
	var styleSection string
	if opts != nil && opts.BrandColor != "" {
		styleSection = fmt.Sprintf("Feature %s as the dominant accent color against a dark backdrop.", opts.BrandColor)
	} else {
		styleSection = "Use a dark, premium color palette with a single accent hue."
	}

	return fmt.Sprintf(`%s

%s
This is background footage for a product launch video. No text, no letters, no logos, no readable UI anywhere in the frame. Keep the center of the frame visually calm so overlaid content stays legible.

Generate slow, cinematic movement. Silent video only — no generated audio or dialogue.`, rawPrompt, styleSection)
}

// GenerateVideo generates a background video using xAI Grok Imagine Video.
//
// If imageURL is non-empty, it's used as the source image for image-to-video
// generation. The async operation is polled internally with a configurable timeout.
//
// Parameters:
//   - prompt: describes the scene atmosphere (the scene's background_prompt)
//   - imageURL: publicly accessible URL of a source image (empty = text-only generation)
//   - durationSec: desired video duration in seconds (clamped to xAI's 1-15s range, 0 = use default 8s)
//   - opts: per-project brand styling and aspect ratio (nil = use defaults)
//
// Returns the raw video bytes (MP4) or an error.
func (s *VideoGenService) GenerateVideo(ctx context.Context, prompt string, imageURL string, durationSec int, opts *VideoGenOptions) ([]byte, error) {
	enhancedPrompt := buildBackgroundVideoPrompt(prompt, opts)

	// Clamp duration to xAI's allowed range
	if durationSec <= 0 {
		durationSec = xaiDefaultDuration
	}
	if durationSec < xaiMinDuration {
		durationSec = xaiMinDuration
	}
	if durationSec > xaiMaxDuration {
		durationSec = xaiMaxDuration
	}

	// Resolve aspect ratio — per-project override or default
	aspectRatio := xaiDefaultAspect
	if opts != nil && opts.AspectRatio != nil && *opts.AspectRatio != "" {
		aspectRatio = *opts.AspectRatio
	}

	// Step 1: Submit generation request
	reqBody := xaiGenerationRequest{
		Prompt:      enhancedPrompt,
		Model:       xaiVideoModel,
		Duration:    durationSec,
		AspectRatio: aspectRatio,
		Resolution:  xaiDefaultResolution,
	}

	if imageURL != "" {
		reqBody.Image = &xaiImageInput{URL: imageURL}
	}

	log.Printf("[VideoGen] Starting video generation (promptLen=%d, enhancedLen=%d, hasImage=%v, duration=%ds, aspect=%s)",
		len(prompt), len(enhancedPrompt), imageURL != "", durationSec, aspectRatio)

	requestID, err := s.submitGeneration(ctx, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to submit video generation: %w", err)
	}

	log.Printf("[VideoGen] Generation submitted, request_id=%s", requestID)

	// Step 2: Poll for completion
	result, err := s.pollForResult(ctx, requestID)
	if err != nil {
		return nil, err
	}

	log.Printf("[VideoGen] Video ready (duration=%ds), downloading from URL...", result.Video.Duration)

	// Step 3: Download the video from the returned URL
	videoBytes, err := s.downloadVideo(ctx, result.Video.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated video: %w", err)
	}

	if len(videoBytes) == 0 {
		return nil, fmt.Errorf("downloaded video is empty (0 bytes)")
	}

	log.Printf("[VideoGen] Video downloaded successfully (%d bytes)", len(videoBytes))
	return videoBytes, nil
}

// submitGeneration sends the initial video generation request and returns the request_id.
func (s *VideoGenService) submitGeneration(ctx context.Context, reqBody xaiGenerationRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", xaiBaseURL+"/videos/generations", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("xAI returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp xaiGenerationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse generation response: %w (body: %s)", err, string(body))
	}

	if genResp.RequestID == "" {
		return "", fmt.Errorf("no request_id in generation response: %s", string(body))
	}

	return genResp.RequestID, nil
}

// pollForResult polls GET /v1/videos/{request_id} until the video is ready or an error occurs.
//
// Polling strategy: exponential backoff starting at 5s, scaling by 1.5x up to a 20s cap.
// An initial delay of 15s avoids wasting API calls on guaranteed "pending" responses.
// Hard timeout: 5 minutes per scene.
func (s *VideoGenService) pollForResult(ctx context.Context, requestID string) (*xaiVideoResult, error) {
	deadline := time.Now().Add(xaiMaxPollDuration)
	pollCount := 0
	currentInterval := xaiPollMinInterval

	// Wait before the first poll — xAI video generation typically takes 30-40s,
	// so the first 15s are guaranteed to be "pending".
	log.Printf("[VideoGen] Waiting %v before first poll (videos typically take 30-40s)...", xaiInitialDelay)
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("video generation cancelled during initial wait: %w", ctx.Err())
	case <-time.After(xaiInitialDelay):
	}

	for {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("video generation timed out after %v (polled %d times, request_id=%s)", xaiMaxPollDuration, pollCount, requestID)
		}

		pollCount++

		result, err := s.getVideoResult(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll video result (attempt %d): %w", pollCount, err)
		}

		// Detection: when xAI completes, it returns a "video" object with no "status" field.
		// When pending, it returns {"status":"pending"} with no "video" object.
		if result.Video != nil && result.Video.URL != "" {
			log.Printf("[VideoGen] Poll %d: completed (video url present, duration=%ds)", pollCount, result.Video.Duration)
			return result, nil
		}

		log.Printf("[VideoGen] Poll %d: status=%s (next poll in %v)", pollCount, result.Status, currentInterval)

		switch result.Status {
		case "failed":
			errMsg := result.Error
			if errMsg == "" {
				errMsg = "unknown error"
			}
			return nil, fmt.Errorf("video generation failed: %s (request_id=%s)", errMsg, requestID)

		default:
			// Still pending — wait with exponential backoff before next poll
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("video generation cancelled: %w", ctx.Err())
			case <-time.After(currentInterval):
			}

			// Increase interval: 5s → 7.5s → 11.25s → 16.8s → 20s (capped)
			next := time.Duration(float64(currentInterval) * xaiPollBackoffFactor)
			if next > xaiPollMaxInterval {
				next = xaiPollMaxInterval
			}
			currentInterval = next
		}
	}
}

// getVideoResult fetches the current status of a video generation request.
func (s *VideoGenService) getVideoResult(ctx context.Context, requestID string) (*xaiVideoResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/videos/%s", xaiBaseURL, requestID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Accept both 200 (completed) and 202 (still processing) as valid poll responses.
	// xAI returns 202 with {"status":"pending"} while the video is being generated.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("xAI returned status %d: %s", resp.StatusCode, string(body))
	}

	var result xaiVideoResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse video result: %w (body: %s)", err, string(body))
	}

	return &result, nil
}

// downloadVideo fetches the video bytes from the given URL.
func (s *VideoGenService) downloadVideo(ctx context.Context, videoURL string) ([]byte, error) {
	// Use a longer timeout for video download (videos can be large)
	downloadClient := &http.Client{Timeout: 120 * time.Second}

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read video data: %w", err)
	}

	return data, nil
}
