package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Upload timeout per attempt — generous for multi-megabyte motion
	// backgrounds and large render manifests
	uploadTimeout = 180 * time.Second

	downloadTimeout = 120 * time.Second

	maxRetries     = 4
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 30 * time.Second
)

// Storage holds every artifact a project produces: the plan document,
// per-scene voiceovers and backgrounds, and the render manifest the
// compositor consumes. Objects are laid out per project:
//
//	<project>/plan.json                  current plan document
//	<project>/render_manifest.json       exported frame-by-frame manifest
//	<project>/scene_002/voiceover.mp3    narration for one scene
//	<project>/scene_002/background.mp4   generated background (still or motion)
type Storage struct {
	url        string
	serviceKey string
	Bucket     string
	client     *http.Client
}

func New(url, serviceKey, bucket string) *Storage {
	return &Storage{
		url:        url,
		serviceKey: serviceKey,
		Bucket:     bucket,
		client: &http.Client{
			Timeout: uploadTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (s *Storage) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.url, s.Bucket, path)
}

// doWithRetry runs one storage operation with exponential backoff. The
// builder is called per attempt so request bodies can be re-read. The
// response body is returned on 2xx.
func (s *Storage) doWithRetry(ctx context.Context, op, path string, timeout time.Duration, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryDelay(attempt)
			log.Printf("[Storage] %s retry %d/%d for %s (waiting %v)...", op, attempt, maxRetries, path, delay)

			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%s cancelled: %w", op, ctx.Err())
			case <-time.After(delay):
			}
		}

		// Each attempt gets its own timeout, independent of the caller's ctx
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)

		req, err := build(attemptCtx)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			cancel()
			lastErr = fmt.Errorf("%s failed: %w", op, err)
			if isRetryableError(err) {
				log.Printf("[Storage] %s attempt %d failed (retryable): %v", op, attempt+1, err)
				continue
			}
			return nil, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			if readErr != nil {
				lastErr = fmt.Errorf("%s body read failed: %w", op, readErr)
				log.Printf("[Storage] %s attempt %d read failed: %v", op, attempt+1, readErr)
				continue
			}
			if attempt > 0 {
				log.Printf("[Storage] %s succeeded on attempt %d for %s", op, attempt+1, path)
			}
			return body, nil
		}

		lastErr = fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, truncate(string(body), 200))

		if isRetryableStatus(resp.StatusCode) {
			log.Printf("[Storage] %s attempt %d returned status %d (retryable)", op, attempt+1, resp.StatusCode)
			continue
		}

		// Non-retryable status (400, 401, 403, 404, 413, etc.)
		return nil, lastErr
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", op, maxRetries+1, lastErr)
}

// Upload stores an object, overwriting any prior version. PUT with
// Content-Length and x-upsert so re-staged scene media replaces the old
// asset under the same path.
func (s *Storage) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	url := s.objectURL(path)
	_, err := s.doWithRetry(ctx, "upload", path, uploadTimeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Content-Length", fmt.Sprintf("%d", len(data)))
		req.Header.Set("x-upsert", "true")
		return req, nil
	})
	return err
}

// UploadFile uploads an object from a local path
func (s *Storage) UploadFile(ctx context.Context, storagePath, localPath string, contentType string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", localPath, err)
	}

	return s.Upload(ctx, storagePath, data, contentType)
}

// Download fetches an object with retries
func (s *Storage) Download(ctx context.Context, path string) ([]byte, error) {
	url := s.objectURL(path)
	return s.doWithRetry(ctx, "download", path, downloadTimeout, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+s.serviceKey)
		return req, nil
	})
}

// GetPublicURL returns the public URL for an object
func (s *Storage) GetPublicURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.url, s.Bucket, path)
}

// GetSignedURL creates a signed URL for temporary access, used for
// export downloads so the bucket can stay private.
func (s *Storage) GetSignedURL(ctx context.Context, path string, expiresIn int) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.url, s.Bucket, path)

	body := fmt.Sprintf(`{"expiresIn": %d}`, expiresIn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get signed URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse signed URL response: %w", err)
	}

	return s.url + result.SignedURL, nil
}

// PlanPath is where a project's current plan document lives.
func (s *Storage) PlanPath(projectID uuid.UUID) string {
	return filepath.Join(projectID.String(), "plan.json")
}

// ManifestPath is where a project's exported render manifest lives.
func (s *Storage) ManifestPath(projectID uuid.UUID) string {
	return filepath.Join(projectID.String(), "render_manifest.json")
}

// VoiceoverPath is where one scene's narration audio lives.
func (s *Storage) VoiceoverPath(projectID uuid.UUID, sceneIndex int) string {
	return s.ScenePath(projectID, sceneIndex, "voiceover.mp3")
}

// ScenePath places a per-scene asset (background still or motion clip)
// under the scene's own prefix.
func (s *Storage) ScenePath(projectID uuid.UUID, sceneIndex int, filename string) string {
	return filepath.Join(projectID.String(), fmt.Sprintf("scene_%03d", sceneIndex), filename)
}

// retryDelay calculates exponential backoff with jitter: base * 2^attempt + random jitter
func retryDelay(attempt int) time.Duration {
	delay := float64(baseRetryDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(maxRetryDelay) {
		delay = float64(maxRetryDelay)
	}
	// Add 0–25% jitter to avoid thundering herd
	jitter := delay * 0.25 * rand.Float64()
	return time.Duration(delay + jitter)
}

// isRetryableError checks if a network-level error is worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "broken pipe")
}

// isRetryableStatus checks if an HTTP status code is worth retrying
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || // 429
		status == http.StatusRequestTimeout || // 408
		status == http.StatusBadGateway || // 502
		status == http.StatusServiceUnavailable || // 503
		status == http.StatusGatewayTimeout // 504
}

// truncate limits a string to maxLen characters for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
