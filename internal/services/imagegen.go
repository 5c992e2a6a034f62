package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const geminiModel = "gemini-3-pro-image-preview"

// ImageGenService generates background still images for scenes via the
// Gemini image API. Stills are the fallback when video generation is
// disabled — the compositor applies camera drift to keep them alive.
type ImageGenService struct {
	apiKey string
	client *http.Client
}

func NewImageGenService(apiKey string) *ImageGenService {
	return &ImageGenService{
		apiKey: apiKey,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

// Gemini API request/response structures
type GeminiGenerateContentRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiGenerationConfig struct {
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *GeminiImageConfig `json:"imageConfig,omitempty"`
}

type GeminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *GeminiInlineData `json:"inlineData,omitempty"`
}

type GeminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type GeminiGenerateContentResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

type GeminiCandidate struct {
	Content GeminiResponseContent `json:"content"`
}

type GeminiResponseContent struct {
	Parts []GeminiResponsePart `json:"parts"`
}

type GeminiResponsePart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *GeminiInlineData `json:"inlineData,omitempty"`
}

// ImageGenOptions holds per-project overrides for background image generation.
// Nil/empty fields mean "use the default".
type ImageGenOptions struct {
	BrandName   string  // Product name, used to anchor the visual theme
	BrandColor  string  // Hex accent color the image should feature
	AspectRatio *string // "16:9", "9:16", "1:1"
}

// GenerateImage generates a single background still using Gemini.
// Each call is independent — safe for parallel execution across scenes.
// opts carries per-project brand styling; nil means use defaults.
func (s *ImageGenService) GenerateImage(ctx context.Context, basePrompt string, opts *ImageGenOptions) ([]byte, error) {
	// Resolve aspect ratio — per-project override or default
	aspectRatio := "16:9"
	if opts != nil && opts.AspectRatio != nil && *opts.AspectRatio != "" {
		aspectRatio = *opts.AspectRatio
	}

	promptText := composeBackgroundPrompt(basePrompt, opts, aspectRatio)

	log.Printf("[ImageGen] Generating background still (%s, model %s)...", aspectRatio, geminiModel)

	reqBody := GeminiGenerateContentRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: promptText}}},
		},
		GenerationConfig: &GeminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
			ImageConfig: &GeminiImageConfig{
				AspectRatio: aspectRatio,
				ImageSize:   "4K",
			},
		},
	}

	return s.doGenerateContent(ctx, reqBody)
}

func (s *ImageGenService) doGenerateContent(ctx context.Context, reqBody GeminiGenerateContentRequest) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", geminiModel, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var geminiResp GeminiGenerateContentResponse
	if err := json.Unmarshal(bodyBytes, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	var textParts []string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			imageData, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("failed to decode base64 image: %w", err)
			}
			log.Printf("[ImageGen] Received image (%d bytes, %s)", len(imageData), part.InlineData.MimeType)
			return imageData, nil
		}
		if part.Text != "" {
			textParts = append(textParts, part.Text)
		}
	}

	if len(textParts) > 0 {
		return nil, fmt.Errorf("gemini returned text instead of image: %s", textParts[0][:min(200, len(textParts[0]))])
	}
	return nil, fmt.Errorf("no image data found in response (got %d parts, none with inlineData)", len(geminiResp.Candidates[0].Content.Parts))
}

// composeBackgroundPrompt builds the full prompt: scene description plus the
// brand styling and backdrop constraints. Overlaid text and UI are rendered
// on top by the compositor, so the image itself must stay free of legible
// content.
func composeBackgroundPrompt(basePrompt string, opts *ImageGenOptions, aspectRatio string) string {
	var prompt bytes.Buffer

	prompt.WriteString("BACKGROUND FOR A PRODUCT LAUNCH VIDEO. This image sits behind overlaid headlines and UI mockups, so it must contain NO text, NO letters, NO logos, and NO readable interface elements. Keep the center of the frame visually calm and low-contrast so overlaid content stays legible.\n\n")

	if opts != nil && opts.BrandColor != "" {
		prompt.WriteString(fmt.Sprintf("BRAND STYLING: Feature %s as the dominant accent color against a dark, premium backdrop.\n\n", opts.BrandColor))
	} else {
		prompt.WriteString("BRAND STYLING: Use a dark, premium color palette with a single accent hue.\n\n")
	}

	prompt.WriteString("SCENE TO DEPICT:\n")
	prompt.WriteString(basePrompt)

	// Build orientation label
	orientLabel := "Landscape"
	if aspectRatio == "9:16" {
		orientLabel = "Portrait"
	} else if aspectRatio == "1:1" {
		orientLabel = "Square"
	}
	prompt.WriteString(fmt.Sprintf("\n\nOutput: %s %s, highest quality 4K.", orientLabel, aspectRatio))

	return prompt.String()
}
