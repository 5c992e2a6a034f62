package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/launchreel/launchreel/internal/plan"
)

type PlannerService struct {
	client *openai.Client
	httpc  *http.Client
	model  string
}

func NewPlannerService(apiKey, model string) *PlannerService {
	return &PlannerService{
		client: openai.NewClient(apiKey),
		httpc:  &http.Client{Timeout: 30 * time.Second},
		model:  model,
	}
}

// PlanOptions holds per-project customization passed into plan generation.
// All fields are optional pointers — nil means "use defaults".
type PlanOptions struct {
	AspectRatio *string // "16:9", "9:16", "1:1"
	Language    *string // ISO 639-1 code ("en", "es", "fr", ...)
}

// GeneratePlan turns a product brief into a scene-by-scene video plan
// using OpenAI structured output. opts carries per-project customization;
// nil fields use global defaults.
func (s *PlannerService) GeneratePlan(ctx context.Context, brief, brandName, brandColor string, targetDuration int, opts *PlanOptions) (*plan.VideoPlan, error) {
	systemPrompt := buildPlanSystemPrompt(targetDuration, opts)
	userPrompt := buildPlanUserPrompt(brief, brandName, brandColor, targetDuration)

	return s.completePlan(ctx, "plan", systemPrompt, userPrompt)
}

// RefinePlan asks the model for a patch against an existing plan and
// returns it unapplied. The patch is shallow-merged over the current
// document by the caller (plan.MergePlanPatch), so fields the model does
// not mention are preserved rather than trusted to the prompt.
func (s *PlannerService) RefinePlan(ctx context.Context, current json.RawMessage, instruction string) (json.RawMessage, error) {
	systemPrompt := buildRefineSystemPrompt()
	userPrompt := fmt.Sprintf("Current plan:\n%s\n\nInstruction: %s\n\nReturn the patch as JSON.", string(current), instruction)

	return s.completeRefinementPatch(ctx, "refine", systemPrompt, userPrompt)
}

// RefineScene is RefinePlan for one scene: the returned patch carries
// only the fields the model changed and is merged over the scene via
// plan.MergeScenePatch.
func (s *PlannerService) RefineScene(ctx context.Context, current json.RawMessage, instruction string) (json.RawMessage, error) {
	systemPrompt := buildSceneRefineSystemPrompt()
	userPrompt := fmt.Sprintf("Current scene:\n%s\n\nInstruction: %s\n\nReturn the patch as JSON.", string(current), instruction)

	return s.completeRefinementPatch(ctx, "scene", systemPrompt, userPrompt)
}

func (s *PlannerService) completeRefinementPatch(ctx context.Context, tag, systemPrompt, userPrompt string) (json.RawMessage, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 1.0,
	})

	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	rawContent := stripJSONFences(resp.Choices[0].Message.Content)

	patch, err := parseRefinementPatch(rawContent)
	if err != nil {
		log.Printf("[Planner %s] patch rejected: %v", tag, err)
		logRaw(tag, rawContent, 2000)
		return nil, err
	}

	log.Printf("[Planner %s] patch produced (%d bytes)", tag, len(patch))

	return patch, nil
}

// parseRefinementPatch accepts only a non-empty JSON object: a patch must
// name the fields it changes, and anything else (array, scalar, fragment)
// is a malformed response, not a mergeable document.
func parseRefinementPatch(raw string) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("patch is not a JSON object: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("patch is empty")
	}
	return json.RawMessage(raw), nil
}

// AnalyzeProductURL fetches a product page and distills it into a launch
// brief suitable for GeneratePlan. The page text is truncated before it
// reaches the model; only the first part of a landing page carries the
// pitch anyway.
func (s *PlannerService) AnalyzeProductURL(ctx context.Context, productURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid product URL: %w", err)
	}
	req.Header.Set("User-Agent", "launchreel/1.0")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch product page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("product page returned status %d", resp.StatusCode)
	}

	const maxPageBytes = 256 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read product page: %w", err)
	}

	pageText := extractPageText(string(body))
	const maxPromptChars = 8000
	if len(pageText) > maxPromptChars {
		pageText = pageText[:maxPromptChars]
	}
	if strings.TrimSpace(pageText) == "" {
		return "", fmt.Errorf("product page has no readable text")
	}

	chatResp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write product launch briefs. Given the text of a product landing page, write a 3-5 sentence brief covering what the product is, who it is for, and its two or three strongest selling points. Plain prose, no headings, no markdown.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "Landing page text:\n\n" + pageText,
			},
		},
		Temperature: 0.7,
	})

	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	brief := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if brief == "" {
		return "", fmt.Errorf("empty brief from model")
	}

	log.Printf("[Planner url] brief extracted from %s (%d chars)", productURL, len(brief))

	return brief, nil
}

func (s *PlannerService) completePlan(ctx context.Context, tag, systemPrompt, userPrompt string) (*plan.VideoPlan, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 1.0,
	})

	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	rawContent := stripJSONFences(resp.Choices[0].Message.Content)
	const maxLogLen = 2000

	var p plan.VideoPlan
	if err := json.Unmarshal([]byte(rawContent), &p); err != nil {
		log.Printf("[Planner %s] parse failed: %v", tag, err)
		logRaw(tag, rawContent, maxLogLen)
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	// Fail closed: a plan that does not validate is rejected outright
	// rather than patched up, so a bad generation never reaches the editor.
	if err := p.Validate(); err != nil {
		log.Printf("[Planner %s] invalid plan: %v", tag, err)
		logRaw(tag, rawContent, maxLogLen)
		return nil, fmt.Errorf("generated plan invalid: %w", err)
	}

	for i := range p.Scenes {
		if p.Scenes[i].Kind == "" {
			log.Printf("[Planner %s] scene %d missing kind", tag, i)
			logRaw(tag, rawContent, maxLogLen)
			return nil, fmt.Errorf("scene %d missing kind", i)
		}
	}

	log.Printf("[Planner %s] plan generated: %d scenes, brand=%q", tag, len(p.Scenes), p.BrandName)

	return &p, nil
}

func logRaw(tag, rawContent string, maxLogLen int) {
	if len(rawContent) > maxLogLen {
		log.Printf("[Planner %s] raw response (truncated): %s...", tag, rawContent[:maxLogLen])
	} else {
		log.Printf("[Planner %s] raw response: %s", tag, rawContent)
	}
}

// stripJSONFences removes a markdown code fence wrapper if the model added
// one despite JSON mode.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func buildPlanSystemPrompt(targetDuration int, opts *PlanOptions) string {
	aspectRatio := "16:9"
	language := "en"

	if opts != nil {
		if opts.AspectRatio != nil && *opts.AspectRatio != "" {
			aspectRatio = *opts.AspectRatio
		}
		if opts.Language != nil && *opts.Language != "" {
			language = *opts.Language
		}
	}

	return fmt.Sprintf(`You are an expert motion designer planning an animated product launch video (%s aspect ratio).

Your task is to produce a scene-by-scene plan for a %d-second video as a JSON document.

LANGUAGE: %s
All on-screen text and voiceover scripts must be written in the "%s" language.

SCENE KINDS (the "kind" field, with their "content" object):
- kinetic_text: bold animated typography. content: {headline, subtext?, text_color?}
- ui_mockup: a product screen with a simulated cursor. content: {screen_name, caption?, cursor_start?: {x,y}, cursor_end?: {x,y}} (percent coordinates 0-100)
- isometric_illustration: abstract 3D-feel vector scene. content: {prompt, shapes?: [{kind: rect|circle|polygon|line, ...}]}
- device_showcase: the product floating on a device. content: {device?, caption?}
- data_visualization: an animated counter or metric. content: {label, start, end, prefix?, suffix?, track?: keyframes}
- cta_finale: closing call to action. content: {headline, button_text?, url?}
- bento_grid: feature grid. content: {cells: [{title, body?, icon?}]}
- device_cloud: many floating screens. content: {screens?: [...]}
- social_proof: quotes and ratings. content: {quotes: [{text, author?}]}
- flat_screenshot: a full-bleed screenshot. content: {caption?}

EVERY SCENE also takes:
- id: positive integer
- duration: seconds (2-6 per scene; they must sum to roughly %d)
- transition: one of fade, slide, wipe, zoom_through, or omitted for a hard cut
- camera_move: static, orbit, hero_zoom, dolly_zoom, parallax, rack_focus, pan_left, pan_right, zoom_in, zoom_out
- camera_angle: front, three_quarter, top_down, low
- voiceover_script: one or two short spoken sentences, written to be listened to
- background_prompt: an abstract ambient background description, or omitted
- choreography: OPTIONAL explicit keyframes when a scene needs bespoke motion:
  {camera: {zoom: [{frame, value, easing?}], rotate_x: [...], rotate_y: [...], use_spring?},
   ui: {cursor_path: [{frame, x, y}], actions: [{frame, type: "click", x, y}]},
   audio: {events: [{frame, type: "sfx", file, volume?}]}}
  Keyframe "frame" values are PERCENT of the scene duration (0-100).
- elements: OPTIONAL floating overlays: [{type: stat_card|notification|badge, text?, value?, label?, position: {top, left}, delay_ms?}]

STRUCTURE:
- Open with a kinetic_text hook that names the product.
- Show the product: at least one ui_mockup or device_showcase scene with cursor motion.
- Prove it: a data_visualization or social_proof beat.
- Close with cta_finale.
- Vary camera moves and transitions; never use the same transition twice in a row.

Top-level fields: brand_name, brand_color (hex), scenes.
Every scene must have a valid kind and a positive duration, or the plan is INVALID and will be rejected.

Structure your response as JSON matching the required schema.`,
		aspectRatio, targetDuration, language, language, targetDuration)
}

// extractPageText strips tags, scripts, and styles from an HTML document
// and collapses whitespace. Crude on purpose: the result feeds a language
// model, not a renderer.
func extractPageText(html string) string {
	var b strings.Builder
	b.Grow(len(html) / 4)

	inTag := false
	skipUntil := ""
	lower := strings.ToLower(html)

	for i := 0; i < len(html); i++ {
		if skipUntil != "" {
			if strings.HasPrefix(lower[i:], skipUntil) {
				i += len(skipUntil) - 1
				skipUntil = ""
				inTag = false
			}
			continue
		}
		switch {
		case html[i] == '<':
			inTag = true
			if strings.HasPrefix(lower[i:], "<script") {
				skipUntil = "</script>"
			} else if strings.HasPrefix(lower[i:], "<style") {
				skipUntil = "</style>"
			}
		case html[i] == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag:
			b.WriteByte(html[i])
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func buildSceneRefineSystemPrompt() string {
	return `You are an expert motion designer revising one scene of an animated product launch video plan.

You will be given the current scene JSON and an instruction. Respond with a PATCH: a JSON object containing ONLY the top-level scene fields the instruction changes, with their complete new values. Fields you omit are preserved exactly as they are, so never repeat a field you are not changing, and never return the whole scene.

The patch is merged shallowly: if you change anything inside "content", "choreography", or "elements", return that field's complete new value.`
}

func buildRefineSystemPrompt() string {
	return `You are an expert motion designer revising an animated product launch video plan.

You will be given the current plan JSON and an instruction. Respond with a PATCH: a JSON object containing ONLY the top-level plan fields the instruction changes (brand_name, brand_color, scenes), with their complete new values. Fields you omit are preserved exactly as they are.

The patch is merged shallowly: if the instruction touches any scene, return the complete "scenes" array with every scene in full, because the array replaces the current one wholesale. If the instruction only changes brand fields, return just those fields.`
}

// buildPlanUserPrompt constructs the user-facing prompt with the brief and
// brand context.
func buildPlanUserPrompt(brief, brandName, brandColor string, targetDuration int) string {
	return fmt.Sprintf("Product brief:\n%s\n\nBrand name: %s\nBrand color: %s\nTarget duration: %d seconds\n\nGenerate the launch video plan.",
		brief, brandName, brandColor, targetDuration)
}
