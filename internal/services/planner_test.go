package services

import (
	"strings"
	"testing"
)

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"brand_name":"Acme"}`, `{"brand_name":"Acme"}`},
		{"json fence", "```json\n{\"brand_name\":\"Acme\"}\n```", `{"brand_name":"Acme"}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.input); got != tt.want {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRefinementPatch(t *testing.T) {
	patch, err := parseRefinementPatch(`{"brand_color": "#16a34a"}`)
	if err != nil {
		t.Fatalf("object patch rejected: %v", err)
	}
	if string(patch) != `{"brand_color": "#16a34a"}` {
		t.Errorf("patch altered: %s", patch)
	}

	rejected := []struct {
		name string
		raw  string
	}{
		{"array", `[{"brand_color": "#16a34a"}]`},
		{"scalar", `"brand_color"`},
		{"fragment", `{"brand_color":`},
		{"empty object", `{}`},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRefinementPatch(tt.raw); err == nil {
				t.Errorf("expected rejection of %s response", tt.name)
			}
		})
	}
}

func TestExtractPageText(t *testing.T) {
	html := `<html><head>
		<title>Acme</title>
		<style>body { color: red; }</style>
		<script>console.log("tracking");</script>
	</head><body>
		<h1>Ship faster</h1>
		<p>Acme automates your launch videos.</p>
	</body></html>`

	got := extractPageText(html)

	if !strings.Contains(got, "Ship faster") {
		t.Errorf("expected heading text in output, got %q", got)
	}
	if !strings.Contains(got, "Acme automates your launch videos.") {
		t.Errorf("expected paragraph text in output, got %q", got)
	}
	if strings.Contains(got, "color: red") {
		t.Errorf("style content leaked into output: %q", got)
	}
	if strings.Contains(got, "tracking") {
		t.Errorf("script content leaked into output: %q", got)
	}
	if strings.Contains(got, "<") {
		t.Errorf("tag markup leaked into output: %q", got)
	}
}

func TestExtractPageTextCollapsesWhitespace(t *testing.T) {
	got := extractPageText("<p>one</p>\n\n\t  <p>two</p>")
	if got != "one two" {
		t.Errorf("extractPageText = %q, want %q", got, "one two")
	}
}

func TestParseEmotionFromStyle(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{"confident and energetic", "confident"},
		{"calm narrator", "calm"},
		{"something unrecognized", "neutral"},
		{"", "neutral"},
	}

	for _, tt := range tests {
		got := parseEmotionFromStyle(tt.style)
		if tt.style == "confident and energetic" {
			// Map iteration order is undefined; either matched keyword is fine.
			if got != "confident" && got != "excited" {
				t.Errorf("parseEmotionFromStyle(%q) = %q, want confident or excited", tt.style, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("parseEmotionFromStyle(%q) = %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	// 140 words at 140 WPM is one minute.
	words := strings.Repeat("word ", 140)
	if got := estimateAudioDuration(words, 1.0); got != 60000 {
		t.Errorf("estimateAudioDuration(140 words, 1.0) = %d, want 60000", got)
	}

	// Slower speech runs longer.
	slow := estimateAudioDuration(words, 0.5)
	if slow <= 60000 {
		t.Errorf("expected slower speed to lengthen duration, got %d", slow)
	}

	if got := estimateAudioDuration("", 1.0); got != 0 {
		t.Errorf("estimateAudioDuration(empty) = %d, want 0", got)
	}
}
