package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/timeline"
)

const sampleTemplate = `id: quick-teaser
name: Quick Teaser
total_duration_seconds: 10
scenes:
  - kind: kinetic_text
    duration: 3
    headline: "Meet {brand}"
    subtext: "Built for speed"
  - kind: ui_mockup
    duration: 4
    transition: fade
    camera_move: hero_zoom
    camera_angle: three_quarter
  - kind: cta_finale
    duration: 3
    transition: zoom_through
    headline: "Try {brand}"
    subtext: "Start free"
`

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndGet(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "quick-teaser.yaml", sampleTemplate)
	writeTemplate(t, dir, "notes.txt", "not a template")

	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tpl, ok := lib.Get("quick-teaser")
	if !ok {
		t.Fatal("template not found by id")
	}
	if tpl.Name != "Quick Teaser" || len(tpl.Scenes) != 3 {
		t.Errorf("unexpected template: %+v", tpl)
	}
	if _, ok := lib.Get("missing"); ok {
		t.Error("unknown id should not resolve")
	}
	if got := lib.List(); len(got) != 1 {
		t.Errorf("expected 1 template, got %d", len(got))
	}
}

func TestLoadRejectsBadTemplates(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing id", "name: X\ntotal_duration_seconds: 10\nscenes:\n  - kind: kinetic_text\n    duration: 3\n"},
		{"no scenes", "id: x\ntotal_duration_seconds: 10\nscenes: []\n"},
		{"zero duration scene", "id: x\ntotal_duration_seconds: 10\nscenes:\n  - kind: kinetic_text\n    duration: 0\n"},
		{"zero total", "id: x\ntotal_duration_seconds: 0\nscenes:\n  - kind: kinetic_text\n    duration: 3\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTemplate(t, dir, "bad.yaml", tc.body)
			if _, err := Load(dir); err == nil {
				t.Error("expected a load error")
			}
		})
	}
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.yaml", sampleTemplate)
	writeTemplate(t, dir, "b.yaml", sampleTemplate)
	if _, err := Load(dir); err == nil {
		t.Error("duplicate template ids should fail the load")
	}
}

func TestInstantiateSubstitutesBrand(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "quick-teaser.yaml", sampleTemplate)
	lib, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	tpl, _ := lib.Get("quick-teaser")

	p := tpl.Instantiate("Acme", "#FF5500")
	if err := p.Validate(); err != nil {
		t.Fatalf("instantiated plan invalid: %v", err)
	}
	if p.TemplateID != "quick-teaser" || p.BrandName != "Acme" {
		t.Errorf("plan identity wrong: %+v", p)
	}

	text, ok := p.Scenes[0].Content.(*plan.KineticTextContent)
	if !ok {
		t.Fatal("opening scene should carry kinetic text content")
	}
	if text.Headline != "Meet Acme" {
		t.Errorf("brand not substituted: %q", text.Headline)
	}

	cta, ok := p.Scenes[2].Content.(*plan.CTAFinaleContent)
	if !ok {
		t.Fatal("closing scene should carry CTA content")
	}
	if cta.Headline != "Try Acme" {
		t.Errorf("brand not substituted in CTA: %q", cta.Headline)
	}

	if p.Scenes[1].CameraMove != plan.MoveHeroZoom || p.Scenes[1].Transition != plan.TransitionFade {
		t.Errorf("scene spec fields not carried: %+v", p.Scenes[1].SceneBase)
	}
}

func TestTotalFramesPinsSchedule(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "quick-teaser.yaml", sampleTemplate)
	lib, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	tpl, _ := lib.Get("quick-teaser")

	p := tpl.Instantiate("Acme", "#FF5500")
	sched := timeline.NewTemplated(p, 30, tpl.TotalFrames(30))
	if sched.TotalFrames() != 300 {
		t.Errorf("expected 300 pinned frames, got %d", sched.TotalFrames())
	}
}

func TestShippedTemplatesLoad(t *testing.T) {
	dir := filepath.Join("..", "..", "assets", "templates")
	lib, err := Load(dir)
	if err != nil {
		t.Fatalf("shipped templates failed to load: %v", err)
	}
	if len(lib.List()) < 3 {
		t.Errorf("expected at least 3 shipped templates, got %d", len(lib.List()))
	}
	for _, tpl := range lib.List() {
		p := tpl.Instantiate("Acme", "#FF5500")
		if err := p.Validate(); err != nil {
			t.Errorf("template %s instantiates an invalid plan: %v", tpl.ID, err)
		}
	}
}
