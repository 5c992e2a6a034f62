package render

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/launchreel/launchreel/internal/compose"
	"github.com/launchreel/launchreel/internal/plan"
)

func exportPlan() *plan.VideoPlan {
	return &plan.VideoPlan{
		BrandName:  "Orbit",
		BrandColor: "#4F46E5",
		Scenes: []plan.VideoScene{
			{
				SceneBase: plan.SceneBase{
					ID:       1,
					Kind:     plan.KindKineticText,
					Duration: 2,
				},
				Content: &plan.KineticTextContent{Headline: "Meet Orbit"},
			},
			{
				SceneBase: plan.SceneBase{
					ID:         2,
					Kind:       plan.KindCTAFinale,
					Duration:   2,
					Transition: plan.TransitionFade,
				},
				Content: &plan.CTAFinaleContent{Headline: "Try Orbit", ButtonText: "Start free"},
			},
		},
	}
}

func TestExportMetadata(t *testing.T) {
	m, err := Export(exportPlan(), compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if m.Version != ManifestVersion {
		t.Errorf("version = %d, want %d", m.Version, ManifestVersion)
	}
	if m.TotalFrames != 120 {
		t.Errorf("total frames = %d, want 120", m.TotalFrames)
	}
	if m.Width != compose.DefaultWidth || m.Height != compose.DefaultHeight {
		t.Errorf("size = %dx%d, want defaults", m.Width, m.Height)
	}
	if m.BrandName != "Orbit" || m.BrandColor != "#4F46E5" {
		t.Errorf("brand = %q/%q", m.BrandName, m.BrandColor)
	}
	if len(m.Frames) != m.TotalFrames {
		t.Fatalf("frames = %d, want %d", len(m.Frames), m.TotalFrames)
	}
}

func TestExportSceneTable(t *testing.T) {
	m, err := Export(exportPlan(), compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if len(m.Scenes) != 2 {
		t.Fatalf("scene entries = %d, want 2", len(m.Scenes))
	}
	if m.Scenes[0].StartFrame != 0 || m.Scenes[0].DurationFrames != 60 {
		t.Errorf("scene 0 window = (%d, %d), want (0, 60)", m.Scenes[0].StartFrame, m.Scenes[0].DurationFrames)
	}
	if m.Scenes[1].StartFrame != 60 {
		t.Errorf("scene 1 start = %d, want 60", m.Scenes[1].StartFrame)
	}
	if m.Scenes[1].Transition != plan.TransitionFade {
		t.Errorf("scene 1 transition = %q, want fade", m.Scenes[1].Transition)
	}
}

func TestExportFramesMatchStateAt(t *testing.T) {
	p := exportPlan()
	m, err := Export(p, compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	c, err := compose.New(p, compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("compose.New: %v", err)
	}

	for _, f := range []int{0, 59, 60, 90, 119} {
		got := m.Frames[f]
		want := c.StateAt(f)
		if got.SceneIndex != want.SceneIndex || got.LocalFrame != want.LocalFrame || got.Renderer != want.Renderer {
			t.Errorf("frame %d: manifest (%d, %d, %s) != StateAt (%d, %d, %s)",
				f, got.SceneIndex, got.LocalFrame, got.Renderer,
				want.SceneIndex, want.LocalFrame, want.Renderer)
		}
	}
}

func TestExportDeterministic(t *testing.T) {
	a, err := Export(exportPlan(), compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	b, err := Export(exportPlan(), compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	aBytes, err := a.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	bBytes, err := b.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !bytes.Equal(aBytes, bBytes) {
		t.Error("two exports of the same plan differ")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	m, err := Export(exportPlan(), compose.Options{FPS: 30})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var buf bytes.Buffer
	if err := m.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var back Manifest
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal written manifest: %v", err)
	}
	if back.TotalFrames != m.TotalFrames || len(back.Frames) != len(m.Frames) {
		t.Errorf("round trip lost frames: %d/%d vs %d/%d",
			back.TotalFrames, len(back.Frames), m.TotalFrames, len(m.Frames))
	}
}

func TestStreamFrames(t *testing.T) {
	var buf bytes.Buffer
	if err := StreamFrames(&buf, exportPlan(), compose.Options{FPS: 30}); err != nil {
		t.Fatalf("StreamFrames: %v", err)
	}

	sc := bufio.NewScanner(&buf)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	lines := 0
	for sc.Scan() {
		var st compose.FrameState
		if err := json.Unmarshal(sc.Bytes(), &st); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if st.Frame != lines {
			t.Fatalf("line %d carries frame %d", lines, st.Frame)
		}
		lines++
	}
	if lines != 120 {
		t.Errorf("streamed %d frames, want 120", lines)
	}
}

func TestExportRejectsInvalidPlan(t *testing.T) {
	if _, err := Export(&plan.VideoPlan{BrandName: "X"}, compose.Options{}); err == nil {
		t.Error("expected error for plan with no scenes")
	}
}
