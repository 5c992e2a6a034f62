package plan

import "testing"

func TestDuplicateScene(t *testing.T) {
	p := samplePlan()

	if err := p.DuplicateScene(1); err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}

	if len(p.Scenes) != 4 {
		t.Fatalf("expected 4 scenes, got %d", len(p.Scenes))
	}
	if p.Scenes[2].Kind != KindUIMockup || p.Scenes[2].ID != p.Scenes[1].ID {
		t.Errorf("copy not inserted immediately after source: %+v", p.Scenes[2].SceneBase)
	}
	if p.Scenes[0].Kind != KindKineticText || p.Scenes[3].Kind != KindCTAFinale {
		t.Error("surrounding scene order changed")
	}

	// The copy must be independent of the original.
	p.Scenes[2].Content.(*UIMockupContent).ScreenName = "settings"
	if p.Scenes[1].Content.(*UIMockupContent).ScreenName != "dashboard" {
		t.Error("duplicate shares content with source")
	}
}

func TestMoveScene(t *testing.T) {
	p := samplePlan()

	if err := p.MoveScene(0, 2); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	got := []SceneKind{p.Scenes[0].Kind, p.Scenes[1].Kind, p.Scenes[2].Kind}
	want := []SceneKind{KindUIMockup, KindCTAFinale, KindKineticText}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if err := p.MoveScene(5, 0); err == nil {
		t.Error("expected error for out-of-range source")
	}
}

func TestDeleteScene(t *testing.T) {
	p := samplePlan()

	if err := p.DeleteScene(1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(p.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(p.Scenes))
	}

	if err := p.DeleteScene(0); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := p.DeleteScene(0); err == nil {
		t.Error("expected refusal to delete the only scene")
	}
}

func TestMergeScenePatch(t *testing.T) {
	p := samplePlan()

	patch := []byte(`{"duration": 5.5, "transition": "zoom_through"}`)
	if err := p.MergeScenePatch(0, patch); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	sc := p.Scenes[0]
	if sc.Duration != 5.5 {
		t.Errorf("duration not applied: %v", sc.Duration)
	}
	if sc.Transition != TransitionZoomThrough {
		t.Errorf("transition not applied: %v", sc.Transition)
	}
	// Unspecified fields preserved.
	if sc.CameraMove != MoveHeroZoom {
		t.Errorf("camera move was clobbered: %v", sc.CameraMove)
	}
	if sc.Content.(*KineticTextContent).Headline != "Ship faster" {
		t.Error("content was clobbered")
	}
}

func TestMergeScenePatchPreservesOmittedFields(t *testing.T) {
	p := samplePlan()
	p.Scenes[0].Choreography = &Choreography{
		Camera: &CameraChoreography{Zoom: []Keyframe{{Frame: 0, Value: 1}, {Frame: 100, Value: 1.3}}},
	}
	p.Scenes[0].Elements = []FloatingElement{{Type: "badge", Text: "New"}}
	p.Scenes[0].VoiceoverURL = "https://cdn.example.com/vo.mp3"

	patch := []byte(`{"voiceover_script": "A sharper pitch."}`)
	if err := p.MergeScenePatch(0, patch); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	sc := p.Scenes[0]
	if sc.VoiceoverScript != "A sharper pitch." {
		t.Errorf("script not applied: %q", sc.VoiceoverScript)
	}
	if sc.Choreography == nil || sc.Choreography.Camera == nil || len(sc.Choreography.Camera.Zoom) != 2 {
		t.Error("choreography lost by patch that did not mention it")
	}
	if len(sc.Elements) != 1 || sc.Elements[0].Text != "New" {
		t.Error("elements lost by patch that did not mention them")
	}
	if sc.VoiceoverURL != "https://cdn.example.com/vo.mp3" {
		t.Error("media URL lost by patch that did not mention it")
	}
}

func TestMergeScenePatchFailsClosed(t *testing.T) {
	p := samplePlan()
	before := p.Scenes[0].Duration

	if err := p.MergeScenePatch(0, []byte(`{"duration": not json`)); err == nil {
		t.Fatal("expected error for malformed patch")
	}
	if p.Scenes[0].Duration != before {
		t.Error("scene mutated by failed patch")
	}

	if err := p.MergeScenePatch(0, []byte(`{"duration": -1}`)); err == nil {
		t.Fatal("expected error for non-positive duration")
	}
	if p.Scenes[0].Duration != before {
		t.Error("scene mutated by rejected patch")
	}
}

func TestMergePlanPatch(t *testing.T) {
	p := samplePlan()

	if err := p.MergePlanPatch([]byte(`{"brand_color": "#16a34a"}`)); err != nil {
		t.Fatalf("plan patch failed: %v", err)
	}
	if p.BrandColor != "#16a34a" {
		t.Errorf("brand color not applied: %s", p.BrandColor)
	}
	if p.BrandName != "Acme" || len(p.Scenes) != 3 {
		t.Error("unspecified plan fields were clobbered")
	}

	if err := p.MergePlanPatch([]byte(`{"scenes": []}`)); err == nil {
		t.Error("expected rejection of patch that empties the scene list")
	}
}
