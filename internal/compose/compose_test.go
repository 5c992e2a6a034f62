package compose

import (
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/timeline"
	"github.com/launchreel/launchreel/internal/transition"
)

func launchPlan() *plan.VideoPlan {
	return &plan.VideoPlan{
		BrandName:  "Acme",
		BrandColor: "#4F46E5",
		Scenes: []plan.VideoScene{
			{SceneBase: plan.SceneBase{ID: 1, Kind: plan.KindKineticText, Duration: 3}},
			{
				SceneBase: plan.SceneBase{
					ID: 2, Kind: plan.KindUIMockup, Duration: 3,
					Transition: plan.TransitionFade,
					Elements: []plan.FloatingElement{
						{Type: "badge", Text: "New", DelayMs: 1000},
					},
				},
				Content: &plan.UIMockupContent{
					ScreenName:  "dashboard",
					CursorStart: &plan.Point{X: 20, Y: 20},
					CursorEnd:   &plan.Point{X: 70, Y: 60},
				},
			},
			{SceneBase: plan.SceneBase{ID: 3, Kind: plan.KindDataVisualization, Duration: 2,
				Elements: []plan.FloatingElement{{Type: "stat_card", Value: 37, Label: "conversion"}},
			}},
		},
	}
}

func mustCompose(t *testing.T, p *plan.VideoPlan, opts Options) *Composition {
	t.Helper()
	c, err := New(p, opts)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return c
}

func TestStateAtLocatesScene(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	st := c.StateAt(100)
	if st.SceneIndex != 1 || st.LocalFrame != 10 {
		t.Errorf("frame 100 should be scene 1 local 10, got scene %d local %d", st.SceneIndex, st.LocalFrame)
	}
	if st.Renderer != plan.KindUIMockup {
		t.Errorf("expected ui_mockup renderer, got %s", st.Renderer)
	}
}

func TestCameraOnlyForWrappedKinds(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	if st := c.StateAt(0); st.Camera != nil {
		t.Error("kinetic text drives its own motion and must not get a camera")
	}
	if st := c.StateAt(100); st.Camera == nil {
		t.Error("ui mockup should be camera wrapped")
	}
}

func TestCursorAppearsInMockupScene(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	if st := c.StateAt(10); st.Cursor != nil {
		t.Error("no cursor outside mockup scenes")
	}
	st := c.StateAt(95)
	if st.Cursor == nil || !st.Cursor.Visible {
		t.Error("mockup scene should carry a cursor state")
	}
}

func TestUnknownKindFallsBackToKineticText(t *testing.T) {
	p := launchPlan()
	p.Scenes[0].Kind = "hologram_stage"

	c := mustCompose(t, p, Options{})
	if st := c.StateAt(0); st.Renderer != plan.KindKineticText {
		t.Errorf("unknown kind should fall back to kinetic text, got %s", st.Renderer)
	}
}

func TestOverlayDelayAndSuppression(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	// The badge on scene 1 is delayed 1000ms = 30 frames; scene 1 starts
	// at global frame 90.
	if st := c.StateAt(100); len(st.Overlays) != 0 {
		t.Error("overlay should not be active before its delay elapses")
	}
	st := c.StateAt(125)
	if len(st.Overlays) != 1 {
		t.Fatalf("expected 1 active overlay, got %d", len(st.Overlays))
	}
	if st.Overlays[0].LocalFrame != 5 {
		t.Errorf("overlay local frame should count from appearance, got %d", st.Overlays[0].LocalFrame)
	}

	// Scene 2 is a data visualization: it draws its own cards, so its
	// floating elements are suppressed.
	if st := c.StateAt(190); len(st.Overlays) != 0 {
		t.Error("data visualization scenes must suppress floating elements")
	}
}

func TestBackgroundFallbackChain(t *testing.T) {
	p := launchPlan()
	p.Scenes[0].BackgroundVideoURL = "https://cdn.example.com/bg.mp4"
	p.Scenes[1].BackgroundImageURL = "https://cdn.example.com/bg.png"

	c := mustCompose(t, p, Options{})

	if bg := c.StateAt(0).Background; bg.Kind != "video" {
		t.Errorf("video URL should win, got %s", bg.Kind)
	}
	if bg := c.StateAt(100).Background; bg.Kind != "image" {
		t.Errorf("image URL should be second, got %s", bg.Kind)
	}
	bg := c.StateAt(200).Background
	if bg.Kind != "gradient" || bg.From != "#4F46E5" {
		t.Errorf("gradient fallback should use the brand color, got %+v", bg)
	}
}

func TestTransitionWindowAroundBoundary(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	// Scene 1 enters at frame 90 with a fade; the window spans [83, 98).
	if st := c.StateAt(80); st.Transition != nil {
		t.Error("no transition outside the boundary window")
	}

	before := c.StateAt(85)
	if before.Transition == nil {
		t.Fatal("expected a transition just before the boundary")
	}
	if before.Transition.Phase != transition.PhaseExiting {
		t.Errorf("expected exiting phase before the boundary, got %s", before.Transition.Phase)
	}
	if before.Transition.EnteringIndex != 1 || before.Transition.ExitingIndex != 0 {
		t.Errorf("wrong boundary scenes: %+v", before.Transition)
	}

	after := c.StateAt(92)
	if after.Transition == nil || after.Transition.Phase != transition.PhaseEntering {
		t.Fatalf("expected entering phase after the boundary, got %+v", after.Transition)
	}
	if after.Transition.Progress <= before.Transition.Progress {
		t.Error("progress should increase across the window")
	}

	// Scene 2 has no transition: hard cut, no window at frame 180.
	if st := c.StateAt(179); st.Transition != nil {
		t.Error("hard cut boundaries allocate no window")
	}
}

func TestTemplatedCompositionPinsTotal(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{TotalFrames: 480})
	if c.TotalFrames() != 480 {
		t.Errorf("expected pinned total 480, got %d", c.TotalFrames())
	}
}

func TestDefaultsApplied(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})
	if c.FPS() != timeline.DefaultFPS {
		t.Errorf("expected default fps, got %d", c.FPS())
	}
	w, h := c.Size()
	if w != DefaultWidth || h != DefaultHeight {
		t.Errorf("expected default canvas, got %dx%d", w, h)
	}
}

func TestStateAtIsPure(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	// Seeking backwards and re-requesting a frame must reproduce the
	// same state: rendering is a pure function of (plan, frame).
	first := c.StateAt(120)
	c.StateAt(250)
	c.StateAt(0)
	again := c.StateAt(120)

	if first.SceneIndex != again.SceneIndex || first.LocalFrame != again.LocalFrame {
		t.Error("frame state must not depend on request order")
	}
	if (first.Cursor == nil) != (again.Cursor == nil) {
		t.Error("cursor state must be reproducible")
	}
	if first.Cursor != nil && (first.Cursor.X != again.Cursor.X || first.Cursor.Y != again.Cursor.Y) {
		t.Error("cursor position must be reproducible")
	}
}

func counterPlan(track []plan.Keyframe) *plan.VideoPlan {
	return &plan.VideoPlan{
		BrandName:  "Acme",
		BrandColor: "#4F46E5",
		Scenes: []plan.VideoScene{{
			SceneBase: plan.SceneBase{ID: 1, Kind: plan.KindDataVisualization, Duration: 2},
			Content: &plan.DataVisualizationContent{
				Label:  "Conversion",
				Start:  10,
				End:    90,
				Suffix: "%",
				Track:  track,
			},
		}},
	}
}

func TestCounterLinearRamp(t *testing.T) {
	c := mustCompose(t, counterPlan(nil), Options{}) // 60 frames at default fps

	first := c.StateAt(0)
	if first.Counter == nil {
		t.Fatal("data visualization scene must carry a counter")
	}
	if first.Counter.Value != 10 {
		t.Errorf("counter should open at Start, got %v", first.Counter.Value)
	}
	if first.Counter.Label != "Conversion" || first.Counter.Suffix != "%" {
		t.Errorf("counter should carry label and affixes, got %+v", first.Counter)
	}

	last := c.StateAt(59)
	if last.Counter.Value != 90 {
		t.Errorf("counter should land on End at the last frame, got %v", last.Counter.Value)
	}

	mid := c.StateAt(30)
	if mid.Counter.Value <= first.Counter.Value || mid.Counter.Value >= last.Counter.Value {
		t.Errorf("counter should ramp monotonically, got %v mid-scene", mid.Counter.Value)
	}
}

func TestCounterKeyframeTrack(t *testing.T) {
	track := []plan.Keyframe{{Frame: 0, Value: 0}, {Frame: 50, Value: 100}, {Frame: 100, Value: 100}}
	c := mustCompose(t, counterPlan(track), Options{})

	if v := c.StateAt(0).Counter.Value; v != 0 {
		t.Errorf("track start value not honored, got %v", v)
	}
	// 50% of the 60-frame scene is local frame 30, an exact keyframe.
	if v := c.StateAt(30).Counter.Value; v != 100 {
		t.Errorf("track keyframe value not honored, got %v", v)
	}
	if v := c.StateAt(45).Counter.Value; v != 100 {
		t.Errorf("counter should hold between equal keyframes, got %v", v)
	}
}

func TestNoCounterOutsideDataViz(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})
	if st := c.StateAt(0); st.Counter != nil {
		t.Error("kinetic text scenes must not carry a counter")
	}
}

func TestCameraTransformTerms(t *testing.T) {
	c := mustCompose(t, launchPlan(), Options{})

	st := c.StateAt(100) // ui_mockup, preset camera
	if st.Camera == nil || len(st.CameraTransform) == 0 {
		t.Fatal("camera-wrapped scene must flatten its pose into transform terms")
	}
	if st.CameraTransform[0].Op != "scale" {
		t.Errorf("preset mode leads with scale, got %s", st.CameraTransform[0].Op)
	}

	if st := c.StateAt(0); st.CameraTransform != nil {
		t.Error("unwrapped scenes emit no transform terms")
	}
}

func TestParallaxLayersEmitted(t *testing.T) {
	p := launchPlan()
	p.Scenes[1].CameraMove = plan.MoveParallax

	c := mustCompose(t, p, Options{})

	st := c.StateAt(120) // deep into the parallax scene; offsets nonzero
	if len(st.ParallaxLayers) != 3 {
		t.Fatalf("expected 3 parallax layers, got %d", len(st.ParallaxLayers))
	}
	if st.ParallaxLayers[0].Factor != 0.5 || st.ParallaxLayers[2].Factor != 1.5 {
		t.Errorf("unexpected depth factors: %+v", st.ParallaxLayers)
	}
	if st.ParallaxLayers[1].TranslateY != st.Camera.TranslateY {
		t.Error("midground layer should match the base camera offset")
	}
	if st.ParallaxLayers[2].TranslateY != 3*st.ParallaxLayers[0].TranslateY {
		t.Error("foreground should move 3x the background layer")
	}

	// Non-parallax moves emit no layers.
	if st := c.StateAt(0); st.ParallaxLayers != nil {
		t.Error("parallax layers only apply to the parallax move")
	}
}

func TestAudioCuesPrecomputed(t *testing.T) {
	p := launchPlan()
	p.Scenes[1].Choreography = &plan.Choreography{
		Audio: &plan.AudioChoreography{
			Events: []plan.AudioEvent{{Frame: 0, Type: "sfx", File: "whoosh_in.mp3"}},
		},
	}

	c := mustCompose(t, p, Options{})
	cues := c.AudioCues()
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].StartFrame != 90 {
		t.Errorf("cue should start with its scene at frame 90, got %d", cues[0].StartFrame)
	}
	if !c.Bed().Loop {
		t.Error("background bed must loop")
	}
}
