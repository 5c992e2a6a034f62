package transition

import (
	"math"
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
)

func TestHardCutHoldsNeutral(t *testing.T) {
	for _, p := range []float64{0, 0.5, 1} {
		pair := Evaluate(plan.TransitionNone, p)
		if pair.Exit != neutral() || pair.Enter != neutral() {
			t.Errorf("progress %v: hard cut should hold neutral poses, got %+v", p, pair)
		}
	}
}

func TestFadeCrossesOpacity(t *testing.T) {
	pair := Evaluate(plan.TransitionFade, 0.25)
	if pair.Exit.Opacity != 0.75 || pair.Enter.Opacity != 0.25 {
		t.Errorf("fade opacities should sum to 1, got exit=%v enter=%v", pair.Exit.Opacity, pair.Enter.Opacity)
	}

	end := Evaluate(plan.TransitionFade, 1)
	if end.Exit.Opacity != 0 || end.Enter.Opacity != 1 {
		t.Errorf("fade end state wrong: %+v", end)
	}
}

func TestSlideEndpoints(t *testing.T) {
	start := Evaluate(plan.TransitionSlide, 0)
	if start.Exit.TranslateX != 0 || start.Enter.TranslateX != 100 {
		t.Errorf("slide start: exit=%v enter=%v", start.Exit.TranslateX, start.Enter.TranslateX)
	}

	end := Evaluate(plan.TransitionSlide, 1)
	if end.Exit.TranslateX != -100 || end.Enter.TranslateX != 0 {
		t.Errorf("slide end: exit=%v enter=%v", end.Exit.TranslateX, end.Enter.TranslateX)
	}
}

func TestWipeRevealsEnteringScene(t *testing.T) {
	start := Evaluate(plan.TransitionWipe, 0)
	if start.Enter.Clip != 0 {
		t.Errorf("wipe should start fully hidden, got clip %v", start.Enter.Clip)
	}
	end := Evaluate(plan.TransitionWipe, 1)
	if end.Enter.Clip != 100 {
		t.Errorf("wipe should end fully revealed, got clip %v", end.Enter.Clip)
	}
	if end.Exit != neutral() {
		t.Errorf("wipe should leave the exiting scene untouched, got %+v", end.Exit)
	}
}

func TestZoomThroughAsymmetry(t *testing.T) {
	// The entering scene must be fully visible before the exiting scene
	// fully fades, so the boundary never flashes empty.
	at50 := Evaluate(plan.TransitionZoomThrough, 0.5)
	if at50.Enter.Opacity != 1 {
		t.Errorf("entering scene should be opaque by 50%%, got %v", at50.Enter.Opacity)
	}
	if at50.Exit.Opacity <= 0 {
		t.Errorf("exiting scene should still be visible at 50%%, got %v", at50.Exit.Opacity)
	}

	at80 := Evaluate(plan.TransitionZoomThrough, 0.8)
	if at80.Exit.Opacity != 0 {
		t.Errorf("exiting scene should be gone by 80%%, got %v", at80.Exit.Opacity)
	}
}

func TestZoomThroughScales(t *testing.T) {
	start := Evaluate(plan.TransitionZoomThrough, 0)
	if start.Exit.Scale != 1 || math.Abs(start.Enter.Scale-0.2) > 1e-9 {
		t.Errorf("zoom-through start scales wrong: %+v", start)
	}

	end := Evaluate(plan.TransitionZoomThrough, 1)
	if end.Exit.Scale != 5 || math.Abs(end.Enter.Scale-1) > 1e-9 {
		t.Errorf("zoom-through end scales wrong: %+v", end)
	}
}

func TestProgressClamped(t *testing.T) {
	low := Evaluate(plan.TransitionFade, -0.3)
	high := Evaluate(plan.TransitionFade, 1.7)
	if low.Enter.Opacity != 0 || high.Enter.Opacity != 1 {
		t.Errorf("progress should clamp to [0,1], got low=%v high=%v", low.Enter.Opacity, high.Enter.Opacity)
	}
}
