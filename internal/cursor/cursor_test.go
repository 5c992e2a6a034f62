package cursor

import (
	"math"
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
)

func mockupScene(content *plan.UIMockupContent, choreo *plan.Choreography) *plan.VideoScene {
	return &plan.VideoScene{
		SceneBase: plan.SceneBase{ID: 1, Kind: plan.KindUIMockup, Duration: 4, Choreography: choreo},
		Content:   content,
	}
}

func TestNonMockupSceneHasNoCursor(t *testing.T) {
	sc := &plan.VideoScene{SceneBase: plan.SceneBase{ID: 1, Kind: plan.KindKineticText, Duration: 3}}
	if st := Resolve(sc, 30, 90, 1920, 1080); st.Visible {
		t.Error("kinetic text scene should not render a cursor")
	}
}

func TestAgenticPathInterpolatesPoints(t *testing.T) {
	sc := mockupScene(nil, &plan.Choreography{
		UI: &plan.UIChoreography{
			CursorPath: []plan.PathPoint{
				{Frame: 0, X: 10, Y: 20},
				{Frame: 100, X: 90, Y: 80},
			},
		},
	})

	start := Resolve(sc, 0, 120, 1000, 1000)
	if !start.Visible {
		t.Fatal("cursor should be visible on a choreographed path")
	}
	if math.Abs(start.X-100) > 1e-6 || math.Abs(start.Y-200) > 1e-6 {
		t.Errorf("start position: expected (100, 200), got (%v, %v)", start.X, start.Y)
	}

	end := Resolve(sc, 120, 120, 1000, 1000)
	if math.Abs(end.X-900) > 1e-6 || math.Abs(end.Y-800) > 1e-6 {
		t.Errorf("end position: expected (900, 800), got (%v, %v)", end.X, end.Y)
	}
}

func TestAgenticClickWindow(t *testing.T) {
	sc := mockupScene(nil, &plan.Choreography{
		UI: &plan.UIChoreography{
			CursorPath: []plan.PathPoint{{Frame: 0, X: 50, Y: 50}},
			Actions:    []plan.UIAction{{Frame: 50, Type: "click", X: 50, Y: 50}},
		},
	})

	// 50% of 120 frames puts the click at local frame 60.
	if st := Resolve(sc, 59, 120, 1000, 1000); st.Clicking {
		t.Error("click should not start before the action frame")
	}
	at := Resolve(sc, 60, 120, 1000, 1000)
	if !at.Clicking || at.ClickProgress != 0 {
		t.Errorf("click should start at frame 60, got clicking=%v progress=%v", at.Clicking, at.ClickProgress)
	}
	mid := Resolve(sc, 65, 120, 1000, 1000)
	if !mid.Clicking || math.Abs(mid.ClickProgress-0.5) > 1e-6 {
		t.Errorf("mid-window progress: expected 0.5, got %v", mid.ClickProgress)
	}
	if st := Resolve(sc, 70, 120, 1000, 1000); st.Clicking {
		t.Error("click window should close after 10 frames")
	}
}

func TestLegacySweepEndpoints(t *testing.T) {
	content := &plan.UIMockupContent{
		ScreenName:  "dashboard",
		CursorStart: &plan.Point{X: 10, Y: 10},
		CursorEnd:   &plan.Point{X: 80, Y: 60},
	}
	sc := mockupScene(content, nil)

	start := Resolve(sc, 0, 120, 1000, 1000)
	if math.Abs(start.X-100) > 1e-6 || math.Abs(start.Y-100) > 1e-6 {
		t.Errorf("sweep start: expected (100, 100), got (%v, %v)", start.X, start.Y)
	}

	// The sweep is done by legacyTravelFrames and holds there after.
	for _, f := range []int{legacyTravelFrames, 100, 119} {
		end := Resolve(sc, f, 120, 1000, 1000)
		if math.Abs(end.X-800) > 1e-6 || math.Abs(end.Y-600) > 1e-6 {
			t.Errorf("frame %d: expected hold at (800, 600), got (%v, %v)", f, end.X, end.Y)
		}
	}
}

func TestLegacySweepArcs(t *testing.T) {
	content := &plan.UIMockupContent{
		CursorStart: &plan.Point{X: 10, Y: 50},
		CursorEnd:   &plan.Point{X: 90, Y: 50},
	}
	sc := mockupScene(content, nil)

	mid := Resolve(sc, legacyTravelFrames/2, 120, 1000, 1000)
	if math.Abs(mid.Y-500) < 1e-6 {
		t.Error("midpoint should bow away from the straight line")
	}

	// Same scene ID, same curve.
	again := Resolve(sc, legacyTravelFrames/2, 120, 1000, 1000)
	if mid.X != again.X || mid.Y != again.Y {
		t.Error("sweep must be deterministic across seeks")
	}

	// A different scene ID may arc the other way.
	other := mockupScene(content, nil)
	other.ID = 2
	flipped := Resolve(other, legacyTravelFrames/2, 120, 1000, 1000)
	if (mid.Y-500)*(flipped.Y-500) >= 0 {
		t.Error("adjacent scene IDs should arc on opposite sides")
	}
}

func TestLegacyClickWindow(t *testing.T) {
	content := &plan.UIMockupContent{
		CursorStart: &plan.Point{X: 10, Y: 10},
		CursorEnd:   &plan.Point{X: 80, Y: 60},
	}
	sc := mockupScene(content, nil)

	if st := Resolve(sc, legacyClickAtFrame-1, 120, 1000, 1000); st.Clicking {
		t.Error("click should not fire before the fixed click frame")
	}
	if st := Resolve(sc, legacyClickAtFrame, 120, 1000, 1000); !st.Clicking {
		t.Error("click should fire at the fixed click frame")
	}
	if st := Resolve(sc, legacyClickAtFrame+legacyClickWindow, 120, 1000, 1000); st.Clicking {
		t.Error("click window should close after 20 frames")
	}
}

func TestMissingEndpointsHideCursor(t *testing.T) {
	sc := mockupScene(&plan.UIMockupContent{ScreenName: "settings"}, nil)
	if st := Resolve(sc, 30, 120, 1000, 1000); st.Visible {
		t.Error("mockup without cursor endpoints should hide the cursor")
	}
}
