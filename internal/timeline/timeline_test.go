package timeline

import (
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
)

func planWithDurations(durations ...float64) *plan.VideoPlan {
	p := &plan.VideoPlan{BrandName: "t", BrandColor: "#000"}
	for i, d := range durations {
		p.Scenes = append(p.Scenes, plan.VideoScene{
			SceneBase: plan.SceneBase{ID: i + 1, Kind: plan.KindKineticText, Duration: d},
		})
	}
	return p
}

func TestScheduleSpecScenario(t *testing.T) {
	// Two scenes of 3s and 2s at 30fps: 150 frames total.
	s := New(planWithDurations(3, 2), 30)

	if s.TotalFrames() != 150 {
		t.Fatalf("expected 150 total frames, got %d", s.TotalFrames())
	}
	if s.StartFrame(0) != 0 || s.StartFrame(1) != 90 {
		t.Errorf("wrong start frames: %d, %d", s.StartFrame(0), s.StartFrame(1))
	}

	cases := []struct {
		global int
		scene  int
		local  int
	}{
		{0, 0, 0},
		{89, 0, 89},
		{90, 1, 0}, // boundary belongs to the next scene
		{149, 1, 59},
	}
	for _, c := range cases {
		loc := s.Locate(c.global)
		if loc.SceneIndex != c.scene || loc.LocalFrame != c.local {
			t.Errorf("Locate(%d) = (%d, %d), expected (%d, %d)",
				c.global, loc.SceneIndex, loc.LocalFrame, c.scene, c.local)
		}
	}
}

func TestLocatePartitionsTimeline(t *testing.T) {
	s := New(planWithDurations(1.5, 0.7, 2.2, 0.03), 30)

	counts := make([]int, s.SceneCount())
	for f := 0; f < s.TotalFrames(); f++ {
		loc := s.Locate(f)
		if loc.LocalFrame < 0 || loc.LocalFrame >= s.DurationFrames(loc.SceneIndex) {
			t.Fatalf("frame %d: local frame %d outside scene %d window", f, loc.LocalFrame, loc.SceneIndex)
		}
		counts[loc.SceneIndex]++
	}

	sum := 0
	for i, c := range counts {
		if c != s.DurationFrames(i) {
			t.Errorf("scene %d owns %d frames, expected %d", i, c, s.DurationFrames(i))
		}
		sum += c
	}
	if sum != s.TotalFrames() {
		t.Errorf("partition covers %d frames, total is %d", sum, s.TotalFrames())
	}
}

func TestLocateClampsOutOfRange(t *testing.T) {
	s := New(planWithDurations(2), 30)

	if loc := s.Locate(-5); loc.SceneIndex != 0 || loc.LocalFrame != 0 {
		t.Errorf("negative frame should clamp to start, got %+v", loc)
	}
	if loc := s.Locate(10_000); loc.SceneIndex != 0 || loc.LocalFrame != 59 {
		t.Errorf("overshoot should clamp to last frame, got %+v", loc)
	}
}

func TestDegenerateDurations(t *testing.T) {
	// A zero-duration scene still owns a one-frame window; the schedule
	// never throws.
	s := New(planWithDurations(0, 1), 30)
	if s.DurationFrames(0) != 1 {
		t.Errorf("zero-duration scene should get 1 frame, got %d", s.DurationFrames(0))
	}
	if s.TotalFrames() != 31 {
		t.Errorf("expected 31 frames, got %d", s.TotalFrames())
	}

	empty := New(&plan.VideoPlan{}, 30)
	if empty.TotalFrames() != 1 {
		t.Errorf("empty plan should still report 1 frame, got %d", empty.TotalFrames())
	}
	_ = empty.Locate(0) // must not panic
}

func TestStartFramesStrictlyIncrease(t *testing.T) {
	p := planWithDurations(2, 3, 1, 4)
	if err := p.MoveScene(3, 1); err != nil {
		t.Fatalf("move failed: %v", err)
	}

	// Schedules are rebuilt after every structural edit.
	s := New(p, 30)
	for i := 1; i < s.SceneCount(); i++ {
		if s.StartFrame(i) <= s.StartFrame(i-1) {
			t.Errorf("start frames not strictly increasing at %d: %d <= %d",
				i, s.StartFrame(i), s.StartFrame(i-1))
		}
	}
	if s.TotalFrames() != 300 {
		t.Errorf("reorder changed total: %d", s.TotalFrames())
	}
}

func TestTemplatedScheduleFixedTotal(t *testing.T) {
	p := planWithDurations(3, 2) // advisory: sums to 150 frames
	s := NewTemplated(p, 30, 300)

	if s.TotalFrames() != 300 {
		t.Fatalf("template total should be authoritative, got %d", s.TotalFrames())
	}
	// Proportions are kept: 3:2 split of 300.
	if s.DurationFrames(0) != 180 || s.DurationFrames(1) != 120 {
		t.Errorf("windows not proportioned: %d, %d", s.DurationFrames(0), s.DurationFrames(1))
	}
	if loc := s.Locate(299); loc.SceneIndex != 1 {
		t.Errorf("last frame should land in last scene, got %+v", loc)
	}
}

func TestTransitionSpan(t *testing.T) {
	s := New(planWithDurations(3, 2), 30)

	start, end, ok := s.TransitionSpan(1, plan.TransitionFade)
	if !ok {
		t.Fatal("expected a transition window")
	}
	if end-start != OverlapFrames {
		t.Errorf("window length %d, expected %d", end-start, OverlapFrames)
	}
	if start >= 90 || end <= 90 {
		t.Errorf("window [%d,%d) should straddle the boundary at 90", start, end)
	}
	// The overlap is carved from the scenes; the total stays put.
	if s.TotalFrames() != 150 {
		t.Errorf("transition changed total duration: %d", s.TotalFrames())
	}

	// Hard cut: no window.
	if _, _, ok := s.TransitionSpan(1, plan.TransitionNone); ok {
		t.Error("hard cut should not allocate a window")
	}
	// First scene has no incoming boundary.
	if _, _, ok := s.TransitionSpan(0, plan.TransitionFade); ok {
		t.Error("first scene cannot have an entering transition")
	}
}
