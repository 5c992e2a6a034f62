package timeline

import (
	"math"

	"github.com/launchreel/launchreel/internal/plan"
)

// DefaultFPS is the composition frame rate. All frame math in the engine
// runs at a single fixed rate; durations in seconds are converted once.
const DefaultFPS = 30

// Schedule maps scene durations to global frame windows. A Schedule is a
// snapshot of the plan's structure: any structural edit (reorder, duplicate,
// delete, duration change) invalidates it, and callers rebuild from the
// plan — there is no caching across mutations.
type Schedule struct {
	fps    int
	starts []int // cumulative start frame per scene
	durs   []int // duration in frames per scene
	total  int
}

// Location is the result of resolving a global frame.
type Location struct {
	SceneIndex int
	LocalFrame int
}

// Window is one scene's half-open global frame interval [Start, End).
type Window struct {
	SceneIndex int
	Start      int
	End        int
}

// New builds a schedule from the plan's scene durations at the given frame
// rate (0 = DefaultFPS). Non-positive durations contribute a one-frame
// minimum window rather than failing: the renderer must stay live on
// degenerate input.
func New(p *plan.VideoPlan, fps int) *Schedule {
	if fps <= 0 {
		fps = DefaultFPS
	}

	s := &Schedule{
		fps:    fps,
		starts: make([]int, len(p.Scenes)),
		durs:   make([]int, len(p.Scenes)),
	}

	offset := 0
	for i := range p.Scenes {
		frames := int(math.Floor(p.Scenes[i].Duration * float64(fps)))
		if frames < 1 {
			frames = 1
		}
		s.starts[i] = offset
		s.durs[i] = frames
		offset += frames
	}

	s.total = offset
	if s.total < 1 {
		s.total = 1
	}
	return s
}

// NewTemplated builds a schedule whose total length is the authoritative
// template duration rather than the sum of scene durations. The editable
// per-scene durations still proportion the windows inside the fixed total;
// rounding remainders land on the last scene.
func NewTemplated(p *plan.VideoPlan, fps, totalFrames int) *Schedule {
	s := New(p, fps)
	if totalFrames < 1 || len(s.durs) == 0 || s.total == totalFrames {
		if totalFrames >= 1 {
			s.total = maxInt(totalFrames, 1)
		}
		return s
	}

	scale := float64(totalFrames) / float64(s.total)
	offset := 0
	for i := range s.durs {
		frames := int(math.Floor(float64(s.durs[i]) * scale))
		if frames < 1 {
			frames = 1
		}
		if i == len(s.durs)-1 {
			frames = totalFrames - offset
			if frames < 1 {
				frames = 1
			}
		}
		s.starts[i] = offset
		s.durs[i] = frames
		offset += frames
	}
	s.total = maxInt(offset, 1)
	return s
}

// SceneCount returns the number of scheduled scenes.
func (s *Schedule) SceneCount() int { return len(s.durs) }

// FPS returns the schedule's frame rate.
func (s *Schedule) FPS() int { return s.fps }

// StartFrame returns the cumulative start frame of scene i.
func (s *Schedule) StartFrame(i int) int { return s.starts[i] }

// DurationFrames returns scene i's length in frames.
func (s *Schedule) DurationFrames(i int) int { return s.durs[i] }

// TotalFrames returns the full timeline length in frames, minimum 1.
func (s *Schedule) TotalFrames() int { return s.total }

// Locate maps a global frame to its owning scene and local frame. Windows
// are half-open and left-inclusive: a frame sitting exactly on a boundary
// belongs to the NEXT scene. Frames outside [0, TotalFrames) clamp to the
// nearest end so the renderer never dereferences a missing scene.
func (s *Schedule) Locate(globalFrame int) Location {
	if len(s.durs) == 0 {
		return Location{}
	}
	if globalFrame < 0 {
		return Location{SceneIndex: 0, LocalFrame: 0}
	}

	for i := range s.durs {
		if globalFrame < s.starts[i]+s.durs[i] {
			return Location{SceneIndex: i, LocalFrame: globalFrame - s.starts[i]}
		}
	}

	last := len(s.durs) - 1
	return Location{SceneIndex: last, LocalFrame: s.durs[last] - 1}
}

// Windows returns every scene's global frame window in playback order.
func (s *Schedule) Windows() []Window {
	out := make([]Window, len(s.durs))
	for i := range s.durs {
		out[i] = Window{SceneIndex: i, Start: s.starts[i], End: s.starts[i] + s.durs[i]}
	}
	return out
}

// OverlapFrames is the fixed length of a transition window. The overlap is
// carved out of the adjacent scenes — it never extends the total runtime.
const OverlapFrames = 15

// TransitionSpan returns the global overlap window for the boundary INTO
// scene enteringIndex, split across the boundary (tail of the exiting
// scene, head of the entering one). ok is false for the first scene, for a
// hard cut (no transition kind), and when either neighbor is too short to
// give up its share.
func (s *Schedule) TransitionSpan(enteringIndex int, kind plan.TransitionKind) (start, end int, ok bool) {
	if enteringIndex <= 0 || enteringIndex >= len(s.durs) || kind == plan.TransitionNone {
		return 0, 0, false
	}

	exitShare := OverlapFrames / 2
	enterShare := OverlapFrames - exitShare

	if s.durs[enteringIndex-1] < exitShare || s.durs[enteringIndex] < enterShare {
		return 0, 0, false
	}

	boundary := s.starts[enteringIndex]
	return boundary - exitShare, boundary + enterShare, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
