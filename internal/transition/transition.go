// Package transition computes the exit and enter poses of the two scenes
// adjacent to a boundary. The overlap window is carved out of the scenes
// themselves; see the timeline package for how it is allocated.
package transition

import (
	"math"

	"github.com/launchreel/launchreel/internal/plan"
)

// Phase names where a frame sits relative to a boundary window.
type Phase string

const (
	PhaseNone     Phase = "none"
	PhaseExiting  Phase = "exiting"
	PhaseOverlap  Phase = "overlap"
	PhaseEntering Phase = "entering"
)

// Stage is one scene's pose during the overlap. Clip is a left-edge wipe
// position in percent; 100 means fully revealed.
type Stage struct {
	Opacity    float64 `json:"opacity"`
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	Clip       float64 `json:"clip"`
}

// Pair holds both sides of a boundary at one progress value.
type Pair struct {
	Exit  Stage `json:"exit"`
	Enter Stage `json:"enter"`
}

func neutral() Stage {
	return Stage{Opacity: 1, Scale: 1, Clip: 100}
}

// Evaluate returns the exit and enter stages for a transition at
// progress in [0,1] across the overlap window. An empty kind is a hard
// cut: both sides hold their neutral pose.
func Evaluate(kind plan.TransitionKind, progress float64) Pair {
	p := clamp01(progress)

	switch kind {
	case plan.TransitionFade:
		return Pair{
			Exit:  Stage{Opacity: 1 - p, Scale: 1, Clip: 100},
			Enter: Stage{Opacity: p, Scale: 1, Clip: 100},
		}

	case plan.TransitionSlide:
		// Exit pushes left as enter arrives from the right, both at
		// full width in percent of the canvas.
		eased := easeInOutCubic(p)
		return Pair{
			Exit:  Stage{Opacity: 1, Scale: 1, TranslateX: -100 * eased, Clip: 100},
			Enter: Stage{Opacity: 1, Scale: 1, TranslateX: 100 * (1 - eased), Clip: 100},
		}

	case plan.TransitionWipe:
		eased := easeInOutCubic(p)
		return Pair{
			Exit:  neutral(),
			Enter: Stage{Opacity: 1, Scale: 1, Clip: eased * 100},
		}

	case plan.TransitionZoomThrough:
		return zoomThrough(p)

	default:
		return Pair{Exit: neutral(), Enter: neutral()}
	}
}

// zoomThrough blasts the exiting scene toward the viewer while the entering
// scene grows up from a point. The curves are deliberately asymmetric: the
// entering side is fully opaque by 50% progress while the exiting side does
// not vanish until 80%, so the boundary never shows an empty frame.
func zoomThrough(p float64) Pair {
	exitFade := clamp01(p / 0.8)
	exitOpacity := 1 - exitFade*exitFade

	enterFade := clamp01(p / 0.5)

	return Pair{
		Exit: Stage{
			Opacity: exitOpacity,
			Scale:   1 + 4*p,
			Clip:    100,
		},
		Enter: Stage{
			Opacity: enterFade,
			Scale:   0.2 + 0.8*easeOutCubic(p),
			Clip:    100,
		},
	}
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
