package camera

import (
	"math"

	"github.com/launchreel/launchreel/internal/plan"
)

// rackFocusRampFrames is how long the rack-focus blur takes to clear.
const rackFocusRampFrames = 20

// resolvePreset evaluates a named camera move as a function of eased scene
// progress. Progress is clamped to [0,1] and shaped with ease-out-cubic,
// matching the feel of the legacy presets.
func resolvePreset(move plan.CameraMove, localFrame, durFrames int) State {
	raw := 0.0
	if durFrames > 0 {
		raw = clamp01(float64(localFrame) / float64(durFrames))
	}
	p := easeOutCubic(raw)

	s := State{Mode: ModePreset, Scale: 1}

	switch move {
	case plan.MoveOrbit:
		// Sinusoidal sweep whose amplitude grows with progress.
		s.RotateY = math.Sin(p*math.Pi*2) * 9 * p
		s.RotateX = math.Cos(p*math.Pi*2) * 4 * p
		s.Scale = 1 + 0.05*p

	case plan.MoveHeroZoom:
		// Monotonic push-in: dolly and scale together.
		s.TranslateZ = p * 220
		s.Scale = 1 + 0.25*p

	case plan.MoveDolly:
		// Dolly-zoom: translate forward while the scale compensates the
		// other way, stretching the background.
		s.TranslateZ = p * 300
		s.Scale = 1 / (1 + 0.35*p)

	case plan.MoveParallax:
		// Base offsets; the compositor multiplies these by ParallaxFactors
		// per depth layer.
		s.TranslateY = -30 * p
		s.TranslateZ = 60 * p

	case plan.MoveRack:
		// Blur clears over the first rackFocusRampFrames while the scale
		// creeps up slightly.
		blurT := clamp01(float64(localFrame) / rackFocusRampFrames)
		s.Blur = 8 * (1 - blurT)
		s.Scale = 1 + 0.04*p

	case plan.MovePanLeft:
		s.TranslateX = -120 * p

	case plan.MovePanRight:
		s.TranslateX = 120 * p

	case plan.MoveZoomIn:
		s.Scale = 1 + 0.18*p

	case plan.MoveZoomOut:
		s.Scale = 1.18 - 0.18*p

	default:
		// static or unknown move: identity pose
	}

	return s
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
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
