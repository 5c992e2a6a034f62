package anim

import (
	"sort"

	"github.com/launchreel/launchreel/internal/plan"
)

// Options tunes a single interpolation call. The zero value means standard
// piecewise easing at 30 fps.
type Options struct {
	UseSpring bool
	FPS       int // frames per second, used by spring timing; 0 = 30

	// Spring parameters. Zero values take the defaults below.
	Stiffness float64
	Damping   float64
	Mass      float64
}

const (
	defaultFPS       = 30
	defaultStiffness = 120.0
	defaultDamping   = 18.0
	defaultMass      = 1.0
)

// defaultEasing is the CSS "ease" curve, applied to any segment whose
// target keyframe carries no explicit easing.
var defaultEasing = [4]float64{0.25, 0.1, 0.25, 1}

// Interpolate resolves an animated value at a local frame. Keyframe
// positions are percentages of the scene duration and are converted against
// durationFrames. The list need not arrive sorted; it is treated as sorted
// by frame, and the sort is stable, so when two keyframes collide on the
// same frame the later-declared one wins. Outside the keyframe range the
// boundary value is held — no extrapolation. An empty list returns
// defaultValue.
//
// The function is pure: identical arguments always produce identical
// output, which is what makes scrubbing and parallel frame-by-frame export
// safe.
func Interpolate(localFrame, durationFrames float64, keyframes []plan.Keyframe, defaultValue float64, opts Options) float64 {
	if len(keyframes) == 0 {
		return defaultValue
	}
	if durationFrames <= 0 {
		durationFrames = 1
	}

	// Convert percent positions to absolute local frames, preserving
	// declaration order among equal frames.
	type kf struct {
		frame  float64
		value  float64
		easing [4]float64
	}
	frames := make([]kf, len(keyframes))
	for i, k := range keyframes {
		easing := defaultEasing
		if k.Easing != nil {
			easing = *k.Easing
		}
		frames[i] = kf{
			frame:  k.Frame / 100 * durationFrames,
			value:  k.Value,
			easing: easing,
		}
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].frame < frames[j].frame })

	if opts.UseSpring {
		return springValue(localFrame, frames[0].frame, frames[0].value, frames[len(frames)-1].value, opts)
	}

	// Clamp outside the keyframed range.
	if localFrame <= frames[0].frame {
		return frames[0].value
	}
	last := frames[len(frames)-1]
	if localFrame >= last.frame {
		return last.value
	}

	for i := 0; i < len(frames)-1; i++ {
		a, b := frames[i], frames[i+1]
		if localFrame < a.frame || localFrame >= b.frame {
			continue
		}
		span := b.frame - a.frame
		if span <= 0 {
			// Collided keyframes: the later-declared value has already won
			// the segment boundary; nothing to interpolate across.
			return b.value
		}
		t := (localFrame - a.frame) / span
		// The segment eases with the curve attached to its TARGET keyframe.
		eased := CubicBezier(b.easing, t)
		return a.value + (b.value-a.value)*eased
	}

	return last.value
}
