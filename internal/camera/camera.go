package camera

import (
	"math"

	"github.com/launchreel/launchreel/internal/anim"
	"github.com/launchreel/launchreel/internal/plan"
)

// Mode records which branch produced a camera state, because the two modes
// compose their transforms in different orders (3D rotation and translation
// do not commute).
type Mode string

const (
	// ModeChoreographed composes rotateX → rotateY → translateZ.
	ModeChoreographed Mode = "choreographed"
	// ModePreset composes scale → rotateX → rotateY → legacy move transform.
	ModePreset Mode = "preset"
)

// State is the camera pose for one frame of one scene. Camera state is
// strictly per-scene: it is derived only from the local frame, so it resets
// at every scene boundary. The drift fields are the exception — they follow
// the absolute frame and keep moving through static holds.
type State struct {
	Mode Mode `json:"mode"`

	Scale      float64 `json:"scale"`
	RotateX    float64 `json:"rotate_x"`    // degrees
	RotateY    float64 `json:"rotate_y"`    // degrees
	TranslateX float64 `json:"translate_x"` // px
	TranslateY float64 `json:"translate_y"` // px
	TranslateZ float64 `json:"translate_z"` // px
	Blur       float64 `json:"blur"`        // px, rack focus only

	DriftX   float64 `json:"drift_x"`   // px
	DriftY   float64 `json:"drift_y"`   // px
	DriftRot float64 `json:"drift_rot"` // degrees
}

// Term is one step of the transform composition, in application order.
type Term struct {
	Op    string  `json:"op"`
	Value float64 `json:"value"`
}

// ParallaxFactors are the depth multipliers applied to the base offsets for
// the three parallax layers (background, midground, foreground).
var ParallaxFactors = [3]float64{0.5, 1.0, 1.5}

// ParallaxLayer is one depth layer's resolved offset.
type ParallaxLayer struct {
	Factor     float64 `json:"factor"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	TranslateZ float64 `json:"translate_z"`
}

// ParallaxLayers expands the pose's base offsets into the three depth
// layers, back to front.
func (s State) ParallaxLayers() []ParallaxLayer {
	out := make([]ParallaxLayer, len(ParallaxFactors))
	for i, f := range ParallaxFactors {
		out[i] = ParallaxLayer{
			Factor:     f,
			TranslateX: s.TranslateX * f,
			TranslateY: s.TranslateY * f,
			TranslateZ: s.TranslateZ * f,
		}
	}
	return out
}

// zoom track values are unitless (1.0 = neutral); the choreographed camera
// expresses zoom as a dolly, so the value is mapped to a Z translation.
const zoomToTranslateZ = 400.0

// Resolve computes the camera pose for a scene at a local frame. When the
// scene carries camera choreography, the keyframe tracks drive the pose and
// any empty track falls back to the angle-derived default — a choreography
// may override a single axis. Otherwise the named preset move applies.
// absFrame is the global playhead frame, used only by the ambient drift.
func Resolve(scene *plan.VideoScene, localFrame, durFrames, absFrame, fps int) State {
	var s State

	if ch := cameraChoreography(scene); ch != nil {
		s = resolveChoreographed(scene, ch, localFrame, durFrames, fps)
	} else {
		s = resolvePreset(scene.CameraMove, localFrame, durFrames)
	}

	// Ambient drift: a low-amplitude breathing motion keyed to the
	// absolute frame. Never gated by scene progress so the camera stays
	// alive during holds.
	af := float64(absFrame)
	s.DriftX = math.Sin(af*0.021) * 3.0
	s.DriftY = math.Cos(af*0.017) * 2.2
	s.DriftRot = math.Sin(af*0.009) * 0.4

	return s
}

func cameraChoreography(scene *plan.VideoScene) *plan.CameraChoreography {
	if scene.Choreography == nil {
		return nil
	}
	return scene.Choreography.Camera
}

func resolveChoreographed(scene *plan.VideoScene, ch *plan.CameraChoreography, localFrame, durFrames, fps int) State {
	defZoom, defRotX, defRotY := angleDefaults(scene.CameraAngle)

	opts := anim.Options{UseSpring: ch.UseSpring, FPS: fps}
	lf, df := float64(localFrame), float64(durFrames)

	zoom := anim.Interpolate(lf, df, ch.Zoom, defZoom, opts)
	rotX := anim.Interpolate(lf, df, ch.RotateX, defRotX, opts)
	rotY := anim.Interpolate(lf, df, ch.RotateY, defRotY, opts)

	return State{
		Mode:       ModeChoreographed,
		Scale:      1,
		RotateX:    rotX,
		RotateY:    rotY,
		TranslateZ: (zoom - 1) * zoomToTranslateZ,
	}
}

// angleDefaults maps a named camera angle to its resting pose. These seed
// the interpolator's default values, so a choreography that keyframes only
// zoom still inherits the angle's tilt.
func angleDefaults(angle plan.CameraAngle) (zoom, rotX, rotY float64) {
	switch angle {
	case plan.AngleThreeQuarter:
		return 1.05, -8, 14
	case plan.AngleTopDown:
		return 1.1, -32, 0
	case plan.AngleLow:
		return 1.05, 12, -6
	default: // front
		return 1, 0, 0
	}
}

// Terms returns the transform composition in application order. Order
// matters: rotating then translating along Z produces a different pose
// than the reverse.
func (s State) Terms() []Term {
	if s.Mode == ModeChoreographed {
		return []Term{
			{Op: "rotateX", Value: s.RotateX},
			{Op: "rotateY", Value: s.RotateY},
			{Op: "translateZ", Value: s.TranslateZ},
		}
	}
	return []Term{
		{Op: "scale", Value: s.Scale},
		{Op: "rotateX", Value: s.RotateX},
		{Op: "rotateY", Value: s.RotateY},
		{Op: "translateX", Value: s.TranslateX},
		{Op: "translateY", Value: s.TranslateY},
		{Op: "translateZ", Value: s.TranslateZ},
	}
}
