// Package cursor drives the simulated pointer in UI mockup scenes. It is a
// pure function of (scene, frame): choreographed paths interpolate literal
// keyframe points, while scenes without a path fall back to a single arcing
// sweep from the content's start point to its end point.
package cursor

import (
	"math"

	"github.com/launchreel/launchreel/internal/anim"
	"github.com/launchreel/launchreel/internal/plan"
)

const (
	// legacyTravelFrames bounds the fallback sweep. The sweep always takes
	// this long regardless of scene duration, so short scenes still show a
	// deliberate motion instead of a teleport.
	legacyTravelFrames = 60

	legacyClickAtFrame = 70
	legacyClickWindow  = 20

	agenticClickWindow = 10

	// legacyArc is the perpendicular offset of the bezier control point,
	// as a fraction of the straight-line distance.
	legacyArc = 0.25
)

// State is the pointer's pose at one frame, in pixel coordinates.
type State struct {
	Visible bool
	X       float64
	Y       float64

	// Clicking is set while the frame falls inside a click window.
	// ClickProgress runs 0..1 across that window and drives the
	// scale-down plus expanding-ring visual.
	Clicking      bool
	ClickProgress float64
}

// Resolve computes the pointer state for one frame of a scene. Width and
// height are the composition canvas; percent coordinates in the plan are
// resolved against them. Scenes without cursor data return an invisible
// state.
func Resolve(scene *plan.VideoScene, localFrame, durFrames, width, height int) State {
	if scene == nil || scene.Kind != plan.KindUIMockup {
		return State{}
	}

	if ui := uiChoreography(scene); ui != nil && len(ui.CursorPath) > 0 {
		return resolveAgentic(scene, ui, localFrame, durFrames, width, height)
	}

	content, ok := scene.Content.(*plan.UIMockupContent)
	if !ok || content.CursorStart == nil || content.CursorEnd == nil {
		return State{}
	}
	return resolveLegacy(scene, content, localFrame, width, height)
}

func uiChoreography(scene *plan.VideoScene) *plan.UIChoreography {
	if scene.Choreography == nil {
		return nil
	}
	return scene.Choreography.UI
}

func resolveAgentic(scene *plan.VideoScene, ui *plan.UIChoreography, localFrame, durFrames, width, height int) State {
	xs := make([]plan.Keyframe, 0, len(ui.CursorPath))
	ys := make([]plan.Keyframe, 0, len(ui.CursorPath))
	for _, p := range ui.CursorPath {
		xs = append(xs, plan.Keyframe{Frame: p.Frame, Value: p.X})
		ys = append(ys, plan.Keyframe{Frame: p.Frame, Value: p.Y})
	}

	lf, df := float64(localFrame), float64(durFrames)
	x := anim.Interpolate(lf, df, xs, 50, anim.Options{})
	y := anim.Interpolate(lf, df, ys, 50, anim.Options{})

	st := State{
		Visible: true,
		X:       x / 100 * float64(width),
		Y:       y / 100 * float64(height),
	}

	for _, action := range ui.Actions {
		if action.Type != "click" {
			continue
		}
		clickFrame := action.Frame / 100 * df
		if lf >= clickFrame && lf < clickFrame+agenticClickWindow {
			st.Clicking = true
			st.ClickProgress = (lf - clickFrame) / agenticClickWindow
			break
		}
	}
	return st
}

// resolveLegacy sweeps the pointer along a quadratic bezier whose control
// point sits perpendicular to the start-end line. The arc side is derived
// from the scene ID so the curve is stable across seeks and re-renders.
func resolveLegacy(scene *plan.VideoScene, content *plan.UIMockupContent, localFrame, width, height int) State {
	sx := content.CursorStart.X / 100 * float64(width)
	sy := content.CursorStart.Y / 100 * float64(height)
	ex := content.CursorEnd.X / 100 * float64(width)
	ey := content.CursorEnd.Y / 100 * float64(height)

	t := clamp01(float64(localFrame) / legacyTravelFrames)

	dx, dy := ex-sx, ey-sy
	dist := math.Hypot(dx, dy)

	cx := (sx + ex) / 2
	cy := (sy + ey) / 2
	if dist > 0 {
		sign := 1.0
		if scene.ID%2 == 0 {
			sign = -1.0
		}
		cx += -dy / dist * dist * legacyArc * sign
		cy += dx / dist * dist * legacyArc * sign
	}

	inv := 1 - t
	st := State{
		Visible: true,
		X:       inv*inv*sx + 2*inv*t*cx + t*t*ex,
		Y:       inv*inv*sy + 2*inv*t*cy + t*t*ey,
	}

	lf := float64(localFrame)
	if lf >= legacyClickAtFrame && lf < legacyClickAtFrame+legacyClickWindow {
		st.Clicking = true
		st.ClickProgress = (lf - legacyClickAtFrame) / legacyClickWindow
	}
	return st
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
