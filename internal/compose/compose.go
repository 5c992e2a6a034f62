// Package compose is the composition root: given a plan and a frame
// number it assembles the full render state for that frame by asking the
// timeline, camera, cursor, transition and audio engines. It holds no
// per-frame state, so any frame can be computed independently and out of
// order.
package compose

import (
	"fmt"

	"github.com/launchreel/launchreel/internal/anim"
	"github.com/launchreel/launchreel/internal/audio"
	"github.com/launchreel/launchreel/internal/camera"
	"github.com/launchreel/launchreel/internal/cursor"
	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/timeline"
	"github.com/launchreel/launchreel/internal/transition"
)

const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

// cameraWrapped lists the scene kinds that expect camera-driven framing.
// Every other kind animates its own content and must not be wrapped in a
// second transform.
var cameraWrapped = map[plan.SceneKind]bool{
	plan.KindUIMockup:       true,
	plan.KindDeviceShowcase: true,
	plan.KindIsometric:      true,
	plan.KindFlatScreenshot: true,
	plan.KindDeviceCloud:    true,
}

// overlaySuppressed lists the kinds that draw their own full-bleed card
// layout; stacking floating elements on top of those reads as clutter.
var overlaySuppressed = map[plan.SceneKind]bool{
	plan.KindDataVisualization: true,
	plan.KindBentoGrid:         true,
	plan.KindSocialProof:       true,
}

// renderers is the set of kinds with a dedicated scene renderer. Anything
// outside it falls back to kinetic text rather than failing the frame.
var renderers = map[plan.SceneKind]bool{
	plan.KindKineticText:       true,
	plan.KindUIMockup:          true,
	plan.KindIsometric:         true,
	plan.KindDeviceShowcase:    true,
	plan.KindDataVisualization: true,
	plan.KindCTAFinale:         true,
	plan.KindBentoGrid:         true,
	plan.KindDeviceCloud:       true,
	plan.KindSocialProof:       true,
	plan.KindFlatScreenshot:    true,
}

// Options configures a composition. TotalFrames > 0 pins the runtime to a
// fixed length with scene windows scaled proportionally, which is how
// template-driven plans keep their authored total.
type Options struct {
	FPS         int
	Width       int
	Height      int
	TotalFrames int
}

// Composition binds a plan to a frame geometry. Build one per render; it
// is read-only after New and safe for concurrent StateAt calls.
type Composition struct {
	plan   *plan.VideoPlan
	fps    int
	width  int
	height int
	sched  *timeline.Schedule
	cues   []audio.Cue
}

// New validates the plan and precomputes the schedule and audio cues.
func New(p *plan.VideoPlan, opts Options) (*Composition, error) {
	if p == nil {
		return nil, fmt.Errorf("compose: nil plan")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	if opts.FPS <= 0 {
		opts.FPS = timeline.DefaultFPS
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	var sched *timeline.Schedule
	if opts.TotalFrames > 0 {
		sched = timeline.NewTemplated(p, opts.FPS, opts.TotalFrames)
	} else {
		sched = timeline.New(p, opts.FPS)
	}

	return &Composition{
		plan:   p,
		fps:    opts.FPS,
		width:  opts.Width,
		height: opts.Height,
		sched:  sched,
		cues:   audio.Schedule(p, sched),
	}, nil
}

func (c *Composition) TotalFrames() int             { return c.sched.TotalFrames() }
func (c *Composition) FPS() int                     { return c.fps }
func (c *Composition) Size() (w, h int)             { return c.width, c.height }
func (c *Composition) Schedule() *timeline.Schedule { return c.sched }

// AudioCues returns every scheduled SFX cue in global frames.
func (c *Composition) AudioCues() []audio.Cue { return c.cues }

// Bed returns the looping background track.
func (c *Composition) Bed() audio.Bed { return audio.DefaultBed() }

// Background describes a scene's backdrop layer.
type Background struct {
	Kind string `json:"kind"` // "video", "image", "gradient"
	URL  string `json:"url,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Overlay is one floating element active at the current frame.
type Overlay struct {
	Element    plan.FloatingElement `json:"element"`
	LocalFrame int                  `json:"local_frame"` // frames since the element appeared
}

// Counter is the animated metric of a data-visualization scene at one
// frame. Value is the number to draw; the label and affixes come along so
// a manifest consumer needs no side lookup into the plan.
type Counter struct {
	Label  string  `json:"label,omitempty"`
	Prefix string  `json:"prefix,omitempty"`
	Suffix string  `json:"suffix,omitempty"`
	Value  float64 `json:"value"`
}

// TransitionState describes the boundary window the frame sits in.
type TransitionState struct {
	Kind          plan.TransitionKind `json:"kind"`
	Phase         transition.Phase    `json:"phase"`
	Progress      float64             `json:"progress"`
	ExitingIndex  int                 `json:"exiting_index"`
	EnteringIndex int                 `json:"entering_index"`
	Stages        transition.Pair     `json:"stages"`
}

// FrameState is everything a renderer needs to draw one frame.
type FrameState struct {
	Frame      int              `json:"frame"`
	SceneIndex int              `json:"scene_index"`
	SceneID    int              `json:"scene_id"`
	LocalFrame int              `json:"local_frame"`
	Renderer   plan.SceneKind   `json:"renderer"`
	Background Background       `json:"background"`
	Camera     *camera.State    `json:"camera,omitempty"`
	// CameraTransform is the camera pose flattened into ordered transform
	// terms; consumers apply it verbatim instead of re-deriving the
	// mode-dependent composition order.
	CameraTransform []camera.Term          `json:"camera_transform,omitempty"`
	ParallaxLayers  []camera.ParallaxLayer `json:"parallax_layers,omitempty"`
	Cursor     *cursor.State    `json:"cursor,omitempty"`
	Counter    *Counter         `json:"counter,omitempty"`
	Overlays   []Overlay        `json:"overlays,omitempty"`
	Transition *TransitionState `json:"transition,omitempty"`
}

// StateAt computes the full render state for one global frame.
func (c *Composition) StateAt(frame int) FrameState {
	loc := c.sched.Locate(frame)
	scene := &c.plan.Scenes[loc.SceneIndex]
	durFrames := c.sched.DurationFrames(loc.SceneIndex)

	st := FrameState{
		Frame:      frame,
		SceneIndex: loc.SceneIndex,
		SceneID:    scene.ID,
		LocalFrame: loc.LocalFrame,
		Renderer:   rendererFor(scene.Kind),
		Background: c.backgroundFor(scene),
	}

	if cameraWrapped[scene.Kind] {
		cam := camera.Resolve(scene, loc.LocalFrame, durFrames, frame, c.fps)
		st.Camera = &cam
		st.CameraTransform = cam.Terms()
		if scene.CameraMove == plan.MoveParallax {
			st.ParallaxLayers = cam.ParallaxLayers()
		}
	}

	if cur := cursor.Resolve(scene, loc.LocalFrame, durFrames, c.width, c.height); cur.Visible {
		st.Cursor = &cur
	}

	if dv, ok := scene.Content.(*plan.DataVisualizationContent); ok {
		st.Counter = &Counter{
			Label:  dv.Label,
			Prefix: dv.Prefix,
			Suffix: dv.Suffix,
			Value:  counterValue(dv, loc.LocalFrame, durFrames, c.fps),
		}
	}

	if !overlaySuppressed[scene.Kind] {
		st.Overlays = activeOverlays(scene, loc.LocalFrame, c.fps)
	}

	st.Transition = c.transitionAt(frame, loc.SceneIndex)
	return st
}

// counterValue animates the data-viz metric: the keyframe track drives it
// when present, otherwise it ramps linearly from Start to End over the
// scene, landing exactly on End at the last frame.
func counterValue(dv *plan.DataVisualizationContent, localFrame, durFrames, fps int) float64 {
	if len(dv.Track) > 0 {
		return anim.Interpolate(float64(localFrame), float64(durFrames), dv.Track, dv.Start, anim.Options{FPS: fps})
	}
	if durFrames <= 1 {
		return dv.End
	}
	t := float64(localFrame) / float64(durFrames-1)
	if t > 1 {
		t = 1
	}
	return dv.Start + (dv.End-dv.Start)*t
}

func rendererFor(kind plan.SceneKind) plan.SceneKind {
	if renderers[kind] {
		return kind
	}
	return plan.KindKineticText
}

// backgroundFor picks the richest available backdrop: generated video,
// then generated still, then a brand gradient.
func (c *Composition) backgroundFor(scene *plan.VideoScene) Background {
	if scene.BackgroundVideoURL != "" {
		return Background{Kind: "video", URL: scene.BackgroundVideoURL}
	}
	if scene.BackgroundImageURL != "" {
		return Background{Kind: "image", URL: scene.BackgroundImageURL}
	}
	return Background{Kind: "gradient", From: c.plan.BrandColor, To: "#0B0B14"}
}

func activeOverlays(scene *plan.VideoScene, localFrame, fps int) []Overlay {
	var out []Overlay
	for _, el := range scene.Elements {
		delay := el.DelayFrames(fps)
		if localFrame < delay {
			continue
		}
		out = append(out, Overlay{Element: el, LocalFrame: localFrame - delay})
	}
	return out
}

// transitionAt checks whether the frame falls inside the boundary window
// on either side of the located scene.
func (c *Composition) transitionAt(frame, sceneIndex int) *TransitionState {
	for _, entering := range []int{sceneIndex, sceneIndex + 1} {
		if entering <= 0 || entering >= c.sched.SceneCount() {
			continue
		}
		kind := c.plan.Scenes[entering].Transition
		start, end, ok := c.sched.TransitionSpan(entering, kind)
		if !ok || frame < start || frame >= end {
			continue
		}

		progress := float64(frame-start) / float64(end-start)
		phase := transition.PhaseExiting
		if frame >= c.sched.StartFrame(entering) {
			phase = transition.PhaseEntering
		}

		return &TransitionState{
			Kind:          kind,
			Phase:         phase,
			Progress:      progress,
			ExitingIndex:  entering - 1,
			EnteringIndex: entering,
			Stages:        transition.Evaluate(kind, progress),
		}
	}
	return nil
}
