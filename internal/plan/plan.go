package plan

import (
	"encoding/json"
	"fmt"
)

// SceneKind discriminates the scene union. Each kind has its own content
// struct; unknown kinds are preserved verbatim so a plan authored against a
// newer schema still round-trips.
type SceneKind string

const (
	KindKineticText       SceneKind = "kinetic_text"
	KindUIMockup          SceneKind = "ui_mockup"
	KindIsometric         SceneKind = "isometric_illustration"
	KindDeviceShowcase    SceneKind = "device_showcase"
	KindDataVisualization SceneKind = "data_visualization"
	KindCTAFinale         SceneKind = "cta_finale"
	KindBentoGrid         SceneKind = "bento_grid"
	KindDeviceCloud       SceneKind = "device_cloud"
	KindSocialProof       SceneKind = "social_proof"
	KindFlatScreenshot    SceneKind = "flat_screenshot"
)

// CameraMove is a named preset animation used when a scene carries no
// explicit camera choreography.
type CameraMove string

const (
	MoveStatic   CameraMove = "static"
	MoveOrbit    CameraMove = "orbit"
	MoveHeroZoom CameraMove = "hero_zoom"
	MoveDolly    CameraMove = "dolly_zoom"
	MoveParallax CameraMove = "parallax"
	MoveRack     CameraMove = "rack_focus"
	MovePanLeft  CameraMove = "pan_left"
	MovePanRight CameraMove = "pan_right"
	MoveZoomIn   CameraMove = "zoom_in"
	MoveZoomOut  CameraMove = "zoom_out"
)

// CameraAngle seeds the default camera pose. When a scene has choreography,
// the angle-derived defaults fill any track the choreography leaves empty.
type CameraAngle string

const (
	AngleFront        CameraAngle = "front"
	AngleThreeQuarter CameraAngle = "three_quarter"
	AngleTopDown      CameraAngle = "top_down"
	AngleLow          CameraAngle = "low"
)

// TransitionKind selects the boundary strategy into a scene.
// Empty means hard cut.
type TransitionKind string

const (
	TransitionNone        TransitionKind = ""
	TransitionFade        TransitionKind = "fade"
	TransitionSlide       TransitionKind = "slide"
	TransitionWipe        TransitionKind = "wipe"
	TransitionZoomThrough TransitionKind = "zoom_through"
)

// VideoPlan is the single source of truth for a launch video: brand styling
// plus an ordered scene sequence. Scene order defines playback order.
// Revision is bumped on every accepted edit and acts as the staleness token
// for in-flight media synthesis results.
type VideoPlan struct {
	BrandName  string       `json:"brand_name"`
	BrandColor string       `json:"brand_color"`
	TemplateID string       `json:"template_id,omitempty"`
	Revision   int          `json:"revision,omitempty"`
	Scenes     []VideoScene `json:"scenes"`
}

// SceneBase holds the fields every scene kind shares. The numeric ID is NOT
// a unique key — duplicate and reorder operations may produce collisions —
// list position is the authoritative identity.
type SceneBase struct {
	ID          int            `json:"id"`
	Kind        SceneKind      `json:"kind"`
	Duration    float64        `json:"duration"` // seconds
	Transition  TransitionKind `json:"transition,omitempty"`
	CameraMove  CameraMove     `json:"camera_move,omitempty"`
	CameraAngle CameraAngle    `json:"camera_angle,omitempty"`

	Choreography *Choreography     `json:"choreography,omitempty"`
	Elements     []FloatingElement `json:"elements,omitempty"`

	// Media synthesized asynchronously. All optional: the renderer degrades
	// to silence and a gradient background when they are absent.
	VoiceoverScript    string `json:"voiceover_script,omitempty"`
	VoiceoverURL       string `json:"voiceover_url,omitempty"`
	BackgroundPrompt   string `json:"background_prompt,omitempty"`
	BackgroundVideoURL string `json:"background_video_url,omitempty"`
	BackgroundImageURL string `json:"background_image_url,omitempty"`

	// MediaGeneration is incremented each time synthesis is requested for
	// this scene. Results tagged with an older generation are discarded.
	MediaGeneration int `json:"media_generation,omitempty"`
}

// VideoScene is one timed segment of the video: shared base fields plus
// kind-specific content.
type VideoScene struct {
	SceneBase
	Content SceneContent `json:"-"`

	// rawContent preserves the content document of kinds this build does
	// not know, so foreign plans survive a round trip.
	rawContent json.RawMessage
}

// sceneEnvelope is the wire shape: base fields inline, content nested.
type sceneEnvelope struct {
	SceneBase
	Content json.RawMessage `json:"content,omitempty"`
}

// MarshalJSON flattens the base fields and nests the kind-specific content.
func (s VideoScene) MarshalJSON() ([]byte, error) {
	env := sceneEnvelope{SceneBase: s.SceneBase}

	switch {
	case s.Content != nil:
		data, err := json.Marshal(s.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s content: %w", s.Kind, err)
		}
		env.Content = data
	case s.rawContent != nil:
		env.Content = s.rawContent
	}

	return json.Marshal(env)
}

// UnmarshalJSON decodes the envelope and dispatches the content document to
// the struct matching the scene kind. Unknown kinds keep their content as
// raw bytes; the renderer later falls back to the kinetic-text renderer for
// them, but the data is never lost.
func (s *VideoScene) UnmarshalJSON(data []byte) error {
	var env sceneEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	s.SceneBase = env.SceneBase
	s.Content = nil
	s.rawContent = nil

	content := newContent(env.Kind)
	if content == nil {
		if len(env.Content) > 0 {
			s.rawContent = append(json.RawMessage(nil), env.Content...)
		}
		return nil
	}

	if len(env.Content) > 0 {
		if err := json.Unmarshal(env.Content, content); err != nil {
			return fmt.Errorf("failed to parse %s content: %w", env.Kind, err)
		}
	}
	s.Content = content
	return nil
}

// Validate checks the plan invariants: at least one scene, every duration
// positive, and vector content limited to the sanctioned shape set.
func (p *VideoPlan) Validate() error {
	if len(p.Scenes) == 0 {
		return fmt.Errorf("plan has no scenes")
	}
	for i := range p.Scenes {
		sc := &p.Scenes[i]
		if sc.Duration <= 0 {
			return fmt.Errorf("scene %d (%s) has non-positive duration %.2f", i, sc.Kind, sc.Duration)
		}
		if v, ok := sc.Content.(*IsometricContent); ok {
			if err := v.validateShapes(); err != nil {
				return fmt.Errorf("scene %d: %w", i, err)
			}
		}
	}
	return nil
}

// Clone deep-copies the plan through its JSON form. The plan document is
// required to round-trip losslessly, so this is exact.
func (p *VideoPlan) Clone() (*VideoPlan, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	var out VideoPlan
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan copy: %w", err)
	}
	return &out, nil
}
