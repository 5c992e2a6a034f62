package plan

// Keyframe is one control point on an animated track. Frame is a percentage
// (0-100) of the owning scene's duration, not an absolute frame — the
// interpolator converts it against the scene's frame count. Easing, when
// set, is the cubic-bezier control quad applied to the segment that ENDS at
// this keyframe.
type Keyframe struct {
	Frame  float64     `json:"frame"` // 0-100, percent of scene duration
	Value  float64     `json:"value"`
	Easing *[4]float64 `json:"easing,omitempty"`
}

// Point is a percent coordinate resolved against the scene's pixel canvas.
type Point struct {
	X float64 `json:"x"` // 0-100, percent of composition width
	Y float64 `json:"y"` // 0-100, percent of composition height
}

// PathPoint is a timed percent coordinate on a cursor path.
type PathPoint struct {
	Frame float64 `json:"frame"` // 0-100, percent of scene duration
	X     float64 `json:"x"`     // 0-100, percent of composition width
	Y     float64 `json:"y"`     // 0-100, percent of composition height
}

// Choreography is the optional per-scene override bundle. Any sub-document
// may be absent; absent means "use the scene's preset behavior".
type Choreography struct {
	Camera *CameraChoreography `json:"camera,omitempty"`
	UI     *UIChoreography     `json:"ui,omitempty"`
	Audio  *AudioChoreography  `json:"audio,omitempty"`
}

// CameraChoreography carries independent keyframe tracks for the camera
// axes. A track left empty falls back to the scene's angle-derived default,
// so a choreography can override a single axis.
type CameraChoreography struct {
	Zoom      []Keyframe `json:"zoom,omitempty"`
	RotateX   []Keyframe `json:"rotate_x,omitempty"`
	RotateY   []Keyframe `json:"rotate_y,omitempty"`
	UseSpring bool       `json:"use_spring,omitempty"`
}

// UIChoreography drives the simulated pointer and its discrete actions.
type UIChoreography struct {
	CursorPath []PathPoint `json:"cursor_path,omitempty"`
	Actions    []UIAction  `json:"actions,omitempty"`
}

// UIAction is a discrete event fired at a point in the scene.
type UIAction struct {
	Frame   float64 `json:"frame"` // 0-100, percent of scene duration
	Type    string  `json:"type"`  // "click"
	X       float64 `json:"x"`     // 0-100, percent of composition width
	Y       float64 `json:"y"`     // 0-100, percent of composition height
	Payload string  `json:"payload,omitempty"`
}

// AudioChoreography lists the scene's sound effects.
type AudioChoreography struct {
	Events []AudioEvent `json:"events,omitempty"`
}

// AudioEvent positions a sound effect within its owning scene. Frame is a
// percentage of the scene duration; the scheduler converts it to a global
// frame by adding the scene's start offset.
type AudioEvent struct {
	Frame  float64 `json:"frame"` // 0-100, percent of scene duration
	Type   string  `json:"type"`  // "sfx"
	File   string  `json:"file"`
	Volume float64 `json:"volume,omitempty"`
}

// FloatingElement is a small overlay widget composited above scene content.
// Delay is wall-clock milliseconds — the one field not already in frame or
// percent units — and is converted to frames exactly once, at composition
// time, via DelayFrames.
type FloatingElement struct {
	Type           string   `json:"type"` // "stat_card", "notification", "badge"
	Text           string   `json:"text,omitempty"`
	Value          float64  `json:"value,omitempty"`
	Label          string   `json:"label,omitempty"`
	Position       Position `json:"position"`
	DelayMs        int      `json:"delay_ms"`
	AnimationStyle string   `json:"animation_style,omitempty"` // "float", "pop", "slide_up"
	Color          string   `json:"color,omitempty"`
}

// Position anchors an overlay by percent offsets from the canvas edges.
type Position struct {
	Top  float64 `json:"top"`  // 0-100, percent of composition height
	Left float64 `json:"left"` // 0-100, percent of composition width
}

// DelayFrames converts the millisecond delay to frames at the given rate.
func (f FloatingElement) DelayFrames(fps int) int {
	return f.DelayMs * fps / 1000
}
