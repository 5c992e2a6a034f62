package plan

import "fmt"

// SceneContent is the kind-specific half of a scene. Each implementation
// carries only the fields its renderer actually reads.
type SceneContent interface {
	ContentKind() SceneKind
}

// newContent returns a zero content value for the given kind, or nil when
// the kind is not one this build knows.
func newContent(kind SceneKind) SceneContent {
	switch kind {
	case KindKineticText:
		return &KineticTextContent{}
	case KindUIMockup:
		return &UIMockupContent{}
	case KindIsometric:
		return &IsometricContent{}
	case KindDeviceShowcase:
		return &DeviceShowcaseContent{}
	case KindDataVisualization:
		return &DataVisualizationContent{}
	case KindCTAFinale:
		return &CTAFinaleContent{}
	case KindBentoGrid:
		return &BentoGridContent{}
	case KindDeviceCloud:
		return &DeviceCloudContent{}
	case KindSocialProof:
		return &SocialProofContent{}
	case KindFlatScreenshot:
		return &FlatScreenshotContent{}
	default:
		return nil
	}
}

type KineticTextContent struct {
	Headline  string `json:"headline"`
	Subtext   string `json:"subtext,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

func (*KineticTextContent) ContentKind() SceneKind { return KindKineticText }

type UIMockupContent struct {
	ScreenName string `json:"screen_name"`
	Caption    string `json:"caption,omitempty"`

	// Legacy cursor endpoints, used only when the scene has no
	// choreography.ui cursor path.
	CursorStart *Point `json:"cursor_start,omitempty"`
	CursorEnd   *Point `json:"cursor_end,omitempty"`
}

func (*UIMockupContent) ContentKind() SceneKind { return KindUIMockup }

// IsometricContent describes an illustration as a typed shape list instead
// of raw markup. Shapes arriving from the plan generator are validated
// against a fixed vocabulary before rendering — AI output never reaches the
// renderer as opaque markup.
type IsometricContent struct {
	Prompt string        `json:"prompt,omitempty"`
	Shapes []VectorShape `json:"shapes,omitempty"`
}

func (*IsometricContent) ContentKind() SceneKind { return KindIsometric }

// VectorShape is one primitive in an isometric illustration. Coordinates
// are percentages of the scene canvas.
type VectorShape struct {
	Shape    string  `json:"shape"` // "rect", "circle", "polygon", "line"
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w,omitempty"`
	H        float64 `json:"h,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Color    string  `json:"color,omitempty"`
}

var validShapes = map[string]bool{
	"rect":    true,
	"circle":  true,
	"polygon": true,
	"line":    true,
}

func (c *IsometricContent) validateShapes() error {
	for i, sh := range c.Shapes {
		if !validShapes[sh.Shape] {
			return fmt.Errorf("shape %d has unsupported type %q", i, sh.Shape)
		}
	}
	return nil
}

type DeviceShowcaseContent struct {
	Device        string `json:"device"` // "phone", "laptop", "tablet"
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}

func (*DeviceShowcaseContent) ContentKind() SceneKind { return KindDeviceShowcase }

// DataVisualizationContent animates a counter from Start to End. The
// counter value at a frame is driven by the keyframe interpolator when
// Track is present, otherwise it ramps linearly over the scene.
type DataVisualizationContent struct {
	Label  string     `json:"label"`
	Start  float64    `json:"start"`
	End    float64    `json:"end"`
	Prefix string     `json:"prefix,omitempty"`
	Suffix string     `json:"suffix,omitempty"`
	Track  []Keyframe `json:"track,omitempty"`
}

func (*DataVisualizationContent) ContentKind() SceneKind { return KindDataVisualization }

type CTAFinaleContent struct {
	Headline   string `json:"headline"`
	ButtonText string `json:"button_text,omitempty"`
	URL        string `json:"url,omitempty"`
}

func (*CTAFinaleContent) ContentKind() SceneKind { return KindCTAFinale }

type BentoGridContent struct {
	Cells []BentoCell `json:"cells"`
}

type BentoCell struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Span  int    `json:"span,omitempty"` // grid columns, default 1
}

func (*BentoGridContent) ContentKind() SceneKind { return KindBentoGrid }

type DeviceCloudContent struct {
	ScreenshotURLs []string `json:"screenshot_urls"`
}

func (*DeviceCloudContent) ContentKind() SceneKind { return KindDeviceCloud }

type SocialProofContent struct {
	Quotes []Quote `json:"quotes"`
}

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
	Role   string `json:"role,omitempty"`
}

func (*SocialProofContent) ContentKind() SceneKind { return KindSocialProof }

type FlatScreenshotContent struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

func (*FlatScreenshotContent) ContentKind() SceneKind { return KindFlatScreenshot }
