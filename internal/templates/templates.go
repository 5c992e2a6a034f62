// Package templates loads the built-in launch video templates. A template
// is a YAML scene skeleton with a fixed total runtime; instantiating one
// produces a full plan with the brand substituted into its text slots.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/launchreel/launchreel/internal/plan"
)

// Template is one authored video skeleton.
type Template struct {
	ID                   string      `yaml:"id"`
	Name                 string      `yaml:"name"`
	TotalDurationSeconds float64     `yaml:"total_duration_seconds"`
	Scenes               []SceneSpec `yaml:"scenes"`
}

// SceneSpec is the template-side shape of a scene. Text slots may contain
// the {brand} placeholder.
type SceneSpec struct {
	Kind        plan.SceneKind      `yaml:"kind"`
	Duration    float64             `yaml:"duration"`
	Transition  plan.TransitionKind `yaml:"transition,omitempty"`
	CameraMove  plan.CameraMove     `yaml:"camera_move,omitempty"`
	CameraAngle plan.CameraAngle    `yaml:"camera_angle,omitempty"`
	Headline    string              `yaml:"headline,omitempty"`
	Subtext     string              `yaml:"subtext,omitempty"`
}

// Library holds every loaded template, keyed by ID.
type Library struct {
	templates map[string]*Template
}

// Load reads every .yaml template under dir.
func Load(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir: %w", err)
	}

	lib := &Library{templates: make(map[string]*Template)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		tpl, err := loadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := lib.templates[tpl.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", tpl.ID)
		}
		lib.templates[tpl.ID] = tpl
	}
	return lib, nil
}

func loadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	if err := tpl.validate(); err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return &tpl, nil
}

func (t *Template) validate() error {
	if t.ID == "" {
		return fmt.Errorf("missing id")
	}
	if t.TotalDurationSeconds <= 0 {
		return fmt.Errorf("total duration must be positive")
	}
	if len(t.Scenes) == 0 {
		return fmt.Errorf("template has no scenes")
	}
	for i, sc := range t.Scenes {
		if sc.Duration <= 0 {
			return fmt.Errorf("scene %d has non-positive duration", i)
		}
	}
	return nil
}

// Get returns a template by ID.
func (l *Library) Get(id string) (*Template, bool) {
	tpl, ok := l.templates[id]
	return tpl, ok
}

// List returns every template sorted by ID.
func (l *Library) List() []*Template {
	out := make([]*Template, 0, len(l.templates))
	for _, tpl := range l.templates {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Instantiate builds a plan from the template with the brand substituted
// into every text slot. The template's total runtime is recorded on the
// plan so the scheduler pins it even as scene durations are edited.
func (t *Template) Instantiate(brandName, brandColor string) *plan.VideoPlan {
	p := &plan.VideoPlan{
		BrandName:  brandName,
		BrandColor: brandColor,
		TemplateID: t.ID,
	}

	for i, spec := range t.Scenes {
		scene := plan.VideoScene{
			SceneBase: plan.SceneBase{
				ID:          i + 1,
				Kind:        spec.Kind,
				Duration:    spec.Duration,
				Transition:  spec.Transition,
				CameraMove:  spec.CameraMove,
				CameraAngle: spec.CameraAngle,
			},
		}
		if spec.Kind == plan.KindKineticText || spec.Kind == plan.KindCTAFinale {
			scene.Content = fillContent(spec, brandName)
		}
		p.Scenes = append(p.Scenes, scene)
	}
	return p
}

func fillContent(spec SceneSpec, brandName string) plan.SceneContent {
	headline := strings.ReplaceAll(spec.Headline, "{brand}", brandName)
	subtext := strings.ReplaceAll(spec.Subtext, "{brand}", brandName)

	if spec.Kind == plan.KindCTAFinale {
		return &plan.CTAFinaleContent{Headline: headline, ButtonText: subtext}
	}
	return &plan.KineticTextContent{Headline: headline, Subtext: subtext}
}

// TotalFrames converts the template's pinned runtime to frames.
func (t *Template) TotalFrames(fps int) int {
	return int(t.TotalDurationSeconds * float64(fps))
}
