// Package render exports a composition as a render manifest: a
// deterministic JSON document holding the frame-by-frame state of the
// whole video plus the audio schedule. A headless rasterizer consumes
// the manifest to paint frames without re-deriving any choreography.
package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/launchreel/launchreel/internal/audio"
	"github.com/launchreel/launchreel/internal/compose"
	"github.com/launchreel/launchreel/internal/plan"
)

// ManifestVersion is bumped whenever the manifest shape changes in a way
// a rasterizer must know about.
const ManifestVersion = 1

// SceneEntry summarizes one scene's window in global frames.
type SceneEntry struct {
	Index          int                 `json:"index"`
	ID             int                 `json:"id"`
	Kind           plan.SceneKind      `json:"kind"`
	StartFrame     int                 `json:"start_frame"`
	DurationFrames int                 `json:"duration_frames"`
	Transition     plan.TransitionKind `json:"transition,omitempty"`
}

// Manifest is the complete export: composition metadata, the scene table,
// the audio schedule and every frame's render state. Two exports of the
// same plan with the same options are byte-identical.
type Manifest struct {
	Version     int                  `json:"version"`
	FPS         int                  `json:"fps"`
	Width       int                  `json:"width"`
	Height      int                  `json:"height"`
	TotalFrames int                  `json:"total_frames"`
	BrandName   string               `json:"brand_name"`
	BrandColor  string               `json:"brand_color"`
	Scenes      []SceneEntry         `json:"scenes"`
	AudioCues   []audio.Cue          `json:"audio_cues,omitempty"`
	Bed         audio.Bed            `json:"bed"`
	Frames      []compose.FrameState `json:"frames"`
}

// Export builds the full manifest for a plan. opts follows the same
// defaulting rules as compose.New.
func Export(p *plan.VideoPlan, opts compose.Options) (*Manifest, error) {
	c, err := compose.New(p, opts)
	if err != nil {
		return nil, err
	}

	sched := c.Schedule()
	scenes := make([]SceneEntry, sched.SceneCount())
	for i := range scenes {
		scenes[i] = SceneEntry{
			Index:          i,
			ID:             p.Scenes[i].ID,
			Kind:           p.Scenes[i].Kind,
			StartFrame:     sched.StartFrame(i),
			DurationFrames: sched.DurationFrames(i),
			Transition:     p.Scenes[i].Transition,
		}
	}

	total := c.TotalFrames()
	frames := make([]compose.FrameState, total)
	for f := 0; f < total; f++ {
		frames[f] = c.StateAt(f)
	}

	w, h := c.Size()
	return &Manifest{
		Version:     ManifestVersion,
		FPS:         c.FPS(),
		Width:       w,
		Height:      h,
		TotalFrames: total,
		BrandName:   p.BrandName,
		BrandColor:  p.BrandColor,
		Scenes:      scenes,
		AudioCues:   c.AudioCues(),
		Bed:         c.Bed(),
		Frames:      frames,
	}, nil
}

// Write serializes the manifest as indented JSON.
func (m *Manifest) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("render: encode manifest: %w", err)
	}
	return nil
}

// Bytes serializes the manifest for storage upload.
func (m *Manifest) Bytes() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("render: marshal manifest: %w", err)
	}
	return data, nil
}

// StreamFrames writes one frame state per line (NDJSON) without holding
// the whole manifest in memory. Rasterizers that paint incrementally read
// this instead of the monolithic document.
func StreamFrames(w io.Writer, p *plan.VideoPlan, opts compose.Options) error {
	c, err := compose.New(p, opts)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for f := 0; f < c.TotalFrames(); f++ {
		st := c.StateAt(f)
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("render: encode frame %d: %w", f, err)
		}
	}
	return bw.Flush()
}
