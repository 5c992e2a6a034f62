// Package audio schedules the soundtrack: one looping background bed plus
// per-scene sound effect cues pinned to global frames.
package audio

import (
	"strings"

	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/timeline"
)

const (
	// BedVolume keeps the background bed under the voiceover.
	BedVolume = 0.12

	DefaultSFXVolume = 0.6

	// fadeFrames is the linear ramp at each edge of a cue, just long
	// enough to avoid audible clicks.
	fadeFrames = 4

	defaultCueFrames = 30
)

// Category holds the playback window for one recognized SFX family.
// Generated plans routinely name files that do not exist in the asset
// set, so matching is by keyword and anything unrecognized falls back
// to the default click.
type Category struct {
	Keyword string
	File    string
	Frames  int
}

var categories = []Category{
	{Keyword: "whoosh", File: "whoosh.mp3", Frames: 24},
	{Keyword: "swoosh", File: "whoosh.mp3", Frames: 24},
	{Keyword: "click", File: "click.mp3", Frames: 12},
	{Keyword: "tap", File: "click.mp3", Frames: 12},
	{Keyword: "success", File: "success.mp3", Frames: 36},
	{Keyword: "chime", File: "chime.mp3", Frames: 30},
	{Keyword: "pop", File: "pop.mp3", Frames: 10},
	{Keyword: "ding", File: "chime.mp3", Frames: 30},
	{Keyword: "rise", File: "riser.mp3", Frames: 45},
	{Keyword: "impact", File: "impact.mp3", Frames: 20},
}

var defaultCategory = Category{File: "click.mp3", Frames: defaultCueFrames}

// Cue is one scheduled sound, in global frames.
type Cue struct {
	File       string  `json:"file"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
	Volume     float64 `json:"volume"`
	FadeFrames int     `json:"fade_frames"`
}

// Bed is the always-on background track.
type Bed struct {
	File   string  `json:"file"`
	Volume float64 `json:"volume"`
	Loop   bool    `json:"loop"`
}

// DefaultBed returns the background bed for a render.
func DefaultBed() Bed {
	return Bed{File: "bed_ambient.mp3", Volume: BedVolume, Loop: true}
}

// Schedule flattens every scene's audio events onto the global timeline.
// An event at frame% f in a scene starting at global frame S with D frames
// lands at S + f/100*D. Cues are clipped at the scene boundary rather than
// restitched across it.
func Schedule(p *plan.VideoPlan, sched *timeline.Schedule) []Cue {
	if p == nil || sched == nil {
		return nil
	}

	var cues []Cue
	for i := range p.Scenes {
		events := audioEvents(&p.Scenes[i])
		if len(events) == 0 {
			continue
		}
		start, dur := sched.StartFrame(i), sched.DurationFrames(i)
		for _, ev := range events {
			cues = append(cues, buildCue(ev, start, dur))
		}
	}
	return cues
}

func audioEvents(scene *plan.VideoScene) []plan.AudioEvent {
	if scene.Choreography == nil || scene.Choreography.Audio == nil {
		return nil
	}
	return scene.Choreography.Audio.Events
}

func buildCue(ev plan.AudioEvent, sceneStart, sceneFrames int) Cue {
	cat := ResolveCategory(ev.File)

	global := sceneStart + int(ev.Frame/100*float64(sceneFrames))
	end := global + cat.Frames
	if boundary := sceneStart + sceneFrames; end > boundary {
		end = boundary
	}

	vol := ev.Volume
	if vol <= 0 {
		vol = DefaultSFXVolume
	}

	return Cue{
		File:       cat.File,
		StartFrame: global,
		EndFrame:   end,
		Volume:     vol,
		FadeFrames: fadeFrames,
	}
}

// ResolveCategory maps a requested SFX filename onto a real asset by
// keyword. Unrecognized names get the default cue.
func ResolveCategory(file string) Category {
	name := strings.ToLower(file)
	for _, cat := range categories {
		if strings.Contains(name, cat.Keyword) {
			return cat
		}
	}
	return defaultCategory
}

// GainAt returns the cue's volume at a global frame, with linear fades at
// both edges. Frames outside the cue window are silent.
func (c Cue) GainAt(frame int) float64 {
	if frame < c.StartFrame || frame >= c.EndFrame {
		return 0
	}
	gain := c.Volume
	if c.FadeFrames > 0 {
		if in := frame - c.StartFrame; in < c.FadeFrames {
			gain = c.Volume * float64(in) / float64(c.FadeFrames)
		}
		if out := c.EndFrame - frame; out <= c.FadeFrames {
			g := c.Volume * float64(out) / float64(c.FadeFrames)
			if g < gain {
				gain = g
			}
		}
	}
	return gain
}
