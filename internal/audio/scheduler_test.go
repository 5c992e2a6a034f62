package audio

import (
	"testing"

	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/timeline"
)

func twoScenePlan() *plan.VideoPlan {
	return &plan.VideoPlan{
		BrandName:  "Acme",
		BrandColor: "#4F46E5",
		Scenes: []plan.VideoScene{
			{SceneBase: plan.SceneBase{ID: 1, Kind: plan.KindKineticText, Duration: 3}},
			{
				SceneBase: plan.SceneBase{
					ID: 2, Kind: plan.KindUIMockup, Duration: 2,
					Choreography: &plan.Choreography{
						Audio: &plan.AudioChoreography{
							Events: []plan.AudioEvent{
								{Frame: 50, Type: "sfx", File: "ui_click_soft.wav", Volume: 0.8},
							},
						},
					},
				},
			},
		},
	}
}

func TestScheduleMapsEventToGlobalFrame(t *testing.T) {
	p := twoScenePlan()
	sched := timeline.New(p, 30)

	cues := Schedule(p, sched)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}

	// Scene 2 starts at global frame 90 and runs 60 frames; an event at
	// 50% lands at 90 + 30 = 120.
	cue := cues[0]
	if cue.StartFrame != 120 {
		t.Errorf("expected start frame 120, got %d", cue.StartFrame)
	}
	if cue.File != "click.mp3" {
		t.Errorf("keyword match should resolve to click.mp3, got %s", cue.File)
	}
	if cue.Volume != 0.8 {
		t.Errorf("expected event volume 0.8, got %v", cue.Volume)
	}
}

func TestCueClippedAtSceneBoundary(t *testing.T) {
	p := twoScenePlan()
	p.Scenes[1].Choreography.Audio.Events[0] = plan.AudioEvent{
		Frame: 90, Type: "sfx", File: "big_success_fanfare.mp3",
	}
	sched := timeline.New(p, 30)

	cues := Schedule(p, sched)
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}

	// 90% of 60 frames = global 144; a 36-frame success cue would run to
	// 180, past the scene boundary at 150.
	if cues[0].StartFrame != 144 {
		t.Errorf("expected start 144, got %d", cues[0].StartFrame)
	}
	if cues[0].EndFrame != 150 {
		t.Errorf("cue should be clipped at frame 150, got %d", cues[0].EndFrame)
	}
}

func TestResolveCategoryFallsBack(t *testing.T) {
	cases := []struct {
		name string
		file string
		want string
	}{
		{"whoosh keyword", "transition_whoosh_02.mp3", "whoosh.mp3"},
		{"chime keyword", "Notification-Chime.wav", "chime.mp3"},
		{"hallucinated name", "laser_blast_9000.mp3", "click.mp3"},
		{"empty name", "", "click.mp3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCategory(tc.file); got.File != tc.want {
				t.Errorf("ResolveCategory(%q) = %s, expected %s", tc.file, got.File, tc.want)
			}
		})
	}
}

func TestDefaultVolumeApplied(t *testing.T) {
	p := twoScenePlan()
	p.Scenes[1].Choreography.Audio.Events[0].Volume = 0

	cues := Schedule(p, timeline.New(p, 30))
	if cues[0].Volume != DefaultSFXVolume {
		t.Errorf("zero volume should fall back to %v, got %v", DefaultSFXVolume, cues[0].Volume)
	}
}

func TestGainFadesAtEdges(t *testing.T) {
	cue := Cue{File: "click.mp3", StartFrame: 100, EndFrame: 120, Volume: 0.8, FadeFrames: 4}

	if g := cue.GainAt(99); g != 0 {
		t.Errorf("expected silence before the cue, got %v", g)
	}
	if g := cue.GainAt(100); g != 0 {
		t.Errorf("fade-in should start from zero, got %v", g)
	}
	if g := cue.GainAt(102); g != 0.4 {
		t.Errorf("expected half gain two frames in, got %v", g)
	}
	if g := cue.GainAt(110); g != 0.8 {
		t.Errorf("expected full gain mid-cue, got %v", g)
	}
	if g := cue.GainAt(118); g != 0.4 {
		t.Errorf("expected half gain two frames from the end, got %v", g)
	}
	if g := cue.GainAt(120); g != 0 {
		t.Errorf("expected silence at cue end, got %v", g)
	}
}

func TestBedIsConstantAndLooping(t *testing.T) {
	bed := DefaultBed()
	if !bed.Loop {
		t.Error("bed must loop")
	}
	if bed.Volume != BedVolume {
		t.Errorf("expected bed volume %v, got %v", BedVolume, bed.Volume)
	}
}
