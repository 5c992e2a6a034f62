package plan

import (
	"encoding/json"
	"strings"
	"testing"
)

func samplePlan() *VideoPlan {
	return &VideoPlan{
		BrandName:  "Acme",
		BrandColor: "#4f46e5",
		Scenes: []VideoScene{
			{
				SceneBase: SceneBase{ID: 1, Kind: KindKineticText, Duration: 3, Transition: TransitionFade, CameraMove: MoveHeroZoom},
				Content:   &KineticTextContent{Headline: "Ship faster", Subtext: "Acme does the boring parts"},
			},
			{
				SceneBase: SceneBase{
					ID: 2, Kind: KindUIMockup, Duration: 4,
					Choreography: &Choreography{
						UI: &UIChoreography{
							CursorPath: []PathPoint{{Frame: 0, X: 10, Y: 10}, {Frame: 80, X: 60, Y: 40}},
							Actions:    []UIAction{{Frame: 80, Type: "click", X: 60, Y: 40}},
						},
						Audio: &AudioChoreography{
							Events: []AudioEvent{{Frame: 80, Type: "sfx", File: "click.mp3", Volume: 0.6}},
						},
					},
				},
				Content: &UIMockupContent{ScreenName: "dashboard"},
			},
			{
				SceneBase: SceneBase{ID: 3, Kind: KindCTAFinale, Duration: 2,
					Elements: []FloatingElement{{Type: "badge", Text: "New", Position: Position{Top: 10, Left: 80}, DelayMs: 500}},
				},
				Content: &CTAFinaleContent{Headline: "Try Acme", ButtonText: "Start free"},
			},
		},
	}
}

func TestPlanRoundTrip(t *testing.T) {
	p := samplePlan()

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("failed to marshal plan: %v", err)
	}

	var back VideoPlan
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("failed to unmarshal plan: %v", err)
	}

	if len(back.Scenes) != len(p.Scenes) {
		t.Fatalf("expected %d scenes, got %d", len(p.Scenes), len(back.Scenes))
	}
	for i := range p.Scenes {
		if back.Scenes[i].Kind != p.Scenes[i].Kind {
			t.Errorf("scene %d: expected kind %s, got %s", i, p.Scenes[i].Kind, back.Scenes[i].Kind)
		}
		if back.Scenes[i].Duration != p.Scenes[i].Duration {
			t.Errorf("scene %d: duration changed: %v -> %v", i, p.Scenes[i].Duration, back.Scenes[i].Duration)
		}
	}

	kt, ok := back.Scenes[0].Content.(*KineticTextContent)
	if !ok {
		t.Fatalf("scene 0 content has wrong type %T", back.Scenes[0].Content)
	}
	if kt.Headline != "Ship faster" {
		t.Errorf("headline lost in round trip: %q", kt.Headline)
	}

	ui := back.Scenes[1].Choreography.UI
	if ui == nil || len(ui.CursorPath) != 2 || ui.CursorPath[1].X != 60 {
		t.Errorf("cursor path lost in round trip: %+v", ui)
	}

	// Second round trip must be byte-identical to the first.
	again, err := json.Marshal(&back)
	if err != nil {
		t.Fatalf("failed to re-marshal plan: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("round trip is not stable:\nfirst:  %s\nsecond: %s", data, again)
	}
}

func TestUnknownSceneKindPreserved(t *testing.T) {
	raw := `{"brand_name":"Acme","brand_color":"#000","scenes":[
		{"id":1,"kind":"kinetic_text","duration":2,"content":{"headline":"hi"}},
		{"id":2,"kind":"hologram_stage","duration":3,"content":{"beam_color":"cyan","depth":7}}
	]}`

	var p VideoPlan
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("failed to parse plan with unknown kind: %v", err)
	}

	if p.Scenes[1].Content != nil {
		t.Errorf("unknown kind should have nil typed content, got %T", p.Scenes[1].Content)
	}

	data, err := json.Marshal(&p)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var back VideoPlan
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("failed to reparse: %v", err)
	}
	out, _ := json.Marshal(back.Scenes[1])
	if want := `"beam_color":"cyan"`; !strings.Contains(string(out), want) {
		t.Errorf("unknown content dropped: %s", out)
	}
}

func TestValidate(t *testing.T) {
	p := &VideoPlan{}
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty plan")
	}

	p = samplePlan()
	if err := p.Validate(); err != nil {
		t.Errorf("valid plan rejected: %v", err)
	}

	p.Scenes[1].Duration = 0
	if err := p.Validate(); err == nil {
		t.Error("expected error for zero duration")
	}

	p = samplePlan()
	p.Scenes[0].Content = &IsometricContent{Shapes: []VectorShape{{Shape: "script"}}}
	if err := p.Validate(); err == nil {
		t.Error("expected error for unsupported shape type")
	}
}
