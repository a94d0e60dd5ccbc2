package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-markov/markov"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 120 || cfg.BasePitch != 60 || cfg.TimeSignature != 4 || cfg.Subdivisions != 4 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Boosts != markov.DefaultBoosts() {
		t.Errorf("boosts = %+v", cfg.Boosts)
	}
	if cfg.Repeat.StartChance != 0.5 || cfg.Repeat.EndChance != 0.4 {
		t.Errorf("repeat = %+v", cfg.Repeat)
	}
}

func TestLoadFileMissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 120 || cfg.Melody.Instrument != "piano" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `tempo: 90
key: 7
repeat:
  enabled: false
  start_chance: 0.2
  end_chance: 0.9
  policy: single
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Tempo != 90 || cfg.Key != 7 {
		t.Errorf("tempo/key = %g/%d", cfg.Tempo, cfg.Key)
	}
	if cfg.Repeat.Policy != markov.SingleOpen || cfg.Repeat.Enabled {
		t.Errorf("repeat = %+v", cfg.Repeat)
	}
	// untouched keys keep defaults
	if cfg.BasePitch != 60 || cfg.TimeSignature != 4 || cfg.Melody.Measures != 8 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("tempo: [1, 2\n"), 0644)
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected parse error")
	}

	invalidPath := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalidPath, []byte("tempo: -3\n"), 0644)
	if _, err := LoadFile(invalidPath); !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Tempo = 72
	cfg.Seed = 99
	cfg.Melody.Durations = []int{2, 4}
	cfg.Harmonies = append(cfg.Harmonies, HarmonyConfig{
		Mute:       true,
		Range:      markov.Range{Low: -24, High: -12},
		Durations:  []int{4, 8},
		Instrument: "tuba",
	})
	cfg.Boosts.OnBeat = 0
	if err := cfg.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Tempo != 72 || got.Seed != 99 || len(got.Melody.Durations) != 2 {
		t.Errorf("got %+v", got)
	}
	if len(got.Harmonies) != 2 || !got.Harmonies[1].Mute || got.Harmonies[1].Instrument != "tuba" {
		t.Errorf("harmonies = %+v", got.Harmonies)
	}
	if got.Boosts.OnBeat != 0 || got.Boosts.Match != 100 {
		t.Errorf("boosts = %+v", got.Boosts)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tempo", func(c *Config) { c.Tempo = 0 }},
		{"key too high", func(c *Config) { c.Key = 12 }},
		{"negative key", func(c *Config) { c.Key = -1 }},
		{"time signature", func(c *Config) { c.TimeSignature = 0 }},
		{"subdivisions", func(c *Config) { c.Subdivisions = 0 }},
		{"measures", func(c *Config) { c.Melody.Measures = 0 }},
		{"inverted range", func(c *Config) { c.Melody.Range = markov.Range{Low: 3, High: 1} }},
		{"no durations", func(c *Config) { c.Melody.Durations = nil }},
		{"zero duration", func(c *Config) { c.Harmonies[0].Durations = []int{0} }},
		{"pitch above 127", func(c *Config) { c.BasePitch = 120 }},
		{"pitch below 0", func(c *Config) { c.BasePitch = 5 }},
		{"boost", func(c *Config) { c.Boosts.Close = -2 }},
		{"start chance", func(c *Config) { c.Repeat.StartChance = 1.5 }},
		{"end chance", func(c *Config) { c.Repeat.EndChance = -0.1 }},
		{"policy", func(c *Config) { c.Repeat.Policy = "sometimes" }},
		{"velocity", func(c *Config) { c.Player.Velocity = 200 }},
		{"too many voices", func(c *Config) {
			for len(c.Harmonies) < 16 {
				c.Harmonies = append(c.Harmonies, c.Harmonies[0])
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestPlan(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Key = 5
	cfg.Harmonies = append(cfg.Harmonies, HarmonyConfig{
		Mute: true, Range: markov.Range{Low: -5, High: 0}, Durations: []int{4}, Instrument: "organ",
	})

	plan := cfg.Plan()
	if plan.Tempo != 120 || plan.BasePitch != 60 {
		t.Errorf("plan = %+v", plan)
	}
	if plan.Melody.Key != 5 || plan.Melody.TimeSignature != 4 || plan.Melody.Subdivisions != 4 {
		t.Errorf("melody = %+v", plan.Melody)
	}
	if len(plan.Harmonies) != 1 {
		t.Errorf("%d harmonies, muted voice should be dropped", len(plan.Harmonies))
	}
	if plan.Repeat == nil || plan.Repeat.Policy != markov.Nested {
		t.Errorf("repeat = %+v", plan.Repeat)
	}

	cfg.Repeat.Enabled = false
	if cfg.Plan().Repeat != nil {
		t.Error("disabled repeat should give a nil option")
	}
}

func TestPlanComposes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Melody.Measures = 4
	p, err := markov.Compose(cfg.Plan(), markov.NewRandSource(3))
	if err != nil {
		t.Fatal(err)
	}
	if p.NumSequences() != 2 {
		t.Errorf("%d sequences, want 2", p.NumSequences())
	}
}
