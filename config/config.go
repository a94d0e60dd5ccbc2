package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"go-markov/markov"
	"go-markov/music"
)

var ErrInvalid = errors.New("invalid config")

// MelodyConfig defines the lead voice
type MelodyConfig struct {
	Measures   int          `yaml:"measures"`
	Range      markov.Range `yaml:"range"`
	Durations  []int        `yaml:"durations"` // in subdivisions
	Instrument string       `yaml:"instrument"`
}

// HarmonyConfig defines one voice written against the notes before it
type HarmonyConfig struct {
	Mute       bool         `yaml:"mute,omitempty"`
	Range      markov.Range `yaml:"range"`
	Durations  []int        `yaml:"durations"`
	Instrument string       `yaml:"instrument"`
}

// RepeatConfig controls the repetition pass
type RepeatConfig struct {
	Enabled     bool          `yaml:"enabled"`
	StartChance float64       `yaml:"start_chance"`
	EndChance   float64       `yaml:"end_chance"`
	Policy      markov.Policy `yaml:"policy"`
}

// PlayerConfig stores the MIDI output preferences
type PlayerConfig struct {
	Port     string `yaml:"port,omitempty"`
	Velocity uint8  `yaml:"velocity"`
}

// Config is the main configuration structure
type Config struct {
	Tempo         float64         `yaml:"tempo"`
	BasePitch     int             `yaml:"base_pitch"`
	Key           int             `yaml:"key"`
	TimeSignature int             `yaml:"time_signature"`
	Subdivisions  int             `yaml:"subdivisions"` // per beat
	Seed          uint64          `yaml:"seed,omitempty"`
	Output        string          `yaml:"output"`
	Melody        MelodyConfig    `yaml:"melody"`
	Harmonies     []HarmonyConfig `yaml:"harmonies,omitempty"`
	Boosts        markov.Boosts   `yaml:"boosts"`
	Repeat        RepeatConfig    `yaml:"repeat"`
	Player        PlayerConfig    `yaml:"player"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tempo:         120,
		BasePitch:     60,
		Key:           0,
		TimeSignature: 4,
		Subdivisions:  4,
		Output:        "markov.mid",
		Melody: MelodyConfig{
			Measures:   8,
			Range:      markov.Range{Low: 0, High: 12},
			Durations:  []int{1, 2, 3, 4},
			Instrument: "piano",
		},
		Harmonies: []HarmonyConfig{
			{
				Range:      markov.Range{Low: -12, High: 0},
				Durations:  []int{1, 2, 3, 4},
				Instrument: "piano",
			},
		},
		Boosts: markov.DefaultBoosts(),
		Repeat: RepeatConfig{
			Enabled:     true,
			StartChance: 0.5,
			EndChance:   0.4,
			Policy:      markov.Nested,
		},
		Player: PlayerConfig{
			Velocity: 120,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-markov"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Keys missing from the file keep their
// default values; a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Marshal renders the config as YAML
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports the first setting that cannot produce a piece
func (c *Config) Validate() error {
	if c.Tempo <= 0 {
		return invalid("tempo must be positive, got %g", c.Tempo)
	}
	if c.Key < 0 || c.Key > 11 {
		return invalid("key must be 0-11, got %d", c.Key)
	}
	if c.TimeSignature < 1 {
		return invalid("time signature must be >= 1, got %d", c.TimeSignature)
	}
	if c.Subdivisions < 1 {
		return invalid("subdivisions must be >= 1, got %d", c.Subdivisions)
	}
	if c.Melody.Measures < 1 {
		return invalid("melody measures must be >= 1, got %d", c.Melody.Measures)
	}
	if err := c.checkVoice("melody", c.Melody.Range, c.Melody.Durations); err != nil {
		return err
	}
	for i, h := range c.Harmonies {
		if err := c.checkVoice(fmt.Sprintf("harmony %d", i+1), h.Range, h.Durations); err != nil {
			return err
		}
	}
	if n := 1 + len(c.Harmonies); n > music.MaxSequences {
		return invalid("%d voices, at most %d allowed", n, music.MaxSequences)
	}
	if err := c.Boosts.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Repeat.StartChance < 0 || c.Repeat.StartChance > 1 {
		return invalid("repeat start chance %g outside [0,1]", c.Repeat.StartChance)
	}
	if c.Repeat.EndChance < 0 || c.Repeat.EndChance > 1 {
		return invalid("repeat end chance %g outside [0,1]", c.Repeat.EndChance)
	}
	switch c.Repeat.Policy {
	case markov.Nested, markov.SingleOpen:
	default:
		return invalid("unknown repeat policy %q", c.Repeat.Policy)
	}
	if c.Player.Velocity > 127 {
		return invalid("player velocity %d above 127", c.Player.Velocity)
	}
	return nil
}

func (c *Config) checkVoice(name string, r markov.Range, durations []int) error {
	if r.High < r.Low {
		return invalid("%s range %d..%d is empty", name, r.Low, r.High)
	}
	if low, high := c.BasePitch+r.Low, c.BasePitch+r.High; low < 0 || high > 127 {
		return invalid("%s pitches %d..%d outside 0-127", name, low, high)
	}
	if len(durations) == 0 {
		return invalid("%s has no durations", name)
	}
	for _, d := range durations {
		if d <= 0 {
			return invalid("%s duration %d must be positive", name, d)
		}
	}
	return nil
}

// Plan turns the config into a composition plan. Muted harmonies are left out.
func (c *Config) Plan() markov.Plan {
	plan := markov.Plan{
		Tempo:     c.Tempo,
		BasePitch: c.BasePitch,
		Boosts:    c.Boosts,
		Melody: markov.MelodyOptions{
			Measures:      c.Melody.Measures,
			TimeSignature: c.TimeSignature,
			Key:           c.Key,
			Range:         c.Melody.Range,
			Durations:     c.Melody.Durations,
			Subdivisions:  c.Subdivisions,
			Instrument:    c.Melody.Instrument,
		},
	}
	for _, h := range c.Harmonies {
		if h.Mute {
			continue
		}
		plan.Harmonies = append(plan.Harmonies, markov.HarmonyOptions{
			Range:        h.Range,
			Durations:    h.Durations,
			Subdivisions: c.Subdivisions,
			Instrument:   h.Instrument,
		})
	}
	if c.Repeat.Enabled {
		plan.Repeat = &markov.RepeatOptions{
			StartChance: c.Repeat.StartChance,
			EndChance:   c.Repeat.EndChance,
			Policy:      c.Repeat.Policy,
		}
	}
	return plan
}
