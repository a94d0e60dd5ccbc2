// Package markov composes pieces by weighted stochastic choice: each next
// pitch and duration is drawn from a distribution shaped by boolean features
// of the candidates (in key, close to the last note, fits the measure, ...).
package markov

import (
	"errors"
	"fmt"

	"go-markov/music"
)

// noPitch is the "previous pitch" before the first note; far enough out of
// range that no closeness or sameness feature can match it.
const noPitch = -1 << 20

var (
	majorScale = [12]bool{0: true, 2: true, 4: true, 5: true, 7: true, 9: true, 11: true}
	consonant  = [12]bool{0: true, 3: true, 4: true, 8: true, 9: true}
)

var ErrInvalidOptions = errors.New("invalid generator options")

// Boosts are the multiplicative weights applied when a feature holds
type Boosts struct {
	InKey       float64 `yaml:"in_key"`       // pitch is in the key
	Close       float64 `yaml:"close"`        // within 4 semitones of the previous pitch
	Different   float64 `yaml:"different"`    // differs from the previous pitch
	Match       float64 `yaml:"match"`        // consonant with concurrent notes
	Spaced      float64 `yaml:"spaced"`       // more than 5 semitones from concurrent notes
	FitsMeasure float64 `yaml:"fits_measure"` // duration ends within the measure
	OnBeat      float64 `yaml:"on_beat"`      // duration starts or ends on a beat
}

// DefaultBoosts returns the stock weighting
func DefaultBoosts() Boosts {
	return Boosts{
		InKey:       10,
		Close:       10,
		Different:   5,
		Match:       100,
		Spaced:      10,
		FitsMeasure: 100,
		OnBeat:      10,
	}
}

// Validate rejects boosts that could make a weight negative. The first bad
// boost in declaration order is reported.
func (b Boosts) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"in_key", b.InKey},
		{"close", b.Close},
		{"different", b.Different},
		{"match", b.Match},
		{"spaced", b.Spaced},
		{"fits_measure", b.FitsMeasure},
		{"on_beat", b.OnBeat},
	} {
		if f.value < -1 {
			return fmt.Errorf("%w: boost %s is %g, must be >= -1", ErrInvalidOptions, f.name, f.value)
		}
	}
	return nil
}

// Range is an inclusive range of pitch offsets
type Range struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Pitches lists every pitch in the range
func (r Range) Pitches() []int {
	if r.High < r.Low {
		return nil
	}
	pitches := make([]int, 0, r.High-r.Low+1)
	for p := r.Low; p <= r.High; p++ {
		pitches = append(pitches, p)
	}
	return pitches
}

// Generator holds the immutable weighting and the random source for a run
type Generator struct {
	Boosts Boosts
	Source Source
}

// New creates a generator
func New(src Source, boosts Boosts) *Generator {
	return &Generator{Boosts: boosts, Source: src}
}

// InKey reports whether pitch belongs to the major scale on key
func InKey(pitch, key int) bool {
	return majorScale[mod12(pitch-key)]
}

// Consonant reports whether two pitches form a unison, third or sixth (octave equivalent)
func Consonant(a, b int) bool {
	return consonant[mod12(a-b)]
}

func mod12(n int) int {
	return ((n % 12) + 12) % 12
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// pitchFeatures are shared by melody and harmony
func (g *Generator) pitchFeatures(key, prev int) []Feature[int] {
	return []Feature[int]{
		Predicate(g.Boosts.InKey, func(p int) bool { return InKey(p, key) }),
		Predicate(g.Boosts.Close, func(p int) bool { return abs(p-prev) < 5 }),
		Predicate(g.Boosts.Different, func(p int) bool { return p != prev }),
	}
}

// durationFeatures favor durations that stay in the measure and land on beats.
// remaining and durations are in subdivisions.
func (g *Generator) durationFeatures(remaining, subdivisions int) []Feature[int] {
	return []Feature[int]{
		Predicate(g.Boosts.FitsMeasure, func(d int) bool { return d <= remaining }),
		Predicate(g.Boosts.OnBeat, func(d int) bool {
			return (remaining-d)%subdivisions == 0 || remaining%subdivisions == 0
		}),
	}
}

// nextDuration draws a duration and truncates it at the bar line
func (g *Generator) nextDuration(durations []int, remaining, subdivisions int) (int, error) {
	d, err := Choose(g.Source, durations, g.durationFeatures(remaining, subdivisions)...)
	if err != nil {
		return 0, fmt.Errorf("choose duration: %w", err)
	}
	return min(d, remaining), nil
}

// gridSpan places a note of d subdivisions at tick. Positions are divided
// out from integer ticks so they never drift off the grid.
func gridSpan(pitch, tick, d, subdivisions int) music.Span {
	return music.Span{
		Pitch: pitch,
		Start: float64(tick) / float64(subdivisions),
		End:   float64(tick+d) / float64(subdivisions),
	}
}

func validateDurations(durations []int, subdivisions int) error {
	if subdivisions < 1 {
		return fmt.Errorf("%w: subdivisions must be >= 1, got %d", ErrInvalidOptions, subdivisions)
	}
	if len(durations) == 0 {
		return fmt.Errorf("%w: no durations", ErrInvalidOptions)
	}
	for _, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: duration %d must be positive", ErrInvalidOptions, d)
		}
	}
	return nil
}
