package markov

import (
	"fmt"

	"go-markov/debug"
	"go-markov/music"
)

// HarmonyOptions configures a voice written against the existing notes
type HarmonyOptions struct {
	Range        Range
	Durations    []int // in subdivisions
	Subdivisions int   // subdivisions per beat
	Instrument   string
}

func (o HarmonyOptions) validate() error {
	if o.Range.High < o.Range.Low {
		return fmt.Errorf("%w: empty pitch range %d..%d", ErrInvalidOptions, o.Range.Low, o.Range.High)
	}
	return validateDurations(o.Durations, o.Subdivisions)
}

// harmonyFeatures add consonance and spacing against the concurrent pitches.
// With nothing sounding both scores are zero.
func (g *Generator) harmonyFeatures(key, prev int, others []int) []Feature[int] {
	avg := func(test func(hp, p int) bool) func(int) float64 {
		return func(hp int) float64 {
			if len(others) == 0 {
				return 0
			}
			hits := 0
			for _, p := range others {
				if test(hp, p) {
					hits++
				}
			}
			return float64(hits) / float64(len(others))
		}
	}

	features := g.pitchFeatures(key, prev)
	return append(features,
		Feature[int]{Boost: g.Boosts.Match, Score: avg(Consonant)},
		Feature[int]{Boost: g.Boosts.Spaced, Score: avg(func(hp, p int) bool { return abs(hp-p) > 5 })},
	)
}

// Harmony walks the piece from beat 0 to its last note and appends a new
// voice whose pitches are chosen against the notes sounding at the same time.
func (g *Generator) Harmony(p *music.Piece, opts HarmonyOptions) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}
	if len(p.Notes) == 0 {
		return 0, music.ErrEmptyPiece
	}
	if p.NumSequences() >= music.MaxSequences {
		return 0, music.ErrTooManySequences
	}
	if p.TimeSignature < 1 {
		return 0, fmt.Errorf("%w: piece time signature is %d", ErrInvalidOptions, p.TimeSignature)
	}

	end := p.End()
	perMeasure := opts.Subdivisions * p.TimeSignature
	remaining := perMeasure
	pitches := opts.Range.Pitches()
	prev := noPitch

	var spans []music.Span
	for tick := 0; float64(tick)/float64(opts.Subdivisions) < end; {
		d, err := g.nextDuration(opts.Durations, remaining, opts.Subdivisions)
		if err != nil {
			return 0, err
		}
		remaining -= d
		if remaining <= 0 {
			remaining = perMeasure
		}
		span := gridSpan(0, tick, d, opts.Subdivisions)

		overlaps := p.Overlaps(span.Start, span.End)
		others := make([]int, len(overlaps))
		for i, idx := range overlaps {
			others[i] = p.Notes[idx].Pitch
		}
		debug.LogEvery(16, "harmony", "beat %.2f: %d concurrent notes", span.Start, len(others))

		hp, err := Choose(g.Source, pitches, g.harmonyFeatures(p.Key, prev, others)...)
		if err != nil {
			return 0, fmt.Errorf("choose harmony pitch: %w", err)
		}
		prev = hp

		span.Pitch = hp
		spans = append(spans, span)
		tick += d
	}

	seq, err := p.AddSpans(spans, opts.Instrument)
	if err != nil {
		return 0, err
	}
	debug.Log("harmony", "seq %d (%s): %d notes over %.2f beats", seq, opts.Instrument, len(spans), end)
	return seq, nil
}
