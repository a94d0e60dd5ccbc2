package markov

import (
	"fmt"

	"go-markov/debug"
	"go-markov/music"
)

// MelodyOptions configures one monophonic voice
type MelodyOptions struct {
	Measures      int
	TimeSignature int // beats per measure
	Key           int
	Range         Range
	Durations     []int // in subdivisions
	Subdivisions  int   // subdivisions per beat
	Instrument    string
}

func (o MelodyOptions) validate() error {
	if o.Measures < 1 {
		return fmt.Errorf("%w: measures must be >= 1, got %d", ErrInvalidOptions, o.Measures)
	}
	if o.TimeSignature < 1 {
		return fmt.Errorf("%w: time signature must be >= 1, got %d", ErrInvalidOptions, o.TimeSignature)
	}
	if o.Key < 0 || o.Key > 11 {
		return fmt.Errorf("%w: key must be 0-11, got %d", ErrInvalidOptions, o.Key)
	}
	if o.Range.High < o.Range.Low {
		return fmt.Errorf("%w: empty pitch range %d..%d", ErrInvalidOptions, o.Range.Low, o.Range.High)
	}
	return validateDurations(o.Durations, o.Subdivisions)
}

// Melody generates a voice of exactly opts.Measures measures and appends it to
// the piece as a new sequence. The piece takes the melody's time signature and key.
func (g *Generator) Melody(p *music.Piece, opts MelodyOptions) (int, error) {
	if err := opts.validate(); err != nil {
		return 0, err
	}
	if p.NumSequences() >= music.MaxSequences {
		return 0, music.ErrTooManySequences
	}

	perMeasure := opts.Subdivisions * opts.TimeSignature
	remaining := perMeasure
	pitches := opts.Range.Pitches()
	pitch := noPitch

	var spans []music.Span
	tick := 0 // position in subdivisions
	for measure := 0; measure < opts.Measures; {
		next, err := Choose(g.Source, pitches, g.pitchFeatures(opts.Key, pitch)...)
		if err != nil {
			return 0, fmt.Errorf("choose pitch: %w", err)
		}
		pitch = next

		d, err := g.nextDuration(opts.Durations, remaining, opts.Subdivisions)
		if err != nil {
			return 0, err
		}
		remaining -= d
		if remaining <= 0 {
			remaining = perMeasure
			measure++
		}

		spans = append(spans, gridSpan(pitch, tick, d, opts.Subdivisions))
		tick += d
	}

	seq, err := p.AddSpans(spans, opts.Instrument)
	if err != nil {
		return 0, err
	}
	p.TimeSignature = opts.TimeSignature
	p.Key = opts.Key

	debug.Log("melody", "seq %d (%s): %d notes over %d measures", seq, opts.Instrument, len(spans), opts.Measures)
	return seq, nil
}
