package music

import (
	"errors"
	"fmt"
	"slices"
)

// MaxSequences is the channel ceiling of the wire format (4-bit channel field)
const MaxSequences = 16

var (
	ErrTooManySequences = errors.New("too many note sequences")
	ErrEmptyPiece       = errors.New("piece has no notes")
)

// Note is a timed pitch event. Pitch is a semitone offset from the piece's base pitch.
type Note struct {
	Sequence int     `msgpack:"seq"`
	Pitch    int     `msgpack:"pitch"`
	Start    float64 `msgpack:"start"` // beats
	End      float64 `msgpack:"end"`   // beats
}

// Duration returns the note length in beats
func (n Note) Duration() float64 {
	return n.End - n.Start
}

// Shift returns a copy of the note moved by delay beats
func (n Note) Shift(delay float64) Note {
	n.Start += delay
	n.End += delay
	return n
}

// Step is one entry of a voice being appended: wait Offset beats after the
// previous note ends, then sound Pitch for Duration beats.
type Step struct {
	Pitch    int
	Offset   float64
	Duration float64
}

// Span is a note candidate with absolute timing in beats. It is the append
// interface for notes produced outside the generators, such as a transcriber
// emitting (pitch, start, end) triples.
type Span struct {
	Pitch int
	Start float64
	End   float64
}

// Piece holds every voice of a composition plus its global settings.
type Piece struct {
	Tempo         float64  `msgpack:"tempo"`      // beats per minute
	BasePitch     int      `msgpack:"base_pitch"` // absolute pitch of offset 0 (60 = middle C)
	TimeSignature int      `msgpack:"ts"`         // beats per measure
	Key           int      `msgpack:"key"`        // 0-11, 0 = C
	Notes         []Note   `msgpack:"notes"`
	Instruments   []string `msgpack:"instruments"` // one per sequence
}

// NewPiece creates an empty piece with the given tempo
func NewPiece(tempo float64) *Piece {
	return &Piece{
		Tempo:         tempo,
		BasePitch:     60,
		TimeSignature: 4,
		Key:           0,
	}
}

// SecondsPerBeat is derived from Tempo
func (p *Piece) SecondsPerBeat() float64 {
	return 60 / p.Tempo
}

// MeasureLength returns the length of one measure in beats
func (p *Piece) MeasureLength() float64 {
	return float64(p.TimeSignature)
}

// NumSequences returns how many voices have been added
func (p *Piece) NumSequences() int {
	return len(p.Instruments)
}

// AddSequence appends a new voice on the next free channel and returns its
// sequence id. Nothing is changed when the channel ceiling is reached.
func (p *Piece) AddSequence(steps []Step, instrument string) (int, error) {
	spans := make([]Span, len(steps))
	beat := 0.0
	for i, s := range steps {
		if s.Duration <= 0 {
			return 0, fmt.Errorf("step %d: duration must be positive, got %g", i, s.Duration)
		}
		if s.Offset < 0 {
			return 0, fmt.Errorf("step %d: offset must not be negative, got %g", i, s.Offset)
		}
		beat += s.Offset
		spans[i] = Span{Pitch: s.Pitch, Start: beat, End: beat + s.Duration}
		beat += s.Duration
	}
	return p.AddSpans(spans, instrument)
}

// AddSpans appends a new voice whose notes already carry absolute positions.
// Generators working on a subdivision grid use it so positions stay exact
// instead of accumulating rounding error.
func (p *Piece) AddSpans(spans []Span, instrument string) (int, error) {
	if p.NumSequences() >= MaxSequences {
		return 0, fmt.Errorf("%w: limit is %d", ErrTooManySequences, MaxSequences)
	}
	for i, s := range spans {
		if s.Start < 0 {
			return 0, fmt.Errorf("span %d: start must not be negative, got %g", i, s.Start)
		}
		if s.End <= s.Start {
			return 0, fmt.Errorf("span %d: end %g must be after start %g", i, s.End, s.Start)
		}
	}

	seq := p.NumSequences()
	for _, s := range spans {
		p.Notes = append(p.Notes, Note{
			Sequence: seq,
			Pitch:    s.Pitch,
			Start:    s.Start,
			End:      s.End,
		})
	}
	p.Instruments = append(p.Instruments, instrument)
	return seq, nil
}

// Overlaps returns the indices of notes whose interval intersects [start, end].
// Touching intervals count as overlapping.
func (p *Piece) Overlaps(start, end float64) []int {
	var indices []int
	for i, n := range p.Notes {
		if n.End >= start && n.Start <= end {
			indices = append(indices, i)
		}
	}
	return indices
}

// Sort orders notes by start beat, keeping insertion order for ties
func (p *Piece) Sort() {
	slices.SortStableFunc(p.Notes, func(a, b Note) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
}

// End returns the last end beat across all notes
func (p *Piece) End() float64 {
	end := 0.0
	for _, n := range p.Notes {
		end = max(end, n.End)
	}
	return end
}

// Duration returns the playing time in seconds
func (p *Piece) Duration() float64 {
	return p.End() * p.SecondsPerBeat()
}

// Sequence returns the notes of one voice in their current order
func (p *Piece) Sequence(seq int) []Note {
	var notes []Note
	for _, n := range p.Notes {
		if n.Sequence == seq {
			notes = append(notes, n)
		}
	}
	return notes
}

// PitchRange returns the lowest and highest absolute pitch in the piece
func (p *Piece) PitchRange() (lo, hi int, err error) {
	if len(p.Notes) == 0 {
		return 0, 0, ErrEmptyPiece
	}
	lo, hi = p.Notes[0].Pitch, p.Notes[0].Pitch
	for _, n := range p.Notes[1:] {
		lo = min(lo, n.Pitch)
		hi = max(hi, n.Pitch)
	}
	return lo + p.BasePitch, hi + p.BasePitch, nil
}

// Clone returns a deep copy
func (p *Piece) Clone() *Piece {
	c := *p
	c.Notes = slices.Clone(p.Notes)
	c.Instruments = slices.Clone(p.Instruments)
	return &c
}
