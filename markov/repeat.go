package markov

import (
	"fmt"
	"math"
	"slices"

	"go-markov/debug"
	"go-markov/music"
)

// Policy decides whether repeats may open while another is still open
type Policy string

const (
	// Nested lets a new repeat start while earlier ones are unclosed
	Nested Policy = "nested"
	// SingleOpen waits for the open repeat to close before starting another
	SingleOpen Policy = "single"
)

// measureTolerance lets a measure count as complete when its notes end just short of the bar line
const measureTolerance = 0.1

// RepeatOptions configures the repetition pass
type RepeatOptions struct {
	StartChance float64 // per measure
	EndChance   float64 // per measure, only while a repeat is open
	Policy      Policy
}

func (o RepeatOptions) validate() error {
	if o.StartChance < 0 || o.StartChance > 1 {
		return fmt.Errorf("%w: start chance %g outside [0,1]", ErrInvalidOptions, o.StartChance)
	}
	if o.EndChance < 0 || o.EndChance > 1 {
		return fmt.Errorf("%w: end chance %g outside [0,1]", ErrInvalidOptions, o.EndChance)
	}
	switch o.Policy {
	case Nested, SingleOpen:
	default:
		return fmt.Errorf("%w: unknown repeat policy %q", ErrInvalidOptions, o.Policy)
	}
	return nil
}

// Measure is an index range [First, Last] into notes sorted by start
type Measure struct {
	First, Last int
}

// FindMeasures groups sorted notes into measures of length beats. A group
// whose last note stops short of the bar line (a trailing partial measure) is dropped.
func FindMeasures(notes []music.Note, length float64) []Measure {
	var measures []Measure
	i := 0
	for i < len(notes) {
		first := i
		on := notes[i].Start
		for i < len(notes) && notes[i].Start-on < length {
			i++
		}
		last := i - 1
		if notes[last].End-on >= length-measureTolerance {
			measures = append(measures, Measure{First: first, Last: last})
		}
	}
	return measures
}

// PlaceRepeats decides, measure by measure, where repeats start and end.
// Starts are first-note indices, ends last-note indices. Starts left open
// at the end close at lastIndex.
func PlaceRepeats(src Source, measures []Measure, lastIndex int, opts RepeatOptions) (starts, ends []int) {
	for _, m := range measures {
		open := len(starts) > len(ends)
		if (opts.Policy == Nested || !open) && Chance(src, opts.StartChance) {
			starts = append(starts, m.First)
		}
		if len(starts) > len(ends) && Chance(src, opts.EndChance) {
			ends = append(ends, m.Last)
		}
	}
	for len(ends) < len(starts) {
		ends = append(ends, lastIndex)
	}
	return starts, ends
}

// Splice duplicates each repeated passage, latest start first. For start s
// it takes the earliest unused end e > s, keeps notes[..e] and appends a
// copy of notes[s..] delayed by the passage length rounded to whole measures.
// Starts with no usable end are skipped and counted.
func Splice(notes []music.Note, starts, ends []int, length float64) ([]music.Note, int) {
	ends = slices.Clone(ends)
	used := make([]bool, len(ends))
	skipped := 0

	for j := len(starts) - 1; j >= 0; j-- {
		s := starts[j]
		k := -1
		for i, e := range ends {
			if !used[i] && e > s && e < len(notes) {
				k = i
				break
			}
		}
		if k < 0 || s < 0 || s >= len(notes) {
			debug.Log("repeat", "no end for start %d, skipping", s)
			skipped++
			continue
		}
		used[k] = true
		e := ends[k]

		delay := math.RoundToEven((notes[e].Start-notes[s].Start)/length) * length

		next := make([]music.Note, 0, e+1+len(notes)-s)
		next = append(next, notes[:e+1]...)
		for _, n := range notes[s:] {
			next = append(next, n.Shift(delay))
		}

		// notes after e moved back by the inserted passage
		inserted := e - s + 1
		for i := range ends {
			if !used[i] && ends[i] >= e {
				ends[i] += inserted
			}
		}
		debug.Log("repeat", "repeat [%d, %d] delayed %.2f beats, %d -> %d notes", s, e, delay, len(notes), len(next))
		notes = next
	}
	return notes, skipped
}

// Repeat sorts the piece's notes and layers repeated passages onto it
func (g *Generator) Repeat(p *music.Piece, opts RepeatOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if len(p.Notes) == 0 {
		return nil
	}
	if p.TimeSignature < 1 {
		return fmt.Errorf("%w: piece time signature is %d", ErrInvalidOptions, p.TimeSignature)
	}

	p.Sort()
	length := p.MeasureLength()
	measures := FindMeasures(p.Notes, length)
	starts, ends := PlaceRepeats(g.Source, measures, len(p.Notes)-1, opts)
	debug.Log("repeat", "%d measures, starts=%v ends=%v", len(measures), starts, ends)

	notes, skipped := Splice(p.Notes, starts, ends, length)
	if skipped > 0 {
		debug.Log("repeat", "skipped %d unmatched starts", skipped)
	}
	p.Notes = notes
	return nil
}
