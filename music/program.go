package music

import (
	"fmt"
	"slices"
)

// Kind is the instruction type. Off sorts before On so a release at time t
// lands ahead of a new onset at the same time.
type Kind int

const (
	Off Kind = iota
	On
	Sleep
)

func (k Kind) String() string {
	switch k {
	case Off:
		return "off"
	case On:
		return "on"
	case Sleep:
		return "sleep"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Instruction is one step of a compiled program.
// On/Off use Sequence and Pitch (absolute); Sleep uses Duration (beats).
type Instruction struct {
	Time     float64
	Kind     Kind
	Sequence int
	Pitch    int
	Duration float64
}

func (in Instruction) String() string {
	if in.Kind == Sleep {
		return fmt.Sprintf("%.3f sleep %.3f", in.Time, in.Duration)
	}
	return fmt.Sprintf("%.3f %s ch%d %d", in.Time, in.Kind, in.Sequence, in.Pitch)
}

// Program is an ordered list of instructions, each On/Off preceded by a Sleep
type Program []Instruction

// Compile flattens the piece's notes into a program. The piece is not modified.
func Compile(p *Piece) Program {
	events := make([]Instruction, 0, 2*len(p.Notes))
	for _, n := range p.Notes {
		pitch := n.Pitch + p.BasePitch
		events = append(events,
			Instruction{Time: n.Start, Kind: On, Sequence: n.Sequence, Pitch: pitch},
			Instruction{Time: n.End, Kind: Off, Sequence: n.Sequence, Pitch: pitch},
		)
	}

	slices.SortStableFunc(events, compareEvents)

	prog := make(Program, 0, 2*len(events))
	clock := 0.0
	for _, ev := range events {
		prog = append(prog, Instruction{Time: clock, Kind: Sleep, Duration: ev.Time - clock})
		prog = append(prog, ev)
		clock = ev.Time
	}
	return prog
}

// compareEvents orders by (time, kind, sequence, pitch)
func compareEvents(a, b Instruction) int {
	switch {
	case a.Time < b.Time:
		return -1
	case a.Time > b.Time:
		return 1
	}
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if a.Sequence != b.Sequence {
		return a.Sequence - b.Sequence
	}
	return a.Pitch - b.Pitch
}

// Length returns the total time of the program in beats
func (prog Program) Length() float64 {
	total := 0.0
	for _, in := range prog {
		if in.Kind == Sleep {
			total += in.Duration
		}
	}
	return total
}

// Count returns how many instructions of the given kind the program has
func (prog Program) Count(k Kind) int {
	n := 0
	for _, in := range prog {
		if in.Kind == k {
			n++
		}
	}
	return n
}
