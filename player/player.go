// Package player performs a piece in real time on a MIDI output.
package player

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"go-markov/debug"
	"go-markov/music"
)

// DefaultVelocity is the note on velocity used for playback
const DefaultVelocity = 120

// bankSelect is the MSB bank select controller
const bankSelect = 0

// Player sends a compiled piece to a MIDI sender, sleeping between events
type Player struct {
	Send     func(msg midi.Message) error
	Wait     func(ctx context.Context, d time.Duration) error
	Velocity uint8
	// OnBeat, when set, is called with the current position after every sleep
	OnBeat func(beat float64)
}

// New creates a player that sends through send and sleeps in real time
func New(send func(msg midi.Message) error) *Player {
	return &Player{
		Send:     send,
		Wait:     sleep,
		Velocity: DefaultVelocity,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type voice struct {
	ch, key uint8
}

// Play selects each sequence's patch, then performs the piece. When ctx is
// cancelled every sounding note is released and ctx.Err() is returned.
func (pl *Player) Play(ctx context.Context, p *music.Piece) error {
	if p.Tempo <= 0 {
		return fmt.Errorf("tempo must be positive, got %g", p.Tempo)
	}
	if len(p.Notes) > 0 {
		lo, hi, _ := p.PitchRange()
		if lo < 0 || hi > 127 {
			return fmt.Errorf("pitches %d..%d outside 0-127", lo, hi)
		}
	}

	for ch, patch := range p.Patches() {
		if err := pl.selectPatch(uint8(ch), patch); err != nil {
			return err
		}
	}

	prog := music.Compile(p)
	spb := p.SecondsPerBeat()
	sounding := make(map[voice]int)
	debug.Log("player", "playing %d notes, %.1fs", len(p.Notes), p.Duration())

	for _, in := range prog {
		switch in.Kind {
		case music.Sleep:
			if err := pl.Wait(ctx, time.Duration(in.Duration*spb*float64(time.Second))); err != nil {
				pl.release(sounding)
				return err
			}
			if pl.OnBeat != nil {
				pl.OnBeat(in.Time + in.Duration)
			}
		case music.On:
			v := voice{uint8(in.Sequence), uint8(in.Pitch)}
			if err := pl.Send(midi.NoteOn(v.ch, v.key, pl.Velocity)); err != nil {
				pl.release(sounding)
				return fmt.Errorf("note on: %w", err)
			}
			sounding[v]++
		case music.Off:
			v := voice{uint8(in.Sequence), uint8(in.Pitch)}
			if err := pl.Send(midi.NoteOff(v.ch, v.key)); err != nil {
				pl.release(sounding)
				return fmt.Errorf("note off: %w", err)
			}
			if sounding[v]--; sounding[v] <= 0 {
				delete(sounding, v)
			}
		}
	}
	return nil
}

func (pl *Player) selectPatch(ch uint8, patch music.Patch) error {
	if err := pl.Send(midi.ControlChange(ch, bankSelect, patch.Bank)); err != nil {
		return fmt.Errorf("bank select ch%d: %w", ch, err)
	}
	if err := pl.Send(midi.ProgramChange(ch, patch.Program)); err != nil {
		return fmt.Errorf("program change ch%d: %w", ch, err)
	}
	return nil
}

// release silences every sounding note, ignoring send errors
func (pl *Player) release(sounding map[voice]int) {
	for v := range sounding {
		pl.Send(midi.NoteOff(v.ch, v.key))
	}
	debug.Log("player", "released %d notes", len(sounding))
}
