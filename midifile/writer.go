// Package midifile writes a compiled program as a single-track Standard MIDI File.
package midifile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gitlab.com/gomidi/midi/v2"

	"go-markov/debug"
	"go-markov/music"
)

const (
	// TicksPerBeat is the header division
	TicksPerBeat = 96
	// Velocity is used for every note on and note off
	Velocity = 0x40
)

var (
	ErrPitchRange   = errors.New("pitch outside 0-127")
	ErrChannelRange = errors.New("sequence outside channels 0-15")
)

// header: MThd, length 6, format 0, one track, 96 ticks per beat
var header = []byte{
	'M', 'T', 'h', 'd',
	0x00, 0x00, 0x00, 0x06,
	0x00, 0x00,
	0x00, 0x01,
	0x00, TicksPerBeat,
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

// Encode compiles the piece and returns the file bytes
func Encode(p *music.Piece) ([]byte, error) {
	if p.Tempo <= 0 {
		return nil, fmt.Errorf("tempo must be positive, got %g", p.Tempo)
	}
	return EncodeProgram(music.Compile(p), p.TimeSignature, p.SecondsPerBeat())
}

// EncodeProgram serializes an already compiled program
func EncodeProgram(prog music.Program, timeSignature int, secondsPerBeat float64) ([]byte, error) {
	if timeSignature < 1 || timeSignature > 0xFF {
		return nil, fmt.Errorf("time signature %d does not fit a byte", timeSignature)
	}
	micros := math.RoundToEven(secondsPerBeat * 1e6)
	if micros < 1 || micros > 0xFFFFFF {
		return nil, fmt.Errorf("tempo of %g s/beat does not fit 3 bytes", secondsPerBeat)
	}

	track := make([]byte, 0, 16+4*len(prog))
	// time signature: n/4, 36 clocks per click, 8 32nds per quarter
	track = append(track, 0x00, 0xFF, 0x58, 0x04, byte(timeSignature), 0x02, 0x24, 0x08)
	us := uint32(micros)
	track = append(track, 0x00, 0xFF, 0x51, 0x03, byte(us>>16), byte(us>>8), byte(us))

	for i, in := range prog {
		switch in.Kind {
		case music.Sleep:
			ticks := math.RoundToEven(in.Duration * TicksPerBeat)
			if ticks < 0 || ticks > MaxVLQ {
				return nil, fmt.Errorf("instruction %d: sleep of %g beats out of range", i, in.Duration)
			}
			track = AppendVLQ(track, uint32(ticks))
		case music.On, music.Off:
			ch, key, err := channelAndKey(in)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: %w", i, err)
			}
			if in.Kind == music.On {
				track = append(track, midi.NoteOn(ch, key, Velocity)...)
			} else {
				track = append(track, midi.NoteOffVelocity(ch, key, Velocity)...)
			}
		default:
			return nil, fmt.Errorf("instruction %d: unknown kind %v", i, in.Kind)
		}
	}
	track = append(track, endOfTrack...)

	out := make([]byte, 0, len(header)+8+len(track))
	out = append(out, header...)
	out = append(out, 'M', 'T', 'r', 'k')
	out = binary.BigEndian.AppendUint32(out, uint32(len(track)))
	out = append(out, track...)

	debug.Log("midifile", "%d instructions, %d bytes", len(prog), len(out))
	return out, nil
}

func channelAndKey(in music.Instruction) (uint8, uint8, error) {
	if in.Sequence < 0 || in.Sequence >= music.MaxSequences {
		return 0, 0, fmt.Errorf("%w: %d", ErrChannelRange, in.Sequence)
	}
	if in.Pitch < 0 || in.Pitch > 127 {
		return 0, 0, fmt.Errorf("%w: %d", ErrPitchRange, in.Pitch)
	}
	return uint8(in.Sequence), uint8(in.Pitch), nil
}

// Write encodes the piece to w
func Write(w io.Writer, p *music.Piece) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile encodes the piece to a file at path. The file is closed on every path.
func WriteFile(path string, p *music.Piece) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
