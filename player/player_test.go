package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"go-markov/music"
)

type recorder struct {
	msgs  []midi.Message
	waits []time.Duration
}

func (r *recorder) player() *Player {
	pl := New(func(msg midi.Message) error {
		r.msgs = append(r.msgs, msg)
		return nil
	})
	pl.Wait = func(ctx context.Context, d time.Duration) error {
		r.waits = append(r.waits, d)
		return ctx.Err()
	}
	return pl
}

func (r *recorder) count(match func(midi.Message) bool) int {
	n := 0
	for _, m := range r.msgs {
		if match(m) {
			n++
		}
	}
	return n
}

func isNoteOn(m midi.Message) bool {
	var ch, key, vel uint8
	return m.GetNoteOn(&ch, &key, &vel)
}

func isNoteOff(m midi.Message) bool {
	var ch, key, vel uint8
	return m.GetNoteOff(&ch, &key, &vel)
}

func twoVoices() *music.Piece {
	p := music.NewPiece(120)
	p.AddSequence([]music.Step{{Pitch: 0, Duration: 1}, {Pitch: 2, Duration: 1}}, "piano")
	p.AddSequence([]music.Step{{Pitch: -12, Duration: 2}}, "cello")
	return p
}

func TestPlaySelectsPatches(t *testing.T) {
	r := &recorder{}
	if err := r.player().Play(context.Background(), twoVoices()); err != nil {
		t.Fatal(err)
	}
	want := []midi.Message{
		midi.ControlChange(0, 0, 0), midi.ProgramChange(0, 0),
		midi.ControlChange(1, 0, 1), midi.ProgramChange(1, 28),
	}
	if len(r.msgs) < len(want) {
		t.Fatalf("only %d messages", len(r.msgs))
	}
	for i, m := range want {
		if string(r.msgs[i]) != string(m) {
			t.Errorf("message %d = %v, want %v", i, r.msgs[i], m)
		}
	}
}

func TestPlayNotesAndTiming(t *testing.T) {
	r := &recorder{}
	var beats []float64
	pl := r.player()
	pl.OnBeat = func(b float64) { beats = append(beats, b) }
	if err := pl.Play(context.Background(), twoVoices()); err != nil {
		t.Fatal(err)
	}

	if on, off := r.count(isNoteOn), r.count(isNoteOff); on != 3 || off != 3 {
		t.Errorf("on=%d off=%d, want 3 each", on, off)
	}
	var total time.Duration
	for _, d := range r.waits {
		total += d
	}
	// 2 beats at 120 bpm
	if total != time.Second {
		t.Errorf("total wait = %v, want 1s", total)
	}
	if last := beats[len(beats)-1]; last != 2 {
		t.Errorf("last beat = %g", last)
	}

	var ch, key, vel uint8
	for _, m := range r.msgs {
		if m.GetNoteOn(&ch, &key, &vel) {
			if vel != DefaultVelocity {
				t.Errorf("velocity = %d", vel)
			}
			break
		}
	}
}

func TestPlayCancelReleasesNotes(t *testing.T) {
	r := &recorder{}
	pl := r.player()
	ctx, cancel := context.WithCancel(context.Background())
	sleeps := 0
	pl.Wait = func(ctx context.Context, d time.Duration) error {
		// cancel once both opening notes are sounding
		if sleeps++; sleeps == 4 {
			cancel()
		}
		return ctx.Err()
	}

	err := pl.Play(ctx, twoVoices())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if on, off := r.count(isNoteOn), r.count(isNoteOff); on != off {
		t.Errorf("on=%d off=%d, every started note must be released", on, off)
	}
}

func TestPlaySendError(t *testing.T) {
	boom := errors.New("port gone")
	pl := New(func(midi.Message) error { return boom })
	pl.Wait = func(context.Context, time.Duration) error { return nil }
	if err := pl.Play(context.Background(), twoVoices()); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

func TestPlayRejectsBadPieces(t *testing.T) {
	r := &recorder{}
	p := twoVoices()
	p.BasePitch = 5
	if err := r.player().Play(context.Background(), p); err == nil {
		t.Error("expected error for negative absolute pitch")
	}
	if len(r.msgs) != 0 {
		t.Error("nothing should be sent for a rejected piece")
	}

	p = twoVoices()
	p.Tempo = 0
	if err := r.player().Play(context.Background(), p); err == nil {
		t.Error("expected error for zero tempo")
	}
}

func TestSleepHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if err := sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("err = %v", err)
	}
}
