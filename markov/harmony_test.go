package markov

import (
	"errors"
	"testing"

	"go-markov/music"
)

func harmonyOptions() HarmonyOptions {
	return HarmonyOptions{
		Range:        Range{Low: -12, High: 0},
		Durations:    []int{1, 2, 3, 4},
		Subdivisions: 4,
		Instrument:   "cello",
	}
}

func TestHarmonyCoversPiece(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		p := music.NewPiece(120)
		g := New(NewRandSource(seed), DefaultBoosts())
		if _, err := g.Melody(p, melodyOptions()); err != nil {
			t.Fatal(err)
		}
		end := p.End()

		seq, err := g.Harmony(p, harmonyOptions())
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if seq != 1 {
			t.Errorf("seq = %d, want 1", seq)
		}
		notes := p.Sequence(seq)
		if len(notes) == 0 {
			t.Fatal("no harmony notes")
		}
		last := notes[len(notes)-1]
		if last.End < end || last.Start >= end {
			t.Errorf("seed %d: last harmony note %+v, melody ends at %g", seed, last, end)
		}
		for _, n := range notes {
			if n.Pitch < -12 || n.Pitch > 0 {
				t.Errorf("pitch %d out of range", n.Pitch)
			}
		}
		if p.Instruments[seq] != "cello" {
			t.Errorf("instrument = %q", p.Instruments[seq])
		}
	}
}

func TestHarmonyFeatureWeights(t *testing.T) {
	g := New(NewReplay(0), DefaultBoosts())
	candidates := []int{-12, -1}

	// against a sounding unison C: -12 is consonant and spaced, -1 is neither
	w := Weights(candidates, g.harmonyFeatures(0, noPitch, []int{0})...)
	if w[0] != 11*6*101*11 {
		t.Errorf("weight(-12) = %g", w[0])
	}
	if w[1] != 11*6 {
		t.Errorf("weight(-1) = %g", w[1])
	}

	// half of the concurrent notes match
	w = Weights([]int{-12}, g.harmonyFeatures(0, noPitch, []int{0, 1})...)
	if w[0] != 11*6*51*11 {
		t.Errorf("weight with half match = %g", w[0])
	}
}

func TestHarmonyNoOverlapScoresZero(t *testing.T) {
	g := New(NewReplay(0), DefaultBoosts())
	w := Weights([]int{-12, -1}, g.harmonyFeatures(0, noPitch, nil)...)
	if w[0] != 66 || w[1] != 66 {
		t.Errorf("weights = %v, want [66 66]", w)
	}
}

func TestHarmonyOverGap(t *testing.T) {
	// melody with a silent stretch in the middle
	p := music.NewPiece(120)
	p.AddSequence([]music.Step{
		{Pitch: 0, Duration: 1},
		{Pitch: 4, Offset: 6, Duration: 1},
	}, "piano")

	seq, err := New(NewRandSource(9), DefaultBoosts()).Harmony(p, harmonyOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Sequence(seq); got[len(got)-1].End < 8 {
		t.Errorf("harmony stops at %g", got[len(got)-1].End)
	}
}

func TestHarmonyErrors(t *testing.T) {
	g := New(NewRandSource(1), DefaultBoosts())
	if _, err := g.Harmony(music.NewPiece(120), harmonyOptions()); !errors.Is(err, music.ErrEmptyPiece) {
		t.Errorf("empty piece: err = %v", err)
	}

	p := music.NewPiece(120)
	for i := 0; i < music.MaxSequences; i++ {
		p.AddSequence([]music.Step{{Duration: 1}}, "piano")
	}
	if _, err := g.Harmony(p, harmonyOptions()); !errors.Is(err, music.ErrTooManySequences) {
		t.Errorf("full piece: err = %v", err)
	}

	opts := harmonyOptions()
	opts.Durations = nil
	if _, err := g.Harmony(p, opts); !errors.Is(err, ErrInvalidOptions) {
		t.Errorf("no durations: err = %v", err)
	}
}

func TestHarmonyOnThirdsStopsAtPieceEnd(t *testing.T) {
	p := music.NewPiece(120)
	g := New(NewRandSource(9), DefaultBoosts())
	mel := melodyOptions()
	mel.Measures = 2
	mel.Subdivisions = 3
	mel.Durations = []int{1}
	if _, err := g.Melody(p, mel); err != nil {
		t.Fatal(err)
	}

	opts := harmonyOptions()
	opts.Subdivisions = 3
	opts.Durations = []int{1}
	seq, err := g.Harmony(p, opts)
	if err != nil {
		t.Fatal(err)
	}
	notes := p.Sequence(seq)
	if len(notes) != 24 {
		t.Errorf("got %d harmony notes, want 24", len(notes))
	}
	if last := notes[len(notes)-1]; last.End != 8 {
		t.Errorf("last harmony note %+v, want end 8", last)
	}
	if p.End() != 8 {
		t.Errorf("piece end = %v, want 8", p.End())
	}
}
