package markov

import (
	"fmt"

	"go-markov/music"
)

// Plan describes a whole piece: global settings, a melody, any number of
// harmony voices and an optional repetition pass.
type Plan struct {
	Tempo     float64
	BasePitch int
	Boosts    Boosts
	Melody    MelodyOptions
	Harmonies []HarmonyOptions
	Repeat    *RepeatOptions
}

// Compose builds a new piece from plan, drawing every choice from src
func Compose(plan Plan, src Source) (*music.Piece, error) {
	if plan.Tempo <= 0 {
		return nil, fmt.Errorf("%w: tempo must be positive, got %g", ErrInvalidOptions, plan.Tempo)
	}
	if err := plan.Boosts.Validate(); err != nil {
		return nil, err
	}
	if n := 1 + len(plan.Harmonies); n > music.MaxSequences {
		return nil, fmt.Errorf("%w: plan has %d voices", music.ErrTooManySequences, n)
	}

	p := music.NewPiece(plan.Tempo)
	p.BasePitch = plan.BasePitch
	g := New(src, plan.Boosts)

	if _, err := g.Melody(p, plan.Melody); err != nil {
		return nil, fmt.Errorf("melody: %w", err)
	}
	for i, h := range plan.Harmonies {
		if _, err := g.Harmony(p, h); err != nil {
			return nil, fmt.Errorf("harmony %d: %w", i+1, err)
		}
	}
	if plan.Repeat != nil {
		if err := g.Repeat(p, *plan.Repeat); err != nil {
			return nil, fmt.Errorf("repeat: %w", err)
		}
	}
	return p, nil
}
