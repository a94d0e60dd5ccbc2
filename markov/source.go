package markov

import (
	"math/rand/v2"
	"time"
)

// Source draws one index from a probability distribution.
// Every random decision in this package goes through a Source so runs can be replayed.
type Source interface {
	// Choose returns an index into probs. probs are non-negative and sum to 1.
	Choose(probs []float64) int
}

// RandSource is a seeded pseudo-random Source
type RandSource struct {
	seed uint64
	r    *rand.Rand
}

// NewRandSource creates a source from seed. Seed 0 picks one from the clock.
func NewRandSource(seed uint64) *RandSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandSource{
		seed: seed,
		r:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed in use, so a run can be reproduced
func (s *RandSource) Seed() uint64 {
	return s.seed
}

func (s *RandSource) Choose(probs []float64) int {
	x := s.r.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if x < acc {
			return i
		}
	}
	// float rounding left x past the total; take the last reachable index
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}
	return len(probs) - 1
}

// Replay returns a fixed sequence of indices, cycling when exhausted.
// Indices past the end of probs are clamped to the last candidate.
type Replay struct {
	Choices []int
	pos     int
}

// NewReplay creates a replay source over choices
func NewReplay(choices ...int) *Replay {
	return &Replay{Choices: choices}
}

func (r *Replay) Choose(probs []float64) int {
	if len(r.Choices) == 0 || len(probs) == 0 {
		return 0
	}
	c := r.Choices[r.pos%len(r.Choices)]
	r.pos++
	return min(max(c, 0), len(probs)-1)
}

// Used returns how many choices have been consumed
func (r *Replay) Used() int {
	return r.pos
}

// Chance reports true with probability p
func Chance(src Source, p float64) bool {
	return src.Choose([]float64{1 - p, p}) == 1
}
