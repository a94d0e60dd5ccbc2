package markov

import (
	"errors"
	"fmt"
)

var ErrNoCandidates = errors.New("no candidates to choose from")

// Feature scores a candidate in [0, 1]. A candidate's weight is multiplied
// by Boost*score + 1, so a boolean feature that holds makes it Boost+1 times likelier.
type Feature[T any] struct {
	Boost float64
	Score func(T) float64
}

// Predicate turns a boolean test into a feature
func Predicate[T any](boost float64, pred func(T) bool) Feature[T] {
	return Feature[T]{
		Boost: boost,
		Score: func(c T) float64 {
			if pred(c) {
				return 1
			}
			return 0
		},
	}
}

// Weights returns the unnormalized weight of every candidate
func Weights[T any](candidates []T, features ...Feature[T]) []float64 {
	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		w := 1.0
		for _, f := range features {
			w *= f.Boost*f.Score(c) + 1
		}
		weights[i] = w
	}
	return weights
}

// Distribution returns normalized weights. When every weight is zero
// (only possible with boosts of -1) the distribution is uniform.
func Distribution[T any](candidates []T, features ...Feature[T]) []float64 {
	probs := Weights(candidates, features...)
	sum := 0.0
	for _, w := range probs {
		sum += w
	}
	if sum <= 0 {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// Choose samples one candidate from the distribution built by features
func Choose[T any](src Source, candidates []T, features ...Feature[T]) (T, error) {
	if len(candidates) == 0 {
		var zero T
		return zero, ErrNoCandidates
	}
	i := src.Choose(Distribution(candidates, features...))
	if i < 0 || i >= len(candidates) {
		var zero T
		return zero, fmt.Errorf("source chose index %d of %d candidates", i, len(candidates))
	}
	return candidates[i], nil
}
