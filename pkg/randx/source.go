// Package randx provides the seeded random-number and distribution sampling
// primitives used by the simulation core. All draws are deterministic for a
// given seed, which is what makes whole runs reproducible.
package randx

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrInvalidSigma is returned for a non-positive standard deviation.
var ErrInvalidSigma = errors.New("standard deviation must be positive")

// Source wraps a seeded PRNG. It is not safe for concurrent use; the
// simulation draws from it only on the sequential path of a step.
type Source struct {
	rng  *rand.Rand
	seed int64
}

// New creates a deterministic source from a seed.
func New(seed int64) *Source {
	return &Source{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Normal samples a normally distributed value with the given mean and
// standard deviation. Sigma must be positive.
func (s *Source) Normal(mean, sigma float64) (float64, error) {
	if sigma <= 0 {
		return 0, fmt.Errorf("%w: %g", ErrInvalidSigma, sigma)
	}
	return s.rng.NormFloat64()*sigma + mean, nil
}

// Float64 returns a uniform draw in [0,1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Intn returns a uniform draw in [0,n). Panics if n <= 0, matching math/rand.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// ClockSkew returns a bounded uniform clock offset in [0, max]. A zero or
// negative bound yields no skew.
func (s *Source) ClockSkew(max int64) int64 {
	if max <= 0 {
		return 0
	}
	return s.rng.Int63n(max + 1)
}
