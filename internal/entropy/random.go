// Package entropy provides the random sources every stochastic rule draws from.
// Live runs may pull true randomness from random.org; tests use seeded or
// scripted sources so every branch is reproducible.
package entropy

import (
	mrand "math/rand"
	"sync"
	"time"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Float() float64
}

// Seeded is a deterministic Source backed by math/rand.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded returns a deterministic source for the given seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

// Float returns the next value in the seeded stream.
func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Uniform returns a value in [lo, hi) drawn from src.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float()*(hi-lo)
}

// Pick returns an index in [0, n) drawn from src. n must be positive.
func Pick(src Source, n int) int {
	i := int(src.Float() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Fork returns a seeded stream keyed by one draw from src, for bulk
// sampling that should not pull every value through src.
func Fork(src Source) *Seeded {
	return NewSeeded(int64(src.Float() * (1 << 62)))
}

// Select picks the live source: random.org when a key is configured,
// otherwise a seeded stream (seed 0 means seed from the clock).
func Select(apiKey string, seed int64) Source {
	if c := NewClient(apiKey); c.Enabled() {
		return c
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewSeeded(seed)
}
