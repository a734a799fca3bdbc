package overtaking

import (
	"math/rand"
	"time"
)

// RandSource is the randomness an Engine consumes. *rand.Rand satisfies it.
// Implementations are not expected to be safe for concurrent use.
type RandSource interface {
	Float64() float64
	NormFloat64() float64
}

// NewRandSource returns a generator seeded with seed, or with the clock when seed is 0.
func NewRandSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from [lo, hi). When lo > hi the draw falls in (hi, lo].
func uniform(src RandSource, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

func normal(src RandSource, mean, stddev float64) float64 {
	return mean + stddev*src.NormFloat64()
}
