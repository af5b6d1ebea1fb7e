package forecast

import (
	"math"
	"math/rand"
)

// Source yields uniform draws in [0, 1)
type Source interface {
	NextUniform() float64
}

// SourceFactory returns an independent stream for each chunk of trials
type SourceFactory func(stream int64) Source

// NewSource creates a seeded pseudo-random source
func NewSource(seed int64) Source {
	return &randSource{rng: rand.New(rand.NewSource(seed))}
}

// SeededSources derives stream i from seed+i so chunked runs are reproducible
func SeededSources(seed int64) SourceFactory {
	return func(stream int64) Source {
		return NewSource(seed + stream)
	}
}

type randSource struct {
	rng *rand.Rand
}

func (s *randSource) NextUniform() float64 {
	return s.rng.Float64()
}

// Normal draws a standard normal variate with the Box-Muller transform
func Normal(src Source) float64 {
	u1 := src.NextUniform()
	u2 := src.NextUniform()
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
