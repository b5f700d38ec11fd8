package systems

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rand is the random source consumed by rules and behaviors. Each worker
// owns its own, so implementations need not be safe for concurrent use.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG stream for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// NewStream derives an independent PCG stream from a master seed and a
// stream index, so each worker chunk draws the same numbers run to run.
func NewStream(seed int64, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), stream+1))
}

// RandomHeading returns a uniformly distributed unit vector.
func RandomHeading(rng Rand) r2.Vec {
	a := rng.Float64() * 2 * math.Pi
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// UniformRange draws from [lo, hi).
func UniformRange(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
