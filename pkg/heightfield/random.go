package heightfield

import "math/rand/v2"

// RandomSource yields standard normal samples (mean 0, stddev 1).
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type RandomSource interface {
	NormFloat64() float64
}

// NewSeededSource returns a reproducible source for the given seed.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ConstantSource always returns the same sample. ConstantSource(0) turns
// generation into pure averaging.
type ConstantSource float64

// NormFloat64 implements RandomSource.
func (c ConstantSource) NormFloat64() float64 {
	return float64(c)
}
