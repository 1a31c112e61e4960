package heightfield

import (
	"fmt"
	"math"
)

// Params controls diamond-square generation.
type Params struct {
	// Roughness sets how fast the noise amplitude decays per level.
	// Smaller values give smoother terrain. Must be > 0.
	Roughness float64
	// Iterations is the recursion depth; the grid side is 2^Iterations+1.
	Iterations int
}

// Validate checks the parameters without allocating anything.
func (p Params) Validate() error {
	if math.IsNaN(p.Roughness) || math.IsInf(p.Roughness, 0) || p.Roughness <= 0 {
		return fmt.Errorf("%w: roughness must be a finite value > 0, got %v", ErrInvalidArgument, p.Roughness)
	}
	if p.Iterations < 0 || p.Iterations > MaxIterations {
		return fmt.Errorf("%w: iterations %d not in [0, %d]", ErrInvalidArgument, p.Iterations, MaxIterations)
	}
	return nil
}

// Magnitude returns the noise amplitude applied at level n.
func (p Params) Magnitude(n int) float64 {
	return math.Pow(2, float64(n-p.Iterations)/p.Roughness)
}

// Generate builds a heightfield with the diamond-square algorithm.
//
// Levels run from Iterations down to 1. Each level sets the square
// centres from their four diagonal corners, then the midpoints along y,
// then the midpoints along x. Midpoints on the grid edge average only
// the neighbours that exist. Every new value gets rng.NormFloat64()
// scaled by the level magnitude.
//
// The returned grid is not frozen; callers freeze it once any
// post-processing is done.
func Generate(p Params, rng RandomSource) (*Heightfield, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidArgument)
	}

	h, err := New(p.Iterations)
	if err != nil {
		return nil, err
	}
	h.roughness = p.Roughness

	for n := p.Iterations; n > 0; n-- {
		step := 1 << n
		offset := step / 2
		magnitude := p.Magnitude(n)

		h.squareStep(step, offset, magnitude, rng)
		h.diamondStepY(step, offset, magnitude, rng)
		h.diamondStepX(step, offset, magnitude, rng)
	}

	return h, nil
}

// GenerateSeeded is Generate with a source seeded from seed.
func GenerateSeeded(p Params, seed uint64) (*Heightfield, error) {
	return Generate(p, NewSeededSource(seed))
}

// get and put skip bounds checks; callers keep indices inside the grid.
func (h *Heightfield) get(x, y int) float64 {
	return h.cells[x*h.size+y]
}

func (h *Heightfield) put(x, y int, v float64) {
	h.cells[x*h.size+y] = v
}

func (h *Heightfield) squareStep(step, offset int, magnitude float64, rng RandomSource) {
	for x := offset; x < h.size; x += step {
		for y := offset; y < h.size; y += step {
			avg := 0.25 * (h.get(x-offset, y-offset) +
				h.get(x+offset, y-offset) +
				h.get(x-offset, y+offset) +
				h.get(x+offset, y+offset))
			h.put(x, y, avg+rng.NormFloat64()*magnitude)
		}
	}
}

// diamondStepY fills (k*step, offset+j*step). The y neighbours always
// exist; the x neighbours are added only away from the x edges.
func (h *Heightfield) diamondStepY(step, offset int, magnitude float64, rng RandomSource) {
	for x := 0; x < h.size; x += step {
		for y := offset; y < h.size; y += step {
			sum := h.get(x, y-offset) + h.get(x, y+offset)
			count := 2
			if x > 0 {
				sum += h.get(x-offset, y)
				count++
			}
			if x < h.size-1 {
				sum += h.get(x+offset, y)
				count++
			}
			h.put(x, y, sum/float64(count)+rng.NormFloat64()*magnitude)
		}
	}
}

// diamondStepX fills (offset+k*step, j*step), mirroring diamondStepY.
func (h *Heightfield) diamondStepX(step, offset int, magnitude float64, rng RandomSource) {
	for x := offset; x < h.size; x += step {
		for y := 0; y < h.size; y += step {
			sum := h.get(x-offset, y) + h.get(x+offset, y)
			count := 2
			if y > 0 {
				sum += h.get(x, y-offset)
				count++
			}
			if y < h.size-1 {
				sum += h.get(x, y+offset)
				count++
			}
			h.put(x, y, sum/float64(count)+rng.NormFloat64()*magnitude)
		}
	}
}
