// Package heightfield provides the square elevation grid and the
// diamond-square generator that fills it.
package heightfield

import (
	"errors"
	"fmt"
	"math"
)

// Heightfield errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfBounds     = errors.New("coordinates out of bounds")
	ErrFrozen          = errors.New("heightfield is frozen")
)

// MaxIterations caps the recursion depth. 2^14+1 cells per side already
// takes about 2 GiB of float64 storage.
const MaxIterations = 14

// Heightfield is a square grid of elevations addressed by (x, y) with
// 0 <= x, y < Size(). Cells live in a flat row-major buffer.
//
// A heightfield is written only while it is generated. Freeze marks the
// end of that phase; afterwards Set fails and readers may share it.
type Heightfield struct {
	size       int
	iterations int
	roughness  float64
	cells      []float64
	frozen     bool
}

// New returns a zeroed heightfield for the given iteration count.
func New(iterations int) (*Heightfield, error) {
	if iterations < 0 || iterations > MaxIterations {
		return nil, fmt.Errorf("%w: iterations %d not in [0, %d]", ErrInvalidArgument, iterations, MaxIterations)
	}
	size := 1<<iterations + 1
	return &Heightfield{
		size:       size,
		iterations: iterations,
		cells:      make([]float64, size*size),
	}, nil
}

// SizeFor returns the side length of a grid built with n iterations.
func SizeFor(iterations int) int {
	return 1<<iterations + 1
}

// Size returns the side length of the grid.
func (h *Heightfield) Size() int {
	return h.size
}

// Iterations returns the recursion depth the grid was sized for.
func (h *Heightfield) Iterations() int {
	return h.iterations
}

// Roughness returns the roughness the grid was generated with, or zero
// for a grid that was never generated.
func (h *Heightfield) Roughness() float64 {
	return h.roughness
}

// Frozen reports whether the grid is read-only.
func (h *Heightfield) Frozen() bool {
	return h.frozen
}

// Freeze makes the grid read-only. It cannot be undone.
func (h *Heightfield) Freeze() {
	h.frozen = true
}

func (h *Heightfield) index(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= h.size || y >= h.size {
		return 0, fmt.Errorf("%w: (%d, %d) in %dx%d grid", ErrOutOfBounds, x, y, h.size, h.size)
	}
	return x*h.size + y, nil
}

// At returns the elevation at (x, y).
func (h *Heightfield) At(x, y int) (float64, error) {
	i, err := h.index(x, y)
	if err != nil {
		return 0, err
	}
	return h.cells[i], nil
}

// MustAt is like At but panics on out-of-range coordinates.
func (h *Heightfield) MustAt(x, y int) float64 {
	v, err := h.At(x, y)
	if err != nil {
		panic(err)
	}
	return v
}

// Set stores an elevation at (x, y).
func (h *Heightfield) Set(x, y int, v float64) error {
	if h.frozen {
		return ErrFrozen
	}
	i, err := h.index(x, y)
	if err != nil {
		return err
	}
	h.cells[i] = v
	return nil
}

// Values returns a copy of the cells in row-major order.
func (h *Heightfield) Values() []float64 {
	out := make([]float64, len(h.cells))
	copy(out, h.cells)
	return out
}

// MinMax returns the lowest and highest elevation in the grid.
func (h *Heightfield) MinMax() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range h.cells {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Clone returns an unfrozen deep copy.
func (h *Heightfield) Clone() *Heightfield {
	return &Heightfield{
		size:       h.size,
		iterations: h.iterations,
		roughness:  h.roughness,
		cells:      h.Values(),
	}
}

// Scaled returns an unfrozen copy with every elevation multiplied by k.
// The receiver is not modified, so it is safe to call on a frozen grid.
func (h *Heightfield) Scaled(k float64) *Heightfield {
	out := h.Clone()
	for i := range out.cells {
		out.cells[i] *= k
	}
	return out
}
