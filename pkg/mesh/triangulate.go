package mesh

import (
	"fmt"
	"iter"
	gomath "math"
	"slices"

	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// Count returns how many triangles a grid of the given side produces.
func Count(size int) int {
	if size < 2 {
		return 0
	}
	return 2 * (size - 1) * (size - 1)
}

// footprint maps grid indices onto [-extent, extent] on x and y.
type footprint struct {
	grid   *heightfield.Heightfield
	extent float64
	step   float64
}

func newFootprint(grid *heightfield.Heightfield, extent float64) (footprint, error) {
	if grid == nil {
		return footprint{}, fmt.Errorf("%w: nil heightfield", ErrInvalidArgument)
	}
	if !finite(extent) || extent <= 0 {
		return footprint{}, fmt.Errorf("%w: extent must be a finite value > 0, got %v", ErrInvalidArgument, extent)
	}

	f := footprint{grid: grid, extent: extent}
	if n := grid.Size() - 1; n > 0 {
		f.step = 2.0 / float64(n)
	}
	return f, nil
}

// unitFootprint is the fixed [-1,1]x[-1,1] footprint used for render
// triangles. domainScale travels with the call but does not move
// vertices; only non-finite values are refused.
func unitFootprint(grid *heightfield.Heightfield, domainScale float64) (footprint, error) {
	if !finite(domainScale) {
		return footprint{}, fmt.Errorf("%w: domain scale must be finite, got %v", ErrInvalidArgument, domainScale)
	}
	return newFootprint(grid, 1)
}

// point returns the vertex for grid index (i, j). Every triangle goes
// through here, so vertices shared by neighbouring cells are bit-identical.
func (f footprint) point(i, j int) math.Vec3 {
	return math.Vec3{
		X: f.extent * (-1 + f.step*float64(i)),
		Y: f.extent * (-1 + f.step*float64(j)),
		Z: f.grid.MustAt(i, j),
	}
}

func finite(v float64) bool {
	return !gomath.IsNaN(v) && !gomath.IsInf(v, 0)
}

// Iterator pulls triangles one at a time. It reads the grid on every call
// and keeps only a position, so the grid must not change while it is used.
type Iterator[M any] struct {
	fp       footprint
	material M
	pos      int
	total    int
}

// NewIterator returns a pull-based triangle iterator over grid.
func NewIterator[M any](grid *heightfield.Heightfield, domainScale float64, material M) (*Iterator[M], error) {
	fp, err := unitFootprint(grid, domainScale)
	if err != nil {
		return nil, err
	}
	return newIterator(fp, material), nil
}

func newIterator[M any](fp footprint, material M) *Iterator[M] {
	return &Iterator[M]{
		fp:       fp,
		material: material,
		total:    Count(fp.grid.Size()),
	}
}

// Next returns the next triangle, or false when the grid is exhausted.
//
// Cells are visited x-major, y-minor. Each cell with corners
// a=(x,y) b=(x+1,y) c=(x,y+1) d=(x+1,y+1) yields (a,b,c) then (b,c,d).
func (it *Iterator[M]) Next() (Triangle[M], bool) {
	if it.pos >= it.total {
		return Triangle[M]{}, false
	}

	cells := it.fp.grid.Size() - 1
	cell := it.pos / 2
	x, y := cell/cells, cell%cells
	second := it.pos%2 == 1
	it.pos++

	b := it.fp.point(x+1, y)
	c := it.fp.point(x, y+1)
	if second {
		return Triangle[M]{A: b, B: c, C: it.fp.point(x+1, y+1), Material: it.material}, true
	}
	return Triangle[M]{A: it.fp.point(x, y), B: b, C: c, Material: it.material}, true
}

// Remaining returns how many triangles Next will still produce.
func (it *Iterator[M]) Remaining() int {
	return it.total - it.pos
}

// Reset rewinds the iterator to the first triangle.
func (it *Iterator[M]) Reset() {
	it.pos = 0
}

// Triangulate returns the triangles covering grid as a lazy sequence.
// Each range over the sequence starts from the first cell and holds no
// state beyond its position; ranging twice gives the same triangles.
//
// Vertex (i, j) sits at (-1 + 2i/(size-1), -1 + 2j/(size-1)) whatever the
// grid resolution or domainScale. A grid with fewer than two points per
// side yields nothing.
func Triangulate[M any](grid *heightfield.Heightfield, domainScale float64, material M) (iter.Seq[Triangle[M]], error) {
	fp, err := unitFootprint(grid, domainScale)
	if err != nil {
		return nil, err
	}

	return func(yield func(Triangle[M]) bool) {
		it := newIterator(fp, material)
		for t, ok := it.Next(); ok; t, ok = it.Next() {
			if !yield(t) {
				return
			}
		}
	}, nil
}

// Collect drains a triangle sequence into a slice.
func Collect[M any](seq iter.Seq[Triangle[M]]) []Triangle[M] {
	return slices.Collect(seq)
}
