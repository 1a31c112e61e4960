package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/math"
)

func TestBuildMatchesTriangulate(t *testing.T) {
	grid := seededGrid(t, 3)
	m, err := Build(grid, 1.0)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	size := grid.Size()
	if len(m.Vertices) != size*size {
		t.Errorf("vertex count = %d, want %d", len(m.Vertices), size*size)
	}

	tris := triangles(t, grid, 1.0)
	if m.TriangleCount() != len(tris) {
		t.Fatalf("TriangleCount() = %d, want %d", m.TriangleCount(), len(tris))
	}

	for i, tri := range tris {
		a := m.Vertices[m.Indices[3*i]].Position
		b := m.Vertices[m.Indices[3*i+1]].Position
		c := m.Vertices[m.Indices[3*i+2]].Position
		if a != tri.A || b != tri.B || c != tri.C {
			t.Fatalf("triangle %d: indexed (%v %v %v) != streamed (%v %v %v)", i, a, b, c, tri.A, tri.B, tri.C)
		}
	}
}

func TestBuildBounds(t *testing.T) {
	grid := seededGrid(t, 4)
	m, err := Build(grid, 1.0)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	lo, hi := grid.MinMax()
	want := Bounds{
		Min: math.Vec3{X: -1, Y: -1, Z: lo},
		Max: math.Vec3{X: 1, Y: 1, Z: hi},
	}
	if m.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", m.Bounds, want)
	}
	if got := m.Bounds.Size(); got.X != 2 || got.Y != 2 {
		t.Errorf("Bounds.Size() = %v", got)
	}
}

func TestBuildFlatNormals(t *testing.T) {
	grid, _ := heightfield.Generate(heightfield.Params{Roughness: 1, Iterations: 2}, heightfield.ConstantSource(0))
	grid.Freeze()

	m, err := Build(grid, 1.0)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	for i, v := range m.Vertices {
		if v.Normal != math.UnitZ {
			t.Fatalf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestBuildNormalsAreUnit(t *testing.T) {
	grid := seededGrid(t, 4)
	m, err := Build(grid, 1.0)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	for i, v := range m.Vertices {
		l := v.Normal.Length()
		if gomath.Abs(l-1) > 1e-9 {
			t.Fatalf("vertex %d normal length = %v", i, l)
		}
		if v.Normal.Z <= 0 {
			t.Fatalf("vertex %d normal %v points down", i, v.Normal)
		}
	}
}

func TestBuildSinglePoint(t *testing.T) {
	grid := seededGrid(t, 0)
	m, err := Build(grid, 1.0)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(m.Vertices) != 1 || m.TriangleCount() != 0 {
		t.Errorf("got %d vertices, %d triangles; want 1, 0", len(m.Vertices), m.TriangleCount())
	}
	if m.Vertices[0].Normal != math.UnitZ {
		t.Errorf("isolated vertex normal = %v, want +Z", m.Vertices[0].Normal)
	}
}

func TestBuildExtent(t *testing.T) {
	grid := seededGrid(t, 2)
	m, err := Build(grid, 2.5)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	first := m.Vertices[0].Position
	last := m.Vertices[len(m.Vertices)-1].Position
	if first.X != -2.5 || first.Y != -2.5 || last.X != 2.5 || last.Y != 2.5 {
		t.Errorf("corners = %v, %v; want x,y at -2.5 and 2.5", first, last)
	}
	if first.Z != grid.MustAt(0, 0) {
		t.Errorf("extent changed elevation: %v", first.Z)
	}
}

func TestBuildInvalidExtent(t *testing.T) {
	grid := seededGrid(t, 1)
	for _, e := range []float64{0, -2, gomath.NaN(), gomath.Inf(1)} {
		if _, err := Build(grid, e); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("extent %v: error = %v, want ErrInvalidArgument", e, err)
		}
	}
}
