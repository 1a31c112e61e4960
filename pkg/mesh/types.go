// Package mesh turns a frozen heightfield into triangles, either as a
// lazy stream for a renderer or as an indexed mesh for export.
package mesh

import (
	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// ErrInvalidArgument is shared with the heightfield package so callers can
// test either stage with one errors.Is check.
var ErrInvalidArgument = heightfield.ErrInvalidArgument

// Triangle is one surface primitive. Material is opaque to this package
// and passed through untouched.
type Triangle[M any] struct {
	A, B, C  math.Vec3
	Material M
}

// Vertices returns the three corners in emission order.
func (t Triangle[M]) Vertices() [3]math.Vec3 {
	return [3]math.Vec3{t.A, t.B, t.C}
}

// Normal returns the unit face normal, (B-A) x (C-A) normalized.
// A degenerate triangle has a zero normal.
func (t Triangle[M]) Normal() math.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Area returns the triangle area.
func (t Triangle[M]) Area() float64 {
	return 0.5 * t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length()
}

// Degenerate reports whether the triangle has zero area.
func (t Triangle[M]) Degenerate() bool {
	return t.Area() == 0
}

// Vertex is an indexed mesh vertex.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the box extent on each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Mesh is an indexed triangle mesh with one vertex per grid point.
// Indices come in triples in the same order Triangulate emits triangles.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
