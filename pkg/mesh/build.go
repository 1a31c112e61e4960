package mesh

import (
	gomath "math"

	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// Build creates an indexed mesh from grid in the same triangle order as
// Triangulate, with x and y spanning [-extent, extent]. Extent 1 matches
// the Triangulate footprint. Vertex i*size+j is grid point (i, j).
func Build(grid *heightfield.Heightfield, extent float64) (*Mesh, error) {
	fp, err := newFootprint(grid, extent)
	if err != nil {
		return nil, err
	}

	size := grid.Size()
	vertices := make([]Vertex, size*size)

	bounds := Bounds{
		Min: math.Vec3{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)},
		Max: math.Vec3{X: gomath.Inf(-1), Y: gomath.Inf(-1), Z: gomath.Inf(-1)},
	}

	for i := range size {
		for j := range size {
			p := fp.point(i, j)
			vertices[i*size+j].Position = p
			updateBounds(&bounds, p)
		}
	}

	indices := make([]uint32, 0, 3*Count(size))
	for x := range size - 1 {
		for y := range size - 1 {
			a := uint32(x*size + y)
			b := uint32((x+1)*size + y)
			c := uint32(x*size + y + 1)
			d := uint32((x+1)*size + y + 1)
			indices = append(indices,
				a, b, c,
				b, c, d,
			)
		}
	}

	m := &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}
	SmoothNormals(m)

	return m, nil
}

// SmoothNormals sets each vertex normal to the normalized sum of the
// area-weighted face normals around it. Faces are oriented so the normal
// points toward +Z on a flat grid.
func SmoothNormals(m *Mesh) {
	sums := make([]math.Vec3, len(m.Vertices))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		n := faceNormal(m.Vertices[ia].Position, m.Vertices[ib].Position, m.Vertices[ic].Position)
		sums[ia] = sums[ia].Add(n)
		sums[ib] = sums[ib].Add(n)
		sums[ic] = sums[ic].Add(n)
	}

	for i := range m.Vertices {
		n := sums[i].Normalize()
		if n == (math.Vec3{}) {
			n = math.UnitZ
		}
		m.Vertices[i].Normal = n
	}
}

// faceNormal returns the unnormalized normal of (a, b, c), flipped to
// face +Z. Its length is twice the triangle area.
//
// The (a,b,c) and (b,c,d) triangles of a cell wind in opposite
// directions, so orientation is fixed here rather than by index order.
func faceNormal(a, b, c math.Vec3) math.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Z < 0 {
		n = n.Scale(-1)
	}
	return n
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}
