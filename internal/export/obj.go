// Package export writes terrain meshes and heightfields to common file
// formats for inspection outside the renderer.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

// WriteOBJ writes m as a Wavefront OBJ object with positions, normals
// and faces. Face indices are 1-based and reuse the vertex index for the
// normal.
func WriteOBJ(w io.Writer, m *mesh.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# fractal terrain: %d vertices, %d triangles\n", len(m.Vertices), m.TriangleCount())
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}

	for _, v := range m.Vertices {
		bw.WriteString("v ")
		writeTriple(bw, v.Position.X, v.Position.Y, v.Position.Z)
	}
	for _, v := range m.Vertices {
		bw.WriteString("vn ")
		writeTriple(bw, v.Normal.X, v.Normal.Y, v.Normal.Z)
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}

	return bw.Flush()
}

// WriteOBJFile writes m to path.
func WriteOBJFile(path string, m *mesh.Mesh, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, m, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTriple(bw *bufio.Writer, x, y, z float64) {
	var buf [64]byte
	b := strconv.AppendFloat(buf[:0], x, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, y, 'g', -1, 64)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, z, 'g', -1, 64)
	b = append(b, '\n')
	bw.Write(b)
}
