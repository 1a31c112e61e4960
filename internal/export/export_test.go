package export

import (
	"bufio"
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

func generate(t *testing.T, iterations int) *heightfield.Heightfield {
	t.Helper()
	h, err := heightfield.GenerateSeeded(heightfield.Params{Roughness: 0.25, Iterations: iterations}, 3)
	require.NoError(t, err)
	h.Freeze()
	return h
}

func TestWriteOBJ(t *testing.T) {
	h := generate(t, 2)
	m, err := mesh.Build(h, 1.0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, m, "terrain"))

	counts := map[string]int{}
	var firstFace string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		counts[fields[0]]++
		if fields[0] == "f" && firstFace == "" {
			firstFace = sc.Text()
		}
	}
	require.NoError(t, sc.Err())

	require.Equal(t, 1, counts["o"])
	require.Equal(t, 25, counts["v"])
	require.Equal(t, 25, counts["vn"])
	require.Equal(t, 32, counts["f"])
	// Cell (0,0): a=0, b=5, c=1, shifted to 1-based.
	require.Equal(t, "f 1//1 6//6 2//2", firstFace)
}

func TestWriteOBJFirstVertex(t *testing.T) {
	h, err := heightfield.Generate(heightfield.Params{Roughness: 1, Iterations: 1}, heightfield.ConstantSource(0))
	require.NoError(t, err)
	m, err := mesh.Build(h, 1.0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, m, ""))
	lines := strings.Split(buf.String(), "\n")
	require.Equal(t, "v -1 -1 0", lines[1])
	require.Equal(t, "vn 0 0 1", lines[10])
}

func TestWriteOBJFile(t *testing.T) {
	m, err := mesh.Build(generate(t, 1), 1.0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "terrain.obj")
	require.NoError(t, WriteOBJFile(path, m, "terrain"))
	require.FileExists(t, path)
}

func TestPreview(t *testing.T) {
	h := generate(t, 3)

	img, err := Preview(h, 1)
	require.NoError(t, err)
	require.Equal(t, 9, img.Bounds().Dx())
	require.Equal(t, 9, img.Bounds().Dy())

	var lo, hi uint8 = 255, 0
	for _, p := range img.Pix {
		lo = min(lo, p)
		hi = max(hi, p)
	}
	require.Equal(t, uint8(0), lo)
	require.Equal(t, uint8(255), hi)
}

func TestPreviewScaled(t *testing.T) {
	h := generate(t, 2)
	small, err := Preview(h, 1)
	require.NoError(t, err)
	big, err := Preview(h, 4)
	require.NoError(t, err)

	require.Equal(t, 20, big.Bounds().Dx())
	for x := range 5 {
		for y := range 5 {
			want := small.GrayAt(x, y)
			for dx := range 4 {
				for dy := range 4 {
					require.Equal(t, want, big.GrayAt(x*4+dx, y*4+dy))
				}
			}
		}
	}
}

func TestPreviewFlat(t *testing.T) {
	h, err := heightfield.Generate(heightfield.Params{Roughness: 1, Iterations: 2}, heightfield.ConstantSource(0))
	require.NoError(t, err)

	img, err := Preview(h, 1)
	require.NoError(t, err)
	for _, p := range img.Pix {
		require.Equal(t, uint8(128), p)
	}
}

func TestPreviewInvalidScale(t *testing.T) {
	_, err := Preview(generate(t, 1), 0)
	require.ErrorIs(t, err, ErrInvalidScale)
}

func TestWritePreviewPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreviewPNG(&buf, generate(t, 2), 2))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, 10, img.Bounds().Dx())

	path := filepath.Join(t.TempDir(), "preview.png")
	require.NoError(t, WritePreviewFile(path, generate(t, 2), 1))
	require.FileExists(t, path)
}
