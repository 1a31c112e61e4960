package export

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
)

// ErrInvalidScale is returned for a preview scale below 1.
var ErrInvalidScale = errors.New("preview scale must be >= 1")

// Preview renders h as an 8-bit grayscale image, low elevations dark.
// Pixel (x, y) is grid point (x, y). A flat grid maps to mid gray.
// The image is enlarged scale times with nearest-neighbour sampling so
// small grids stay readable.
func Preview(h *heightfield.Heightfield, scale int) (*image.Gray, error) {
	if scale < 1 {
		return nil, ErrInvalidScale
	}

	size := h.Size()
	src := image.NewGray(image.Rect(0, 0, size, size))

	lo, hi := h.MinMax()
	span := hi - lo
	for x := range size {
		for y := range size {
			v := uint8(128)
			if span > 0 {
				v = uint8((h.MustAt(x, y)-lo)/span*255 + 0.5)
			}
			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	if scale == 1 {
		return src, nil
	}

	dst := image.NewGray(image.Rect(0, 0, size*scale, size*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

// WritePreviewPNG encodes the preview of h as PNG.
func WritePreviewPNG(w io.Writer, h *heightfield.Heightfield, scale int) error {
	img, err := Preview(h, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WritePreviewFile writes the PNG preview of h to path.
func WritePreviewFile(path string, h *heightfield.Heightfield, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePreviewPNG(f, h, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
