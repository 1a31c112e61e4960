package scene

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// DescriptorVersion is bumped when the JSON layout changes.
const DescriptorVersion = 1

// Descriptor is the JSON form of a scene read by the external renderer.
// Materials are stored once and referenced by index.
type Descriptor struct {
	Version   int                `json:"version"`
	ID        string             `json:"id"`
	Output    string             `json:"output"`
	DPI       int                `json:"dpi"`
	Samples   int                `json:"samples"`
	Bounces   int                `json:"bounces"`
	Camera    CameraDescriptor   `json:"camera"`
	Materials []Material         `json:"materials"`
	Objects   []ObjectDescriptor `json:"objects"`
}

// CameraDescriptor is the JSON form of a Camera.
type CameraDescriptor struct {
	Base        [3]float64 `json:"base"`
	Direction   [3]float64 `json:"direction"`
	Width       float64    `json:"width"`
	Height      float64    `json:"height"`
	Distance    float64    `json:"distance"`
	Aperture    *float64   `json:"aperture,omitempty"`
	FocalLength *float64   `json:"focal_length,omitempty"`
}

// Object kinds.
const (
	KindTriangle = "triangle"
	KindSphere   = "sphere"
)

// ObjectDescriptor is one primitive. Triangles set Vertices; spheres set
// Center and Radius.
type ObjectDescriptor struct {
	Kind     string       `json:"kind"`
	Material int          `json:"material"`
	Vertices [][3]float64 `json:"vertices,omitempty"`
	Center   *[3]float64  `json:"center,omitempty"`
	Radius   float64      `json:"radius,omitempty"`
}

// Describe converts s to its descriptor.
func Describe(s *Scene) *Descriptor {
	d := &Descriptor{
		Version: DescriptorVersion,
		ID:      s.ID.String(),
		Output:  s.Output,
		DPI:     s.DPI,
		Samples: s.Samples,
		Bounces: s.Bounces,
		Camera: CameraDescriptor{
			Base:        vec(s.Camera.Normal.Base),
			Direction:   vec(s.Camera.Normal.Direction),
			Width:       s.Camera.Width,
			Height:      s.Camera.Height,
			Distance:    s.Camera.Distance,
			Aperture:    s.Camera.Aperture,
			FocalLength: s.Camera.FocalLength,
		},
		Objects: make([]ObjectDescriptor, 0, s.ObjectCount()),
	}

	index := make(map[Material]int)
	materialID := func(m Material) int {
		if id, ok := index[m]; ok {
			return id
		}
		id := len(d.Materials)
		index[m] = id
		d.Materials = append(d.Materials, m)
		return id
	}

	for _, t := range s.Triangles {
		d.Objects = append(d.Objects, ObjectDescriptor{
			Kind:     KindTriangle,
			Material: materialID(t.Material),
			Vertices: [][3]float64{vec(t.A), vec(t.B), vec(t.C)},
		})
	}
	for _, sp := range s.Spheres {
		c := vec(sp.Center)
		d.Objects = append(d.Objects, ObjectDescriptor{
			Kind:     KindSphere,
			Material: materialID(sp.Material),
			Center:   &c,
			Radius:   sp.Radius,
		})
	}

	return d
}

// WriteDescriptor encodes the descriptor of s to w as indented JSON.
func WriteDescriptor(w io.Writer, s *Scene) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Describe(s)); err != nil {
		return fmt.Errorf("encoding scene descriptor: %w", err)
	}
	return bw.Flush()
}

// ReadDescriptor decodes a descriptor written by WriteDescriptor.
func ReadDescriptor(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding scene descriptor: %w", err)
	}
	if d.Version != DescriptorVersion {
		return nil, fmt.Errorf("unsupported descriptor version %d", d.Version)
	}
	return &d, nil
}

// DescriptorRenderer hands scenes to an external renderer by writing a
// descriptor file for it to pick up.
type DescriptorRenderer struct {
	// Path is the descriptor file. Empty means Output + ".json".
	Path string
}

// Render validates s and writes its descriptor.
func (r DescriptorRenderer) Render(ctx context.Context, s *Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	path := r.DescriptorPath(s)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating descriptor: %w", err)
	}
	if err := WriteDescriptor(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// DescriptorPath returns where Render writes the descriptor for s.
func (r DescriptorRenderer) DescriptorPath(s *Scene) string {
	if r.Path != "" {
		return r.Path
	}
	return s.Output + ".json"
}

func vec(v math.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
