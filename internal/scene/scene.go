package scene

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

// Render defaults used when a scene does not set them.
const (
	DefaultSamples = 500
	DefaultBounces = 6
)

// Triangle is a terrain triangle carrying a scene material.
type Triangle = mesh.Triangle[Material]

// Scene is everything a render call needs.
type Scene struct {
	ID        uuid.UUID
	Camera    Camera
	Triangles []Triangle
	Spheres   []Sphere
	Output    string
	DPI       int
	Samples   int
	Bounces   int
}

// New returns an empty scene with the default sample and bounce counts.
func New(camera Camera, output string, dpi int) *Scene {
	return &Scene{
		ID:      uuid.New(),
		Camera:  camera,
		Output:  output,
		DPI:     dpi,
		Samples: DefaultSamples,
		Bounces: DefaultBounces,
	}
}

// AddTriangles drains seq into the scene and returns how many were added.
func (s *Scene) AddTriangles(seq iter.Seq[Triangle]) int {
	n := 0
	for t := range seq {
		s.Triangles = append(s.Triangles, t)
		n++
	}
	return n
}

// AddSphere appends a sphere.
func (s *Scene) AddSphere(sp Sphere) {
	s.Spheres = append(s.Spheres, sp)
}

// ObjectCount returns the number of primitives in the scene.
func (s *Scene) ObjectCount() int {
	return len(s.Triangles) + len(s.Spheres)
}

// Validate reports every problem with the scene at once.
func (s *Scene) Validate() error {
	var err error
	if s.Output == "" {
		err = multierr.Append(err, fmt.Errorf("%w: empty output path", ErrInvalidScene))
	}
	if s.DPI <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: dpi must be > 0, got %d", ErrInvalidScene, s.DPI))
	}
	if s.Samples <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: samples must be > 0, got %d", ErrInvalidScene, s.Samples))
	}
	if s.Bounces < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: bounces must be >= 0, got %d", ErrInvalidScene, s.Bounces))
	}
	err = multierr.Append(err, s.Camera.Validate())
	for i, sp := range s.Spheres {
		if serr := sp.Validate(); serr != nil {
			err = multierr.Append(err, fmt.Errorf("sphere %d: %w", i, serr))
		}
	}

	// Triangles usually share one material; check each distinct one once.
	seen := make(map[Material]bool)
	for _, t := range s.Triangles {
		if seen[t.Material] {
			continue
		}
		seen[t.Material] = true
		if merr := t.Material.Validate(); merr != nil {
			err = multierr.Append(err, fmt.Errorf("triangle material: %w", merr))
		}
	}
	return err
}

// Renderer turns a scene into an image. Implementations live outside
// this module.
type Renderer interface {
	Render(ctx context.Context, s *Scene) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, s *Scene) error

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, s *Scene) error {
	return f(ctx, s)
}
