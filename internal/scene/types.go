// Package scene holds the values handed to an external path tracer:
// materials, camera, light spheres and the terrain triangles.
package scene

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// Scene errors.
var (
	ErrInvalidMaterial = errors.New("invalid material")
	ErrInvalidCamera   = errors.New("invalid camera")
	ErrInvalidSphere   = errors.New("invalid sphere")
	ErrInvalidScene    = errors.New("invalid scene")
	ErrZeroDirection   = errors.New("ray direction has zero length")
)

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R float64 `yaml:"r" json:"r"`
	G float64 `yaml:"g" json:"g"`
	B float64 `yaml:"b" json:"b"`
}

// Validate checks that every component is in [0, 1].
func (c Color) Validate() error {
	for _, v := range [3]float64{c.R, c.G, c.B} {
		if !inUnit(v) {
			return fmt.Errorf("color component %v not in [0, 1]", v)
		}
	}
	return nil
}

// Material describes how a surface scatters and emits light.
// Specularity and Diffusion are probabilities in [0, 1]. Hardness scales
// the random spread of reflections and Refraction weights transmitted
// light; both only need to be non-negative.
type Material struct {
	Specularity float64 `yaml:"specularity" json:"specularity"`
	Hardness    float64 `yaml:"hardness" json:"hardness"`
	Diffusion   float64 `yaml:"diffusion" json:"diffusion"`
	Refraction  float64 `yaml:"refraction" json:"refraction"`
	Emittance   float64 `yaml:"emittance" json:"emittance"`
	Color       Color   `yaml:"color" json:"color"`
}

// Validate checks material ranges.
func (m Material) Validate() error {
	var err error
	probs := []struct {
		name string
		v    float64
	}{
		{"specularity", m.Specularity},
		{"diffusion", m.Diffusion},
	}
	for _, p := range probs {
		if !inUnit(p.v) {
			err = multierr.Append(err, fmt.Errorf("%w: %s %v not in [0, 1]", ErrInvalidMaterial, p.name, p.v))
		}
	}
	weights := []struct {
		name string
		v    float64
	}{
		{"hardness", m.Hardness},
		{"refraction", m.Refraction},
		{"emittance", m.Emittance},
	}
	for _, w := range weights {
		if gomath.IsNaN(w.v) || gomath.IsInf(w.v, 0) || w.v < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s %v must be finite and >= 0", ErrInvalidMaterial, w.name, w.v))
		}
	}
	if cerr := m.Color.Validate(); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%w: %v", ErrInvalidMaterial, cerr))
	}
	return err
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Base      math.Vec3
	Direction math.Vec3
}

// NewRay returns a ray from base along direction, normalized.
func NewRay(base, direction math.Vec3) (Ray, error) {
	if !base.IsFinite() || !direction.IsFinite() {
		return Ray{}, fmt.Errorf("ray has non-finite components")
	}
	if direction.Length() == 0 {
		return Ray{}, ErrZeroDirection
	}
	return Ray{Base: base, Direction: direction.Normalize()}, nil
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) math.Vec3 {
	return r.Base.Add(r.Direction.Scale(t))
}

// Camera is a pinhole (or thin lens) camera. Normal is the ray through
// the screen centre; the eye sits Distance behind it.
type Camera struct {
	Normal   Ray
	Width    float64
	Height   float64
	Distance float64
	// Aperture and FocalLength enable depth of field when both are set.
	Aperture    *float64
	FocalLength *float64
}

// NewCamera validates and returns a camera.
func NewCamera(normal Ray, width, height, distance float64) (Camera, error) {
	c := Camera{Normal: normal, Width: width, Height: height, Distance: distance}
	if err := c.Validate(); err != nil {
		return Camera{}, err
	}
	return c, nil
}

// WithLens returns a copy of c with depth of field enabled.
func (c Camera) WithLens(aperture, focalLength float64) Camera {
	c.Aperture = &aperture
	c.FocalLength = &focalLength
	return c
}

// Validate checks camera dimensions.
func (c Camera) Validate() error {
	if !(c.Width > 0) || !(c.Height > 0) || !(c.Distance > 0) {
		return fmt.Errorf("%w: width, height and distance must be > 0", ErrInvalidCamera)
	}
	if gomath.Abs(c.Normal.Direction.Length()-1) > 1e-9 {
		return fmt.Errorf("%w: normal direction is not a unit vector", ErrInvalidCamera)
	}
	if c.Aperture != nil && *c.Aperture < 0 {
		return fmt.Errorf("%w: negative aperture", ErrInvalidCamera)
	}
	if c.FocalLength != nil && *c.FocalLength <= 0 {
		return fmt.Errorf("%w: focal length must be > 0", ErrInvalidCamera)
	}
	return nil
}

// Basis returns the screen vectors spanning the width and height of the
// image plane.
func (c Camera) Basis() (x, y math.Vec3) {
	d := c.Normal.Direction
	x = d.Cross(math.UnitY).Normalize().Scale(-c.Width)
	y = d.Cross(math.UnitX).Normalize().Scale(c.Height)
	return x, y
}

// Eye returns the eye position behind the screen.
func (c Camera) Eye() math.Vec3 {
	return c.Normal.At(-c.Distance)
}

// Sphere is a sphere primitive, used here as an area light.
type Sphere struct {
	Center   math.Vec3
	Radius   float64
	Material Material
}

// Validate checks the sphere.
func (s Sphere) Validate() error {
	if !s.Center.IsFinite() || !(s.Radius > 0) {
		return fmt.Errorf("%w: radius must be > 0 at a finite centre", ErrInvalidSphere)
	}
	return s.Material.Validate()
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
