// Package config handles terrain pipeline configuration loading and management.
package config

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/fractal-terrain/internal/scene"
	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/math"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all pipeline settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Mesh    MeshConfig    `yaml:"mesh"`
	Render  RenderConfig  `yaml:"render"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds heightfield generation settings.
type TerrainConfig struct {
	Roughness      float64 `yaml:"roughness"`
	Iterations     int     `yaml:"iterations"`
	Seed           uint64  `yaml:"seed"`
	RandomSeed     bool    `yaml:"random_seed"`     // Ignore Seed and draw one at startup
	ElevationScale float64 `yaml:"elevation_scale"` // Applied before triangulation
}

// MeshConfig holds triangulation settings.
type MeshConfig struct {
	DomainScale float64        `yaml:"domain_scale"` // Passed to the triangulator; vertices stay on [-1,1]
	Material    scene.Material `yaml:"material"`
}

// CameraConfig describes the render camera.
type CameraConfig struct {
	Base        [3]float64 `yaml:"base"`
	Direction   [3]float64 `yaml:"direction"`
	Width       float64    `yaml:"width"`
	Height      float64    `yaml:"height"`
	Distance    float64    `yaml:"distance"`
	Aperture    *float64   `yaml:"aperture,omitempty"`
	FocalLength *float64   `yaml:"focal_length,omitempty"`
}

// LightConfig describes a spherical light.
type LightConfig struct {
	Center   [3]float64     `yaml:"center"`
	Radius   float64        `yaml:"radius"`
	Material scene.Material `yaml:"material"`
}

// RenderConfig holds the settings passed to the external renderer.
type RenderConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Camera     CameraConfig  `yaml:"camera"`
	Lights     []LightConfig `yaml:"lights"`
	Output     string        `yaml:"output"`
	DPI        int           `yaml:"dpi"`
	Samples    int           `yaml:"samples"`
	Bounces    int           `yaml:"bounces"`
	Descriptor string        `yaml:"descriptor"` // Scene JSON path; empty = output + ".json"
}

// ExportConfig holds optional artifact paths. Empty paths are skipped.
type ExportConfig struct {
	OBJ          string  `yaml:"obj"`
	OBJExtent    float64 `yaml:"obj_extent"` // Half-extent of the exported mesh footprint
	Preview      string  `yaml:"preview"`
	PreviewScale int     `yaml:"preview_scale"`
	Heightfield  string  `yaml:"heightfield"`
	Metrics      string  `yaml:"metrics"` // Prometheus textfile
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config matching the reference landscape: a 17x17
// grid at roughness 0.25, flattened to 0.2 and lit by one large sphere.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Roughness:      0.25,
			Iterations:     4,
			Seed:           1,
			ElevationScale: 0.2,
		},
		Mesh: MeshConfig{
			DomainScale: 1.0,
			Material: scene.Material{
				Specularity: 0.1,
				Hardness:    1.0,
				Diffusion:   1.0,
				Refraction:  0.2,
				Emittance:   0.0,
				Color:       scene.Color{R: 0.99, G: 0.99, B: 0.99},
			},
		},
		Render: RenderConfig{
			Enabled: true,
			Camera: CameraConfig{
				Base:      [3]float64{-2, -2, -1},
				Direction: [3]float64{1, 1, 0.5},
				Width:     1.25,
				Height:    0.75,
				Distance:  2,
			},
			Lights: []LightConfig{
				{
					Center: [3]float64{-100, -60, -60},
					Radius: 90,
					Material: scene.Material{
						Diffusion: 0.1,
						Emittance: 1.0,
						Color:     scene.Color{R: 1, G: 1, B: 1},
					},
				},
			},
			Output:  "terrain.jpg",
			DPI:     300,
			Samples: 200,
			Bounces: 4,
		},
		Export: ExportConfig{
			OBJExtent:    1.0,
			PreviewScale: 8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// TerrainParams returns the generator parameters.
func (c *Config) TerrainParams() heightfield.Params {
	return heightfield.Params{
		Roughness:  c.Terrain.Roughness,
		Iterations: c.Terrain.Iterations,
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	add := func(format string, args ...any) {
		err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if perr := c.TerrainParams().Validate(); perr != nil {
		add("terrain: %v", perr)
	}
	if !finite(c.Terrain.ElevationScale) {
		add("terrain.elevation_scale must be finite")
	}
	if !finite(c.Mesh.DomainScale) {
		add("mesh.domain_scale must be finite, got %v", c.Mesh.DomainScale)
	}
	if merr := c.Mesh.Material.Validate(); merr != nil {
		add("mesh.material: %v", merr)
	}
	if !finite(c.Export.OBJExtent) || c.Export.OBJExtent <= 0 {
		add("export.obj_extent must be > 0, got %v", c.Export.OBJExtent)
	}
	if c.Export.PreviewScale < 1 {
		add("export.preview_scale must be >= 1, got %d", c.Export.PreviewScale)
	}

	if c.Render.Enabled {
		if c.Render.Output == "" {
			add("render.output is required")
		}
		if c.Render.DPI <= 0 {
			add("render.dpi must be > 0, got %d", c.Render.DPI)
		}
		if c.Render.Samples <= 0 {
			add("render.samples must be > 0, got %d", c.Render.Samples)
		}
		if c.Render.Bounces < 0 {
			add("render.bounces must be >= 0, got %d", c.Render.Bounces)
		}
		if _, cerr := c.Render.Camera.Camera(); cerr != nil {
			add("render.camera: %v", cerr)
		}
		for i, l := range c.Render.Lights {
			if l.Radius <= 0 {
				add("render.lights[%d].radius must be > 0", i)
			}
			if merr := l.Material.Validate(); merr != nil {
				add("render.lights[%d].material: %v", i, merr)
			}
		}
	}

	return err
}

// Camera converts the camera settings to a validated scene camera.
func (c CameraConfig) Camera() (scene.Camera, error) {
	normal, err := scene.NewRay(vec(c.Base), vec(c.Direction))
	if err != nil {
		return scene.Camera{}, err
	}
	cam, err := scene.NewCamera(normal, c.Width, c.Height, c.Distance)
	if err != nil {
		return scene.Camera{}, err
	}
	if c.Aperture != nil && c.FocalLength != nil {
		cam = cam.WithLens(*c.Aperture, *c.FocalLength)
		if err := cam.Validate(); err != nil {
			return scene.Camera{}, err
		}
	}
	return cam, nil
}

// Sphere converts a light to a scene sphere.
func (l LightConfig) Sphere() scene.Sphere {
	return scene.Sphere{Center: vec(l.Center), Radius: l.Radius, Material: l.Material}
}

func vec(v [3]float64) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

func finite(f float64) bool {
	return !gomath.IsNaN(f) && !gomath.IsInf(f, 0)
}
