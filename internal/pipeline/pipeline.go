// Package pipeline runs the terrain workflow end to end: generate a
// heightfield, flatten it, triangulate it, write the configured
// artifacts and hand the scene to a renderer.
package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/fractal-terrain/internal/config"
	"github.com/Faultbox/fractal-terrain/internal/export"
	"github.com/Faultbox/fractal-terrain/internal/scene"
	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

// objName is the object name written into OBJ exports.
const objName = "terrain"

// Result holds everything a run produced.
type Result struct {
	Seed        uint64
	Heightfield *heightfield.Heightfield // scaled and frozen
	Mesh        *mesh.Mesh               // nil unless an OBJ export was requested
	Scene       *scene.Scene             // nil when rendering is disabled
	Artifacts   []string                 // files written, in order
}

// Pipeline holds a validated config and its collaborators.
type Pipeline struct {
	cfg      *config.Config
	renderer scene.Renderer
	log      *zap.Logger

	// seed draws a seed when the config asks for a random one.
	seed func() uint64
	// gatherer is written to Export.Metrics after a successful run.
	gatherer prometheus.Gatherer
}

// New creates a pipeline. A nil renderer falls back to a
// DescriptorRenderer writing to cfg.Render.Descriptor.
func New(cfg *config.Config, renderer scene.Renderer, log *zap.Logger) *Pipeline {
	if renderer == nil {
		renderer = scene.DescriptorRenderer{Path: cfg.Render.Descriptor}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:      cfg,
		renderer: renderer,
		log:      log,
		seed:     rand.Uint64,
		gatherer: prometheus.DefaultGatherer,
	}
}

// Run executes every stage. It stops at the first failure and between
// stages when ctx is done. When Export.Metrics is set, the run's metrics
// are written there in the Prometheus text format for a node_exporter
// textfile collector.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.run(ctx)
	instrumentRun(err)
	if err != nil {
		return nil, err
	}

	if path := p.cfg.Export.Metrics; path != "" {
		if err := prometheus.WriteToTextfile(path, p.gatherer); err != nil {
			return nil, fmt.Errorf("export metrics: %w", err)
		}
		res.Artifacts = append(res.Artifacts, path)
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context) (*Result, error) {
	res := &Result{Seed: p.cfg.Terrain.Seed}
	if p.cfg.Terrain.RandomSeed {
		res.Seed = p.seed()
	}

	grid, err := p.generate(res.Seed)
	if err != nil {
		return nil, err
	}
	res.Heightfield = grid

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.export(res); err != nil {
		return nil, err
	}

	if !p.cfg.Render.Enabled {
		p.log.Info("render disabled, skipping scene")
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := p.buildScene(grid)
	if err != nil {
		return nil, err
	}
	res.Scene = s

	start := time.Now()
	if err := p.renderer.Render(ctx, s); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	instrumentStage(stageRender, start)
	if dr, ok := p.renderer.(scene.DescriptorRenderer); ok {
		res.Artifacts = append(res.Artifacts, dr.DescriptorPath(s))
	}
	p.log.Info("scene handed to renderer",
		zap.Stringer("scene", s.ID),
		zap.String("output", s.Output),
		zap.Int("objects", s.ObjectCount()),
		zap.Duration("duration", time.Since(start)),
	)

	return res, nil
}

// generate builds the grid, applies the elevation scale and freezes it.
func (p *Pipeline) generate(seed uint64) (*heightfield.Heightfield, error) {
	params := p.cfg.TerrainParams()

	start := time.Now()
	raw, err := heightfield.GenerateSeeded(params, seed)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	grid := raw.Scaled(p.cfg.Terrain.ElevationScale)
	grid.Freeze()
	instrumentStage(stageGenerate, start)
	gridSize.Set(float64(grid.Size()))

	lo, hi := grid.MinMax()
	p.log.Info("heightfield generated",
		zap.Int("iterations", params.Iterations),
		zap.Float64("roughness", params.Roughness),
		zap.Uint64("seed", seed),
		zap.Int("size", grid.Size()),
		zap.Float64("min", lo),
		zap.Float64("max", hi),
		zap.Duration("duration", time.Since(start)),
	)
	return grid, nil
}

// export writes each artifact that has a path configured.
func (p *Pipeline) export(res *Result) error {
	ec := p.cfg.Export
	defer instrumentStage(stageExport, time.Now())

	if ec.Heightfield != "" {
		if err := heightfield.WriteFile(ec.Heightfield, res.Heightfield); err != nil {
			return fmt.Errorf("export heightfield: %w", err)
		}
		res.Artifacts = append(res.Artifacts, ec.Heightfield)
		p.log.Debug("heightfield written", zap.String("path", ec.Heightfield))
	}

	if ec.OBJ != "" {
		start := time.Now()
		m, err := mesh.Build(res.Heightfield, ec.OBJExtent)
		if err != nil {
			return fmt.Errorf("build mesh: %w", err)
		}
		res.Mesh = m
		if err := export.WriteOBJFile(ec.OBJ, m, objName); err != nil {
			return fmt.Errorf("export obj: %w", err)
		}
		res.Artifacts = append(res.Artifacts, ec.OBJ)
		p.log.Info("mesh exported",
			zap.String("path", ec.OBJ),
			zap.Float64("extent", ec.OBJExtent),
			zap.Int("vertices", len(m.Vertices)),
			zap.Int("triangles", m.TriangleCount()),
			zap.Duration("duration", time.Since(start)),
		)
	}

	if ec.Preview != "" {
		if err := export.WritePreviewFile(ec.Preview, res.Heightfield, ec.PreviewScale); err != nil {
			return fmt.Errorf("export preview: %w", err)
		}
		res.Artifacts = append(res.Artifacts, ec.Preview)
		p.log.Debug("preview written", zap.String("path", ec.Preview), zap.Int("scale", ec.PreviewScale))
	}

	return nil
}

// buildScene triangulates the grid and adds the camera and lights.
func (p *Pipeline) buildScene(grid *heightfield.Heightfield) (*scene.Scene, error) {
	rc := p.cfg.Render

	cam, err := rc.Camera.Camera()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	start := time.Now()
	tris, err := mesh.Triangulate(grid, p.cfg.Mesh.DomainScale, p.cfg.Mesh.Material)
	if err != nil {
		return nil, fmt.Errorf("triangulate: %w", err)
	}

	s := scene.New(cam, rc.Output, rc.DPI)
	s.Samples = rc.Samples
	s.Bounces = rc.Bounces
	n := s.AddTriangles(tris)
	for _, l := range rc.Lights {
		s.AddSphere(l.Sphere())
	}
	instrumentStage(stageScene, start)
	trianglesEmitted.Add(float64(n))

	p.log.Info("scene built",
		zap.Int("triangles", n),
		zap.Int("lights", len(rc.Lights)),
		zap.Duration("duration", time.Since(start)),
	)
	return s, nil
}
