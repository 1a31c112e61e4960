package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/fractal-terrain/internal/config"
	"github.com/Faultbox/fractal-terrain/internal/scene"
	"github.com/Faultbox/fractal-terrain/pkg/heightfield"
	"github.com/Faultbox/fractal-terrain/pkg/mesh"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Render.Output = filepath.Join(dir, "terrain.jpg")
	require.NoError(t, cfg.Validate())
	return cfg
}

// recorder is a Renderer that keeps the last scene it saw.
type recorder struct {
	calls int
	last  *scene.Scene
	err   error
}

func (r *recorder) Render(_ context.Context, s *scene.Scene) error {
	r.calls++
	r.last = s
	return r.err
}

func TestRunWritesEveryArtifact(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Render.Output)
	cfg.Export.Heightfield = filepath.Join(dir, "terrain.hfd")
	cfg.Export.OBJ = filepath.Join(dir, "terrain.obj")
	cfg.Export.Preview = filepath.Join(dir, "terrain.png")
	cfg.Export.Metrics = filepath.Join(dir, "terrain.prom")

	res, err := New(cfg, nil, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)

	descriptor := cfg.Render.Output + ".json"
	require.Equal(t, []string{
		cfg.Export.Heightfield,
		cfg.Export.OBJ,
		cfg.Export.Preview,
		descriptor,
		cfg.Export.Metrics,
	}, res.Artifacts)
	for _, path := range res.Artifacts {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		require.Positive(t, info.Size(), path)
	}

	// The stored grid is the one the scene was built from.
	loaded, err := heightfield.ReadFile(cfg.Export.Heightfield)
	require.NoError(t, err)
	require.Equal(t, res.Heightfield.Values(), loaded.Values())

	f, err := os.Open(descriptor)
	require.NoError(t, err)
	defer f.Close()
	d, err := scene.ReadDescriptor(f)
	require.NoError(t, err)
	require.Len(t, d.Objects, mesh.Count(17)+1)
	require.Equal(t, cfg.Render.Samples, d.Samples)
	require.Equal(t, cfg.Render.Bounces, d.Bounces)

	prom, err := os.ReadFile(cfg.Export.Metrics)
	require.NoError(t, err)
	require.Contains(t, string(prom), `terrain_runs_total{result="ok"}`)
	require.Contains(t, string(prom), "terrain_stage_duration_seconds_bucket")
}

func TestRunBuildsScene(t *testing.T) {
	cfg := testConfig(t)
	r := &recorder{}

	res, err := New(cfg, r, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, r.calls)
	require.Same(t, res.Scene, r.last)
	require.Empty(t, res.Artifacts)
	require.Nil(t, res.Mesh)

	s := res.Scene
	require.Len(t, s.Triangles, 2*16*16)
	require.Len(t, s.Spheres, 1)
	require.Equal(t, cfg.Render.Samples, s.Samples)
	require.Equal(t, cfg.Render.Bounces, s.Bounces)
	require.Equal(t, cfg.Render.DPI, s.DPI)
	require.Equal(t, cfg.Mesh.Material, s.Triangles[0].Material)

	// First triangle starts at the footprint corner on the scaled grid.
	first := s.Triangles[0]
	require.Equal(t, -1.0, first.A.X)
	require.Equal(t, -1.0, first.A.Y)
	require.Equal(t, res.Heightfield.MustAt(0, 0), first.A.Z)
}

func TestRunFootprint(t *testing.T) {
	cfg := testConfig(t)
	cfg.Mesh.DomainScale = 3
	cfg.Export.OBJ = filepath.Join(filepath.Dir(cfg.Render.Output), "terrain.obj")
	cfg.Export.OBJExtent = 2.5

	res, err := New(cfg, &recorder{}, nil).Run(context.Background())
	require.NoError(t, err)

	// Render triangles stay on [-1,1] whatever the domain scale.
	first := res.Scene.Triangles[0].A
	require.Equal(t, -1.0, first.X)
	require.Equal(t, -1.0, first.Y)

	// The exported mesh uses its own extent.
	require.Equal(t, -2.5, res.Mesh.Bounds.Min.X)
	require.Equal(t, 2.5, res.Mesh.Bounds.Max.Y)
}

func TestRunAppliesElevationScale(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Enabled = false

	res, err := New(cfg, nil, nil).Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Heightfield.Frozen())

	raw, err := heightfield.GenerateSeeded(cfg.TerrainParams(), cfg.Terrain.Seed)
	require.NoError(t, err)
	want := raw.Values()
	for i := range want {
		want[i] *= cfg.Terrain.ElevationScale
	}
	require.Equal(t, want, res.Heightfield.Values())
}

func TestRunIsReproducible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Enabled = false

	a, err := New(cfg, nil, nil).Run(context.Background())
	require.NoError(t, err)
	b, err := New(cfg, nil, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, a.Heightfield.Values(), b.Heightfield.Values())
}

func TestRunRandomSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Enabled = false
	cfg.Terrain.RandomSeed = true

	p := New(cfg, nil, nil)
	p.seed = func() uint64 { return 42 }

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(42), res.Seed)

	raw, err := heightfield.GenerateSeeded(cfg.TerrainParams(), 42)
	require.NoError(t, err)
	require.Equal(t, raw.Scaled(cfg.Terrain.ElevationScale).Values(), res.Heightfield.Values())
}

func TestRunRenderDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render.Enabled = false
	r := &recorder{}

	res, err := New(cfg, r, nil).Run(context.Background())
	require.NoError(t, err)
	require.Nil(t, res.Scene)
	require.Zero(t, r.calls)
}

func TestRunRendererError(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("renderer crashed")

	_, err := New(cfg, &recorder{err: boom}, nil).Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	r := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(cfg, r, nil).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, r.calls)
}

func TestRunInvalidParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.Terrain.Iterations = -1

	_, err := New(cfg, &recorder{}, nil).Run(context.Background())
	require.ErrorIs(t, err, heightfield.ErrInvalidArgument)
}

func TestRunLogsStages(t *testing.T) {
	cfg := testConfig(t)
	core, logs := observer.New(zapcore.InfoLevel)

	_, err := New(cfg, &recorder{}, zap.New(core)).Run(context.Background())
	require.NoError(t, err)

	generated := logs.FilterMessage("heightfield generated").All()
	require.Len(t, generated, 1)
	fields := generated[0].ContextMap()
	require.EqualValues(t, 17, fields["size"])
	require.EqualValues(t, 4, fields["iterations"])

	built := logs.FilterMessage("scene built").All()
	require.Len(t, built, 1)
	require.EqualValues(t, 512, built[0].ContextMap()["triangles"])

	require.Equal(t, 1, logs.FilterMessage("scene handed to renderer").Len())
}

func TestRunMetrics(t *testing.T) {
	cfg := testConfig(t)

	okBefore := testutil.ToFloat64(runs.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(runs.WithLabelValues("error"))
	trisBefore := testutil.ToFloat64(trianglesEmitted)

	_, err := New(cfg, &recorder{}, nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, okBefore+1, testutil.ToFloat64(runs.WithLabelValues("ok")))
	require.Equal(t, trisBefore+512, testutil.ToFloat64(trianglesEmitted))
	require.Equal(t, 17.0, testutil.ToFloat64(gridSize))
	require.Equal(t, 4, testutil.CollectAndCount(stageLatency))

	_, err = New(cfg, &recorder{err: errors.New("down")}, nil).Run(context.Background())
	require.Error(t, err)
	require.Equal(t, errBefore+1, testutil.ToFloat64(runs.WithLabelValues("error")))
}
