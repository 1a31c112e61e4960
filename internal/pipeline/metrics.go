package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageLabel  = "stage"
	resultLabel = "result"
)

// Stage names used in logs and metrics.
const (
	stageGenerate = "generate"
	stageExport   = "export"
	stageScene    = "scene"
	stageRender   = "render"
)

var (
	stageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "terrain_stage_duration_seconds",
		Help:    "The time spent in each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{
		stageLabel,
	})

	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "terrain_runs_total",
		Help: "The number of pipeline runs by outcome.",
	}, []string{
		resultLabel,
	})

	trianglesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "terrain_triangles_emitted_total",
		Help: "The number of triangles streamed into scenes.",
	})

	gridSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "terrain_grid_size",
		Help: "The side length of the last generated heightfield.",
	})
)

func instrumentStage(stage string, start time.Time) {
	stageLatency.With(prometheus.Labels{
		stageLabel: stage,
	}).Observe(time.Since(start).Seconds())
}

func instrumentRun(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	runs.With(prometheus.Labels{
		resultLabel: result,
	}).Inc()
}
