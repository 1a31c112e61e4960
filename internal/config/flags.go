package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSeed       = flag.Uint64("seed", 0, "Random seed (0 = keep config value)")
	flagRandomSeed = flag.Bool("random-seed", false, "Draw a fresh random seed")
	flagIterations = flag.Int("iterations", -1, "Diamond-square iterations (grid side 2^n+1)")
	flagRoughness  = flag.Float64("roughness", 0, "Roughness, > 0")
	flagOutput     = flag.String("output", "", "Rendered image path")
	flagOBJ        = flag.String("obj", "", "Write the terrain mesh as OBJ")
	flagPreview    = flag.String("preview", "", "Write a grayscale PNG heightmap")
	flagHeightmap  = flag.String("hfd", "", "Write the raw heightfield")
	flagMetrics    = flag.String("metrics", "", "Write Prometheus metrics to a textfile")
	flagNoRender   = flag.Bool("no-render", false, "Skip the render hand-off")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
		cfg.Terrain.RandomSeed = false
	}
	if *flagRandomSeed {
		cfg.Terrain.RandomSeed = true
	}
	if *flagIterations >= 0 {
		cfg.Terrain.Iterations = *flagIterations
	}
	if *flagRoughness != 0 {
		cfg.Terrain.Roughness = *flagRoughness
	}
	if *flagOutput != "" {
		cfg.Render.Output = *flagOutput
	}
	if *flagOBJ != "" {
		cfg.Export.OBJ = *flagOBJ
	}
	if *flagPreview != "" {
		cfg.Export.Preview = *flagPreview
	}
	if *flagHeightmap != "" {
		cfg.Export.Heightfield = *flagHeightmap
	}
	if *flagMetrics != "" {
		cfg.Export.Metrics = *flagMetrics
	}
	if *flagNoRender {
		cfg.Render.Enabled = false
	}
}
