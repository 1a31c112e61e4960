package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfig names a terrain config file when --config is not given.
const EnvConfig = "FRACTAL_TERRAIN_CONFIG"

// configNames are tried in order in each search directory.
var configNames = []string{"terrain.yaml", "terrain.yml"}

// Load builds the run configuration from defaults, then the first config
// file found, then CLI flags. The merged result must pass Validate.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath picks the config file: --config, then $FRACTAL_TERRAIN_CONFIG,
// then the search directories. An empty result means defaults only.
func resolveConfigPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return findConfigFile()
}

// findConfigFile searches the working directory, then ConfigDir.
func findConfigFile() string {
	for _, dir := range []string{".", ConfigDir()} {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// ConfigDir returns fractal-terrain's directory under the user config
// root, or a relative one if the root cannot be determined.
func ConfigDir() string {
	root, err := os.UserConfigDir()
	if err != nil {
		return "fractal-terrain"
	}
	return filepath.Join(root, "fractal-terrain")
}

// loadFromFile merges a YAML file into cfg. Unknown keys are errors, so a
// misspelt "iteration:" does not silently fall back to the default grid.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
