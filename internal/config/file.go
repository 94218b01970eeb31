package config

import (
	"errors"
	"fmt"
	"os"

	"subvox/internal/palette"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when Load gets no path.
const EnvConfigPath = "SUBVOX_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk configuration file.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Colors  PaletteConfig `yaml:"palette"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type MeshConfig struct {
	ChunkSize int  `yaml:"chunk_size"`
	LOD       *int `yaml:"lod"`
	Workers   int  `yaml:"workers"`
}

// PaletteConfig lists hex colors; fewer than 64 entries repeat cyclically.
type PaletteConfig struct {
	Hex []string `yaml:"colors"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a YAML config file.
// If path == "", it falls back to $SUBVOX_CONFIG and returns nil, nil when
// neither is set.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that clamping would silently change.
func (c *Config) Validate() error {
	if c.Mesh.ChunkSize < 0 || c.Mesh.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: chunk_size %d out of range [1, %d]", ErrInvalidConfig, c.Mesh.ChunkSize, MaxChunkSize)
	}
	if c.Mesh.LOD != nil && (*c.Mesh.LOD < 0 || *c.Mesh.LOD > MaxLODLevel) {
		return fmt.Errorf("%w: lod %d out of range [0, %d]", ErrInvalidConfig, *c.Mesh.LOD, MaxLODLevel)
	}
	if c.Mesh.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Mesh.Workers)
	}
	if _, err := c.Palette(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Apply pushes the values set in the file into the global settings. Zero
// values leave the current setting untouched.
func (c *Config) Apply() {
	if c.Mesh.ChunkSize > 0 {
		SetChunkSize(c.Mesh.ChunkSize)
	}
	if c.Mesh.LOD != nil {
		SetLODLevel(*c.Mesh.LOD)
	}
	if c.Mesh.Workers > 0 {
		SetWorkers(c.Mesh.Workers)
	}
}

// Palette returns the configured palette, or the default one when no colors
// are listed.
func (c *Config) Palette() (*palette.Palette, error) {
	if len(c.Colors.Hex) == 0 {
		return palette.Default(), nil
	}
	return palette.FromHex(c.Colors.Hex)
}
