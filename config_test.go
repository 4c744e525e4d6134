package driftsquares

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "squares.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 4, cfg.QuadCount)
	assert.Equal(t, 0.001, cfg.DriftPerFrame)
	assert.Equal(t, DefaultAnchorRange, cfg.AnchorRange)
	assert.Equal(t, 1000, cfg.Window.Width)
	assert.Equal(t, 1000, cfg.Window.Height)
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
quad_count = 12
drift_per_frame = 0.002
seed = 77
renderer = "raster"

[anchor_range]
min_x = -1.0
max_x = 1.0
min_y = 0.0
max_y = 2.0
min_z = -1.0
max_z = 1.0

[raster]
frames = 30
snapshot_dir = "out"
snapshot_every = 10

[log]
debug = true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 12, cfg.QuadCount)
	assert.Equal(t, 0.002, cfg.DriftPerFrame)
	assert.Equal(t, int64(77), cfg.Seed)
	assert.Equal(t, BackendRaster, cfg.Renderer)
	assert.Equal(t, -1.0, cfg.AnchorRange.MinX)
	assert.Equal(t, 30, cfg.Raster.Frames)
	assert.Equal(t, "out", cfg.Raster.SnapshotDir)
	assert.True(t, cfg.Log.Debug)
	// untouched keys keep their defaults
	assert.Equal(t, "driftsquares", cfg.Log.Prefix)
	assert.Equal(t, 1000, cfg.Window.Width)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	path := writeConfig(t, "quad_cuont = 3\n")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Config)
		generation bool
	}{
		{"negative quads", func(c *Config) { c.QuadCount = -1 }, true},
		{"inverted x range", func(c *Config) { c.AnchorRange.MinX, c.AnchorRange.MaxX = 2, 0 }, true},
		{"empty z range", func(c *Config) { c.AnchorRange.MaxZ = c.AnchorRange.MinZ }, true},
		{"negative fixed rate", func(c *Config) { c.FixedRate = -1 }, true},
		{"NaN fixed rate", func(c *Config) { c.FixedRate = math.NaN() }, true},
		{"infinite fixed rate", func(c *Config) { c.FixedRate = math.Inf(1) }, true},
		{"unknown renderer", func(c *Config) { c.Renderer = "vulkan" }, false},
		{"zero window", func(c *Config) { c.Window.Width = 0 }, false},
		{"negative frames", func(c *Config) { c.Raster.Frames = -2 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var genErr *GenerationError
			assert.Equal(t, tt.generation, errors.As(err, &genErr))
		})
	}
}

func TestConfig_ZeroQuadsIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QuadCount = 0
	assert.NoError(t, cfg.Validate())
}
