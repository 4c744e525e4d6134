package driftsquares

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type RasterConfig struct {
	// Frames to render before the loop ends, 0 runs until cancelled.
	Frames        int    `toml:"frames"`
	SnapshotDir   string `toml:"snapshot_dir"`
	SnapshotEvery int    `toml:"snapshot_every"`
}

type LogConfig struct {
	Prefix string `toml:"prefix"`
	Debug  bool   `toml:"debug"`
}

// Config is everything the host supplies at startup.
type Config struct {
	QuadCount     int          `toml:"quad_count"`
	DriftPerFrame float64      `toml:"drift_per_frame"`
	FixedRate     float64      `toml:"fixed_rate"`
	Seed          int64        `toml:"seed"`
	AnchorRange   AnchorRange  `toml:"anchor_range"`
	Renderer      BackendName  `toml:"renderer"`
	Window        WindowConfig `toml:"window"`
	Raster        RasterConfig `toml:"raster"`
	Log           LogConfig    `toml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		QuadCount:     4,
		DriftPerFrame: DefaultDriftPerFrame,
		AnchorRange:   DefaultAnchorRange,
		Renderer:      BackendWGPU,
		Window: WindowConfig{
			Width:  1000,
			Height: 1000,
			Title:  "Drifting squares",
		},
		Raster: RasterConfig{
			Frames:        600,
			SnapshotEvery: 60,
		},
		Log: LogConfig{
			Prefix: "driftsquares",
		},
	}
}

// LoadConfig overlays the TOML file at path onto DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports scene problems as *GenerationError. Host settings that
// do not affect generation come back as plain errors.
func (c *Config) Validate() error {
	if c.QuadCount < 0 {
		return &GenerationError{Field: "quad_count", Reason: fmt.Sprintf("must be >= 0, got %d", c.QuadCount)}
	}
	if math.IsNaN(c.DriftPerFrame) || math.IsInf(c.DriftPerFrame, 0) {
		return &GenerationError{Field: "drift_per_frame", Reason: "must be finite"}
	}
	if math.IsNaN(c.FixedRate) || math.IsInf(c.FixedRate, 0) || c.FixedRate < 0 {
		return &GenerationError{Field: "fixed_rate", Reason: "must be finite and >= 0"}
	}
	if err := c.AnchorRange.Validate(); err != nil {
		return err
	}
	switch c.Renderer {
	case BackendWGPU, BackendRaster:
	default:
		return fmt.Errorf("unknown renderer %q", c.Renderer)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Raster.Frames < 0 || c.Raster.SnapshotEvery < 0 {
		return fmt.Errorf("raster frames and snapshot_every must be >= 0")
	}
	return nil
}
