package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gekko3d/driftsquares"
	"github.com/gekko3d/driftsquares/backend/rasterbackend"
	"github.com/gekko3d/driftsquares/backend/wgpubackend"
)

// GLFW has to stay on the main thread.
func init() {
	runtime.LockOSThread()
}

type flags struct {
	config    string
	renderer  string
	quads     int
	seed      int64
	frames    int
	snapshots string
	debug     bool
}

func parseFlags(args []string) (*flags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("driftsquares", flag.ContinueOnError)
	f := &flags{}
	fs.StringVar(&f.config, "config", "", "path to a TOML config file")
	fs.StringVar(&f.renderer, "renderer", "", "backend to render with: wgpu or raster")
	fs.IntVar(&f.quads, "quads", -1, "number of quads to generate")
	fs.Int64Var(&f.seed, "seed", 0, "random seed, 0 picks one from the clock")
	fs.IntVar(&f.frames, "frames", -1, "raster backend: frames to render, 0 runs until interrupted")
	fs.StringVar(&f.snapshots, "snapshots", "", "raster backend: directory for PNG snapshots")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// loadConfig layers explicitly set flags over the config file.
func loadConfig(f *flags, fs *flag.FlagSet) (*driftsquares.Config, error) {
	cfg := driftsquares.DefaultConfig()
	if f.config != "" {
		loaded, err := driftsquares.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "renderer":
			cfg.Renderer = driftsquares.BackendName(f.renderer)
		case "quads":
			cfg.QuadCount = f.quads
		case "seed":
			cfg.Seed = f.seed
		case "frames":
			cfg.Raster.Frames = f.frames
		case "snapshots":
			cfg.Raster.SnapshotDir = f.snapshots
		case "debug":
			cfg.Log.Debug = f.debug
		}
	})
	return cfg, cfg.Validate()
}

func buildApp(cfg *driftsquares.Config) (*driftsquares.App, error) {
	return driftsquares.NewAppBuilder().
		UseModule(
			driftsquares.LoggingModule{Prefix: cfg.Log.Prefix, Debug: cfg.Log.Debug},
			driftsquares.ShapeGeneratorModule{
				Count:  cfg.QuadCount,
				Bounds: cfg.AnchorRange,
				Seed:   cfg.Seed,
			},
			driftsquares.TimeModule{},
			driftsquares.AnimatorModule{
				Drift:     cfg.DriftPerFrame,
				FixedRate: cfg.FixedRate,
			},
		).
		Build()
}

func newBackend(cfg *driftsquares.Config, log driftsquares.Logger) (driftsquares.Backend, error) {
	switch cfg.Renderer {
	case driftsquares.BackendRaster:
		return rasterbackend.New(rasterbackend.Options{
			Width:         cfg.Window.Width,
			Height:        cfg.Window.Height,
			Frames:        cfg.Raster.Frames,
			SnapshotDir:   cfg.Raster.SnapshotDir,
			SnapshotEvery: cfg.Raster.SnapshotEvery,
			Logger:        log,
		})
	case driftsquares.BackendWGPU:
		return wgpubackend.New(wgpubackend.Options{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
			Logger: log,
		})
	}
	return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
}

func run(args []string) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f, fs)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	app, err := buildApp(cfg)
	if err != nil {
		return err
	}
	log := app.Logger()

	backend, err := newBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("backend %s: %w", cfg.Renderer, err)
	}
	defer backend.Release()
	if err := app.UseBackend(cfg.Renderer, backend); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "driftsquares:", err)
		os.Exit(1)
	}
}
