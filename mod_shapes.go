package driftsquares

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// RandSource is the random stream the generator draws anchors from.
// *rand.Rand satisfies it.
type RandSource interface {
	// Float64 returns a number in [0.0,1.0).
	Float64() float64
}

// NewRandSource returns a seeded source. A zero seed picks one from the clock.
func NewRandSource(seed int64) (RandSource, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// AnchorRange bounds the random anchor of each quad as half-open intervals.
type AnchorRange struct {
	MinX float64 `toml:"min_x"`
	MaxX float64 `toml:"max_x"`
	MinY float64 `toml:"min_y"`
	MaxY float64 `toml:"max_y"`
	MinZ float64 `toml:"min_z"`
	MaxZ float64 `toml:"max_z"`
}

var DefaultAnchorRange = AnchorRange{
	MinX: 0, MaxX: 2,
	MinY: 0, MaxY: 2,
	MinZ: -1, MaxZ: 1,
}

func (r AnchorRange) Validate() error {
	axes := []struct {
		name     string
		min, max float64
	}{
		{"anchor_range.x", r.MinX, r.MaxX},
		{"anchor_range.y", r.MinY, r.MaxY},
		{"anchor_range.z", r.MinZ, r.MaxZ},
	}
	for _, a := range axes {
		if math.IsNaN(a.min) || math.IsNaN(a.max) || math.IsInf(a.min, 0) || math.IsInf(a.max, 0) {
			return &GenerationError{Field: a.name, Reason: "bounds must be finite"}
		}
		if a.min >= a.max {
			return &GenerationError{Field: a.name, Reason: fmt.Sprintf("min %g must be below max %g", a.min, a.max)}
		}
	}
	return nil
}

func uniform(rnd RandSource, min, max float64) float64 {
	v := min + rnd.Float64()*(max-min)
	if v >= max {
		// rounding can land on max for ranges that are not powers of two
		v = math.Nextafter(max, min)
	}
	return v
}

// Generate builds n quads at random anchors. Negative n is rejected with a
// *GenerationError. Only the anchor X and Y are applied to the vertices;
// the anchor Z is drawn and kept on Quad.Anchor but every vertex Z stays 0.
func Generate(n int, rnd RandSource, bounds AnchorRange, log Logger) (*Scene, error) {
	if n < 0 {
		return nil, &GenerationError{Field: "quad_count", Reason: fmt.Sprintf("must be >= 0, got %d", n)}
	}
	if rnd == nil {
		return nil, &GenerationError{Field: "rand", Reason: "random source is nil"}
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = NewNopLogger()
	}

	scene := &Scene{Quads: make([]*Quad, 0, n)}
	for i := 0; i < n; i++ {
		anchor := Point3{
			uniform(rnd, bounds.MinX, bounds.MaxX),
			uniform(rnd, bounds.MinY, bounds.MaxY),
			uniform(rnd, bounds.MinZ, bounds.MaxZ),
		}
		quad := &Quad{
			ID:     uuid.NewString(),
			Anchor: anchor,
		}
		for v, offset := range QuadTemplate {
			quad.Vertices[v] = Point3{offset.X() + anchor.X(), offset.Y() + anchor.Y(), 0}
		}
		log.Debugf("quad %d (%s) upper-left %v", i, quad.ID, quad.Vertices[UpperLeft])
		scene.Quads = append(scene.Quads, quad)
	}
	return scene, nil
}

// ShapeGeneratorModule generates the scene at install time, so invalid
// settings fail the App build before any backend exists.
type ShapeGeneratorModule struct {
	Count int
	// Bounds defaults to DefaultAnchorRange when left zero.
	Bounds AnchorRange
	Seed   int64
	// Rand overrides Seed when set.
	Rand RandSource
}

func (mod ShapeGeneratorModule) Install(app *App, cmd *Commands) error {
	log := app.Logger()

	rnd := mod.Rand
	if rnd == nil {
		var seed int64
		rnd, seed = NewRandSource(mod.Seed)
		log.Infof("Shape generator seed: %d", seed)
	}

	bounds := mod.Bounds
	if bounds == (AnchorRange{}) {
		bounds = DefaultAnchorRange
	}

	scene, err := Generate(mod.Count, rnd, bounds, log)
	if err != nil {
		log.Errorf("Shape generation failed: %v", err)
		return err
	}
	log.Infof("Generated %d quads", scene.Len())
	cmd.AddResources(scene)
	return nil
}
