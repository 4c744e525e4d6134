// Package rasterbackend is a headless software renderer. It rasterizes
// triangle strips into an RGBA image and can dump frames as PNG files.
package rasterbackend

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gekko3d/driftsquares"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

var (
	ErrUnknownBuffer = errors.New("rasterbackend: unknown buffer handle")
	ErrReleased      = errors.New("rasterbackend: backend released")
)

// ClearColor matches the GPU backend clear color.
var ClearColor = color.RGBA{R: 32, G: 103, B: 178, A: 255}

var FillColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

type Options struct {
	Width  int
	Height int
	// Frames ends the loop after that many frames, 0 runs until ctx is done.
	Frames int
	// SnapshotDir receives frame_NNNNNN.png files when set.
	SnapshotDir   string
	SnapshotEvery int
	Logger        driftsquares.Logger
}

type Stats struct {
	Frames   int
	Draws    int
	Presents int
	Buffers  int
}

type Backend struct {
	opts       Options
	log        driftsquares.Logger
	frame      *image.RGBA
	last       *image.RGBA
	rasterizer *vector.Rasterizer
	fill       *image.Uniform
	buffers    map[driftsquares.BufferHandle][][2]float32
	nextHandle driftsquares.BufferHandle
	stats      Stats
	released   bool
}

func New(opts Options) (*Backend, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("rasterbackend: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.Logger == nil {
		opts.Logger = driftsquares.NewNopLogger()
	}
	if opts.SnapshotDir != "" {
		if err := os.MkdirAll(opts.SnapshotDir, 0o755); err != nil {
			return nil, fmt.Errorf("rasterbackend: snapshot dir: %w", err)
		}
		if opts.SnapshotEvery <= 0 {
			opts.SnapshotEvery = 1
		}
	}
	b := &Backend{
		opts:       opts,
		log:        opts.Logger,
		frame:      image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		last:       image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height)),
		rasterizer: vector.NewRasterizer(opts.Width, opts.Height),
		fill:       image.NewUniform(FillColor),
		buffers:    make(map[driftsquares.BufferHandle][][2]float32),
	}
	b.clearFrame()
	return b, nil
}

func (b *Backend) clearFrame() {
	draw.Draw(b.frame, b.frame.Bounds(), image.NewUniform(ClearColor), image.Point{}, draw.Src)
}

// toPixel maps clip space onto the image, y pointing down.
func (b *Backend) toPixel(p driftsquares.Point3) [2]float32 {
	w, h := float64(b.opts.Width), float64(b.opts.Height)
	return [2]float32{
		float32((p.X() + 1) / 2 * w),
		float32((1 - p.Y()) / 2 * h),
	}
}

func (b *Backend) CreateVertexBuffer(vertices []driftsquares.Point3) (driftsquares.BufferHandle, error) {
	if b.released {
		return 0, ErrReleased
	}
	pts := make([][2]float32, len(vertices))
	for i, v := range vertices {
		pts[i] = b.toPixel(v)
	}
	b.nextHandle++
	b.buffers[b.nextHandle] = pts
	b.stats.Buffers++
	return b.nextHandle, nil
}

func (b *Backend) BindAndDraw(buf driftsquares.BufferHandle, vertexCount int) error {
	if b.released {
		return ErrReleased
	}
	pts, ok := b.buffers[buf]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuffer, buf)
	}
	if vertexCount > len(pts) {
		return fmt.Errorf("rasterbackend: draw of %d vertices from a %d vertex buffer", vertexCount, len(pts))
	}

	// triangle strip: every window of three consecutive vertices is a triangle
	for i := 0; i+2 < vertexCount; i++ {
		a, c, d := pts[i], pts[i+1], pts[i+2]
		b.rasterizer.Reset(b.opts.Width, b.opts.Height)
		b.rasterizer.MoveTo(a[0], a[1])
		b.rasterizer.LineTo(c[0], c[1])
		b.rasterizer.LineTo(d[0], d[1])
		b.rasterizer.ClosePath()
		b.rasterizer.Draw(b.frame, b.frame.Bounds(), b.fill, image.Point{})
	}
	b.stats.Draws++
	return nil
}

func (b *Backend) Present() error {
	if b.released {
		return ErrReleased
	}
	b.stats.Presents++
	draw.Draw(b.last, b.last.Bounds(), b.frame, image.Point{}, draw.Src)
	defer func() {
		clear(b.buffers)
		b.clearFrame()
	}()

	// the label only goes into the snapshot, LastFrame stays unstamped
	if b.opts.SnapshotDir != "" && b.stats.Presents%b.opts.SnapshotEvery == 0 {
		return b.snapshot()
	}
	return nil
}

func (b *Backend) snapshot() error {
	d := &font.Drawer{
		Dst:  b.frame,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 14),
	}
	d.DrawString(fmt.Sprintf("frame %d", b.stats.Presents))

	path := filepath.Join(b.opts.SnapshotDir, fmt.Sprintf("frame_%06d.png", b.stats.Presents))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rasterbackend: snapshot: %w", err)
	}
	if err := png.Encode(f, b.frame); err != nil {
		f.Close()
		return fmt.Errorf("rasterbackend: encode %s: %w", path, err)
	}
	b.log.Debugf("Wrote snapshot %s", path)
	return f.Close()
}

// Frame returns the image being drawn. It is cleared on Present.
func (b *Backend) Frame() *image.RGBA {
	return b.frame
}

// LastFrame returns the most recently presented image.
func (b *Backend) LastFrame() *image.RGBA {
	return b.last
}

func (b *Backend) Stats() Stats {
	return b.stats
}

func (b *Backend) RunFrameLoop(ctx context.Context, onFrame func() error) error {
	b.log.Infof("Raster loop started (%dx%d, frames=%d)", b.opts.Width, b.opts.Height, b.opts.Frames)
	for b.opts.Frames == 0 || b.stats.Frames < b.opts.Frames {
		if err := ctx.Err(); err != nil {
			b.log.Infof("Raster loop cancelled after %d frames", b.stats.Frames)
			return nil
		}
		if err := onFrame(); err != nil {
			return err
		}
		b.stats.Frames++
	}
	return nil
}

func (b *Backend) Release() {
	b.released = true
	b.buffers = nil
}
