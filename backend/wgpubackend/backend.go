// Package wgpubackend renders quads into a GLFW window through WebGPU.
package wgpubackend

import (
	"context"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/driftsquares"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var ErrUnknownBuffer = errors.New("wgpubackend: unknown buffer handle")

// ClearColor is the background every frame starts from.
var ClearColor = wgpu.Color{R: 32.0 / 255, G: 103.0 / 255, B: 178.0 / 255, A: 1.0}

type Options struct {
	Width  int
	Height int
	Title  string
	Logger driftsquares.Logger
}

type frameState struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	ended   bool
}

type Backend struct {
	log      driftsquares.Logger
	window   *windowState
	gpu      *gpuState
	pipeline *wgpu.RenderPipeline

	frame      *frameState
	buffers    map[driftsquares.BufferHandle]*wgpu.Buffer
	nextHandle driftsquares.BufferHandle
	scratch    []quadVertex
}

// New opens the window and sets up the device. Call it from the main
// goroutine and keep every other call on that goroutine.
func New(opts Options) (*Backend, error) {
	if opts.Logger == nil {
		opts.Logger = driftsquares.NewNopLogger()
	}
	log := opts.Logger

	ws, err := createWindowState(opts.Width, opts.Height, opts.Title)
	if err != nil {
		return nil, err
	}
	log.Infof("Created window (%dx%d) '%s'", opts.Width, opts.Height, opts.Title)

	gs, err := createGpuState(ws)
	if err != nil {
		ws.release()
		return nil, err
	}

	pipeline, err := createRenderPipeline("Quad Pipeline", QuadWGSL, quadVertex{}, gs)
	if err != nil {
		gs.release()
		ws.release()
		return nil, err
	}
	log.Infof("Render pipeline ready (format %v)", gs.surfaceConfig.Format)

	return &Backend{
		log:      log,
		window:   ws,
		gpu:      gs,
		pipeline: pipeline,
		buffers:  make(map[driftsquares.BufferHandle]*wgpu.Buffer),
	}, nil
}

// beginFrame acquires the surface texture and opens the render pass, once
// per frame.
func (b *Backend) beginFrame() error {
	if b.frame != nil {
		return nil
	}
	texture, err := b.gpu.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("create view: %w", err)
	}
	encoder, err := b.gpu.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		texture.Release()
		return fmt.Errorf("create command encoder: %w", err)
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: ClearColor,
			},
		},
	})
	pass.SetPipeline(b.pipeline)

	b.frame = &frameState{
		texture: texture,
		view:    view,
		encoder: encoder,
		pass:    pass,
	}
	return nil
}

type passCloser interface {
	End() error
	Release()
}

// closePass releases a render pass, ending it first when the frame was
// aborted before Present.
func closePass(pass passCloser, ended bool) error {
	var err error
	if !ended {
		err = pass.End()
	}
	pass.Release()
	return err
}

func (b *Backend) endFrame() {
	if b.frame == nil {
		return
	}
	if err := closePass(b.frame.pass, b.frame.ended); err != nil {
		b.log.Warnf("End aborted render pass: %v", err)
	}
	b.frame.encoder.Release()
	b.frame.view.Release()
	b.frame.texture.Release()
	b.frame = nil

	for h, buf := range b.buffers {
		buf.Release()
		delete(b.buffers, h)
	}
}

func (b *Backend) CreateVertexBuffer(vertices []driftsquares.Point3) (driftsquares.BufferHandle, error) {
	b.scratch = b.scratch[:0]
	for _, v := range vertices {
		b.scratch = append(b.scratch, quadVertex{Position: toVec3f(v)})
	}
	buf, err := b.gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Quad Vertex Buffer",
		Contents: wgpu.ToBytes(b.scratch),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return 0, fmt.Errorf("create vertex buffer: %w", err)
	}
	b.nextHandle++
	b.buffers[b.nextHandle] = buf
	return b.nextHandle, nil
}

func (b *Backend) BindAndDraw(handle driftsquares.BufferHandle, vertexCount int) error {
	buf, ok := b.buffers[handle]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBuffer, handle)
	}
	if err := b.beginFrame(); err != nil {
		return err
	}
	b.frame.pass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
	b.frame.pass.Draw(uint32(vertexCount), 1, 0, 0)
	return nil
}

// Present ends the pass, submits it and flips the surface. Buffers created
// during the frame are released.
func (b *Backend) Present() error {
	if err := b.beginFrame(); err != nil {
		return err
	}
	defer b.endFrame()

	b.frame.ended = true
	if err := b.frame.pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}
	cmdBuffer, err := b.frame.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmdBuffer.Release()

	b.gpu.queue.Submit(cmdBuffer)
	b.gpu.surface.Present()
	return nil
}

func (b *Backend) RunFrameLoop(ctx context.Context, onFrame func() error) error {
	frames := 0
	for !b.window.shouldClose() {
		if ctx.Err() != nil {
			b.log.Infof("Frame loop cancelled after %d frames", frames)
			return nil
		}
		glfw.PollEvents()
		if err := onFrame(); err != nil {
			return err
		}
		frames++
	}
	b.log.Infof("Window closed after %d frames", frames)
	return nil
}

func (b *Backend) Release() {
	b.endFrame()
	if b.pipeline != nil {
		b.pipeline.Release()
		b.pipeline = nil
	}
	if b.gpu != nil {
		b.gpu.release()
		b.gpu = nil
	}
	if b.window != nil {
		b.window.release()
		b.window = nil
	}
}
