package driftsquares

import (
	"context"
	"reflect"
)

// BufferHandle identifies a vertex buffer owned by a Backend. A handle is
// only valid until the next Present.
type BufferHandle uint64

// Backend is the rendering device the animator submits geometry to.
// All methods are called from the goroutine running RunFrameLoop.
type Backend interface {
	// CreateVertexBuffer uploads vertices and returns a handle for one draw.
	CreateVertexBuffer(vertices []Point3) (BufferHandle, error)
	// BindAndDraw binds buf as the vertex source and draws vertexCount
	// vertices as a triangle strip.
	BindAndDraw(buf BufferHandle, vertexCount int) error
	// Present displays the completed frame.
	Present() error
	// RunFrameLoop calls onFrame once per frame until shutdown. Shutdown is
	// only checked between frames. The first onFrame error ends the loop and
	// is returned as is.
	RunFrameLoop(ctx context.Context, onFrame func() error) error
	// Release frees device resources.
	Release()
}

// BackendName identifies a concrete backend implementation.
type BackendName string

const (
	BackendWGPU   BackendName = "wgpu"
	BackendRaster BackendName = "raster"
)

// backendTag marks that a backend has been installed into the App.
type backendTag struct {
	Name BackendName
}

var typeOfBackend = reflect.TypeOf((*Backend)(nil)).Elem()

// UseBackend installs exactly one backend. Installing the same name twice
// replaces the instance; a different name fails.
func (app *App) UseBackend(name BackendName, backend Backend) error {
	t := reflect.TypeOf((*backendTag)(nil)).Elem()
	if res, ok := app.resources[t]; ok {
		tag := res.(*backendTag)
		if tag.Name != name {
			app.Logger().Errorf("Multiple backends installed: %s and %s", tag.Name, name)
			return ErrMultipleBackends
		}
	} else {
		app.addResources(&backendTag{Name: name})
	}
	app.backend = backend
	app.Logger().Infof("Backend selected: %s", name)
	return nil
}

// Backend returns the installed backend or nil.
func (app *App) Backend() Backend {
	return app.backend
}
