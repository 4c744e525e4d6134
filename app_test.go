package driftsquares

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)

	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	// Expect panic when trying to add the same type of resource again
	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)

	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")
}

func TestApp_addResources_RejectsValues(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() {
		app.addResources(MockResource1{name: "value"})
	})
}

func TestApp_callSystem_InjectsResources(t *testing.T) {
	app := newApp()
	app.addResources(NewMockResource1("one"))
	backend := newRecordingBackend()
	require.NoError(t, app.UseBackend(BackendRaster, backend))

	var gotName string
	var gotBackend Backend
	var gotCmd *Commands
	err := app.callSystem(func(r *MockResource1, b Backend, cmd *Commands, log Logger) {
		gotName = r.name
		gotBackend = b
		gotCmd = cmd
		assert.NotNil(t, log)
	})

	require.NoError(t, err)
	assert.Equal(t, "one", gotName)
	assert.Same(t, backend, gotBackend)
	require.NotNil(t, gotCmd)
	assert.Same(t, app, gotCmd.app)
}

func TestApp_callSystem_ReturnsError(t *testing.T) {
	app := newApp()
	boom := errors.New("boom")

	err := app.callSystem(func() error { return boom })
	assert.Same(t, boom, err)

	assert.NoError(t, app.callSystem(func() error { return nil }))
}

func TestApp_callSystem_MissingDependencyPanics(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() {
		_ = app.callSystem(func(r *MockResource2) {})
	})
}

func TestApp_callSystem_BackendMissing(t *testing.T) {
	app := newApp()
	err := app.callSystem(func(b Backend) {})
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestApp_UseSystem_Validation(t *testing.T) {
	app := newApp()

	assert.Panics(t, func() { app.UseSystem(System(42)) })
	assert.Panics(t, func() { app.UseSystem(System(func() int { return 0 })) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"})) })
	assert.NotPanics(t, func() { app.UseSystem(System(func() error { return nil }).InStage(Render)) })
}

func TestApp_UseStage(t *testing.T) {
	app := newApp()
	debug := Stage{Name: "Debug"}
	app.UseStage(debug, AfterStage(Render))

	names := make([]string, 0, len(app.stages))
	for _, s := range app.stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Startup", "PreUpdate", "Update", "Render", "Debug", "PostRender"}, names)

	app.UseStage(Stage{Name: "First"}, BeforeStage(Startup))
	assert.Equal(t, "First", app.stages[0].Name)

	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, AfterStage(Stage{Name: "Missing"})) })
}

func TestApp_FrameRunsStagesInOrder(t *testing.T) {
	app := newApp()
	var order []string
	app.UseSystem(System(func() { order = append(order, "startup") }).InStage(Startup))
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostRender))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.UseSystem(System(func() { order = append(order, "render") }).InStage(Render))
	app.UseSystem(System(func() { order = append(order, "pre") }).InStage(PreUpdate))

	backend := newRecordingBackend()
	backend.maxFrames = 2
	require.NoError(t, app.UseBackend(BackendRaster, backend))
	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{
		"startup",
		"pre", "update", "render", "post",
		"pre", "update", "render", "post",
	}, order)
}

func TestApp_RunWithoutBackend(t *testing.T) {
	app := newApp()
	assert.ErrorIs(t, app.Run(context.Background()), ErrNoBackend)
}

func TestApp_StartupErrorSkipsFrameLoop(t *testing.T) {
	app := newApp()
	boom := errors.New("startup failed")
	frames := 0
	app.UseSystem(System(func() error { return boom }).InStage(Startup))
	app.UseSystem(System(func() { frames++ }).InStage(Update))

	backend := newRecordingBackend()
	backend.maxFrames = 5
	require.NoError(t, app.UseBackend(BackendRaster, backend))

	assert.ErrorIs(t, app.Run(context.Background()), boom)
	assert.Equal(t, 0, frames)
	assert.Equal(t, 0, backend.frames)
}

func TestApp_CancelledContextStopsBetweenFrames(t *testing.T) {
	app := newApp()
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	app.UseSystem(System(func() {
		frames++
		if frames == 3 {
			cancel()
		}
	}).InStage(Update))
	app.UseSystem(System(func(b Backend) error { return b.Present() }).InStage(PostRender))

	backend := newRecordingBackend()
	backend.maxFrames = 100
	require.NoError(t, app.UseBackend(BackendRaster, backend))

	require.NoError(t, app.Run(ctx))
	assert.Equal(t, 3, frames)
	// the cancelling frame still presents
	assert.Equal(t, 3, backend.presents)
}

func TestApp_UseBackend_Single(t *testing.T) {
	app := newApp()
	require.NoError(t, app.UseBackend(BackendRaster, newRecordingBackend()))

	second := newRecordingBackend()
	require.NoError(t, app.UseBackend(BackendRaster, second))
	assert.Same(t, second, app.Backend())

	assert.ErrorIs(t, app.UseBackend(BackendWGPU, newRecordingBackend()), ErrMultipleBackends)
	assert.Same(t, second, app.Backend())
}
