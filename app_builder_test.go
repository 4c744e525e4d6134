package driftsquares

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModule struct {
	installed bool
	err       error
}

func (m *MockModule) Install(app *App, commands *Commands) error {
	m.installed = true
	return m.err
}

func TestAppBuilder_DefaultStages(t *testing.T) {
	app, err := NewAppBuilder().Build()
	require.NoError(t, err)

	assert.Equal(t, defaultStages(), app.stages)
	for _, s := range app.stages {
		assert.Contains(t, app.systems, s.Name)
	}
}

func TestAppBuilder_UseModule(t *testing.T) {
	builder := NewAppBuilder()
	mockModule := &MockModule{}
	builder.UseModule(mockModule)

	if len(builder.modules) != 1 {
		t.Errorf("Expected modules to contain 1 module, got %v", len(builder.modules))
	}
}

func TestAppBuilder_Build_WithMultipleModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	builder := NewAppBuilder()
	builder.UseModule(module1)
	builder.UseModule(module2)

	_, err := builder.Build()
	require.NoError(t, err)

	if !module1.installed {
		t.Errorf("Expected Install to be called on the module 1, but it was not")
	}
	if !module2.installed {
		t.Errorf("Expected Install to be called on the module 2, but it was not")
	}
}

func TestAppBuilder_Build_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	module1 := &MockModule{err: boom}
	module2 := &MockModule{}

	app, err := NewAppBuilder().UseModule(module1, module2).Build()

	assert.Nil(t, app)
	assert.ErrorIs(t, err, boom)
	assert.True(t, module1.installed)
	assert.False(t, module2.installed)
}

func TestAppBuilder_LoggingModule(t *testing.T) {
	app, err := NewAppBuilder().UseModule(LoggingModule{Prefix: "test", Debug: true}).Build()
	require.NoError(t, err)

	log := app.Logger()
	_, isNop := log.(*nopLogger)
	assert.False(t, isNop)
	assert.True(t, log.DebugEnabled())
}
