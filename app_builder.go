package driftsquares

import (
	"fmt"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module in order. The first Install error aborts the
// build and no App is returned.
func (b *AppBuilder) Build() (*App, error) {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		if err := module.Install(app, commands); err != nil {
			return nil, fmt.Errorf("install %T: %w", module, err)
		}
	}

	return app, nil
}
