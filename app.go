package driftsquares

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// Module contributes resources and systems to an App.
type Module interface {
	Install(app *App, cmd *Commands) error
}

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	backend   Backend
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages() {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

// Run executes the Once stages and then hands the per-frame stages to the
// backend frame loop. It returns when the loop ends or a system fails.
func (app *App) Run(ctx context.Context) error {
	if app.backend == nil {
		return ErrNoBackend
	}
	log := app.Logger()

	for _, stage := range app.stages {
		if !stage.Once {
			continue
		}
		if err := app.callStage(stage); err != nil {
			log.Errorf("Stage %s failed: %v", stage.Name, err)
			return err
		}
	}

	log.Infof("Entering frame loop...")
	err := app.backend.RunFrameLoop(ctx, app.Frame)
	if err != nil {
		log.Errorf("Frame loop aborted: %v", err)
		return err
	}
	log.Infof("Frame loop finished")
	return nil
}

// Frame runs every per-frame stage once, stopping at the first failing system.
func (app *App) Frame() error {
	for _, stage := range app.stages {
		if stage.Once {
			continue
		}
		if err := app.callStage(stage); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) callStage(stage Stage) error {
	for _, system := range app.systems[stage.Name] {
		if err := app.callSystem(system); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the installed *T resource.
func Resource[T any](app *App) (*T, bool) {
	res, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return res.(*T), true
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfLogger   = reflect.TypeOf((*Logger)(nil)).Elem()
)

func (app *App) callSystem(system systemFn) error {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		switch {
		case argType == typeOfBackend:
			if app.backend == nil {
				return ErrNoBackend
			}
			args[i] = reflect.ValueOf(app.backend)
		case argType == typeOfLogger:
			args[i] = reflect.ValueOf(app.Logger())
		case argType.Kind() == reflect.Pointer && argType.Elem() == typeOfCommands:
			args[i] = reflect.ValueOf(&Commands{app: app})
		default:
			var resource any
			var ok bool
			if argType.Kind() == reflect.Pointer {
				resource, ok = app.resources[argType.Elem()]
			}
			if !ok {
				msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
					runtime.FuncForPC(systemValue.Pointer()).Name(),
					fmt.Sprint(systemType),
					fmt.Sprint(argType),
				)
				panic(msg)
			}
			args[i] = reflect.ValueOf(resource)
		}
	}

	out := systemValue.Call(args)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
