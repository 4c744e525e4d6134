package driftsquares

// DefaultDriftPerFrame is the horizontal speed in world units per frame.
const DefaultDriftPerFrame = 0.001

// Animate drifts every quad along X by dx.
func Animate(scene *Scene, dx float64) {
	if scene == nil {
		return
	}
	for _, quad := range scene.Quads {
		quad.Translate(dx)
	}
}

// Submit uploads and draws each quad in scene order, one draw call per quad.
// It stops at the first backend failure.
func Submit(scene *Scene, backend Backend) error {
	if scene == nil {
		return nil
	}
	for _, quad := range scene.Quads {
		buf, err := backend.CreateVertexBuffer(quad.Vertices[:])
		if err != nil {
			return backendErr("create vertex buffer", err)
		}
		if err := backend.BindAndDraw(buf, QuadVertexCount); err != nil {
			return backendErr("bind and draw", err)
		}
	}
	return nil
}

// AdvanceAndSubmit runs one whole frame: Animate, Submit, then a single
// Present. An empty scene still presents.
func AdvanceAndSubmit(scene *Scene, backend Backend, dx float64) error {
	Animate(scene, dx)
	if err := Submit(scene, backend); err != nil {
		return err
	}
	return backendErr("present", backend.Present())
}

// AnimatorModule animates and submits the *Scene resource every frame.
type AnimatorModule struct {
	// Drift is applied once per frame.
	Drift float64
	// FixedRate, when positive, scales Drift by elapsed seconds times
	// FixedRate, making the speed independent of the refresh rate.
	FixedRate float64
}

// Animation holds the per-frame drift settings as a resource.
type Animation struct {
	Drift     float64
	FixedRate float64
	// Delta is the translation applied on the latest frame.
	Delta float64
}

func (a *Animation) delta(clock *FrameClock) float64 {
	if a.FixedRate > 0 && clock != nil {
		return a.Drift * clock.Dt.Seconds() * a.FixedRate
	}
	return a.Drift
}

func (mod AnimatorModule) Install(app *App, cmd *Commands) error {
	if _, ok := Resource[Scene](app); !ok {
		return &GenerationError{Field: "scene", Reason: "AnimatorModule needs a Scene; install ShapeGeneratorModule first"}
	}
	anim := &Animation{Drift: mod.Drift, FixedRate: mod.FixedRate}
	if anim.FixedRate > 0 {
		if _, ok := Resource[FrameClock](app); !ok {
			return &GenerationError{Field: "fixed_rate", Reason: "fixed rate animation needs TimeModule"}
		}
		app.UseSystem(
			System(fixedAnimateSystem).
				InStage(Update),
		)
	} else {
		app.UseSystem(
			System(animateSystem).
				InStage(Update),
		)
	}
	app.UseSystem(
		System(submitSystem).
			InStage(Render),
	)
	app.UseSystem(
		System(presentSystem).
			InStage(PostRender),
	)
	cmd.AddResources(anim)
	return nil
}

func animateSystem(scene *Scene, anim *Animation) {
	anim.Delta = anim.delta(nil)
	Animate(scene, anim.Delta)
}

func fixedAnimateSystem(scene *Scene, anim *Animation, clock *FrameClock) {
	anim.Delta = anim.delta(clock)
	Animate(scene, anim.Delta)
}

func submitSystem(scene *Scene, backend Backend) error {
	return Submit(scene, backend)
}

func presentSystem(backend Backend) error {
	return backendErr("present", backend.Present())
}
