package driftsquares

import (
	"time"
)

// FrameClock counts rendered frames and the wall time between them.
type FrameClock struct {
	Frame uint64
	Time  time.Time
	Dt    time.Duration

	now func() time.Time
}

type TimeModule struct {
	// Now overrides the clock source, mainly for tests.
	Now func() time.Time
}

func (mod TimeModule) Install(app *App, cmd *Commands) error {
	now := mod.Now
	if now == nil {
		now = time.Now
	}
	cmd.AddResources(&FrameClock{
		Time: now(),
		Dt:   0,
		now:  now,
	})
	app.UseSystem(
		System(frameClockStartSystem).
			InStage(Startup),
	)
	app.UseSystem(
		System(frameClockSystem).
			InStage(PreUpdate),
	)
	return nil
}

// frameClockStartSystem restarts the clock once the backend is up, so setup
// time never lands in the first frame's Dt.
func frameClockStartSystem(clock *FrameClock) {
	clock.Time = clock.now()
	clock.Dt = 0
}

func frameClockSystem(clock *FrameClock) {
	now := clock.now()

	clock.Frame++
	clock.Dt = now.Sub(clock.Time)
	clock.Time = now
}
