package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/fallout/sim"
	"github.com/pthm-cable/fallout/systems"
)

// App runs the terminal viewer. The world is only touched from Run's
// goroutine; input arrives over a channel.
type App struct {
	screen tcell.Screen
	world  *sim.World
	view   *View
	dt     float64
	frame  time.Duration

	// OnExplode is called after a plant released a burst.
	OnExplode func(p systems.Plant, emitted int)
}

// NewApp creates an app drawing world on an initialized screen. Each frame
// advances the world by dt seconds.
func NewApp(screen tcell.Screen, world *sim.World, backdrop *systems.Backdrop, dt float64, fps int) *App {
	if fps <= 0 {
		fps = 30
	}
	return &App{
		screen: screen,
		world:  world,
		view:   NewView(screen, world, backdrop),
		dt:     dt,
		frame:  time.Second / time.Duration(fps),
	}
}

// View returns the app's view.
func (a *App) View() *View {
	return a.view
}

// Run steps and draws until ctx is done or the user quits.
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	a.view.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.Apply(CommandFor(ev)) {
					return nil
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
		case <-ticker.C:
			a.world.Tick(a.dt)
			a.view.Draw()
		}
	}
}

// Apply executes cmd against the world and redraws. It returns false when
// the app should quit.
func (a *App) Apply(cmd Command) bool {
	switch cmd {
	case CmdQuit:
		return false
	case CmdNext:
		a.world.CycleSelection(1)
	case CmdPrev:
		a.world.CycleSelection(-1)
	case CmdExplode:
		a.explode()
	case CmdClear:
		a.world.ClearMask()
	case CmdToggleWind:
		a.world.ToggleWind()
	case CmdPowerUp:
		a.adjustPower(powerStep)
	case CmdPowerDown:
		a.adjustPower(-powerStep)
	case CmdPause:
		a.world.TogglePause()
	case CmdNone:
		return true
	}
	a.view.Draw()
	return true
}

func (a *App) explode() {
	p, ok := a.world.SelectedPlant()
	if !ok {
		return
	}
	emitted, err := a.world.Explode(p.Index)
	if err != nil {
		slog.Error("explosion failed", "plant", p.Name, "error", err)
		return
	}
	if a.OnExplode != nil {
		a.OnExplode(p, emitted)
	}
}

func (a *App) adjustPower(delta float64) {
	p, ok := a.world.SelectedPlant()
	if !ok {
		return
	}
	if _, err := a.world.SetPlantPower(p.Index, p.PowerMW+delta); err != nil {
		slog.Error("failed to set power", "plant", p.Name, "error", err)
	}
}
