package sim

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/systems"
	"github.com/pthm-cable/fallout/telemetry"
)

// Tick advances the simulation by dt seconds: advect, deposit the plume into
// the contamination mask and flush telemetry windows. A paused world or a
// non-positive dt does nothing.
func (w *World) Tick(dt float64) {
	if w.paused || dt <= 0 {
		return
	}

	w.perf.StartTick()
	if w.pendingEmit > 0 {
		w.perf.AddPhase(telemetry.PhaseEmit, w.pendingEmit)
		w.pendingEmit = 0
	}

	w.perf.StartPhase(telemetry.PhaseAdvect)
	step := w.advector.Step(w.pool, dt, w.wind)
	w.collector.RecordStep(dt, step.Advected, step.Expired)
	w.tick++
	w.simTime += dt

	w.perf.StartPhase(telemetry.PhaseDeposit)
	w.deposit()

	w.perf.StartPhase(telemetry.PhaseTelemetry)
	w.flushTelemetry()

	w.perf.EndTick()
}

// deposit rasterizes the live plume into the mask inside a capture.
func (w *World) deposit() {
	if w.pool.Len() == 0 {
		return
	}
	w.instances = w.pool.Snapshot(w.instances[:0])
	err := w.mask.WithCapture(func(c *systems.Capture) error {
		_, err := c.DepositParticles(w.instances)
		return err
	})
	if err != nil {
		slog.Error("deposit failed", "tick", w.tick, "error", err)
	}
}

// Explode releases a burst from plant i at its current power and returns how
// many particles entered the pool.
func (w *World) Explode(i int) (int, error) {
	p, err := w.plants.Get(i)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	source := r3.Add(p.Position, r3.Vec{Y: w.cfg.Plume.ReleaseHeight})
	requested := w.emitter.ComputeParams(p.PowerMW).Count
	emitted := w.emitter.Emit(w.pool, source, p.PowerMW)
	dropped := requested - emitted
	w.pendingEmit += time.Since(start)

	if err := w.plants.MarkReleased(i, w.tick); err != nil {
		return emitted, err
	}
	w.collector.RecordExplosion(emitted, dropped)
	w.recordEvent(telemetry.NewExplosionEvent(w.tick, w.simTime, p.Name, p.PowerMW, emitted, dropped))
	return emitted, nil
}

// ExplodeSelected releases from the selected plant. Returns 0 with no error
// when nothing is selected.
func (w *World) ExplodeSelected() (int, error) {
	i, ok := w.selection.Index()
	if !ok {
		return 0, nil
	}
	return w.Explode(i)
}

// Select replaces the selection. Selecting an unknown plant is an error and
// leaves the selection unchanged.
func (w *World) Select(sel systems.Selection) error {
	if i, ok := sel.Index(); ok {
		if _, err := w.plants.Get(i); err != nil {
			return err
		}
	}
	if sel == w.selection {
		return nil
	}
	w.selection = sel

	name := ""
	if i, ok := sel.Index(); ok {
		p, _ := w.plants.Get(i)
		name = p.Name
	}
	w.recordEvent(telemetry.NewSelectionEvent(w.tick, w.simTime, name))
	return nil
}

// Selected returns the current selection.
func (w *World) Selected() systems.Selection {
	return w.selection
}

// SelectedPlant returns the selected plant, if any.
func (w *World) SelectedPlant() (systems.Plant, bool) {
	i, ok := w.selection.Index()
	if !ok {
		return systems.Plant{}, false
	}
	p, err := w.plants.Get(i)
	if err != nil {
		return systems.Plant{}, false
	}
	return p, true
}

// Pick selects the first plant ray hits, or clears the selection on a miss.
func (w *World) Pick(ray systems.Ray) systems.Selection {
	sel := w.plants.Pick(ray)
	// Pick only yields indices from the registry, so Select cannot fail.
	_ = w.Select(sel)
	return sel
}

// CycleSelection moves the selection by delta plants in load order, wrapping
// around. With nothing selected it starts at the first or last plant.
func (w *World) CycleSelection(delta int) systems.Selection {
	n := w.plants.Len()
	if n == 0 {
		return w.selection
	}
	next := 0
	if i, ok := w.selection.Index(); ok {
		next = ((i+delta)%n + n) % n
	} else if delta < 0 {
		next = n - 1
	}
	_ = w.Select(systems.Selected(next))
	return w.selection
}

// ClearMask removes all accumulated contamination.
func (w *World) ClearMask() {
	w.mask.Clear()
	w.bookmarks.ResetCoverage()
	w.recordEvent(telemetry.NewMaskClearedEvent(w.tick, w.simTime))
}

// SetPlantPower changes the output of plant i, clamped to the configured
// range, and returns the stored value.
func (w *World) SetPlantPower(i int, powerMW float64) (float64, error) {
	before, err := w.plants.Get(i)
	if err != nil {
		return 0, err
	}
	stored, err := w.plants.SetPower(i, powerMW)
	if err != nil {
		return 0, err
	}
	if stored != before.PowerMW {
		w.recordEvent(telemetry.NewPowerChangedEvent(w.tick, w.simTime, before.Name, stored))
	}
	return stored, nil
}

// ToggleWind flips wind arrow visibility and returns the new state.
func (w *World) ToggleWind() bool {
	w.showWind = !w.showWind
	return w.showWind
}

// ShowWind reports whether wind arrows are visible.
func (w *World) ShowWind() bool {
	return w.showWind
}

// Stats returns a summary of the current state.
func (w *World) Stats() Stats {
	return Stats{
		Tick:      w.tick,
		SimTime:   w.simTime,
		Particles: w.pool.Len(),
		Capacity:  w.pool.Cap(),
		Coverage:  w.mask.Coverage(),
		Selection: w.selection,
		ShowWind:  w.showWind,
		Paused:    w.paused,
	}
}

func (w *World) recordEvent(e telemetry.Event) {
	e.LogEvent()
	if err := w.output.WriteEvent(e); err != nil {
		slog.Error("failed to write event", "error", err)
	}
}
