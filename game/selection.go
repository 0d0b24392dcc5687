package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fallout/systems"
)

// pickAt selects the first plant under the screen point, or clears the
// selection when the ray hits nothing.
func (g *Game) pickAt(sx, sy float32) {
	ray, err := g.cam.Ray(float64(sx), float64(sy))
	if err != nil {
		slog.Debug("pick ray failed", "x", sx, "y", sy, "error", err)
		return
	}
	sel := g.world.Pick(ray)
	if i, ok := sel.Index(); ok {
		p, _ := g.world.Plants().Get(i)
		slog.Info("plant selected", "index", i, "name", p.Name, "power_mw", p.PowerMW)
	}
}

// explode releases the selected plant and plays the cue.
func (g *Game) explode() {
	p, ok := g.world.SelectedPlant()
	if !ok {
		return
	}
	g.explodePlant(p)
}

func (g *Game) explodePlant(p systems.Plant) {
	emitted, err := g.world.Explode(p.Index)
	if err != nil {
		slog.Error("explosion failed", "plant", p.Name, "error", err)
		return
	}
	g.audio.PlayExplosion(p.PowerMW)
	slog.Debug("burst emitted", "plant", p.Name, "emitted", emitted)
}

// ExplodeNamed releases the plant with the given name.
func (g *Game) ExplodeNamed(name string) error {
	i, ok := g.world.Plants().Find(name)
	if !ok {
		return fmt.Errorf("plant %q: %w", name, systems.ErrNoSuchPlant)
	}
	p, err := g.world.Plants().Get(i)
	if err != nil {
		return err
	}
	g.explodePlant(p)
	return nil
}

// setSelectedPower applies a slider change to the selected plant.
func (g *Game) setSelectedPower(powerMW float64) {
	i, ok := g.world.Selected().Index()
	if !ok {
		return
	}
	if _, err := g.world.SetPlantPower(i, powerMW); err != nil {
		slog.Error("failed to set power", "index", i, "error", err)
	}
}
