package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/renderer"
	"github.com/pthm-cable/fallout/ui"
)

const controlsLegend = "WASD/RF: fly | RMB: look | LMB: select | Tab: cycle | E: explode | V: wind | C: clear | Space: pause | P: perf | F11: fullscreen"

// Draw renders the frame: map and contamination, plants, wind arrows, the
// plume and finally the UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 16, B: 22, A: 255})

	g.mapRenderer.Sync(g.world.Mask())
	cam3d := renderer.Camera3D(g.cam)

	rl.BeginMode3D(cam3d)
	g.mapRenderer.Draw()
	g.plantRenderer.Draw(g.world.Plants().All(), g.world.Selected())
	if g.world.ShowWind() {
		g.windRenderer.Draw(g.world.Field().Samples(), g.world.SimTime())
	}
	g.instances = g.world.Pool().Snapshot(g.instances[:0])
	g.particleRenderer.Draw(cam3d, g.instances)
	rl.EndMode3D()

	g.drawUI()

	rl.EndDrawing()
}

// drawUI draws the panels and applies what the user did with them.
func (g *Game) drawUI() {
	stats := g.world.Stats()

	g.hud.Draw(ui.HUDData{
		Title:     g.cfg.Screen.Title,
		Tick:      stats.Tick,
		SimTime:   stats.SimTime,
		Particles: stats.Particles,
		Capacity:  stats.Capacity,
		Coverage:  stats.Coverage,
		FPS:       rl.GetFPS(),
		Paused:    stats.Paused,
	}, int32(g.screenHeight)-20)
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
	g.perfPanel.Draw(g.world.Perf().Stats())

	ctl := g.controls.Draw(stats.ShowWind)
	if ctl.ToggleWind {
		g.world.ToggleWind()
	}
	if ctl.ClearMask {
		g.world.ClearMask()
	}

	plant, selected := g.world.SelectedPlant()
	act := g.explosion.Draw(plant, selected)
	if act.PowerChanged {
		g.setSelectedPower(act.PowerMW)
	}
	if act.Explode {
		g.explode()
	}
}
