package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/camera"
)

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.world.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		delta := 1
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			delta = -1
		}
		g.world.CycleSelection(delta)
	}
	if rl.IsKeyPressed(rl.KeyE) {
		g.explode()
	}
	if rl.IsKeyPressed(rl.KeyV) {
		g.world.ToggleWind()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.world.ClearMask()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.perfPanel.Toggle()
	}

	g.handleCameraInput()

	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && !g.overPanel(mouse) {
		g.pickAt(mouse.X, mouse.Y)
	}
}

// overPanel reports whether p is over any UI panel.
func (g *Game) overPanel(p rl.Vector2) bool {
	return g.controls.Contains(p) || g.explosion.Contains(p)
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.cam.Resize(float64(w), float64(h))
	g.explosion.Resize(int32(w))
}

// handleCameraInput flies the camera with WASD, R/F for height and Shift for
// speed. Holding the right mouse button looks around.
func (g *Game) handleCameraInput() {
	var m camera.Movement
	if rl.IsKeyDown(rl.KeyW) {
		m.Forward++
	}
	if rl.IsKeyDown(rl.KeyS) {
		m.Forward--
	}
	if rl.IsKeyDown(rl.KeyD) {
		m.Strafe++
	}
	if rl.IsKeyDown(rl.KeyA) {
		m.Strafe--
	}
	if rl.IsKeyDown(rl.KeyR) {
		m.Lift++
	}
	if rl.IsKeyDown(rl.KeyF) {
		m.Lift--
	}
	m.Fast = rl.IsKeyDown(rl.KeyLeftShift)
	g.cam.Move(m, float64(rl.GetFrameTime()))

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		g.cam.Look(float64(d.X), float64(d.Y))
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.cam.Reset()
	}
}
