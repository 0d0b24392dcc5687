package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int
	SimTime   float64
	Particles int
	Capacity  int
	Coverage  float64
	FPS       int32
	Paused    bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD at the bottom left of the screen.
func (h *HUD) Draw(data HUDData, screenHeight int32) {
	y := screenHeight - 90

	rl.DrawText(data.Title, 10, y, 20, rl.White)
	y += 25

	particleColor := rl.LightGray
	if data.Capacity > 0 && data.Particles >= data.Capacity {
		particleColor = h.renderer.Theme.WarnColor
	}
	rl.DrawText(fmt.Sprintf("Particles: %d / %d", data.Particles, data.Capacity), 10, y, 16, particleColor)
	rl.DrawText(fmt.Sprintf("Coverage: %.2f%%", data.Coverage*100), 230, y, 16, rl.LightGray)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %s | FPS: %d", data.Tick, formatSimTime(data.SimTime), data.FPS),
		10, y, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, y-65, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

func formatSimTime(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(100 * time.Millisecond).String()
}

// PerfPanel renders the per-phase timing of the simulation step.
type PerfPanel struct {
	renderer *Renderer
	registry *telemetry.PhaseRegistry
	x, y     int32
	visible  bool
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: telemetry.NewPhaseRegistry(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Toggle switches panel visibility.
func (p *PerfPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	if !p.visible {
		return
	}
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s  (p95 %s)", stats.AvgTickDuration.Round(time.Microsecond),
		stats.P95TickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range p.registry.IDs() {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", p.registry.GetName(phase), stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
