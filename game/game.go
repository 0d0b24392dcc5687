// Package game wires the simulation to a raylib window: fly camera, plant
// picking, the explosion panel and the plume renderers.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/audio"
	"github.com/pthm-cable/fallout/camera"
	"github.com/pthm-cable/fallout/config"
	"github.com/pthm-cable/fallout/renderer"
	"github.com/pthm-cable/fallout/sim"
	"github.com/pthm-cable/fallout/systems"
	"github.com/pthm-cable/fallout/telemetry"
	"github.com/pthm-cable/fallout/ui"
)

// Options configures a game instance.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
	Headless  bool
}

// Game holds the simulation together with everything needed to show it.
type Game struct {
	cfg    *config.Config
	world  *sim.World
	output *telemetry.OutputManager
	audio  *audio.Player

	headless bool

	// Rendering (nil when headless)
	cam              *camera.Camera
	mapRenderer      *renderer.MapRenderer
	plantRenderer    *renderer.PlantRenderer
	windRenderer     *renderer.WindRenderer
	particleRenderer *renderer.ParticleRenderer
	instances        []systems.Instance

	// UI
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel
	explosion *ui.ExplosionPanel

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from the loaded config. A graphical game
// must be created after the raylib window is open.
func NewGameWithOptions(cfg *config.Config, opts Options) (*Game, error) {
	rng := rand.New(rand.NewSource(opts.Seed))

	world, err := sim.New(cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}
	world.SetLogStats(opts.LogStats)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}
	world.SetOutput(output)

	g := &Game{
		cfg:      cfg,
		world:    world,
		output:   output,
		headless: opts.Headless,
		audio: audio.NewPlayer(audio.Config{
			Enabled:    cfg.Audio.Enabled && !opts.Headless,
			SampleRate: cfg.Audio.SampleRate,
			Volume:     cfg.Audio.Volume,
			MaxPowerMW: cfg.Plants.MaxPower,
		}, opts.Seed),
	}
	if err := g.audio.Initialize(); err != nil {
		slog.Warn("audio disabled", "error", err)
	}

	if !opts.Headless {
		g.initGraphics(opts.Seed)
	}
	return g, nil
}

// initGraphics creates the camera, renderers and panels.
func (g *Game) initGraphics(seed int64) {
	cfg := g.cfg
	g.screenWidth = float32(rl.GetScreenWidth())
	g.screenHeight = float32(rl.GetScreenHeight())

	g.cam = camera.New(camera.Settings{
		Position:         r3.Vec{X: cfg.Camera.Position[0], Y: cfg.Camera.Position[1], Z: cfg.Camera.Position[2]},
		Yaw:              cfg.Camera.Yaw,
		Pitch:            cfg.Camera.Pitch,
		Fov:              cfg.Camera.Fov,
		Near:             cfg.Camera.Near,
		Far:              cfg.Camera.Far,
		MoveSpeed:        cfg.Camera.MoveSpeed,
		FastMoveSpeed:    cfg.Camera.FastMoveSpeed,
		MouseSensitivity: cfg.Camera.MouseSensitivity,
		ViewportW:        float64(g.screenWidth),
		ViewportH:        float64(g.screenHeight),
	})

	g.mapRenderer = renderer.NewMapRenderer(sim.MapBounds(cfg))
	g.mapRenderer.Init(cfg.World.MapImage, systems.NewBackdrop(seed), g.world.Mask())
	g.plantRenderer = renderer.NewPlantRenderer(cfg.Picking.HalfExtent, cfg.Picking.Height)
	g.windRenderer = renderer.NewWindRenderer(cfg.Wind.DisplayHeight)
	g.particleRenderer = renderer.NewParticleRenderer(cfg.Mask.MaxIntensity)
	g.particleRenderer.Init()

	g.hud = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 150)
	g.controls = ui.NewControlsPanel(10, 10, 220)
	g.explosion = ui.NewExplosionPanel(int32(g.screenWidth), 10, 300, g.world.Plants().PowerRange())
}

// World returns the underlying simulation.
func (g *Game) World() *sim.World {
	return g.world
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int {
	return g.world.CurrentTick()
}

// Update handles input and advances the simulation by one frame.
func (g *Game) Update() {
	g.world.Perf().RecordFrame()
	g.handleInput()
	g.world.Tick(float64(rl.GetFrameTime()))
}

// UpdateHeadless advances the simulation by one fixed step.
func (g *Game) UpdateHeadless() {
	g.world.Tick(g.cfg.Physics.DT)
}

// Unload releases GPU, audio and file resources.
func (g *Game) Unload() {
	if g.mapRenderer != nil {
		g.mapRenderer.Unload()
	}
	if g.particleRenderer != nil {
		g.particleRenderer.Unload()
	}
	g.audio.Close()
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
