// Package sim owns the complete simulation state. Every front end drives the
// same World through Tick and the user operations below.
package sim

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/components"
	"github.com/pthm-cable/fallout/config"
	"github.com/pthm-cable/fallout/data"
	"github.com/pthm-cable/fallout/systems"
	"github.com/pthm-cable/fallout/telemetry"
)

// ErrNoSuchPlant is returned for a plant index outside the registry.
var ErrNoSuchPlant = systems.ErrNoSuchPlant

// Stats is a point-in-time summary for HUDs.
type Stats struct {
	Tick      int
	SimTime   float64
	Particles int
	Capacity  int
	Coverage  float64
	Selection systems.Selection
	ShowWind  bool
	Paused    bool
}

// World is the simulation state handle. It has a single owner and is not
// safe for concurrent use.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	ecsWorld  *ecs.World
	field     *systems.WindField
	wind      systems.WindQuerier
	pool      *systems.ParticlePool
	advector  *systems.ParticleAdvector
	emitter   *systems.EmissionPolicy
	mask      *systems.ContaminationMask
	plants    *systems.PlantRegistry
	selection systems.Selection

	showWind bool
	paused   bool
	tick     int
	simTime  float64

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	pendingEmit   time.Duration // emission time not yet credited to a tick
	statsCallback func(telemetry.WindowStats)

	// Scratch reused across ticks
	instances []systems.Instance
	sample    telemetry.PlumeSample
}

// New builds a world from cfg and the embedded datasets.
func New(cfg *config.Config, rng *rand.Rand) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	windRecords, err := data.Wind()
	if err != nil {
		return nil, fmt.Errorf("loading wind: %w", err)
	}
	plantRecords, err := data.Plants()
	if err != nil {
		return nil, fmt.Errorf("loading plants: %w", err)
	}

	bands := systems.WindBands{Low: cfg.Wind.LowThreshold, High: cfg.Wind.HighThreshold}
	field := systems.LoadWindField(windRecords, bands, cfg.Wind.BaseRadius)
	var wind systems.WindQuerier = field
	if cfg.Wind.UseIndex {
		wind = systems.NewWindIndex(field)
	}

	mask, err := systems.NewContaminationMask(cfg.Mask.Width, cfg.Mask.Height, MapBounds(cfg), depositStyle(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating contamination mask: %w", err)
	}

	projection, err := systems.NewMapProjection(anchor(cfg.Projection.AnchorA), anchor(cfg.Projection.AnchorB))
	if err != nil {
		return nil, fmt.Errorf("creating map projection: %w", err)
	}

	ecsWorld := ecs.NewWorld()
	plants := systems.NewPlantRegistry(ecsWorld, systems.PowerRange{Min: cfg.Plants.MinPower, Max: cfg.Plants.MaxPower})
	for i := range plantRecords {
		if plantRecords[i].PowerMW <= 0 {
			plantRecords[i].PowerMW = cfg.Plants.DefaultPower
		}
	}
	foot := components.Footprint{HalfExtent: cfg.Picking.HalfExtent, Height: cfg.Picking.Height}
	if err := plants.LoadPlants(plantRecords, projection, foot); err != nil {
		return nil, fmt.Errorf("loading plants: %w", err)
	}

	pool := systems.NewParticlePool(cfg.Plume.Capacity)
	w := &World{
		cfg:       cfg,
		rng:       rng,
		ecsWorld:  ecsWorld,
		field:     field,
		wind:      wind,
		pool:      pool,
		advector:  systems.NewParticleAdvector(advectParams(cfg)),
		emitter:   systems.NewEmissionPolicy(emissionConfig(cfg), pool.Cap(), rng),
		mask:      mask,
		plants:    plants,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarks: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
	}

	slog.Info("world created",
		"plants", plants.Len(),
		"wind_samples", field.Len(),
		"capacity", pool.Cap(),
		"mask", fmt.Sprintf("%dx%d", mask.Width(), mask.Height()),
		"wind_index", cfg.Wind.UseIndex,
	)
	return w, nil
}

// MapBounds returns the world rectangle of the map plane.
func MapBounds(cfg *config.Config) systems.MapBounds {
	hw, hh := cfg.Derived.MapHalfWidth, cfg.Derived.MapHalfHeight
	if hw == 0 {
		hw = cfg.World.Scale * cfg.World.AspectRatio
		hh = cfg.World.Scale
	}
	return systems.MapBounds{MinX: -hw, MaxX: hw, MinZ: -hh, MaxZ: hh}
}

func depositStyle(cfg *config.Config) systems.DepositStyle {
	c := cfg.Mask.Color
	return systems.DepositStyle{
		Color:        color.RGBA{R: unit8(c[0]), G: unit8(c[1]), B: unit8(c[2]), A: 255},
		Alpha:        cfg.Mask.DepositAlpha,
		MaxIntensity: cfg.Mask.MaxIntensity,
	}
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

func anchor(a config.Anchor) systems.Anchor {
	return systems.Anchor{Lon: a.Lon, Lat: a.Lat, X: a.X, Z: a.Z}
}

func advectParams(cfg *config.Config) systems.AdvectParams {
	p := cfg.Plume
	return systems.AdvectParams{
		Transfer:           p.Transfer,
		Blend:              p.Blend,
		MinDistance:        p.MinDistance,
		InfluenceFalloff:   p.InfluenceFalloff,
		InfluenceThreshold: p.InfluenceThreshold,
	}
}

func emissionConfig(cfg *config.Config) systems.EmissionConfig {
	e := cfg.Emission
	return systems.EmissionConfig{
		PowerNorm:  e.PowerNorm,
		CountPerMW: e.CountPerMW,
		Jitter:     r3.Vec{X: e.Jitter[0], Y: e.Jitter[1], Z: e.Jitter[2]},
		DirJitter:  r3.Vec{X: e.DirJitter[0], Y: e.DirJitter[1], Z: e.DirJitter[2]},
		MinSpeed:   e.MinSpeed,
		MaxSpeed:   e.MaxSpeed,
	}
}

// SetOutput routes telemetry windows, events and bookmarks to om.
func (w *World) SetOutput(om *telemetry.OutputManager) {
	w.output = om
}

// SetLogStats enables logging of every telemetry window.
func (w *World) SetLogStats(enabled bool) {
	w.logStats = enabled
}

// SetStatsCallback registers fn to receive every flushed telemetry window.
func (w *World) SetStatsCallback(fn func(telemetry.WindowStats)) {
	w.statsCallback = fn
}

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// Field returns the wind field.
func (w *World) Field() *systems.WindField { return w.field }

// Pool returns the particle pool. Callers must not modify it.
func (w *World) Pool() *systems.ParticlePool { return w.pool }

// Mask returns the contamination mask.
func (w *World) Mask() *systems.ContaminationMask { return w.mask }

// Plants returns the plant registry.
func (w *World) Plants() *systems.PlantRegistry { return w.plants }

// Perf returns the tick performance collector.
func (w *World) Perf() *telemetry.PerfCollector { return w.perf }

// CurrentTick returns the number of ticks run.
func (w *World) CurrentTick() int { return w.tick }

// SimTime returns the simulated seconds elapsed.
func (w *World) SimTime() float64 { return w.simTime }

// Paused reports whether Tick is currently a no-op.
func (w *World) Paused() bool { return w.paused }

// SetPaused stops or resumes the simulation.
func (w *World) SetPaused(paused bool) { w.paused = paused }

// TogglePause flips the paused state.
func (w *World) TogglePause() { w.paused = !w.paused }
