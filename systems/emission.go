package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// EmissionParams describes one burst derived from plant power.
type EmissionParams struct {
	MinLife, MaxLife   float64
	MinScale, MaxScale float64
	Count              int
}

// EmissionConfig holds burst shaping constants.
type EmissionConfig struct {
	PowerNorm  float64 // power at which bursts stop growing in life and size
	CountPerMW float64
	Jitter     r3.Vec // position jitter half-widths per axis
	DirJitter  r3.Vec // direction jitter half-widths per axis
	MinSpeed   float64
	MaxSpeed   float64
}

// DefaultEmissionConfig returns the tuned burst constants.
func DefaultEmissionConfig() EmissionConfig {
	return EmissionConfig{
		PowerNorm:  10000,
		CountPerMW: 2.5,
		Jitter:     r3.Vec{X: 0.5, Y: 0.3, Z: 0.5},
		DirJitter:  r3.Vec{X: 0.3, Y: 0.1, Z: 0.3},
		MinSpeed:   0.1,
		MaxSpeed:   0.3,
	}
}

// EmissionPolicy turns plant power into particle bursts.
type EmissionPolicy struct {
	cfg      EmissionConfig
	capacity int
	rng      *rand.Rand
}

// NewEmissionPolicy creates a policy for a pool of the given capacity.
func NewEmissionPolicy(cfg EmissionConfig, capacity int, rng *rand.Rand) *EmissionPolicy {
	return &EmissionPolicy{cfg: cfg, capacity: capacity, rng: rng}
}

// ComputeParams maps power to burst size, lifetimes and scales.
// Every output is monotonically non-decreasing in power.
func (e *EmissionPolicy) ComputeParams(powerMW float64) EmissionParams {
	t := clamp01(powerMW / e.cfg.PowerNorm)
	count := clampInt(int(math.Round(powerMW*e.cfg.CountPerMW)), 1, e.capacity)
	return EmissionParams{
		MinLife:  1 + 2*t,
		MaxLife:  2 + 5*t,
		MinScale: 0.1 + t,
		MaxScale: 0.45 + t,
		Count:    count,
	}
}

// Emit injects a burst at source into pool and returns how many particles
// were added. The burst is silently truncated once the pool is full.
func (e *EmissionPolicy) Emit(pool *ParticlePool, source r3.Vec, powerMW float64) int {
	params := e.ComputeParams(powerMW)

	emitted := 0
	for i := 0; i < params.Count; i++ {
		if !pool.Add(e.particle(source, params)) {
			break
		}
		emitted++
	}
	return emitted
}

// particle draws one randomized particle for a burst.
func (e *EmissionPolicy) particle(source r3.Vec, params EmissionParams) Particle {
	rng := e.rng
	offset := r3.Vec{
		X: symmetric(rng, e.cfg.Jitter.X),
		Y: symmetric(rng, e.cfg.Jitter.Y),
		Z: symmetric(rng, e.cfg.Jitter.Z),
	}

	// Lateral spread: a random horizontal heading plus a little jitter.
	heading := r3.Vec{X: symmetric(rng, 1), Z: symmetric(rng, 1)}
	jitter := r3.Vec{
		X: symmetric(rng, e.cfg.DirJitter.X),
		Y: symmetric(rng, e.cfg.DirJitter.Y),
		Z: symmetric(rng, e.cfg.DirJitter.Z),
	}
	dir := r3.Unit(r3.Add(heading, jitter))
	if !finite(dir) {
		dir = r3.Vec{X: 1}
	}

	life := uniform(rng, params.MinLife, params.MaxLife)
	return Particle{
		Position:  r3.Add(source, offset),
		Direction: dir,
		Speed:     uniform(rng, e.cfg.MinSpeed, e.cfg.MaxSpeed),
		Life:      life,
		Intensity: life,
		Scale:     uniform(rng, params.MinScale, params.MaxScale),
	}
}
