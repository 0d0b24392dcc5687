package systems

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is one parcel of the plume.
type Particle struct {
	Position  r3.Vec
	Direction r3.Vec // unit length
	Speed     float64
	Life      float64 // seconds remaining
	Intensity float64 // display value, equal to Life
	Scale     float64 // billboard size
}

// Instance is the per-particle data renderers consume.
type Instance struct {
	Position  r3.Vec
	Intensity float64
	Scale     float64
}

// ParticlePool is a capacity-bounded set of live particles.
// Len never exceeds Cap; nothing is ever reallocated past the cap.
type ParticlePool struct {
	Particles []Particle
	capacity  int
}

// NewParticlePool creates an empty pool. Capacity must be positive.
func NewParticlePool(capacity int) *ParticlePool {
	if capacity <= 0 {
		panic("systems: particle pool capacity must be positive")
	}
	initial := capacity
	if initial > 4096 {
		initial = 4096
	}
	return &ParticlePool{
		Particles: make([]Particle, 0, initial),
		capacity:  capacity,
	}
}

// Len returns the number of live particles.
func (p *ParticlePool) Len() int {
	return len(p.Particles)
}

// Cap returns the pool capacity.
func (p *ParticlePool) Cap() int {
	return p.capacity
}

// Free returns how many more particles fit.
func (p *ParticlePool) Free() int {
	return p.capacity - len(p.Particles)
}

// Add appends a particle. Returns false when the pool is full.
func (p *ParticlePool) Add(pt Particle) bool {
	if len(p.Particles) >= p.capacity {
		return false
	}
	p.Particles = append(p.Particles, pt)
	return true
}

// Reset removes every particle.
func (p *ParticlePool) Reset() {
	p.Particles = p.Particles[:0]
}

// Snapshot appends render instances for every live particle to dst.
func (p *ParticlePool) Snapshot(dst []Instance) []Instance {
	for i := range p.Particles {
		pt := &p.Particles[i]
		dst = append(dst, Instance{Position: pt.Position, Intensity: pt.Intensity, Scale: pt.Scale})
	}
	return dst
}

// AdvectParams holds the wind coupling constants.
type AdvectParams struct {
	Transfer           float64 // wind speed -> particle speed
	Blend              float64 // lerp factor toward the wind target per step
	MinDistance        float64 // distance floor before squaring
	InfluenceFalloff   float64 // denominator offset, avoids the d=0 singularity
	InfluenceThreshold float64 // weights below this are ignored
}

// DefaultAdvectParams returns the tuned constants.
func DefaultAdvectParams() AdvectParams {
	return AdvectParams{
		Transfer:           0.10,
		Blend:              0.10,
		MinDistance:        0.001,
		InfluenceFalloff:   1.0,
		InfluenceThreshold: 0.01,
	}
}

// StepStats summarizes one advection step.
type StepStats struct {
	Advected int // particles that had wind around them
	Expired  int // particles removed this step
}

// ParticleAdvector moves particles through a wind field.
type ParticleAdvector struct {
	params AdvectParams
	near   []WindSample // scratch, reused across particles
}

// NewParticleAdvector creates an advector.
func NewParticleAdvector(params AdvectParams) *ParticleAdvector {
	return &ParticleAdvector{
		params: params,
		near:   make([]WindSample, 0, 16),
	}
}

// Params returns the advection constants.
func (a *ParticleAdvector) Params() AdvectParams {
	return a.params
}

// Step advances every particle by dt seconds and removes expired ones.
// Particles do not interact, so processing order does not matter.
func (a *ParticleAdvector) Step(pool *ParticlePool, dt float64, wind WindQuerier) StepStats {
	var stats StepStats
	if dt <= 0 {
		return stats
	}

	alive := 0
	for i := range pool.Particles {
		p := &pool.Particles[i]

		if a.adjustToWind(p, wind) {
			stats.Advected++
		}

		p.Position = r3.Add(p.Position, r3.Scale(p.Speed*dt, p.Direction))
		p.Life -= dt
		p.Intensity = p.Life

		if p.Life <= 0 {
			stats.Expired++
			continue
		}

		// Keep particle
		pool.Particles[alive] = pool.Particles[i]
		alive++
	}
	pool.Particles = pool.Particles[:alive]
	return stats
}

// adjustToWind steers p toward the influence-weighted wind around it.
// Returns false and leaves p untouched when no wind applies.
func (a *ParticleAdvector) adjustToWind(p *Particle, wind WindQuerier) bool {
	pos := r2.Vec{X: p.Position.X, Y: p.Position.Z}
	a.near = wind.QueryNearInto(a.near[:0], pos)
	if len(a.near) == 0 {
		return false
	}

	var blended r3.Vec
	var totalWeight, accumulatedSpeed float64
	for i := range a.near {
		s := &a.near[i]
		w := a.Influence(pos, s)
		if w < a.params.InfluenceThreshold {
			continue
		}
		dir := r3.Unit(r3.Vec{X: s.Direction.X, Z: s.Direction.Y})
		blended = r3.Add(blended, r3.Scale(w, dir))
		accumulatedSpeed += s.Speed * w
		totalWeight += w
	}
	if totalWeight < a.params.InfluenceThreshold {
		return false
	}

	target := r3.Unit(r3.Scale(1/totalWeight, blended))
	if !finite(target) {
		// Opposing samples cancelled out exactly; keep heading.
		target = p.Direction
	}
	targetSpeed := accumulatedSpeed / totalWeight * a.params.Transfer

	t := a.params.Blend
	mixed := r3.Add(r3.Scale(1-t, p.Direction), r3.Scale(t, target))
	if next := r3.Unit(mixed); finite(next) {
		p.Direction = next
	}
	p.Speed = lerp(p.Speed, targetSpeed, t)
	return true
}

// Influence returns speed / (max(d, MinDistance)^2 + InfluenceFalloff).
func (a *ParticleAdvector) Influence(pos r2.Vec, s *WindSample) float64 {
	d := r2.Norm(r2.Sub(pos, s.Position))
	if d < a.params.MinDistance {
		d = a.params.MinDistance
	}
	return s.Speed / (d*d + a.params.InfluenceFalloff)
}
