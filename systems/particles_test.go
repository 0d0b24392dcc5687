package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// emptyWind never returns samples.
type emptyWind struct{}

func (emptyWind) QueryNearInto(dst []WindSample, _ r2.Vec) []WindSample { return dst }

// fixedWind returns the same samples everywhere.
type fixedWind []WindSample

func (w fixedWind) QueryNearInto(dst []WindSample, _ r2.Vec) []WindSample {
	return append(dst, w...)
}

func TestParticlePoolCapacity(t *testing.T) {
	pool := NewParticlePool(3)
	for i := 0; i < 5; i++ {
		ok := pool.Add(Particle{Life: 1})
		if want := i < 3; ok != want {
			t.Errorf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if pool.Len() != 3 || pool.Free() != 0 {
		t.Errorf("expected full pool of 3, got len=%d free=%d", pool.Len(), pool.Free())
	}
	pool.Reset()
	if pool.Len() != 0 {
		t.Errorf("expected empty pool after Reset, got %d", pool.Len())
	}
}

func TestParticlePoolRejectsZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero capacity")
		}
	}()
	NewParticlePool(0)
}

func TestStepLifeMonotonicAndRemoval(t *testing.T) {
	pool := NewParticlePool(10)
	pool.Add(Particle{Direction: r3.Vec{X: 1}, Speed: 0.2, Life: 0.5, Intensity: 0.5, Scale: 1})
	adv := NewParticleAdvector(DefaultAdvectParams())

	prev := 0.5
	dt := 0.1
	steps := 0
	for pool.Len() > 0 {
		stats := adv.Step(pool, dt, emptyWind{})
		steps++
		if pool.Len() == 1 {
			p := pool.Particles[0]
			if p.Life >= prev {
				t.Fatalf("step %d: life %.3f did not decrease from %.3f", steps, p.Life, prev)
			}
			if p.Intensity != p.Life {
				t.Errorf("step %d: intensity %.3f != life %.3f", steps, p.Intensity, p.Life)
			}
			prev = p.Life
		} else if stats.Expired != 1 {
			t.Errorf("expected one expiry on the final step, got %d", stats.Expired)
		}
		if steps > 10 {
			t.Fatal("particle never expired")
		}
	}

	// Further steps must not resurrect anything.
	adv.Step(pool, dt, emptyWind{})
	if pool.Len() != 0 {
		t.Errorf("expected pool to stay empty, got %d", pool.Len())
	}
}

func TestStepZeroDtIsNoOp(t *testing.T) {
	pool := NewParticlePool(1)
	pool.Add(Particle{Direction: r3.Vec{X: 1}, Speed: 1, Life: 1})
	NewParticleAdvector(DefaultAdvectParams()).Step(pool, 0, emptyWind{})
	if p := pool.Particles[0]; p.Life != 1 || p.Position != (r3.Vec{}) {
		t.Errorf("expected untouched particle, got %+v", p)
	}
}

func TestStepBallisticWithoutWind(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := NewParticlePool(100)
	policy := NewEmissionPolicy(DefaultEmissionConfig(), pool.Cap(), rng)
	policy.Emit(pool, r3.Vec{}, 20)

	type heading struct {
		dir   r3.Vec
		speed float64
	}
	initial := make([]heading, pool.Len())
	for i, p := range pool.Particles {
		initial[i] = heading{p.Direction, p.Speed}
	}

	adv := NewParticleAdvector(DefaultAdvectParams())
	for i := 0; i < 5; i++ {
		adv.Step(pool, 0.05, emptyWind{})
	}
	for i, p := range pool.Particles {
		if p.Direction != initial[i].dir || p.Speed != initial[i].speed {
			t.Errorf("particle %d drifted: %+v/%v -> %+v/%v", i, initial[i].dir, initial[i].speed, p.Direction, p.Speed)
		}
	}
}

func TestStepLargeDtStaysFinite(t *testing.T) {
	pool := NewParticlePool(1)
	pool.Add(Particle{Direction: r3.Vec{X: 1}, Speed: 0.2, Life: 100})
	wind := fixedWind{{Direction: r2.Vec{Y: 1}, Position: r2.Vec{}, Speed: 50, Radius: 5}}
	NewParticleAdvector(DefaultAdvectParams()).Step(pool, 30, wind)

	p := pool.Particles[0]
	if !finite(p.Position) || !finite(p.Direction) || math.IsNaN(p.Speed) {
		t.Errorf("expected finite state after a long step, got %+v", p)
	}
}

func TestInfluenceProportionalToSpeed(t *testing.T) {
	adv := NewParticleAdvector(DefaultAdvectParams())
	pos := r2.Vec{}
	slow := WindSample{Position: r2.Vec{X: 1}, Speed: 10}
	fast := WindSample{Position: r2.Vec{X: -1}, Speed: 40}

	ws, wf := adv.Influence(pos, &slow), adv.Influence(pos, &fast)
	if math.Abs(wf/ws-4) > 1e-12 {
		t.Errorf("expected weight ratio 4 at equal distance, got %.6f", wf/ws)
	}

	// At zero distance the distance floor keeps the weight finite.
	on := WindSample{Position: pos, Speed: 10}
	if w := adv.Influence(pos, &on); math.IsInf(w, 0) || w <= 0 {
		t.Errorf("expected finite positive weight at d=0, got %v", w)
	}
}

func TestWindBlendFavorsFasterSample(t *testing.T) {
	params := DefaultAdvectParams()
	params.Blend = 1 // snap to target so the blend is visible in one step
	adv := NewParticleAdvector(params)

	// Equal distance, orthogonal directions, speeds 10 and 30.
	wind := fixedWind{
		{Direction: r2.Vec{X: 1}, Position: r2.Vec{Y: 1}, Speed: 10, Radius: 5},
		{Direction: r2.Vec{Y: 1}, Position: r2.Vec{Y: -1}, Speed: 30, Radius: 5},
	}
	pool := NewParticlePool(1)
	pool.Add(Particle{Direction: r3.Vec{X: -1}, Speed: 0.2, Life: 10})
	adv.Step(pool, 1e-6, wind)

	p := pool.Particles[0]
	if math.Abs(p.Direction.Z/p.Direction.X-3) > 1e-9 {
		t.Errorf("expected z/x = 3 from speed-weighted blend, got direction %+v", p.Direction)
	}
	wantSpeed := (10*10 + 30*30) / 40.0 * params.Transfer
	if math.Abs(p.Speed-wantSpeed) > 1e-9 {
		t.Errorf("speed = %.6f, want %.6f", p.Speed, wantSpeed)
	}
}

func TestWindBelowThresholdIsIgnored(t *testing.T) {
	adv := NewParticleAdvector(DefaultAdvectParams())
	// Far away and slow: influence is well under the threshold.
	wind := fixedWind{{Direction: r2.Vec{Y: 1}, Position: r2.Vec{X: 100}, Speed: 0.5, Radius: 1000}}
	pool := NewParticlePool(1)
	pool.Add(Particle{Direction: r3.Vec{X: 1}, Speed: 0.2, Life: 10})

	stats := adv.Step(pool, 0.1, wind)
	if stats.Advected != 0 {
		t.Errorf("expected no advection, got %d", stats.Advected)
	}
	if p := pool.Particles[0]; p.Direction != (r3.Vec{X: 1}) || p.Speed != 0.2 {
		t.Errorf("expected unchanged heading, got %+v speed %v", p.Direction, p.Speed)
	}
}

func TestSnapshot(t *testing.T) {
	pool := NewParticlePool(4)
	pool.Add(Particle{Position: r3.Vec{X: 1}, Intensity: 2, Scale: 0.5})
	pool.Add(Particle{Position: r3.Vec{X: 2}, Intensity: 1, Scale: 0.3})

	got := pool.Snapshot(nil)
	if len(got) != 2 || got[1].Position.X != 2 || got[0].Scale != 0.5 {
		t.Errorf("unexpected snapshot %+v", got)
	}
}
