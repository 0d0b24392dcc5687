package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func newTestPolicy(capacity int) *EmissionPolicy {
	return NewEmissionPolicy(DefaultEmissionConfig(), capacity, rand.New(rand.NewSource(42)))
}

func TestComputeParamsMonotonic(t *testing.T) {
	policy := newTestPolicy(50000)
	powers := []float64{0, 1, 100, 485, 1000, 4000, 5700, 9999, 10000, 15000}

	prev := policy.ComputeParams(powers[0])
	for _, p := range powers[1:] {
		cur := policy.ComputeParams(p)
		if cur.Count < prev.Count {
			t.Errorf("count decreased at %v MW: %d < %d", p, cur.Count, prev.Count)
		}
		if cur.MinLife < prev.MinLife || cur.MaxLife < prev.MaxLife {
			t.Errorf("life bounds decreased at %v MW", p)
		}
		if cur.MinScale < prev.MinScale || cur.MaxScale < prev.MaxScale {
			t.Errorf("scale bounds decreased at %v MW", p)
		}
		prev = cur
	}
}

func TestComputeParamsValues(t *testing.T) {
	policy := newTestPolicy(50000)
	tests := []struct {
		power float64
		want  EmissionParams
	}{
		{0, EmissionParams{MinLife: 1, MaxLife: 2, MinScale: 0.1, MaxScale: 0.45, Count: 1}},
		{5000, EmissionParams{MinLife: 2, MaxLife: 4.5, MinScale: 0.6, MaxScale: 0.95, Count: 12500}},
		{20000, EmissionParams{MinLife: 3, MaxLife: 7, MinScale: 1.1, MaxScale: 1.45, Count: 50000}},
	}
	for _, tt := range tests {
		got := policy.ComputeParams(tt.power)
		if got.Count != tt.want.Count ||
			math.Abs(got.MinLife-tt.want.MinLife) > 1e-9 ||
			math.Abs(got.MaxLife-tt.want.MaxLife) > 1e-9 ||
			math.Abs(got.MinScale-tt.want.MinScale) > 1e-9 ||
			math.Abs(got.MaxScale-tt.want.MaxScale) > 1e-9 {
			t.Errorf("ComputeParams(%v) = %+v, want %+v", tt.power, got, tt.want)
		}
	}
}

func TestEmitTruncatesAtCapacity(t *testing.T) {
	const capacity = 200
	pool := NewParticlePool(capacity)
	policy := newTestPolicy(capacity)

	// 2x capacity worth of particles in one burst.
	n := policy.Emit(pool, r3.Vec{}, 2*capacity/2.5)
	if n != capacity || pool.Len() != capacity {
		t.Errorf("expected exactly %d particles, emitted %d, pool %d", capacity, n, pool.Len())
	}

	if n := policy.Emit(pool, r3.Vec{}, 5000); n != 0 {
		t.Errorf("expected full pool to accept nothing, got %d", n)
	}
	if pool.Len() > pool.Cap() {
		t.Errorf("pool exceeded capacity: %d > %d", pool.Len(), pool.Cap())
	}
}

func TestEmitRanges(t *testing.T) {
	pool := NewParticlePool(5000)
	policy := newTestPolicy(pool.Cap())
	source := r3.Vec{X: 3, Y: 2.5, Z: -4}
	const power = 1000

	policy.Emit(pool, source, power)
	params := policy.ComputeParams(power)
	cfg := DefaultEmissionConfig()

	if pool.Len() != params.Count {
		t.Fatalf("expected %d particles, got %d", params.Count, pool.Len())
	}
	for i, p := range pool.Particles {
		d := r3.Sub(p.Position, source)
		if math.Abs(d.X) > cfg.Jitter.X || math.Abs(d.Y) > cfg.Jitter.Y || math.Abs(d.Z) > cfg.Jitter.Z {
			t.Fatalf("particle %d jitter %+v out of range", i, d)
		}
		if n := r3.Norm(p.Direction); math.Abs(n-1) > 1e-9 {
			t.Fatalf("particle %d direction not unit: %v", i, n)
		}
		if p.Speed < cfg.MinSpeed || p.Speed > cfg.MaxSpeed {
			t.Fatalf("particle %d speed %v out of range", i, p.Speed)
		}
		if p.Life < params.MinLife || p.Life > params.MaxLife {
			t.Fatalf("particle %d life %v out of range", i, p.Life)
		}
		if p.Scale < params.MinScale || p.Scale > params.MaxScale {
			t.Fatalf("particle %d scale %v out of range", i, p.Scale)
		}
		if p.Intensity != p.Life {
			t.Fatalf("particle %d intensity %v != life %v", i, p.Intensity, p.Life)
		}
	}
}

func TestEmitSpreadsLaterally(t *testing.T) {
	pool := NewParticlePool(2000)
	newTestPolicy(pool.Cap()).Emit(pool, r3.Vec{}, 800)

	var sum r3.Vec
	var sumY float64
	for _, p := range pool.Particles {
		sum = r3.Add(sum, p.Direction)
		sumY += math.Abs(p.Direction.Y)
	}
	mean := r3.Scale(1/float64(pool.Len()), sum)
	if r3.Norm(mean) > 0.2 {
		t.Errorf("expected randomized headings to roughly cancel, mean %+v", mean)
	}
	if avg := sumY / float64(pool.Len()); avg > 0.15 {
		t.Errorf("expected mostly horizontal headings, mean |y| = %.3f", avg)
	}
}
