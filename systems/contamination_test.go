package systems

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var testBounds = MapBounds{MinX: -20, MaxX: 20, MinZ: -10, MaxZ: 10}

func newTestMask(t *testing.T) *ContaminationMask {
	t.Helper()
	m, err := NewContaminationMask(128, 64, testBounds, DepositStyle{
		Color:        color.RGBA{R: 140, G: 240, B: 50},
		Alpha:        0.04,
		MaxIntensity: 7,
	})
	if err != nil {
		t.Fatalf("NewContaminationMask: %v", err)
	}
	return m
}

func TestContaminationMaskRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		bounds MapBounds
	}{
		{"zero width", 0, 64, testBounds},
		{"zero height", 64, 0, testBounds},
		{"empty bounds", 64, 64, MapBounds{MinX: 1, MaxX: 1, MinZ: 0, MaxZ: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewContaminationMask(tt.w, tt.h, tt.bounds, DepositStyle{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestContaminationMaskStartsEmpty(t *testing.T) {
	m := newTestMask(t)
	if !m.IsEmpty() || m.Coverage() != 0 || m.MeanAlpha() != 0 {
		t.Error("expected a freshly created mask to be empty")
	}
}

func TestDepositAccumulates(t *testing.T) {
	m := newTestMask(t)
	pos := r3.Vec{X: 1, Z: 1}

	prev := 0.0
	for i := 0; i < 20; i++ {
		err := m.WithCapture(func(c *Capture) error {
			_, err := c.Deposit(pos, 1, 7)
			return err
		})
		if err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
		a := m.AlphaAt(pos.X, pos.Z)
		if a <= prev {
			t.Fatalf("deposit %d: alpha %.4f did not grow from %.4f", i, a, prev)
		}
		prev = a
	}
	if m.AlphaAt(-15, -8) != 0 {
		t.Error("expected untouched region to stay clear")
	}
}

func TestDepositClipsAtEdges(t *testing.T) {
	m := newTestMask(t)
	c := m.BeginCapture()
	defer c.End()

	corners := []r3.Vec{
		{X: testBounds.MinX, Z: testBounds.MinZ},
		{X: testBounds.MaxX, Z: testBounds.MaxZ},
		{X: testBounds.MinX - 0.2, Z: 0},
	}
	for _, p := range corners {
		if ok, err := c.Deposit(p, 1, 5); err != nil || !ok {
			t.Errorf("deposit at %+v: ok=%v err=%v", p, ok, err)
		}
	}
	if ok, _ := c.Deposit(r3.Vec{X: 100, Z: 100}, 1, 5); ok {
		t.Error("expected footprint outside the map to be dropped")
	}
	if ok, _ := c.Deposit(r3.Vec{}, 1, 0); ok {
		t.Error("expected zero intensity to paint nothing")
	}
}

func TestMaskPersistsUntilClear(t *testing.T) {
	m := newTestMask(t)
	pool := NewParticlePool(2000)
	policy := NewEmissionPolicy(DefaultEmissionConfig(), pool.Cap(), rand.New(rand.NewSource(1)))
	adv := NewParticleAdvector(DefaultAdvectParams())
	wind := NewWindField([]WindSample{
		{Direction: r2.Vec{X: 1}, Position: r2.Vec{}, Speed: 45},
	}, DefaultWindBands(), 4)

	policy.Emit(pool, r3.Vec{Y: 2.5}, 300)

	var instances []Instance
	for steps := 0; pool.Len() > 0; steps++ {
		if steps > 10000 {
			t.Fatal("pool never drained")
		}
		adv.Step(pool, 1.0/30, wind)
		instances = pool.Snapshot(instances[:0])
		if err := m.WithCapture(func(c *Capture) error {
			_, err := c.DepositParticles(instances)
			return err
		}); err != nil {
			t.Fatal(err)
		}
	}

	if m.IsEmpty() || m.MeanAlpha() <= 0 {
		t.Fatal("expected contamination to outlive the particles")
	}
	coverage := m.Coverage()

	// More empty frames leave it alone.
	for i := 0; i < 10; i++ {
		_ = m.WithCapture(func(c *Capture) error {
			_, err := c.DepositParticles(nil)
			return err
		})
	}
	if m.Coverage() != coverage {
		t.Error("expected empty frames not to change the mask")
	}

	m.Clear()
	if !m.IsEmpty() {
		t.Error("expected mask to be empty after Clear")
	}
}

func TestCaptureRestoresPriorTarget(t *testing.T) {
	m := newTestMask(t)
	if m.Capturing() {
		t.Fatal("expected no capture initially")
	}

	outer := m.BeginCapture()
	errStop := errors.New("stop")
	err := m.WithCapture(func(c *Capture) error {
		if m.active != c {
			t.Error("expected inner capture to be active")
		}
		return errStop
	})
	if !errors.Is(err, errStop) {
		t.Errorf("expected callback error, got %v", err)
	}
	if m.active != outer {
		t.Error("expected outer capture restored after early return")
	}

	func() {
		defer func() { _ = recover() }()
		_ = m.WithCapture(func(*Capture) error { panic("boom") })
	}()
	if m.active != outer {
		t.Error("expected outer capture restored after panic")
	}

	outer.End()
	outer.End()
	if m.Capturing() {
		t.Error("expected no capture after End")
	}
	if _, err := outer.DepositParticles([]Instance{{Intensity: 1, Scale: 1}}); !errors.Is(err, ErrNotCapturing) {
		t.Errorf("expected ErrNotCapturing, got %v", err)
	}
}

func TestDownsample(t *testing.T) {
	m := newTestMask(t)
	_ = m.WithCapture(func(c *Capture) error {
		for i := 0; i < 30; i++ {
			if _, err := c.Deposit(r3.Vec{X: -15, Z: -7}, 2, 7); err != nil {
				return err
			}
		}
		return nil
	})
	cells := m.Downsample(4, 2)
	if len(cells) != 8 {
		t.Fatalf("expected 8 cells, got %d", len(cells))
	}
	if cells[0] <= 0 {
		t.Error("expected top-left cell to carry contamination")
	}
	for i := 1; i < len(cells); i++ {
		if cells[i] != 0 {
			t.Errorf("expected cell %d clear, got %.4f", i, cells[i])
		}
	}
}

func TestStraightPixels(t *testing.T) {
	want := color.RGBA{R: 140, G: 240, B: 50}
	tests := []struct {
		name      string
		intensity float64
		deposits  int
		minAlpha  uint8
	}{
		{"full intensity", 7, 40, 128},
		{"mid intensity", 3, 400, 200},
		{"late life", 0.5, 400, 100},
		{"single faint deposit", 0.5, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMask(t)
			c := m.BeginCapture()
			for i := 0; i < tt.deposits; i++ {
				if _, err := c.Deposit(r3.Vec{}, 2, tt.intensity); err != nil {
					t.Fatal(err)
				}
			}
			c.End()

			pix := m.StraightPixels(nil)
			if len(pix) != m.Width()*m.Height() {
				t.Fatalf("got %d pixels, want %d", len(pix), m.Width()*m.Height())
			}
			if m.IsEmpty() {
				t.Fatal("expected deposits to leave opacity")
			}

			center := pix[(m.Height()/2)*m.Width()+m.Width()/2]
			if center.A < tt.minAlpha {
				t.Errorf("center alpha %d, want at least %d", center.A, tt.minAlpha)
			}
			if center.A > 0 && (center.R != want.R || center.G != want.G || center.B != want.B) {
				t.Errorf("center = %v, want color %v", center, want)
			}
			if pix[0] != (color.RGBA{}) {
				t.Errorf("corner pixel = %v, want transparent", pix[0])
			}
		})
	}
}

func TestImageAppliesStyleColor(t *testing.T) {
	m := newTestMask(t)
	_ = m.WithCapture(func(c *Capture) error {
		for i := 0; i < 200; i++ {
			if _, err := c.Deposit(r3.Vec{}, 2, 0.5); err != nil {
				return err
			}
		}
		return nil
	})

	img := m.Image()
	center := img.NRGBAAt(m.Width()/2, m.Height()/2)
	if center.A == 0 {
		t.Fatal("expected opacity at the center")
	}
	if center.R != 140 || center.G != 240 || center.B != 50 {
		t.Errorf("center = %v, want style color", center)
	}
	if got := img.NRGBAAt(0, 0); got.A != 0 {
		t.Errorf("corner = %v, want transparent", got)
	}
}
