package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fallout/data"
)

func TestWindBandsClassify(t *testing.T) {
	bands := DefaultWindBands()
	tests := []struct {
		speed float64
		want  WindBand
	}{
		{0, BandLow},
		{29.9, BandLow},
		{30, BandMedium},
		{59.9, BandMedium},
		{60, BandHigh},
		{120, BandHigh},
	}
	for _, tt := range tests {
		if got := bands.Classify(tt.speed); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestWindFieldRadiusGrowsWithBand(t *testing.T) {
	f := NewWindField([]WindSample{
		{Direction: r2.Vec{X: 1}, Speed: 10},
		{Direction: r2.Vec{X: 1}, Speed: 45},
		{Direction: r2.Vec{X: 1}, Speed: 80},
	}, DefaultWindBands(), 2)

	s := f.Samples()
	if !(s[0].Radius < s[1].Radius && s[1].Radius < s[2].Radius) {
		t.Errorf("expected radius to grow with band, got %.2f %.2f %.2f", s[0].Radius, s[1].Radius, s[2].Radius)
	}
	if f.MaxRadius() != s[2].Radius {
		t.Errorf("MaxRadius = %.2f, want %.2f", f.MaxRadius(), s[2].Radius)
	}
}

func TestWindSamplePresentation(t *testing.T) {
	f := NewWindField([]WindSample{
		{Direction: r2.Vec{X: 1}, Speed: 10},
		{Direction: r2.Vec{Y: -1}, Speed: 45},
		{Direction: r2.Vec{X: -1}, Speed: 80},
	}, DefaultWindBands(), 2)
	s := f.Samples()

	if s[0].Color().B != 255 || s[1].Color().R != 255 || s[1].Color().G != 255 || s[2].Color().R != 255 {
		t.Errorf("unexpected band colors %v %v %v", s[0].Color(), s[1].Color(), s[2].Color())
	}
	if !(s[0].AnimationSpeed() < s[1].AnimationSpeed() && s[1].AnimationSpeed() < s[2].AnimationSpeed()) {
		t.Error("expected animation speed to grow with band")
	}
	if got := s[1].Angle(); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("Angle of -Z wind = %.4f, want pi/2", got)
	}
}

func TestWindFieldQueryNear(t *testing.T) {
	f := NewWindField([]WindSample{
		{Direction: r2.Vec{X: 1}, Position: r2.Vec{X: 0, Y: 0}, Speed: 10},
		{Direction: r2.Vec{X: 1}, Position: r2.Vec{X: 10, Y: 0}, Speed: 10},
	}, DefaultWindBands(), 2)

	if got := f.QueryNear(r2.Vec{X: 1, Y: 1}); len(got) != 1 || got[0].Position.X != 0 {
		t.Errorf("expected only the first sample, got %+v", got)
	}
	if got := f.QueryNear(r2.Vec{X: 5, Y: 5}); len(got) != 0 {
		t.Errorf("expected no samples, got %d", len(got))
	}
	// Exactly on the radius counts.
	if got := f.QueryNear(r2.Vec{X: 2}); len(got) != 1 {
		t.Errorf("expected boundary point to match, got %d", len(got))
	}
}

func TestWindIndexMatchesScan(t *testing.T) {
	records, err := data.Wind()
	if err != nil {
		t.Fatalf("loading wind: %v", err)
	}
	f := LoadWindField(records, DefaultWindBands(), 2)
	idx := NewWindIndex(f)

	var a, b []WindSample
	for x := -40.0; x <= 40; x += 0.9 {
		for z := -21.0; z <= 21; z += 0.9 {
			p := r2.Vec{X: x, Y: z}
			a = f.QueryNearInto(a[:0], p)
			b = idx.QueryNearInto(b[:0], p)
			if len(a) != len(b) {
				t.Fatalf("at %v: scan found %d, index found %d", p, len(a), len(b))
			}
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("at %v: result %d differs: %+v vs %+v", p, i, a[i], b[i])
				}
			}
		}
	}
}
