package systems

import (
	"math"
	"testing"
)

var (
	madrid = Anchor{Lon: -3.70, Lat: 40.42, X: -15, Z: 12}
	kyiv   = Anchor{Lon: 30.52, Lat: 50.45, X: 20, Z: 3}
)

func TestMapProjectionAnchorsExact(t *testing.T) {
	p, err := NewMapProjection(madrid, kyiv)
	if err != nil {
		t.Fatalf("NewMapProjection: %v", err)
	}
	for _, a := range []Anchor{madrid, kyiv} {
		got, err := p.Project(a.Lon, a.Lat)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got.X-a.X) > 1e-6 || math.Abs(got.Y-a.Z) > 1e-6 {
			t.Errorf("Project(%v, %v) = (%.6f, %.6f), want (%v, %v)", a.Lon, a.Lat, got.X, got.Y, a.X, a.Z)
		}
	}
}

func TestMapProjectionOrientation(t *testing.T) {
	p, err := NewMapProjection(madrid, kyiv)
	if err != nil {
		t.Fatal(err)
	}
	paris, _ := p.Project(2.35, 48.86)
	helsinki, _ := p.Project(24.94, 60.17)
	rome, _ := p.Project(12.50, 41.90)

	if !(paris.X > madrid.X && paris.X < kyiv.X) {
		t.Errorf("expected Paris between Madrid and Kyiv in X, got %.2f", paris.X)
	}
	if helsinki.Y >= paris.Y {
		t.Errorf("expected north to be -Z: Helsinki z=%.2f, Paris z=%.2f", helsinki.Y, paris.Y)
	}
	if rome.Y <= paris.Y {
		t.Errorf("expected Rome south of Paris: %.2f <= %.2f", rome.Y, paris.Y)
	}
}

func TestMapProjectionRejectsDegenerateAnchors(t *testing.T) {
	same := madrid
	same.X, same.Z = 1, 1
	if _, err := NewMapProjection(madrid, same); err == nil {
		t.Error("expected error for coincident anchors")
	}
	sameLat := kyiv
	sameLat.Lat = madrid.Lat
	if _, err := NewMapProjection(madrid, sameLat); err == nil {
		t.Error("expected error for anchors on one parallel")
	}
}
