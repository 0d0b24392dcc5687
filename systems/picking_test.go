package systems

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var testPlantBox = BoundingBox{
	Min: r3.Vec{X: 21.5, Y: 0, Z: 3.5},
	Max: r3.Vec{X: 22.5, Y: 1.5, Z: 4.5},
}

func TestPlantBox(t *testing.T) {
	got := PlantBox(r3.Vec{X: 22, Z: 4}, 0.5, 1.5)
	if got != testPlantBox {
		t.Errorf("PlantBox = %+v, want %+v", got, testPlantBox)
	}
}

func TestRayBoxPickingDeterminism(t *testing.T) {
	down := r3.Vec{Y: -1}
	tests := []struct {
		name string
		ray  Ray
		want bool
	}{
		{"straight down through plant", Ray{Origin: r3.Vec{X: 22, Y: 10, Z: 4}, Direction: down}, true},
		{"straight down through origin", Ray{Origin: r3.Vec{X: 0, Y: 10, Z: 0}, Direction: down}, false},
		{"pointing away", Ray{Origin: r3.Vec{X: 22, Y: 10, Z: 4}, Direction: r3.Vec{Y: 1}}, false},
		{"slanted hit", Ray{Origin: r3.Vec{X: 12, Y: 10, Z: 4}, Direction: r3.Unit(r3.Vec{X: 10, Y: -9.5})}, true},
		{"axis parallel inside slab", Ray{Origin: r3.Vec{X: 0, Y: 1, Z: 4}, Direction: r3.Vec{X: 1}}, true},
		{"axis parallel outside slab", Ray{Origin: r3.Vec{X: 0, Y: 2, Z: 4}, Direction: r3.Vec{X: 1}}, false},
		{"origin inside", Ray{Origin: r3.Vec{X: 22, Y: 1, Z: 4}, Direction: r3.Vec{X: 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testPlantBox.IntersectsRay(tt.ray); got != tt.want {
				t.Errorf("IntersectsRay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectNoNaNOnZeroComponents(t *testing.T) {
	// Exact zeros on two axes must not produce NaN comparisons.
	r := Ray{Origin: r3.Vec{X: 22, Y: 10, Z: 4}, Direction: r3.Vec{Y: -1}}
	dist, ok := testPlantBox.Intersect(r)
	if !ok || math.IsNaN(dist) || math.Abs(dist-8.5) > 1e-9 {
		t.Errorf("Intersect = %v, %v; want 8.5, true", dist, ok)
	}
}

func TestPickPlantFirstHitWins(t *testing.T) {
	near := PlantBox(r3.Vec{X: 0, Z: 0}, 0.5, 1.5)
	far := PlantBox(r3.Vec{X: 5, Z: 0}, 0.5, 1.5)
	// Along +X from x=-10 the ray meets near before far; load order decides.
	r := Ray{Origin: r3.Vec{X: -10, Y: 1}, Direction: r3.Vec{X: 1}}

	if i, ok := PickPlant(r, []BoundingBox{far, near}).Index(); !ok || i != 0 {
		t.Errorf("expected index 0, got %d ok=%v", i, ok)
	}
	if i, ok := PickPlant(r, []BoundingBox{near, far}).Index(); !ok || i != 0 {
		t.Errorf("expected index 0, got %d ok=%v", i, ok)
	}
}

func TestPickPlantMissIsNone(t *testing.T) {
	prev := Selected(3)
	if prev.IsNone() {
		t.Fatal("expected a selection to start from")
	}
	sel := PickPlant(Ray{Origin: r3.Vec{Y: 10}, Direction: r3.Vec{Y: -1}}, []BoundingBox{testPlantBox})
	if !sel.IsNone() {
		t.Errorf("expected miss to clear the selection, got %v", sel)
	}
	if sel.String() != "none" {
		t.Errorf("String = %q", sel.String())
	}
}

func TestScreenPointToWorldRay(t *testing.T) {
	eye := r3.Vec{Y: 10}
	view := LookAt(eye, r3.Vec{}, r3.Vec{Z: -1})
	vp := Viewport{Width: 800, Height: 600}

	ray, err := ScreenPointToWorldRay(r2.Vec{X: 400, Y: 300}, vp, 45, view, eye)
	if err != nil {
		t.Fatalf("ScreenPointToWorldRay: %v", err)
	}
	if r3.Norm(r3.Sub(ray.Direction, r3.Vec{Y: -1})) > 1e-9 {
		t.Errorf("center ray direction = %+v, want (0,-1,0)", ray.Direction)
	}
	if ray.Origin != eye {
		t.Errorf("origin = %+v, want %+v", ray.Origin, eye)
	}

	// Right half of the screen maps to +X, bottom half to +Z with up = -Z.
	ray, err = ScreenPointToWorldRay(r2.Vec{X: 700, Y: 500}, vp, 45, view, eye)
	if err != nil {
		t.Fatal(err)
	}
	if ray.Direction.X <= 0 || ray.Direction.Z <= 0 || ray.Direction.Y >= 0 {
		t.Errorf("expected ray toward +X +Z and down, got %+v", ray.Direction)
	}

	// The ray lands where the pinhole model says it should.
	hit := ray.At(-eye.Y / ray.Direction.Y)
	tanHalf := math.Tan(45 * math.Pi / 360)
	wantX := (700.0/400 - 1) * tanHalf * vp.Aspect() * eye.Y
	wantZ := (500.0/300 - 1) * tanHalf * eye.Y
	if math.Abs(hit.X-wantX) > 1e-6 || math.Abs(hit.Z-wantZ) > 1e-6 {
		t.Errorf("ground hit = (%.4f, %.4f), want (%.4f, %.4f)", hit.X, hit.Z, wantX, wantZ)
	}
}

func TestViewportClipPlanes(t *testing.T) {
	tests := []struct {
		name              string
		vp                Viewport
		wantNear, wantFar float64
	}{
		{"defaults", Viewport{Width: 800, Height: 600}, DefaultNear, DefaultFar},
		{"explicit", Viewport{Width: 800, Height: 600, Near: 0.5, Far: 250}, 0.5, 250},
		{"far behind near", Viewport{Near: 0.1, Far: 0.05}, 0.1, DefaultFar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near, far := tt.vp.ClipPlanes()
			if near != tt.wantNear || far != tt.wantFar {
				t.Errorf("ClipPlanes() = %v, %v, want %v, %v", near, far, tt.wantNear, tt.wantFar)
			}
		})
	}
	if DefaultNear != 0.1 || DefaultFar != 100 {
		t.Errorf("default planes = %v/%v, want 0.1/100", DefaultNear, DefaultFar)
	}
}

func TestScreenPointToWorldRayIgnoresClipDepth(t *testing.T) {
	eye := r3.Vec{X: 2, Y: 12, Z: 9}
	view := LookAt(eye, r3.Vec{}, r3.Vec{Y: 1})
	screen := r2.Vec{X: 123, Y: 456}

	base, err := ScreenPointToWorldRay(screen, Viewport{Width: 800, Height: 600}, 45, view, eye)
	if err != nil {
		t.Fatal(err)
	}
	for _, planes := range [][2]float64{{0.1, 100}, {0.5, 500}, {1, 20}} {
		vp := Viewport{Width: 800, Height: 600, Near: planes[0], Far: planes[1]}
		ray, err := ScreenPointToWorldRay(screen, vp, 45, view, eye)
		if err != nil {
			t.Fatal(err)
		}
		if r3.Norm(r3.Sub(ray.Direction, base.Direction)) > 1e-9 {
			t.Errorf("planes %v: direction %+v, want %+v", planes, ray.Direction, base.Direction)
		}
	}
}

func TestScreenPointToWorldRayDegenerate(t *testing.T) {
	if _, err := ScreenPointToWorldRay(r2.Vec{}, Viewport{}, 45, LookAt(r3.Vec{Y: 1}, r3.Vec{}, r3.Vec{Z: -1}), r3.Vec{}); err == nil {
		t.Error("expected error for empty viewport")
	}
	singular := mat.NewDense(4, 4, nil)
	_, err := ScreenPointToWorldRay(r2.Vec{X: 1, Y: 1}, Viewport{Width: 2, Height: 2}, 45, singular, r3.Vec{})
	if !errors.Is(err, ErrDegenerateView) {
		t.Errorf("expected ErrDegenerateView, got %v", err)
	}
}
