package systems

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// axisEpsilon is the direction component below which an axis is treated as
// parallel to the slab planes.
const axisEpsilon = 1e-9

// ErrDegenerateView is returned when the view or projection cannot be inverted.
var ErrDegenerateView = errors.New("picking: view-projection is not invertible")

// Ray is a half-line from Origin along unit Direction.
type Ray struct {
	Origin    r3.Vec
	Direction r3.Vec
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Direction))
}

// BoundingBox is an axis-aligned box.
type BoundingBox struct {
	Min, Max r3.Vec
}

// PlantBox returns the pick box around a plant standing at pos.
func PlantBox(pos r3.Vec, halfExtent, height float64) BoundingBox {
	return BoundingBox{
		Min: r3.Vec{X: pos.X - halfExtent, Y: pos.Y, Z: pos.Z - halfExtent},
		Max: r3.Vec{X: pos.X + halfExtent, Y: pos.Y + height, Z: pos.Z + halfExtent},
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// Intersect runs the slab test and returns the entry distance along r.
// An axis whose direction component is near zero constrains nothing unless
// the origin lies outside that slab, in which case the ray misses.
func (b BoundingBox) Intersect(r Ray) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)

	origin := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(dir[axis]) < axisEpsilon {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		// Box is entirely behind the origin.
		return 0, false
	}
	return math.Max(tmin, 0), true
}

// IntersectsRay reports whether r hits the box.
func (b BoundingBox) IntersectsRay(r Ray) bool {
	_, ok := b.Intersect(r)
	return ok
}

// Selection is either no plant or the index of one plant.
// The zero value is no selection.
type Selection struct {
	index int
	ok    bool
}

// NoSelection returns the empty selection.
func NoSelection() Selection { return Selection{} }

// Selected returns a selection of plant i.
func Selected(i int) Selection { return Selection{index: i, ok: true} }

// Index returns the selected index and whether there is one.
func (s Selection) Index() (int, bool) { return s.index, s.ok }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return !s.ok }

func (s Selection) String() string {
	if !s.ok {
		return "none"
	}
	return fmt.Sprintf("plant[%d]", s.index)
}

// PickPlant returns the first box in order that r intersects, or no selection.
// Order wins over distance.
func PickPlant(r Ray, boxes []BoundingBox) Selection {
	for i := range boxes {
		if boxes[i].IntersectsRay(r) {
			return Selected(i)
		}
	}
	return NoSelection()
}

// Default clip planes, matching the camera defaults.
const (
	DefaultNear = 0.1
	DefaultFar  = 100.0
)

// Viewport is the pixel size of the drawable area and the clip planes of the
// projection drawn into it. Zero planes select DefaultNear and DefaultFar.
type Viewport struct {
	Width, Height float64
	Near, Far     float64
}

// ClipPlanes returns the near and far planes, falling back to the defaults.
func (v Viewport) ClipPlanes() (near, far float64) {
	near, far = v.Near, v.Far
	if near <= 0 {
		near = DefaultNear
	}
	if far <= near {
		far = math.Max(DefaultFar, near*2)
	}
	return near, far
}

// Aspect returns width over height.
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return v.Width / v.Height
}

// Perspective returns a right-handed OpenGL-style projection matrix.
func Perspective(fovYDeg, aspect, near, far float64) *mat.Dense {
	f := 1 / math.Tan(fovYDeg*math.Pi/360)
	return mat.NewDense(4, 4, []float64{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / (near - far), 2 * far * near / (near - far),
		0, 0, -1, 0,
	})
}

// LookAt returns a right-handed view matrix.
func LookAt(eye, target, up r3.Vec) *mat.Dense {
	f := r3.Unit(r3.Sub(target, eye))
	s := r3.Unit(r3.Cross(f, up))
	u := r3.Cross(s, f)
	return mat.NewDense(4, 4, []float64{
		s.X, s.Y, s.Z, -r3.Dot(s, eye),
		u.X, u.Y, u.Z, -r3.Dot(u, eye),
		-f.X, -f.Y, -f.Z, r3.Dot(f, eye),
		0, 0, 0, 1,
	})
}

// ScreenPointToWorldRay unprojects a pixel into a world-space ray leaving eye.
// Screen Y grows downward.
func ScreenPointToWorldRay(screen r2.Vec, vp Viewport, fovYDeg float64, view *mat.Dense, eye r3.Vec) (Ray, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return Ray{}, fmt.Errorf("picking: empty viewport %vx%v", vp.Width, vp.Height)
	}

	ndcX := 2*screen.X/vp.Width - 1
	ndcY := 1 - 2*screen.Y/vp.Height

	near, far := vp.ClipPlanes()
	var invProj, invView mat.Dense
	if err := invProj.Inverse(Perspective(fovYDeg, vp.Aspect(), near, far)); err != nil {
		return Ray{}, fmt.Errorf("%w: %v", ErrDegenerateView, err)
	}
	if err := invView.Inverse(view); err != nil {
		return Ray{}, fmt.Errorf("%w: %v", ErrDegenerateView, err)
	}

	// Clip space -> eye space; keep it a direction pointing into the screen.
	var eyeDir mat.VecDense
	eyeDir.MulVec(&invProj, mat.NewVecDense(4, []float64{ndcX, ndcY, -1, 1}))
	eyeDir.SetVec(2, -1)
	eyeDir.SetVec(3, 0)

	var world mat.VecDense
	world.MulVec(&invView, &eyeDir)

	dir := r3.Unit(r3.Vec{X: world.AtVec(0), Y: world.AtVec(1), Z: world.AtVec(2)})
	if !finite(dir) {
		return Ray{}, ErrDegenerateView
	}
	return Ray{Origin: eye, Direction: dir}, nil
}
