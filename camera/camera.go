// Package camera provides a 3D fly camera over the map plane.
package camera

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/systems"
)

// worldUp is the +Y axis.
var worldUp = r3.Vec{Y: 1}

// Camera is a yaw/pitch fly camera. Angles are in degrees.
type Camera struct {
	Position r3.Vec

	Yaw   float64 // -90 looks down -Z
	Pitch float64 // negative looks down

	Fov       float64 // vertical field of view
	Near, Far float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	MoveSpeed     float64 // world units per second
	FastMoveSpeed float64
	Sensitivity   float64 // degrees per pixel of mouse motion

	home r3.Vec
	yaw0 float64
	pit0 float64
}

// Settings holds the initial pose and tuning of a camera.
type Settings struct {
	Position         r3.Vec
	Yaw, Pitch, Fov  float64
	Near, Far        float64
	MoveSpeed        float64
	FastMoveSpeed    float64
	MouseSensitivity float64
	ViewportW        float64
	ViewportH        float64
}

// New creates a camera from s.
func New(s Settings) *Camera {
	c := &Camera{
		Position:      s.Position,
		Yaw:           s.Yaw,
		Pitch:         clampPitch(s.Pitch),
		Fov:           s.Fov,
		Near:          s.Near,
		Far:           s.Far,
		ViewportW:     s.ViewportW,
		ViewportH:     s.ViewportH,
		MoveSpeed:     s.MoveSpeed,
		FastMoveSpeed: s.FastMoveSpeed,
		Sensitivity:   s.MouseSensitivity,
	}
	c.home, c.yaw0, c.pit0 = c.Position, c.Yaw, c.Pitch
	return c
}

// Front returns the unit view direction.
func (c *Camera) Front() r3.Vec {
	yaw := c.Yaw * math.Pi / 180
	pitch := c.Pitch * math.Pi / 180
	return r3.Unit(r3.Vec{
		X: math.Cos(yaw) * math.Cos(pitch),
		Y: math.Sin(pitch),
		Z: math.Sin(yaw) * math.Cos(pitch),
	})
}

// Right returns the unit vector to the camera's right, parallel to the ground.
func (c *Camera) Right() r3.Vec {
	return r3.Unit(r3.Cross(c.Front(), worldUp))
}

// Up returns the camera's unit up vector.
func (c *Camera) Up() r3.Vec {
	return r3.Unit(r3.Cross(c.Right(), c.Front()))
}

// Target returns a point one unit in front of the camera.
func (c *Camera) Target() r3.Vec {
	return r3.Add(c.Position, c.Front())
}

// View returns the view matrix.
func (c *Camera) View() *mat.Dense {
	return systems.LookAt(c.Position, c.Target(), worldUp)
}

// Projection returns the perspective matrix for the current viewport.
func (c *Camera) Projection() *mat.Dense {
	vp := c.viewport()
	near, far := vp.ClipPlanes()
	return systems.Perspective(c.Fov, vp.Aspect(), near, far)
}

func (c *Camera) viewport() systems.Viewport {
	return systems.Viewport{Width: c.ViewportW, Height: c.ViewportH, Near: c.Near, Far: c.Far}
}

// Ray returns the world ray under screen pixel (sx, sy).
func (c *Camera) Ray(sx, sy float64) (systems.Ray, error) {
	return systems.ScreenPointToWorldRay(r2.Vec{X: sx, Y: sy}, c.viewport(), c.Fov, c.View(), c.Position)
}

// WorldToScreen projects p to screen pixels.
// Returns false if p is behind the camera.
func (c *Camera) WorldToScreen(p r3.Vec) (r2.Vec, bool) {
	var vp mat.Dense
	vp.Mul(c.Projection(), c.View())

	var clip mat.VecDense
	clip.MulVec(&vp, mat.NewVecDense(4, []float64{p.X, p.Y, p.Z, 1}))
	w := clip.AtVec(3)
	if w <= 0 {
		return r2.Vec{}, false
	}
	ndcX, ndcY := clip.AtVec(0)/w, clip.AtVec(1)/w
	return r2.Vec{
		X: (ndcX + 1) / 2 * c.ViewportW,
		Y: (1 - ndcY) / 2 * c.ViewportH,
	}, true
}

// Movement is one frame of fly input, each axis in [-1, 1].
type Movement struct {
	Forward, Strafe, Lift float64
	Fast                  bool
}

// Move translates the camera along its own axes for dt seconds.
func (c *Camera) Move(m Movement, dt float64) {
	speed := c.MoveSpeed
	if m.Fast {
		speed = c.FastMoveSpeed
	}
	step := speed * dt
	delta := r3.Add(r3.Scale(m.Forward, c.Front()), r3.Scale(m.Strafe, c.Right()))
	delta = r3.Add(delta, r3.Scale(m.Lift, worldUp))
	c.Position = r3.Add(c.Position, r3.Scale(step, delta))
}

// Look turns the camera by a mouse delta in pixels. Pitch stays within ±89°.
func (c *Camera) Look(dx, dy float64) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch = clampPitch(c.Pitch - dy*c.Sensitivity)
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset returns the camera to its initial pose.
func (c *Camera) Reset() {
	c.Position, c.Yaw, c.Pitch = c.home, c.yaw0, c.pit0
}

func clampPitch(p float64) float64 {
	return math.Max(-89, math.Min(89, p))
}
