package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/camera"
)

// Vec3 converts a world vector to raylib.
func Vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// Camera3D converts the fly camera into a raylib camera.
func Camera3D(c *camera.Camera) rl.Camera3D {
	return rl.Camera3D{
		Position:   Vec3(c.Position),
		Target:     Vec3(c.Target()),
		Up:         Vec3(c.Up()),
		Fovy:       float32(c.Fov),
		Projection: rl.CameraPerspective,
	}
}
