package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/systems"
)

var (
	plantColor    = rl.Color{R: 200, G: 200, B: 210, A: 255}
	selectedColor = rl.Color{R: 230, G: 40, B: 40, A: 255}
	releasedColor = rl.Color{R: 90, G: 90, B: 90, A: 255}
)

// PlantRenderer draws plant markers as cylinders.
type PlantRenderer struct {
	radius float32
	height float32
}

// NewPlantRenderer creates a renderer sized to the pick footprint.
func NewPlantRenderer(halfExtent, height float64) *PlantRenderer {
	return &PlantRenderer{radius: float32(halfExtent), height: float32(height)}
}

// Draw renders every plant; the selected one is red. Call inside BeginMode3D.
func (r *PlantRenderer) Draw(plants []systems.Plant, sel systems.Selection) {
	selected, hasSel := sel.Index()
	for i := range plants {
		p := &plants[i]
		col := plantColor
		switch {
		case hasSel && i == selected:
			col = selectedColor
		case p.Releases > 0:
			col = releasedColor
		}
		pos := Vec3(p.Position)
		rl.DrawCylinder(pos, r.radius*0.8, r.radius, r.height, 12, col)
		rl.DrawCylinderWires(pos, r.radius*0.8, r.radius, r.height, 12, rl.Fade(rl.Black, 0.4))
	}
}
