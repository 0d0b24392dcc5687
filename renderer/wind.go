package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/systems"
)

const (
	arrowLength = 1.2
	arrowTravel = 0.8 // distance an arrow slides over one animation cycle
)

// WindRenderer draws animated wind arrows.
type WindRenderer struct {
	height float32
}

// NewWindRenderer creates a renderer drawing arrows at height.
func NewWindRenderer(height float64) *WindRenderer {
	return &WindRenderer{height: float32(height)}
}

// arrowPhase returns the animation phase in [0, 1) for sample i at time t.
// Samples are offset so neighbouring arrows do not pulse in step.
func arrowPhase(t, speed float64, i int) float64 {
	p := t*speed*0.5 + float64(i)*0.137
	return p - math.Floor(p)
}

// Draw renders one arrow per sample, sliding along the wind and fading at
// both ends of the cycle. Call inside BeginMode3D.
func (r *WindRenderer) Draw(samples []systems.WindSample, t float64) {
	rl.BeginBlendMode(rl.BlendAlpha)
	for i := range samples {
		s := &samples[i]
		phase := arrowPhase(t, s.AnimationSpeed(), i)
		fade := float32(math.Sin(math.Pi * phase))

		// Direction in the map plane; Angle has z flipped for screen-up.
		a := s.Angle()
		dx, dz := float32(math.Cos(a)), -float32(math.Sin(a))
		offset := float32(phase * arrowTravel)

		start := rl.Vector3{
			X: float32(s.Position.X) + dx*offset,
			Y: r.height,
			Z: float32(s.Position.Y) + dz*offset,
		}
		tip := rl.Vector3{X: start.X + dx*arrowLength, Y: r.height, Z: start.Z + dz*arrowLength}
		neck := rl.Vector3{X: start.X + dx*arrowLength*0.7, Y: r.height, Z: start.Z + dz*arrowLength*0.7}

		col := rl.Fade(rl.Color(s.Color()), fade)
		rl.DrawCylinderEx(start, neck, 0.04, 0.04, 6, col)
		rl.DrawCylinderEx(neck, tip, 0.12, 0, 8, col)
	}
	rl.EndBlendMode()
}
