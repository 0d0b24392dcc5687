package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/systems"
)

// ParticleRenderer draws plume particles as camera-facing billboards.
type ParticleRenderer struct {
	maxIntensity float64
	gradient     systems.Gradient
	sprite       rl.Texture2D
	initialized  bool
}

// NewParticleRenderer creates a renderer; intensities are normalized by
// maxIntensity before coloring.
func NewParticleRenderer(maxIntensity float64) *ParticleRenderer {
	if maxIntensity <= 0 {
		maxIntensity = 1
	}
	return &ParticleRenderer{
		maxIntensity: maxIntensity,
		gradient:     systems.FalloutGradient(),
	}
}

// Init creates the soft round sprite. Must be called after the window exists.
func (r *ParticleRenderer) Init() {
	if r.initialized {
		return
	}
	img := rl.GenImageGradientRadial(64, 64, 0.1, rl.White, rl.Blank)
	r.sprite = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	r.initialized = true
}

// Draw renders every instance. Call inside BeginMode3D.
func (r *ParticleRenderer) Draw(cam rl.Camera3D, instances []systems.Instance) {
	if !r.initialized {
		r.Init()
	}

	rl.BeginBlendMode(rl.BlendAdditive)
	for i := range instances {
		in := &instances[i]
		t := in.Intensity / r.maxIntensity
		if t > 1 {
			t = 1
		}
		if t <= 0 {
			continue
		}
		tint := rl.Color(r.gradient.RGBA(t, uint8(40+180*t)))
		rl.DrawBillboard(cam, r.sprite, Vec3(in.Position), float32(in.Scale), tint)
	}
	rl.EndBlendMode()
}

// Unload frees resources.
func (r *ParticleRenderer) Unload() {
	if r.initialized {
		rl.UnloadTexture(r.sprite)
		r.initialized = false
	}
}
