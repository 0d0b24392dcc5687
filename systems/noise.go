package systems

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"
)

// Backdrop generates the stylized terrain drawn under the plume when no map
// image is configured.
type Backdrop struct {
	noise     opensimplex.Noise
	octaves   int
	frequency float64 // cycles per world unit of the first octave
	persist   float64 // amplitude falloff per octave
	seaLevel  float64
	seaRamp   Gradient
	landRamp  Gradient
}

// NewBackdrop creates a deterministic backdrop for seed.
func NewBackdrop(seed int64) *Backdrop {
	return &Backdrop{
		noise:     opensimplex.NewNormalized(seed),
		octaves:   5,
		frequency: 0.06,
		persist:   0.5,
		seaLevel:  0.45,
		seaRamp: Gradient{
			{Color: MustParseHex("#0b1a2e"), Pos: 0},
			{Color: MustParseHex("#1d3b5a"), Pos: 1},
		},
		landRamp: Gradient{
			{Color: MustParseHex("#2f3d2a"), Pos: 0},
			{Color: MustParseHex("#58613f"), Pos: 0.6},
			{Color: MustParseHex("#8a8468"), Pos: 1},
		},
	}
}

// Height returns fractal noise at world (x, z), in [0, 1].
func (b *Backdrop) Height(x, z float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, b.frequency
	for o := 0; o < b.octaves; o++ {
		sum += amp * b.noise.Eval2(x*freq, z*freq)
		norm += amp
		amp *= b.persist
		freq *= 2
	}
	return clamp01(sum / norm)
}

// IsSea reports whether (x, z) lies below sea level.
func (b *Backdrop) IsSea(x, z float64) bool {
	return b.Height(x, z) < b.seaLevel
}

// ColorAt returns the backdrop color at world (x, z).
func (b *Backdrop) ColorAt(x, z float64) colorful.Color {
	h := b.Height(x, z)
	if h < b.seaLevel {
		return b.seaRamp.At(h / b.seaLevel)
	}
	return b.landRamp.At((h - b.seaLevel) / (1 - b.seaLevel))
}

// Render rasterizes the backdrop over bounds, MinZ on the top row.
func (b *Backdrop) Render(width, height int, bounds MapBounds) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	sx := (bounds.MaxX - bounds.MinX) / float64(width)
	sz := (bounds.MaxZ - bounds.MinZ) / float64(height)
	for py := 0; py < height; py++ {
		z := bounds.MinZ + (float64(py)+0.5)*sz
		for px := 0; px < width; px++ {
			x := bounds.MinX + (float64(px)+0.5)*sx
			r, g, bl := b.ColorAt(x, z).RGB255()
			img.SetRGBA(px, py, color.RGBA{R: r, G: g, B: bl, A: 255})
		}
	}
	return img
}
