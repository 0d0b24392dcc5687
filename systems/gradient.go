package systems

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// GradientStop is one keypoint of a Gradient. Pos lies in [0, 1].
type GradientStop struct {
	Color colorful.Color
	Pos   float64
}

// Gradient is a color ramp with stops sorted by Pos.
type Gradient []GradientStop

// At returns the HCL blend between the stops around t. Values outside the
// stop range take the nearest end color.
func (g Gradient) At(t float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Color{}
	}
	if t <= g[0].Pos {
		return g[0].Color
	}
	for i := 0; i < len(g)-1; i++ {
		c1, c2 := g[i], g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			if c2.Pos == c1.Pos {
				return c2.Color
			}
			return c1.Color.BlendHcl(c2.Color, (t-c1.Pos)/(c2.Pos-c1.Pos)).Clamped()
		}
	}
	return g[len(g)-1].Color
}

// RGBA returns the color at t as 8-bit RGBA with alpha a.
func (g Gradient) RGBA(t float64, a uint8) color.RGBA {
	r, gr, b := g.At(t).RGB255()
	return color.RGBA{R: r, G: gr, B: b, A: a}
}

// MustParseHex parses a #rrggbb color and panics on malformed input.
func MustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("systems: " + err.Error())
	}
	return c
}

// FalloutGradient colors contamination and particles from faint to hot.
func FalloutGradient() Gradient {
	return Gradient{
		{Color: MustParseHex("#2b4d1f"), Pos: 0},
		{Color: MustParseHex("#8cf233"), Pos: 0.4},
		{Color: MustParseHex("#f2e533"), Pos: 0.75},
		{Color: MustParseHex("#ff5a1f"), Pos: 1},
	}
}
