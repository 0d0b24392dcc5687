package systems

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/fallout/data"
)

// WindBand categorizes a wind sample by speed.
type WindBand uint8

const (
	BandLow WindBand = iota
	BandMedium
	BandHigh
)

// String returns the band name.
func (b WindBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	default:
		return "high"
	}
}

// WindBands holds the speed thresholds separating the bands.
type WindBands struct {
	Low  float64 // speed < Low is BandLow
	High float64 // speed >= High is BandHigh
}

// DefaultWindBands returns the 30/60 split the dataset was authored with.
func DefaultWindBands() WindBands {
	return WindBands{Low: 30, High: 60}
}

// Classify returns the band for a speed.
func (b WindBands) Classify(speed float64) WindBand {
	switch {
	case speed < b.Low:
		return BandLow
	case speed < b.High:
		return BandMedium
	default:
		return BandHigh
	}
}

// WindSample is a fixed directional forcing at a map position.
// Values are copied out of the field; nothing mutates them after construction.
type WindSample struct {
	Direction r2.Vec // (x, z) plane, not necessarily unit length
	Position  r2.Vec // (x, z) map coordinates
	Speed     float64
	Band      WindBand
	Radius    float64 // influence radius, wider for faster bands
}

// radiusFactor scales the base influence radius per band.
func radiusFactor(b WindBand) float64 {
	switch b {
	case BandLow:
		return 1.0
	case BandMedium:
		return 1.25
	default:
		return 1.5
	}
}

// AnimationSpeed returns the arrow animation rate multiplier for the band.
func (s WindSample) AnimationSpeed() float64 {
	switch s.Band {
	case BandLow:
		return 0.5
	case BandMedium:
		return 1.0
	default:
		return 2.0
	}
}

// Color returns the display color for the band: blue, yellow or red.
func (s WindSample) Color() color.RGBA {
	switch s.Band {
	case BandLow:
		return color.RGBA{R: 0, G: 0, B: 255, A: 255}
	case BandMedium:
		return color.RGBA{R: 255, G: 255, B: 0, A: 255}
	default:
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	}
}

// Angle returns the heading in radians measured from +X, with z flipped so
// that positive angles turn toward -Z (screen up on the map).
func (s WindSample) Angle() float64 {
	d := r2.Unit(r2.Vec{X: s.Direction.X, Y: -s.Direction.Y})
	return math.Atan2(d.Y, d.X)
}

// WindQuerier answers "which samples influence this point".
// Implementations must return samples in dataset order.
type WindQuerier interface {
	QueryNearInto(dst []WindSample, p r2.Vec) []WindSample
}

// WindField is the static set of wind samples over the map.
type WindField struct {
	samples    []WindSample
	baseRadius float64
	maxRadius  float64
}

// NewWindField builds a field from samples, filling in band and radius.
func NewWindField(samples []WindSample, bands WindBands, baseRadius float64) *WindField {
	f := &WindField{
		samples:    make([]WindSample, len(samples)),
		baseRadius: baseRadius,
	}
	for i, s := range samples {
		s.Band = bands.Classify(s.Speed)
		s.Radius = baseRadius * radiusFactor(s.Band)
		if s.Radius > f.maxRadius {
			f.maxRadius = s.Radius
		}
		f.samples[i] = s
	}
	return f
}

// LoadWindField builds a field from dataset records.
func LoadWindField(records []data.WindRecord, bands WindBands, baseRadius float64) *WindField {
	samples := make([]WindSample, len(records))
	for i, r := range records {
		samples[i] = WindSample{
			Direction: r2.Vec{X: r.DirX, Y: r.DirZ},
			Position:  r2.Vec{X: r.PosX, Y: r.PosZ},
			Speed:     r.Speed,
		}
	}
	return NewWindField(samples, bands, baseRadius)
}

// Samples returns the samples in dataset order. Callers must not modify it.
func (f *WindField) Samples() []WindSample {
	return f.samples
}

// Len returns the number of samples.
func (f *WindField) Len() int {
	return len(f.samples)
}

// MaxRadius returns the largest influence radius of any sample.
func (f *WindField) MaxRadius() float64 {
	return f.maxRadius
}

// QueryNear returns every sample whose influence radius covers p.
func (f *WindField) QueryNear(p r2.Vec) []WindSample {
	return f.QueryNearInto(nil, p)
}

// QueryNearInto appends matching samples to dst. Reuse dst across calls to avoid allocations.
func (f *WindField) QueryNearInto(dst []WindSample, p r2.Vec) []WindSample {
	for i := range f.samples {
		s := &f.samples[i]
		if r2.Norm(r2.Sub(p, s.Position)) <= s.Radius {
			dst = append(dst, *s)
		}
	}
	return dst
}
