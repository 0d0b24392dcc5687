package systems

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNotCapturing is returned when depositing through an ended capture.
var ErrNotCapturing = errors.New("contamination: capture has ended")

// MapBounds is the world-space rectangle the mask covers, viewed from above.
// MinZ maps to the top row of the raster.
type MapBounds struct {
	MinX, MaxX float64
	MinZ, MaxZ float64
}

// Contains reports whether (x, z) lies inside the bounds.
func (b MapBounds) Contains(x, z float64) bool {
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// DepositStyle controls how a particle footprint is painted.
type DepositStyle struct {
	Color        color.RGBA // RGB of the footprint; A is ignored
	Alpha        float64    // footprint alpha at full intensity
	MaxIntensity float64    // intensity that maps to full alpha
}

// ContaminationMask is a persistent top-down raster of accumulated fallout.
// Only opacity is stored; every footprint shares the style color, which is
// applied when the raster is read out. Deposits only ever add opacity; Clear
// is the only way to remove it.
type ContaminationMask struct {
	img    *image.Alpha16
	bounds MapBounds
	style  DepositStyle
	raster *vector.Rasterizer

	active *Capture // innermost open capture, nil when not capturing
	dirty  bool
}

// NewContaminationMask allocates a cleared raster of the given resolution.
func NewContaminationMask(width, height int, bounds MapBounds, style DepositStyle) (*ContaminationMask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("contamination: resolution must be positive, got %dx%d", width, height)
	}
	if bounds.MaxX <= bounds.MinX || bounds.MaxZ <= bounds.MinZ {
		return nil, fmt.Errorf("contamination: empty map bounds %+v", bounds)
	}
	if style.MaxIntensity <= 0 {
		style.MaxIntensity = 1
	}

	m := &ContaminationMask{
		img:    image.NewAlpha16(image.Rect(0, 0, width, height)),
		bounds: bounds,
		style:  style,
		raster: vector.NewRasterizer(1, 1),
	}
	m.raster.DrawOp = draw.Over
	m.Clear()
	return m, nil
}

// Width returns the raster width in pixels.
func (m *ContaminationMask) Width() int { return m.img.Rect.Dx() }

// Height returns the raster height in pixels.
func (m *ContaminationMask) Height() int { return m.img.Rect.Dy() }

// Bounds returns the world rectangle covered by the raster.
func (m *ContaminationMask) Bounds() MapBounds { return m.bounds }

// Image returns a colored copy of the raster: the style color at the
// accumulated opacity.
func (m *ContaminationMask) Image() *image.NRGBA {
	out := image.NewNRGBA(m.img.Rect)
	for i, n := 0, m.Width()*m.Height(); i < n; i++ {
		a := m.alpha8(i)
		if a == 0 {
			continue
		}
		out.Pix[i*4+0] = m.style.Color.R
		out.Pix[i*4+1] = m.style.Color.G
		out.Pix[i*4+2] = m.style.Color.B
		out.Pix[i*4+3] = a
	}
	return out
}

// alpha16 returns the opacity of pixel i in row-major order.
func (m *ContaminationMask) alpha16(i int) uint16 {
	y, x := i/m.Width(), i%m.Width()
	off := y*m.img.Stride + x*2
	return uint16(m.img.Pix[off])<<8 | uint16(m.img.Pix[off+1])
}

// alpha8 rounds the opacity of pixel i to 8 bits.
func (m *ContaminationMask) alpha8(i int) uint8 {
	return uint8((uint32(m.alpha16(i)) + 0x80) / 0x101)
}

// Clear resets the raster to fully transparent.
func (m *ContaminationMask) Clear() {
	clear(m.img.Pix)
	m.dirty = true
}

// Dirty reports whether the raster changed since the last MarkClean.
func (m *ContaminationMask) Dirty() bool { return m.dirty }

// MarkClean records that consumers have seen the current content.
func (m *ContaminationMask) MarkClean() { m.dirty = false }

// Capturing reports whether a capture is open.
func (m *ContaminationMask) Capturing() bool { return m.active != nil }

// Capture is an open redirection of particle drawing into the mask.
type Capture struct {
	mask  *ContaminationMask
	prev  *Capture
	ended bool
}

// BeginCapture opens a capture. Every BeginCapture must be paired with End;
// prefer WithCapture, which guarantees it.
func (m *ContaminationMask) BeginCapture() *Capture {
	c := &Capture{mask: m, prev: m.active}
	m.active = c
	return c
}

// End closes the capture and restores whatever target was active before it.
// Calling End twice is a no-op.
func (c *Capture) End() {
	if c.ended {
		return
	}
	c.ended = true
	if c.mask.active == c {
		c.mask.active = c.prev
	}
}

// WithCapture runs fn inside a capture. The prior target is restored when fn
// returns, including on error or panic.
func (m *ContaminationMask) WithCapture(fn func(c *Capture) error) error {
	c := m.BeginCapture()
	defer c.End()
	return fn(c)
}

// DepositParticles paints every instance into the mask and returns how many
// footprints touched the raster.
func (c *Capture) DepositParticles(instances []Instance) (int, error) {
	if c.ended {
		return 0, ErrNotCapturing
	}
	painted := 0
	for i := range instances {
		in := &instances[i]
		if c.mask.deposit(in.Position, in.Scale, in.Intensity) {
			painted++
		}
	}
	return painted, nil
}

// Deposit paints a single footprint.
func (c *Capture) Deposit(pos r3.Vec, scale, intensity float64) (bool, error) {
	if c.ended {
		return false, ErrNotCapturing
	}
	return c.mask.deposit(pos, scale, intensity), nil
}

// footprintAlpha maps intensity to the 16-bit alpha of one deposit.
// Any positive intensity yields at least 1 so deposits always accumulate.
func (m *ContaminationMask) footprintAlpha(intensity float64) uint16 {
	if intensity <= 0 {
		return 0
	}
	a := clamp01(intensity/m.style.MaxIntensity) * clamp01(m.style.Alpha)
	return uint16(clamp(math.Ceil(a*0xffff), 1, 0xffff))
}

// deposit rasterizes a disc of diameter scale at pos using an orthographic
// top-down projection and composites it with Porter-Duff over.
func (m *ContaminationMask) deposit(pos r3.Vec, scale, intensity float64) bool {
	alpha := m.footprintAlpha(intensity)
	if alpha == 0 || scale <= 0 {
		return false
	}

	w, h := float64(m.Width()), float64(m.Height())
	sx := w / (m.bounds.MaxX - m.bounds.MinX)
	sz := h / (m.bounds.MaxZ - m.bounds.MinZ)

	cx := (pos.X - m.bounds.MinX) * sx
	cy := (pos.Z - m.bounds.MinZ) * sz
	rx := math.Max(scale/2*sx, 0.5)
	ry := math.Max(scale/2*sz, 0.5)

	footprint := image.Rect(
		int(math.Floor(cx-rx)), int(math.Floor(cy-ry)),
		int(math.Ceil(cx+rx)), int(math.Ceil(cy+ry)),
	)
	clip := footprint.Intersect(m.img.Rect)
	if clip.Empty() {
		return false
	}

	// Rasterizer coordinates are local to the clipped rectangle.
	ox, oy := cx-float64(clip.Min.X), cy-float64(clip.Min.Y)
	m.raster.Reset(clip.Dx(), clip.Dy())
	m.raster.DrawOp = draw.Over
	ellipsePath(m.raster, float32(ox), float32(oy), float32(rx), float32(ry))

	src := image.NewUniform(color.Alpha16{A: alpha})
	m.raster.Draw(m.img, clip, src, image.Point{})
	m.dirty = true
	return true
}

// kappa places cubic control points so four curves approximate an ellipse.
const kappa = 0.5522847498

// ellipsePath adds a closed ellipse centered on (cx, cy) to z.
func ellipsePath(z *vector.Rasterizer, cx, cy, rx, ry float32) {
	kx, ky := rx*kappa, ry*kappa
	z.MoveTo(cx+rx, cy)
	z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	z.ClosePath()
}

// IsEmpty reports whether no pixel carries any opacity.
func (m *ContaminationMask) IsEmpty() bool {
	for _, b := range m.img.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

// Coverage returns the fraction of pixels with non-zero opacity.
func (m *ContaminationMask) Coverage() float64 {
	n := m.Width() * m.Height()
	covered := 0
	for i := 0; i < n; i++ {
		if m.alpha16(i) != 0 {
			covered++
		}
	}
	return float64(covered) / float64(n)
}

// MeanAlpha returns the average opacity over the whole raster, in [0, 1].
func (m *ContaminationMask) MeanAlpha() float64 {
	n := m.Width() * m.Height()
	var sum uint64
	for i := 0; i < n; i++ {
		sum += uint64(m.alpha16(i))
	}
	return float64(sum) / float64(n) / 0xffff
}

// AlphaAt returns the opacity under world position (x, z), or 0 outside the map.
func (m *ContaminationMask) AlphaAt(x, z float64) float64 {
	if !m.bounds.Contains(x, z) {
		return 0
	}
	px := int((x - m.bounds.MinX) / (m.bounds.MaxX - m.bounds.MinX) * float64(m.Width()))
	py := int((z - m.bounds.MinZ) / (m.bounds.MaxZ - m.bounds.MinZ) * float64(m.Height()))
	px = clampInt(px, 0, m.Width()-1)
	py = clampInt(py, 0, m.Height()-1)
	return float64(m.img.Alpha16At(px, py).A) / 0xffff
}

// Downsample averages opacity over a cols x rows grid, row-major.
func (m *ContaminationMask) Downsample(cols, rows int) []float64 {
	out := make([]float64, cols*rows)
	if cols <= 0 || rows <= 0 {
		return out
	}
	w, h := m.Width(), m.Height()
	for r := 0; r < rows; r++ {
		y0, y1 := r*h/rows, (r+1)*h/rows
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for c := 0; c < cols; c++ {
			x0, x1 := c*w/cols, (c+1)*w/cols
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum, n float64
			for y := y0; y < y1 && y < h; y++ {
				for x := x0; x < x1 && x < w; x++ {
					sum += float64(m.alpha16(y*w + x))
					n++
				}
			}
			if n > 0 {
				out[r*cols+c] = sum / n / 0xffff
			}
		}
	}
	return out
}

// StraightPixels appends the raster as non-premultiplied colors, row-major,
// for texture uploads that blend with straight alpha.
func (m *ContaminationMask) StraightPixels(dst []color.RGBA) []color.RGBA {
	dst = dst[:0]
	c := m.style.Color
	for i, n := 0, m.Width()*m.Height(); i < n; i++ {
		a := m.alpha8(i)
		if a == 0 {
			dst = append(dst, color.RGBA{})
			continue
		}
		dst = append(dst, color.RGBA{R: c.R, G: c.G, B: c.B, A: a})
	}
	return dst
}
