// Package tui draws the simulation in a terminal with tcell: the
// contamination raster as shaded cells, the plume and the plant markers.
package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/fallout/sim"
	"github.com/pthm-cable/fallout/systems"
)

// Glyphs used on the map.
const (
	GlyphPlant    = '▲'
	GlyphSelected = '◆'
	GlyphReleased = 'x'
	GlyphParticle = '*'
	GlyphLand     = '.'
)

// statusRows is the number of lines reserved below the map.
const statusRows = 2

// View renders a world onto a tcell screen.
type View struct {
	screen   tcell.Screen
	world    *sim.World
	backdrop *systems.Backdrop
	gradient systems.Gradient
	bounds   systems.MapBounds

	instances []systems.Instance
	density   []float64 // particles per cell, scratch
}

// NewView creates a view of world on screen.
func NewView(screen tcell.Screen, world *sim.World, backdrop *systems.Backdrop) *View {
	return &View{
		screen:   screen,
		world:    world,
		backdrop: backdrop,
		gradient: systems.FalloutGradient(),
		bounds:   world.Mask().Bounds(),
	}
}

// mapSize returns the map area in cells.
func (v *View) mapSize() (cols, rows int) {
	w, h := v.screen.Size()
	rows = h - statusRows
	if rows < 1 {
		rows = 1
	}
	return w, rows
}

// CellOf returns the map cell containing world (x, z) and whether it is on screen.
func (v *View) CellOf(x, z float64) (col, row int, ok bool) {
	if !v.bounds.Contains(x, z) {
		return 0, 0, false
	}
	cols, rows := v.mapSize()
	col = int((x - v.bounds.MinX) / (v.bounds.MaxX - v.bounds.MinX) * float64(cols))
	row = int((z - v.bounds.MinZ) / (v.bounds.MaxZ - v.bounds.MinZ) * float64(rows))
	if col >= cols {
		col = cols - 1
	}
	if row >= rows {
		row = rows - 1
	}
	return col, row, true
}

// cellCenter returns the world position at the middle of a cell.
func (v *View) cellCenter(col, row, cols, rows int) (x, z float64) {
	x = v.bounds.MinX + (float64(col)+0.5)/float64(cols)*(v.bounds.MaxX-v.bounds.MinX)
	z = v.bounds.MinZ + (float64(row)+0.5)/float64(rows)*(v.bounds.MaxZ-v.bounds.MinZ)
	return x, z
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// Draw renders one frame and shows it.
func (v *View) Draw() {
	v.screen.Clear()
	cols, rows := v.mapSize()

	v.drawGround(cols, rows)
	v.drawPlume(cols, rows)
	v.drawPlants()
	v.drawStatus(rows)

	v.screen.Show()
}

// drawGround shades each cell by backdrop and accumulated contamination.
func (v *View) drawGround(cols, rows int) {
	contamination := v.world.Mask().Downsample(cols, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x, z := v.cellCenter(col, row, cols, rows)
			bg := v.backdrop.ColorAt(x, z)
			if a := contamination[row*cols+col]; a > 0 {
				bg = bg.BlendRgb(v.gradient.At(a), 0.35+0.65*a)
			}
			ch := ' '
			if !v.backdrop.IsSea(x, z) {
				ch = GlyphLand
			}
			style := tcell.StyleDefault.Background(tcellColor(bg)).Foreground(tcellColor(bg.BlendRgb(colorful.Color{R: 1, G: 1, B: 1}, 0.2)))
			v.screen.SetContent(col, row, ch, nil, style)
		}
	}
}

// drawPlume marks cells holding live particles, coloured by how many.
func (v *View) drawPlume(cols, rows int) {
	v.instances = v.world.Pool().Snapshot(v.instances[:0])
	if len(v.instances) == 0 {
		return
	}
	if cap(v.density) < cols*rows {
		v.density = make([]float64, cols*rows)
	}
	v.density = v.density[:cols*rows]
	clear(v.density)

	peak := 0.0
	for i := range v.instances {
		p := v.instances[i].Position
		col, row, ok := v.CellOf(p.X, p.Z)
		if !ok {
			continue
		}
		v.density[row*cols+col]++
		peak = max(peak, v.density[row*cols+col])
	}

	for i, n := range v.density {
		if n == 0 {
			continue
		}
		col, row := i%cols, i/cols
		_, _, style, _ := v.screen.GetContent(col, row)
		fg := tcellColor(v.gradient.At(0.3 + 0.7*n/peak))
		v.screen.SetContent(col, row, GlyphParticle, nil, style.Foreground(fg).Bold(true))
	}
}

// drawPlants places a marker for each plant. The selection is drawn last so
// it stays visible when plants share a cell.
func (v *View) drawPlants() {
	sel, hasSel := v.world.Selected().Index()
	var selected systems.Plant
	for _, p := range v.world.Plants().All() {
		if hasSel && p.Index == sel {
			selected = p
			continue
		}
		glyph, fg := GlyphPlant, tcell.ColorWhite
		if p.Releases > 0 {
			glyph, fg = GlyphReleased, tcell.ColorGray
		}
		v.setMarker(p, glyph, tcell.StyleDefault.Foreground(fg))
	}
	if hasSel {
		v.setMarker(selected, GlyphSelected, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true).Reverse(true))
	}
}

func (v *View) setMarker(p systems.Plant, glyph rune, style tcell.Style) {
	col, row, ok := v.CellOf(p.Position.X, p.Position.Z)
	if !ok {
		return
	}
	_, _, bg, _ := v.screen.GetContent(col, row)
	_, bgColor, _ := bg.Decompose()
	v.screen.SetContent(col, row, glyph, nil, style.Background(bgColor))
}

// drawStatus writes the selection and counters below the map.
func (v *View) drawStatus(row int) {
	stats := v.world.Stats()

	selText := "no plant selected (Tab to cycle)"
	if p, ok := v.world.SelectedPlant(); ok {
		selText = fmt.Sprintf("%s, %s  %.0f MW", p.Name, p.Country, p.PowerMW)
	}
	state := ""
	if stats.Paused {
		state = "  PAUSED"
	}
	v.drawText(0, row, tcell.StyleDefault.Foreground(tcell.ColorYellow), selText+state)

	line := fmt.Sprintf("tick %d  particles %d/%d  coverage %.2f%%  [Tab] select [e] explode [+/-] power [c] clear [Space] pause [q] quit",
		stats.Tick, stats.Particles, stats.Capacity, stats.Coverage*100)
	v.drawText(0, row+1, tcell.StyleDefault.Foreground(tcell.ColorSilver), line)
}

func (v *View) drawText(x, y int, style tcell.Style, text string) {
	w, _ := v.screen.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
