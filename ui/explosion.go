package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/fallout/systems"
)

// ExplosionAction reports what the user changed in the explosion panel.
type ExplosionAction struct {
	PowerChanged bool
	PowerMW      float64
	Explode      bool
}

// ExplosionPanel shows the selected plant with its power slider and
// the release button.
type ExplosionPanel struct {
	renderer *Renderer
	bounds   Rect
	power    systems.PowerRange
	sections []SectionDescriptor
}

// NewExplosionPanel anchors the panel to the right edge of a screen of
// the given width.
func NewExplosionPanel(screenWidth, y, width int32, power systems.PowerRange) *ExplosionPanel {
	p := &ExplosionPanel{
		renderer: NewRenderer(),
		power:    power,
		sections: plantSections(power),
	}
	p.bounds = Rect{X: screenWidth - width - 10, Y: y, Width: width}
	return p
}

// plantSections describes the read-only plant fields.
func plantSections(power systems.PowerRange) []SectionDescriptor {
	released := func(d any) bool { return d.(systems.Plant).Releases > 0 }
	return []SectionDescriptor{{
		Title: "Selected plant",
		Fields: []FieldDescriptor{
			{Label: "Name", Widget: WidgetText, TextGetter: func(d any) string { return d.(systems.Plant).Name }},
			{Label: "Country", Widget: WidgetText, TextGetter: func(d any) string { return d.(systems.Plant).Country }},
			{Label: "Location", Widget: WidgetText, TextGetter: func(d any) string {
				pl := d.(systems.Plant)
				return fmt.Sprintf("%.2f, %.2f", pl.Lat, pl.Lon)
			}},
			{Label: "Power", Widget: WidgetBar, Range: FieldRange{Min: float32(power.Min), Max: float32(power.Max)},
				Getter: func(d any) float32 { return float32(d.(systems.Plant).PowerMW) }},
			{Label: "Releases", Widget: WidgetText, Format: "%.0f", Visible: released,
				Getter: func(d any) float32 { return float32(d.(systems.Plant).Releases) }},
		},
	}}
}

// Resize re-anchors the panel after the screen width changes.
func (p *ExplosionPanel) Resize(screenWidth int32) {
	p.bounds.X = screenWidth - p.bounds.Width - 10
}

// Contains reports whether pt is over the panel as last drawn.
func (p *ExplosionPanel) Contains(pt rl.Vector2) bool {
	return p.bounds.Height > 0 && p.bounds.Contains(pt)
}

// Draw renders the panel for plant, or a hint when nothing is selected.
func (p *ExplosionPanel) Draw(plant systems.Plant, selected bool) ExplosionAction {
	var action ExplosionAction
	r := p.renderer
	t := r.Theme

	if !selected {
		p.bounds.Height = t.Padding*2 + t.LineHeight
		r.DrawPanel(p.bounds)
		rl.DrawText("Click a plant to select it", p.bounds.X+t.Padding, p.bounds.Y+t.Padding, t.FontSize, t.LabelColor)
		return action
	}

	height := t.Padding * 2
	for _, sd := range p.sections {
		height += r.SectionHeight(sd, plant)
	}
	height += t.LineHeight + 20 + t.Padding + t.ButtonHeight + t.Padding
	p.bounds.Height = height
	r.DrawPanel(p.bounds)

	x := p.bounds.X + t.Padding
	y := p.bounds.Y + t.Padding
	w := p.bounds.Width - 2*t.Padding
	for _, sd := range p.sections {
		y = r.DrawSection(x, y, sd, plant, w)
	}

	rl.DrawText(fmt.Sprintf("Adjust power: %.0f MW", plant.PowerMW), x, y, t.FontSize, t.LabelColor)
	y += t.LineHeight

	minLabel := fmt.Sprintf("%.0f", p.power.Min)
	maxLabel := fmt.Sprintf("%.0f", p.power.Max)
	sliderW := w - 2*int32(rl.MeasureText(maxLabel, 10)) - 8
	sliderX := x + int32(rl.MeasureText(minLabel, 10)) + 4
	value := gui.SliderBar(
		rl.Rectangle{X: float32(sliderX), Y: float32(y), Width: float32(sliderW), Height: 20},
		minLabel, maxLabel, float32(plant.PowerMW), float32(p.power.Min), float32(p.power.Max),
	)
	if math.Abs(float64(value)-plant.PowerMW) >= 1 {
		action.PowerChanged = true
		action.PowerMW = math.Round(float64(value))
	}
	y += 20 + t.Padding

	if gui.Button(Rect{X: x, Y: y, Width: w, Height: t.ButtonHeight}.rectangle(), "Explosion") {
		action.Explode = true
	}

	return action
}
