package ui

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlAction reports which control buttons were pressed this frame.
type ControlAction struct {
	ToggleWind bool
	ClearMask  bool
}

// ControlsPanel renders the top-left panel with view toggles.
type ControlsPanel struct {
	renderer *Renderer
	bounds   Rect
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	r := NewRenderer()
	height := r.Theme.Padding*4 + r.Theme.LineHeight + r.Theme.ButtonHeight*2
	return &ControlsPanel{
		renderer: r,
		bounds:   Rect{X: x, Y: y, Width: width, Height: height},
		visible:  true,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether p is over the visible panel.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	return c.visible && c.bounds.Contains(p)
}

// Draw renders the panel and returns the buttons pressed.
func (c *ControlsPanel) Draw(showWind bool) ControlAction {
	var action ControlAction
	if !c.visible {
		return action
	}

	r := c.renderer
	r.DrawPanel(c.bounds)

	x := c.bounds.X + r.Theme.Padding
	y := r.DrawSectionHeader(x, c.bounds.Y+r.Theme.Padding, "View")
	w := c.bounds.Width - 2*r.Theme.Padding

	label := "Show wind vectors"
	if showWind {
		label = "Hide wind vectors"
	}
	if gui.Button(Rect{X: x, Y: y, Width: w, Height: r.Theme.ButtonHeight}.rectangle(), label) {
		action.ToggleWind = true
	}
	y += r.Theme.ButtonHeight + r.Theme.Padding

	if gui.Button(Rect{X: x, Y: y, Width: w, Height: r.Theme.ButtonHeight}.rectangle(), "Clear contamination") {
		action.ClearMask = true
	}

	return action
}
