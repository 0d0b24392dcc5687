// Package telemetry provides plume statistics, performance tracking and run logs.
package telemetry

import "log/slog"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventExplosion EventType = iota
	EventMaskCleared
	EventSelection
	EventPowerChanged
)

// String returns the CSV name of the event type.
func (t EventType) String() string {
	switch t {
	case EventExplosion:
		return "explosion"
	case EventMaskCleared:
		return "mask_cleared"
	case EventSelection:
		return "selection"
	case EventPowerChanged:
		return "power_changed"
	default:
		return "unknown"
	}
}

// Event represents a single user-visible simulation event.
type Event struct {
	Type    EventType `csv:"-"`
	Kind    string    `csv:"type"`
	Tick    int       `csv:"tick"`
	SimTime float64   `csv:"sim_time"`
	Plant   string    `csv:"plant"`

	// Optional fields depending on event type
	PowerMW float64 `csv:"power_mw"`
	Emitted int     `csv:"emitted"`
	Dropped int     `csv:"dropped"`
}

func newEvent(t EventType, tick int, simTime float64, plant string) Event {
	return Event{Type: t, Kind: t.String(), Tick: tick, SimTime: simTime, Plant: plant}
}

// NewExplosionEvent creates an explosion event.
func NewExplosionEvent(tick int, simTime float64, plant string, powerMW float64, emitted, dropped int) Event {
	e := newEvent(EventExplosion, tick, simTime, plant)
	e.PowerMW = powerMW
	e.Emitted = emitted
	e.Dropped = dropped
	return e
}

// NewMaskClearedEvent creates a contamination reset event.
func NewMaskClearedEvent(tick int, simTime float64) Event {
	return newEvent(EventMaskCleared, tick, simTime, "")
}

// NewSelectionEvent creates a selection change event. plant is empty when
// the selection was cleared.
func NewSelectionEvent(tick int, simTime float64, plant string) Event {
	return newEvent(EventSelection, tick, simTime, plant)
}

// NewPowerChangedEvent creates a power adjustment event.
func NewPowerChangedEvent(tick int, simTime float64, plant string, powerMW float64) Event {
	e := newEvent(EventPowerChanged, tick, simTime, plant)
	e.PowerMW = powerMW
	return e
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	attrs := []any{"type", e.Kind, "tick", e.Tick}
	if e.Plant != "" {
		attrs = append(attrs, "plant", e.Plant)
	}
	switch e.Type {
	case EventExplosion:
		attrs = append(attrs, "power_mw", e.PowerMW, "emitted", e.Emitted, "dropped", e.Dropped)
	case EventPowerChanged:
		attrs = append(attrs, "power_mw", e.PowerMW)
	}
	slog.Info("event", attrs...)
}
