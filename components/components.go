// Package components defines ECS components for plant entities.
package components

// Site identifies a power plant.
type Site struct {
	Name    string
	Country string
	Lon     float64 // degrees east
	Lat     float64 // degrees north
}

// Position is a plant's location on the map plane. Y is ground height.
type Position struct {
	X, Y, Z float64
}

// Reactor holds the tunable output that drives emission.
type Reactor struct {
	PowerMW float64
}

// Footprint is the pickable box around a plant marker.
type Footprint struct {
	HalfExtent float64 // half width in X and Z
	Height     float64
}

// Exploded marks a plant that has released at least once.
type Exploded struct {
	Count int // number of releases
	Tick  int // tick of the most recent release
}
