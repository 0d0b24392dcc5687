package systems

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// geographicProj is the spatial reference of plant coordinates.
	geographicProj = "+proj=longlat +datum=WGS84 +no_defs"
	// webMapProj is the spatial reference used to flatten the globe.
	webMapProj = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"
)

// Anchor pins a geographic coordinate to a map-plane position.
type Anchor struct {
	Lon, Lat float64
	X, Z     float64
}

// MapProjection converts longitude/latitude into map-plane coordinates by
// projecting to web mercator and applying an axis-aligned affine fit through
// two anchors.
type MapProjection struct {
	forward proj.Transformer
	scale   r2.Vec
	offset  r2.Vec
}

// NewMapProjection fits the projection so both anchors land exactly on their
// map positions. The anchors must differ in both longitude and latitude.
func NewMapProjection(a, b Anchor) (*MapProjection, error) {
	src, err := proj.Parse(geographicProj)
	if err != nil {
		return nil, fmt.Errorf("projection: parsing geographic reference: %w", err)
	}
	dst, err := proj.Parse(webMapProj)
	if err != nil {
		return nil, fmt.Errorf("projection: parsing web map reference: %w", err)
	}
	forward, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("projection: creating transform: %w", err)
	}

	ax, ay, err := forward(a.Lon, a.Lat)
	if err != nil {
		return nil, fmt.Errorf("projection: anchor %v,%v: %w", a.Lon, a.Lat, err)
	}
	bx, by, err := forward(b.Lon, b.Lat)
	if err != nil {
		return nil, fmt.Errorf("projection: anchor %v,%v: %w", b.Lon, b.Lat, err)
	}
	if math.Abs(bx-ax) < 1e-9 || math.Abs(by-ay) < 1e-9 {
		return nil, fmt.Errorf("projection: anchors must differ in longitude and latitude")
	}

	scale := r2.Vec{X: (b.X - a.X) / (bx - ax), Y: (b.Z - a.Z) / (by - ay)}
	return &MapProjection{
		forward: forward,
		scale:   scale,
		offset:  r2.Vec{X: a.X - scale.X*ax, Y: a.Z - scale.Y*ay},
	}, nil
}

// Project maps lon/lat degrees to map-plane (X, Z), returned as r2.Vec{X, Y: Z}.
func (m *MapProjection) Project(lon, lat float64) (r2.Vec, error) {
	x, y, err := m.forward(lon, lat)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("projection: %v,%v: %w", lon, lat, err)
	}
	return r2.Vec{X: m.scale.X*x + m.offset.X, Y: m.scale.Y*y + m.offset.Y}, nil
}
