package systems

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/fallout/components"
	"github.com/pthm-cable/fallout/data"
)

// ErrNoSuchPlant is returned for an index outside the registry.
var ErrNoSuchPlant = errors.New("plants: no such plant")

// PowerRange bounds the adjustable output of a plant.
type PowerRange struct {
	Min, Max float64
}

// Clamp restricts p to the range.
func (r PowerRange) Clamp(p float64) float64 {
	return clamp(p, r.Min, r.Max)
}

// Plant is a read-only view of one registered plant.
type Plant struct {
	Index    int
	Name     string
	Country  string
	Lon, Lat float64
	Position r3.Vec
	PowerMW  float64
	Releases int
}

// PlantRegistry stores plants as ECS entities and keeps their load order,
// which is the order picking tests them in.
type PlantRegistry struct {
	world     *ecs.World
	mapper    *ecs.Map4[components.Site, components.Position, components.Reactor, components.Footprint]
	siteMap   *ecs.Map[components.Site]
	posMap    *ecs.Map[components.Position]
	reactMap  *ecs.Map[components.Reactor]
	footMap   *ecs.Map[components.Footprint]
	explodMap *ecs.Map[components.Exploded]

	order []ecs.Entity
	power PowerRange
	boxes []BoundingBox // scratch for picking
}

// NewPlantRegistry creates an empty registry in world.
func NewPlantRegistry(world *ecs.World, power PowerRange) *PlantRegistry {
	return &PlantRegistry{
		world:     world,
		mapper:    ecs.NewMap4[components.Site, components.Position, components.Reactor, components.Footprint](world),
		siteMap:   ecs.NewMap[components.Site](world),
		posMap:    ecs.NewMap[components.Position](world),
		reactMap:  ecs.NewMap[components.Reactor](world),
		footMap:   ecs.NewMap[components.Footprint](world),
		explodMap: ecs.NewMap[components.Exploded](world),
		power:     power,
	}
}

// LoadPlants registers every record, projecting coordinates onto the map.
func (r *PlantRegistry) LoadPlants(records []data.PlantRecord, projection *MapProjection, foot components.Footprint) error {
	for _, rec := range records {
		p, err := projection.Project(rec.Lon, rec.Lat)
		if err != nil {
			return fmt.Errorf("plants: %s: %w", rec.Name, err)
		}
		site := components.Site{Name: rec.Name, Country: rec.Country, Lon: rec.Lon, Lat: rec.Lat}
		r.Add(site, r3.Vec{X: p.X, Z: p.Y}, rec.PowerMW, foot)
	}
	return nil
}

// Add registers a plant at pos and returns its index.
func (r *PlantRegistry) Add(site components.Site, pos r3.Vec, powerMW float64, foot components.Footprint) int {
	position := components.Position{X: pos.X, Y: pos.Y, Z: pos.Z}
	reactor := components.Reactor{PowerMW: r.power.Clamp(powerMW)}
	e := r.mapper.NewEntity(&site, &position, &reactor, &foot)
	r.order = append(r.order, e)
	return len(r.order) - 1
}

// Len returns the number of plants.
func (r *PlantRegistry) Len() int {
	return len(r.order)
}

// PowerRange returns the adjustable power bounds.
func (r *PlantRegistry) PowerRange() PowerRange {
	return r.power
}

func (r *PlantRegistry) entity(i int) (ecs.Entity, error) {
	if i < 0 || i >= len(r.order) {
		return ecs.Entity{}, fmt.Errorf("%w: index %d of %d", ErrNoSuchPlant, i, len(r.order))
	}
	return r.order[i], nil
}

// Get returns a view of plant i.
func (r *PlantRegistry) Get(i int) (Plant, error) {
	e, err := r.entity(i)
	if err != nil {
		return Plant{}, err
	}
	site := r.siteMap.Get(e)
	pos := r.posMap.Get(e)
	p := Plant{
		Index:    i,
		Name:     site.Name,
		Country:  site.Country,
		Lon:      site.Lon,
		Lat:      site.Lat,
		Position: r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z},
		PowerMW:  r.reactMap.Get(e).PowerMW,
	}
	if r.explodMap.Has(e) {
		p.Releases = r.explodMap.Get(e).Count
	}
	return p, nil
}

// All returns views of every plant in load order.
func (r *PlantRegistry) All() []Plant {
	out := make([]Plant, 0, len(r.order))
	for i := range r.order {
		p, _ := r.Get(i)
		out = append(out, p)
	}
	return out
}

// Find returns the index of the plant with the given name.
func (r *PlantRegistry) Find(name string) (int, bool) {
	for i, e := range r.order {
		if r.siteMap.Get(e).Name == name {
			return i, true
		}
	}
	return 0, false
}

// SetPower changes plant i's output, clamped to the power range, and returns
// the stored value.
func (r *PlantRegistry) SetPower(i int, powerMW float64) (float64, error) {
	e, err := r.entity(i)
	if err != nil {
		return 0, err
	}
	reactor := r.reactMap.Get(e)
	reactor.PowerMW = r.power.Clamp(powerMW)
	return reactor.PowerMW, nil
}

// MarkReleased records a release from plant i at tick.
func (r *PlantRegistry) MarkReleased(i, tick int) error {
	e, err := r.entity(i)
	if err != nil {
		return err
	}
	if r.explodMap.Has(e) {
		ex := r.explodMap.Get(e)
		ex.Count++
		ex.Tick = tick
		return nil
	}
	r.explodMap.Add(e, &components.Exploded{Count: 1, Tick: tick})
	return nil
}

// Box returns the pick box for plant i.
func (r *PlantRegistry) Box(i int) (BoundingBox, error) {
	e, err := r.entity(i)
	if err != nil {
		return BoundingBox{}, err
	}
	pos := r.posMap.Get(e)
	foot := r.footMap.Get(e)
	return PlantBox(r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}, foot.HalfExtent, foot.Height), nil
}

// Pick returns the first plant in load order whose box ray hits.
func (r *PlantRegistry) Pick(ray Ray) Selection {
	r.boxes = r.boxes[:0]
	for i := range r.order {
		b, _ := r.Box(i)
		r.boxes = append(r.boxes, b)
	}
	return PickPlant(ray, r.boxes)
}
