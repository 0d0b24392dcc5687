package systems

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/gonum/spatial/r2"
)

// influenceBox is a sample's square influence footprint stored in the R-tree.
type influenceBox struct {
	geom.Polygon
	index int
}

// WindIndex answers the same queries as WindField through an R-tree over
// each sample's influence box. Results are identical to the linear scan.
type WindIndex struct {
	field   *WindField
	tree    *rtree.Rtree
	scratch []int
}

// NewWindIndex builds an index over the field's samples.
func NewWindIndex(f *WindField) *WindIndex {
	tree := rtree.NewTree(4, 16)
	for i, s := range f.samples {
		minX, minY := s.Position.X-s.Radius, s.Position.Y-s.Radius
		maxX, maxY := s.Position.X+s.Radius, s.Position.Y+s.Radius
		tree.Insert(&influenceBox{
			Polygon: geom.Polygon{{
				{X: minX, Y: minY},
				{X: maxX, Y: minY},
				{X: maxX, Y: maxY},
				{X: minX, Y: maxY},
				{X: minX, Y: minY},
			}},
			index: i,
		})
	}
	return &WindIndex{field: f, tree: tree}
}

// Field returns the indexed field.
func (w *WindIndex) Field() *WindField {
	return w.field
}

// QueryNearInto appends samples covering p to dst, in dataset order.
func (w *WindIndex) QueryNearInto(dst []WindSample, p r2.Vec) []WindSample {
	pt := geom.Point{X: p.X, Y: p.Y}
	hits := w.tree.SearchIntersect(&geom.Bounds{Min: pt, Max: pt})
	if len(hits) == 0 {
		return dst
	}

	idx := w.scratch[:0]
	for _, h := range hits {
		box, ok := h.(*influenceBox)
		if !ok {
			continue
		}
		s := &w.field.samples[box.index]
		// The box is a superset of the disc; keep only true hits.
		if r2.Norm(r2.Sub(p, s.Position)) <= s.Radius {
			idx = append(idx, box.index)
		}
	}
	sort.Ints(idx)
	for _, i := range idx {
		dst = append(dst, w.field.samples[i])
	}
	w.scratch = idx
	return dst
}
