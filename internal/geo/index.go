package geo

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/tidwall/rtree"
)

// Index is a spatial index of feature bounds keyed by feature position.
type Index struct {
	tree rtree.RTreeG[int]
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Insert adds the bound of the geometry at position id.
// Nil geometries are not indexed and never match a search.
func (ix *Index) Insert(id int, g orb.Geometry) {
	if g == nil {
		return
	}

	b := g.Bound()
	ix.tree.Insert([2]float64{b.Min.X(), b.Min.Y()}, [2]float64{b.Max.X(), b.Max.Y()}, id)
}

// Search returns the ascending positions of all entries intersecting b.
func (ix *Index) Search(b orb.Bound) []int {
	ids := make([]int, 0)
	ix.tree.Search(
		[2]float64{b.Min.X(), b.Min.Y()},
		[2]float64{b.Max.X(), b.Max.Y()},
		func(_, _ [2]float64, id int) bool {
			ids = append(ids, id)
			return true
		},
	)

	sort.Ints(ids)
	return ids
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return ix.tree.Len()
}

// ParseBound parses "minLon,minLat,maxLon,maxLat".
func ParseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, eris.Errorf("bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, eris.Wrapf(err, "bbox %q", s)
		}
		v[i] = f
	}

	return BoundFromSlice(v[:])
}

// BoundFromSlice builds a bound from four values in bbox order.
func BoundFromSlice(v []float64) (orb.Bound, error) {
	if len(v) != 4 {
		return orb.Bound{}, eris.Errorf("bbox needs 4 values, got %d", len(v))
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, eris.Errorf("bbox %v: min exceeds max", v)
	}

	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
