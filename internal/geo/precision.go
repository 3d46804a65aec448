package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Precision is the number of decimal digits kept in output coordinates.
const Precision = 4

// Truncate rounds every coordinate of g to the given number of decimals,
// in place. The returned geometry must be used since points are values.
func Truncate(g orb.Geometry, decimals int) orb.Geometry {
	if g == nil {
		return nil
	}
	return orb.Round(g, int(math.Pow10(decimals)))
}

// Rewind makes polygon rings follow the right-hand rule: exterior rings
// counter-clockwise, holes clockwise. Rings are reversed in place and
// geometry collections are walked recursively.
func Rewind(g orb.Geometry) orb.Geometry {
	switch v := g.(type) {
	case orb.Polygon:
		rewindPolygon(v)
	case orb.MultiPolygon:
		for _, p := range v {
			rewindPolygon(p)
		}
	case orb.Collection:
		for i := range v {
			v[i] = Rewind(v[i])
		}
	}

	return g
}

func rewindPolygon(p orb.Polygon) {
	for i, r := range p {
		want := orb.CCW
		if i > 0 {
			want = orb.CW
		}

		if len(r) > 2 && r.Orientation() != want {
			r.Reverse()
		}
	}
}
