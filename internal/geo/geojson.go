// Package geo canonicalizes incident geometries: it collapses nested
// geometry collections, bounds coordinate precision and fixes ring winding.
package geo

import "github.com/paulmach/orb"

// Flatten expands nested geometry collections into a flat, depth-first
// ordered list of primitive geometries.
//
// A nil geometry yields a single nil element so "no geometry" survives
// flattening. Collections contribute their members only; empty collections
// and nil members at any depth contribute nothing.
func Flatten(g orb.Geometry) []orb.Geometry {
	if g == nil {
		return []orb.Geometry{nil}
	}

	c, ok := g.(orb.Collection)
	if !ok {
		return []orb.Geometry{g}
	}

	return flattenMembers(c, make([]orb.Geometry, 0, len(c)))
}

func flattenMembers(c orb.Collection, out []orb.Geometry) []orb.Geometry {
	for _, m := range c {
		switch v := m.(type) {
		case nil:
			continue
		case orb.Collection:
			out = flattenMembers(v, out)
		default:
			out = append(out, v)
		}
	}

	return out
}

// Canonicalize returns the simplest geometry holding the same primitives as g.
//
// Nothing to hold gives nil, a single primitive is returned as is, primitives
// sharing one type become the matching multipart geometry and anything else
// becomes a flat geometry collection.
func Canonicalize(g orb.Geometry) orb.Geometry {
	flat := Flatten(g)

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}

	if Uniform(flat) {
		if multi, ok := merge(flat); ok {
			return multi
		}
	}

	return orb.Collection(flat)
}

// Uniform reports whether all geometries share the same GeoJSON type.
func Uniform(geoms []orb.Geometry) bool {
	if len(geoms) < 2 {
		return true
	}

	first := typeOf(geoms[0])
	for _, g := range geoms[1:] {
		if typeOf(g) != first {
			return false
		}
	}

	return true
}

func typeOf(g orb.Geometry) string {
	if g == nil {
		return ""
	}
	return g.GeoJSONType()
}

// merge joins geometries of one type into a multipart geometry. Multipart
// members are concatenated part by part. Types without a multipart form
// report false.
func merge(geoms []orb.Geometry) (orb.Geometry, bool) {
	switch geoms[0].(type) {
	case orb.Point:
		mp := make(orb.MultiPoint, 0, len(geoms))
		for _, g := range geoms {
			mp = append(mp, g.(orb.Point))
		}
		return mp, true

	case orb.MultiPoint:
		var mp orb.MultiPoint
		for _, g := range geoms {
			mp = append(mp, g.(orb.MultiPoint)...)
		}
		return mp, true

	case orb.LineString:
		mls := make(orb.MultiLineString, 0, len(geoms))
		for _, g := range geoms {
			mls = append(mls, g.(orb.LineString))
		}
		return mls, true

	case orb.MultiLineString:
		var mls orb.MultiLineString
		for _, g := range geoms {
			mls = append(mls, g.(orb.MultiLineString)...)
		}
		return mls, true

	case orb.Polygon:
		mp := make(orb.MultiPolygon, 0, len(geoms))
		for _, g := range geoms {
			mp = append(mp, g.(orb.Polygon))
		}
		return mp, true

	case orb.MultiPolygon:
		var mp orb.MultiPolygon
		for _, g := range geoms {
			mp = append(mp, g.(orb.MultiPolygon)...)
		}
		return mp, true

	default:
		// orb.Ring and orb.Bound never come out of GeoJSON decoding
		return nil, false
	}
}
