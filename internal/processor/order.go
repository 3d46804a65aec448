package processor

import (
	"slices"
	"time"

	"github.com/woozymasta/rfsfeed/internal/geo"
	"github.com/woozymasta/rfsfeed/internal/properties"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// Order is a feature ordering policy.
type Order string

// Supported orders. Time based orders put the newest incident first and
// incidents without the timestamp last.
const (
	OrderNone      Order = "none"
	OrderPublished Order = "pub-date"
	OrderUpdated   Order = "updated"
)

// ParseOrder validates an order name. Empty means OrderNone.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case "", OrderNone:
		return OrderNone, nil
	case OrderPublished, OrderUpdated:
		return o, nil
	default:
		return "", eris.Errorf("unknown order %q", s)
	}
}

func (o Order) key() string {
	switch o {
	case OrderPublished:
		return properties.KeyPublished
	case OrderUpdated:
		return properties.KeyUpdated
	}
	return ""
}

// SortFeatures returns a collection with the features of fc in the given
// order. The sort is stable and fc is left untouched.
func SortFeatures(fc *geojson.FeatureCollection, o Order) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if len(fc.Features) > 0 {
		out.Features = slices.Clone(fc.Features)
	}

	key := o.key()
	if key == "" {
		return out
	}

	stamp := func(f *geojson.Feature) (time.Time, bool) {
		s, ok := f.Properties[key].(string)
		if !ok {
			return time.Time{}, false
		}
		t, err := time.Parse(time.RFC3339, s)
		return t, err == nil
	}

	slices.SortStableFunc(out.Features, func(a, b *geojson.Feature) int {
		ta, okA := stamp(a)
		tb, okB := stamp(b)
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})

	return out
}

// FilterBound returns a collection of the features of fc whose geometry
// bound intersects b, in input order. Features without geometry are dropped.
func FilterBound(fc *geojson.FeatureCollection, b orb.Bound) *geojson.FeatureCollection {
	ix := geo.NewIndex()
	for i, f := range fc.Features {
		ix.Insert(i, f.Geometry)
	}

	out := geojson.NewFeatureCollection()
	for _, i := range ix.Search(b) {
		out.Features = append(out.Features, fc.Features[i])
	}

	return out
}
