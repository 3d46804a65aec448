// Package processor fetches upstream incident feeds and turns them into
// canonical GeoJSON.
package processor

import (
	"fmt"

	"github.com/woozymasta/rfsfeed/internal/geo"
	"github.com/woozymasta/rfsfeed/internal/properties"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Pipeline cleans incident feature collections. It holds no mutable state
// and may be shared between goroutines.
type Pipeline struct {
	Unpacker properties.Unpacker
	// Precision is the number of decimals kept in coordinates.
	Precision int
	Log       zerolog.Logger
}

// NewPipeline returns a pipeline dropping genericLink from incidents and
// reporting diagnostics to log.
func NewPipeline(genericLink string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Unpacker:  properties.Unpacker{GenericLink: genericLink, Log: log},
		Precision: geo.Precision,
		Log:       log,
	}
}

// Warning is a non-fatal inconsistency found in one feature.
type Warning struct {
	Index int
	properties.InconsistentFieldWarning
}

// Result is a cleaned collection plus the diagnostics raised building it.
type Result struct {
	Collection *geojson.FeatureCollection
	Warnings   []Warning
}

// FeatureError locates an error in the input collection.
type FeatureError struct {
	Index int
	ID    any
	Err   error
}

func (e *FeatureError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("feature #%d (id %v): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("feature #%d: %v", e.Index, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }

// Clean canonicalizes the geometry and properties of every feature, keeping
// input order. Coordinates are then rounded and polygon rings rewound.
// The input collection is not modified.
func (p *Pipeline) Clean(fc *geojson.FeatureCollection) (*Result, error) {
	res := &Result{Collection: geojson.NewFeatureCollection()}
	if fc == nil {
		return res, nil
	}

	res.Collection.Features = make([]*geojson.Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f == nil {
			return nil, &FeatureError{Index: i, Err: eris.New("null feature")}
		}

		props, warnings, err := p.Unpacker.Unpack(f.Properties)
		if err != nil {
			return nil, &FeatureError{Index: i, ID: f.ID, Err: err}
		}
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, Warning{Index: i, InconsistentFieldWarning: w})
		}

		var g orb.Geometry
		if f.Geometry != nil {
			g = geo.Canonicalize(orb.Clone(f.Geometry))
		}

		cleaned := geojson.NewFeature(g)
		cleaned.ID = f.ID
		cleaned.Properties = props
		res.Collection.Features = append(res.Collection.Features, cleaned)
	}

	for _, f := range res.Collection.Features {
		f.Geometry = geo.Rewind(geo.Truncate(f.Geometry, p.Precision))
	}

	p.Log.Debug().
		Int("features", len(res.Collection.Features)).
		Int("warnings", len(res.Warnings)).
		Msg("Feed cleaned")

	return res, nil
}

// Options are the caller side policies applied after cleaning.
type Options struct {
	Order Order
	// Bound keeps only features intersecting it when set.
	Bound *orb.Bound
}

// Run cleans fc, then filters and orders the result as requested.
func (p *Pipeline) Run(fc *geojson.FeatureCollection, opts Options) (*Result, error) {
	res, err := p.Clean(fc)
	if err != nil {
		return nil, err
	}

	if opts.Bound != nil {
		res.Collection = FilterBound(res.Collection, *opts.Bound)
	}
	res.Collection = SortFeatures(res.Collection, opts.Order)

	return res, nil
}
