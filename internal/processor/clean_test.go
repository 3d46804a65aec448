package processor

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/woozymasta/rfsfeed/internal/properties"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genericLink = "http://www.rfs.nsw.gov.au/fire-information/fires-near-me"

func loadFixture(t *testing.T) *geojson.FeatureCollection {
	t.Helper()

	f, err := os.Open("testdata/majorIncidents.json")
	require.NoError(t, err)
	defer f.Close()

	fc, err := ReadFeed(f)
	require.NoError(t, err)
	return fc
}

func TestClean(t *testing.T) {
	var logs bytes.Buffer
	p := NewPipeline(genericLink, zerolog.New(&logs))
	fc := loadFixture(t)

	res, err := p.Clean(fc)
	require.NoError(t, err)
	require.Len(t, res.Collection.Features, 4)

	first := res.Collection.Features[0]
	assert.Equal(t, orb.Point{151.2093, -33.8688}, first.Geometry)
	assert.NotContains(t, first.Properties, "link")
	assert.Equal(t, "2018-01-03T05:20:00+11:00", first.Properties["pub-date"])
	assert.Equal(t, "2018-01-03T16:20:00+11:00", first.Properties["updated"])
	assert.Equal(t, "advice", first.Properties["alert-level"])
	assert.Equal(t, "under-control", first.Properties["status"])
	assert.Equal(t, "grass-fire", first.Properties["type"])
	assert.Equal(t, true, first.Properties["fire"])
	assert.Equal(t, "Tenterfield", first.Properties["council-area"])
	for _, k := range []string{"pubDate", "description", "category", "guid_isPermaLink"} {
		assert.NotContains(t, first.Properties, k)
	}

	second := res.Collection.Features[1]
	c, ok := second.Geometry.(orb.Collection)
	require.True(t, ok, "got %T", second.Geometry)
	require.Len(t, c, 2)
	assert.Equal(t, orb.Point{150.5, -34.1}, c[0])
	assert.Equal(t, orb.CCW, c[1].(orb.Polygon)[0].Orientation())
	assert.Equal(t, "http://www.rfs.nsw.gov.au/fire-information/fires-near-me/1002", second.Properties["link"])
	assert.Equal(t, "out-of control", second.Properties["status"])
	assert.Equal(t, "watch-and act", second.Properties["alert-level"])

	third := res.Collection.Features[2]
	mp, ok := third.Geometry.(orb.MultiPolygon)
	require.True(t, ok, "got %T", third.Geometry)
	require.Len(t, mp, 2)
	for _, poly := range mp {
		assert.Equal(t, orb.CCW, poly[0].Orientation())
	}
	assert.Equal(t, false, third.Properties["fire"])
	assert.Equal(t, "hazard-reduction", third.Properties["type"])

	fourth := res.Collection.Features[3]
	assert.Nil(t, fourth.Geometry)
	assert.NotContains(t, fourth.Properties, "pub-date")

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, res.Warnings[0].Index)
	assert.Equal(t, "Advice", res.Warnings[0].AlertLevel)
	assert.Equal(t, "Watch and Act", res.Warnings[0].Category)
	assert.Contains(t, logs.String(), "Alert level does not match category")
}

func TestCleanDoesNotMutateInput(t *testing.T) {
	fc := loadFixture(t)
	before, err := fc.MarshalJSON()
	require.NoError(t, err)

	res, err := NewPipeline(genericLink, zerolog.Nop()).Clean(fc)
	require.NoError(t, err)
	assert.NotSame(t, fc, res.Collection)

	after, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestCleanIdempotentGeometry(t *testing.T) {
	p := NewPipeline(genericLink, zerolog.Nop())
	res, err := p.Clean(loadFixture(t))
	require.NoError(t, err)

	again := geojson.NewFeatureCollection()
	for _, f := range res.Collection.Features {
		nf := geojson.NewFeature(f.Geometry)
		nf.Properties = geojson.Properties{"category": "Advice", "description": "FIRE: Yes"}
		again.Append(nf)
	}

	res2, err := p.Clean(again)
	require.NoError(t, err)
	for i := range res.Collection.Features {
		assert.Equal(t, res.Collection.Features[i].Geometry, res2.Collection.Features[i].Geometry)
	}
}

func TestCleanFeatureErrors(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	ok := geojson.NewFeature(orb.Point{1, 1})
	ok.Properties = geojson.Properties{"category": "Advice", "description": "FIRE: Yes"}
	bad := geojson.NewFeature(orb.Point{2, 2})
	bad.ID = "1002"
	bad.Properties = geojson.Properties{"category": "Advice", "pubDate": "yesterday", "description": "FIRE: Yes"}
	fc.Append(ok)
	fc.Append(bad)

	_, err := NewPipeline(genericLink, zerolog.Nop()).Clean(fc)
	require.Error(t, err)

	var fe *FeatureError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Index)
	assert.Equal(t, "1002", fe.ID)

	var de *properties.DateError
	assert.True(t, errors.As(err, &de))
}

func TestCleanEmpty(t *testing.T) {
	p := NewPipeline(genericLink, zerolog.Nop())

	res, err := p.Clean(nil)
	require.NoError(t, err)
	assert.Empty(t, res.Collection.Features)

	res, err = p.Clean(geojson.NewFeatureCollection())
	require.NoError(t, err)
	assert.Empty(t, res.Collection.Features)
}

func TestRunAppliesOptions(t *testing.T) {
	p := NewPipeline(genericLink, zerolog.Nop())
	b := orb.Bound{Min: orb.Point{148, -36}, Max: orb.Point{151, -33.9}}

	res, err := p.Run(loadFixture(t), Options{Order: OrderPublished, Bound: &b})
	require.NoError(t, err)

	require.Len(t, res.Collection.Features, 2)
	assert.Equal(t, "Kangaroo Valley", res.Collection.Features[0].Properties["title"])
	assert.Equal(t, "Hazard Reduction, Canberra", res.Collection.Features[1].Properties["title"])
}
