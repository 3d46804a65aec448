package processor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{151.2093, -33.8688})
	f.Properties = geojson.Properties{"alert-level": "advice", "fire": true}
	fc.Append(f)
	return fc
}

func TestEncodeJSON(t *testing.T) {
	var compact, pretty bytes.Buffer
	require.NoError(t, Encode(&compact, sampleCollection(), FormatJSON, false))
	require.NoError(t, Encode(&pretty, sampleCollection(), FormatJSON, true))

	assert.Equal(t, 1, strings.Count(compact.String(), "\n"))
	assert.Greater(t, strings.Count(pretty.String(), "\n"), 5)
	assert.JSONEq(t, compact.String(), pretty.String())
	assert.JSONEq(t, `{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [151.2093, -33.8688]},
			"properties": {"alert-level": "advice", "fire": true}
		}]
	}`, compact.String())
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleCollection(), FormatYAML, false))

	var doc struct {
		Type     string `yaml:"type"`
		Features []struct {
			Geometry struct {
				Type        string    `yaml:"type"`
				Coordinates []float64 `yaml:"coordinates"`
			} `yaml:"geometry"`
			Properties map[string]any `yaml:"properties"`
		} `yaml:"features"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, []float64{151.2093, -33.8688}, doc.Features[0].Geometry.Coordinates)
	assert.Equal(t, true, doc.Features[0].Properties["fire"])
}

func TestEncodeUnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, sampleCollection(), "xml", false)
	assert.Error(t, err)
}
