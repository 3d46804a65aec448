package properties

import (
	"bytes"
	"errors"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genericLink = "http://www.rfs.nsw.gov.au/fire-information/fires-near-me"

func rawIncident() geojson.Properties {
	return geojson.Properties{
		"title":            "Wallaby Rd, Tenterfield",
		"link":             genericLink,
		"category":         "Advice",
		"guid":             "https://incidents.rfs.nsw.gov.au/api/v1/incidents/123",
		"guid_isPermaLink": "true",
		"pubDate":          "3/01/2018 5:20:00 AM",
		"description": "ALERT LEVEL: Advice <br />LOCATION: Wallaby Rd <br />COUNCIL AREA: Tenterfield <br />" +
			"STATUS: Being controlled <br />TYPE: Grass Fire <br />FIRE: Yes <br />SIZE: 3 ha <br />" +
			"RESPONSIBLE AGENCY: Rural Fire Service <br />UPDATED: 3 Jan 2018 16:20",
	}
}

func newUnpacker(buf *bytes.Buffer) *Unpacker {
	return &Unpacker{GenericLink: genericLink, Log: zerolog.New(buf)}
}

func TestUnpack(t *testing.T) {
	var buf bytes.Buffer
	raw := rawIncident()

	got, warnings, err := newUnpacker(&buf).Unpack(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Empty(t, buf.String())

	want := geojson.Properties{
		"title":              "Wallaby Rd, Tenterfield",
		"guid":               "https://incidents.rfs.nsw.gov.au/api/v1/incidents/123",
		"pub-date":           "2018-01-03T05:20:00+11:00",
		"alert-level":        "advice",
		"location":           "Wallaby Rd",
		"council-area":       "Tenterfield",
		"status":             "being-controlled",
		"type":               "grass-fire",
		"fire":               true,
		"size":               "3 ha",
		"responsible-agency": "Rural Fire Service",
		"updated":            "2018-01-03T16:20:00+11:00",
	}
	assert.Equal(t, want, got)

	assert.Equal(t, rawIncident(), raw, "input must not be mutated")
}

func TestUnpackKeepsSpecificLink(t *testing.T) {
	raw := rawIncident()
	raw["link"] = "http://www.rfs.nsw.gov.au/fire-information/fires-near-me/123"

	got, _, err := newUnpacker(&bytes.Buffer{}).Unpack(raw)
	require.NoError(t, err)
	assert.Equal(t, raw["link"], got["link"])
}

func TestUnpackAlertLevelMismatch(t *testing.T) {
	var buf bytes.Buffer
	raw := rawIncident()
	raw["category"] = "Watch and Act"

	got, warnings, err := newUnpacker(&buf).Unpack(raw)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, InconsistentFieldWarning{AlertLevel: "Advice", Category: "Watch and Act"}, warnings[0])
	assert.Equal(t, "watch-and act", got["alert-level"])
	assert.NotContains(t, got, "category")
	assert.Contains(t, buf.String(), "Alert level does not match category")
}

func TestUnpackFireFlag(t *testing.T) {
	tests := map[string]bool{
		"Yes":                    true,
		"yes":                    true,
		"Yes - Hazard reduction": true,
		"No":                     false,
		"":                       false,
	}

	for fire, want := range tests {
		raw := geojson.Properties{"category": "Advice", "description": "FIRE: " + fire}
		got, _, err := newUnpacker(&bytes.Buffer{}).Unpack(raw)
		require.NoError(t, err, fire)
		assert.Equal(t, want, got["fire"], fire)
	}
}

func TestUnpackMissingFields(t *testing.T) {
	tests := map[string]geojson.Properties{
		"fire":     {"category": "Advice", "description": "STATUS: Under control"},
		"category": {"description": "FIRE: Yes"},
	}

	for key, raw := range tests {
		_, _, err := newUnpacker(&bytes.Buffer{}).Unpack(raw)

		var mf *MissingFieldError
		require.True(t, errors.As(err, &mf), key)
		assert.Equal(t, key, mf.Key)
	}
}

func TestUnpackMalformedDates(t *testing.T) {
	raw := rawIncident()
	raw["pubDate"] = "2018-01-03T05:20:00Z"
	_, _, err := newUnpacker(&bytes.Buffer{}).Unpack(raw)

	var de *DateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, FormatPublished, de.Format)

	raw = rawIncident()
	raw["description"] = "FIRE: Yes<br />UPDATED: 2018-01-03"
	_, _, err = newUnpacker(&bytes.Buffer{}).Unpack(raw)
	require.True(t, errors.As(err, &de))
	assert.Equal(t, FormatUpdated, de.Format)
}

func TestUnpackWithoutOptionalFields(t *testing.T) {
	raw := geojson.Properties{
		"category":         "Not Applicable",
		"guid_isPermaLink": "false",
		"description":      "FIRE: No",
	}

	got, _, err := newUnpacker(&bytes.Buffer{}).Unpack(raw)
	require.NoError(t, err)

	assert.Equal(t, geojson.Properties{"alert-level": "not-applicable", "fire": false}, got)
}
