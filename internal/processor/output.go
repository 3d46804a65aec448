package processor

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Marshal encodes fc as JSON, optionally indented, or as YAML.
func Marshal(fc *geojson.FeatureCollection, format string, pretty bool) ([]byte, error) {
	data, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "marshal geojson")
	}

	switch format {
	case "", FormatJSON:
		if !pretty {
			return data, nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, eris.Wrap(err, "indent geojson")
		}
		return buf.Bytes(), nil

	case FormatYAML:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, eris.Wrap(err, "convert geojson")
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, eris.Wrap(err, "marshal yaml")
		}
		return out, nil

	default:
		return nil, eris.Errorf("unknown output format %q", format)
	}
}

// Encode writes fc to w followed by a newline.
func Encode(w io.Writer, fc *geojson.FeatureCollection, format string, pretty bool) error {
	data, err := Marshal(fc, format, pretty)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	_, err = w.Write(data)
	return eris.Wrap(err, "write output")
}

// saveGeoJSON marshals the feature collection and writes it to disk.
func saveGeoJSON(path string, fc *geojson.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return eris.Wrapf(err, "create %s", filepath.Dir(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}

	// We care about write errors on close
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", path).Msg("Failed to close file")
		}
	}()

	return Encode(f, fc, FormatJSON, false)
}
