package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// maxFeedSize bounds the size of an upstream payload.
const maxFeedSize = 32 << 20

// FetchFeed downloads and decodes an upstream GeoJSON feed.
// Any status other than 200 is an error.
func FetchFeed(ctx context.Context, client *http.Client, url string) (*geojson.FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", url)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", url)
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	return ReadFeed(resp.Body)
}

// ReadFeed decodes a GeoJSON feature collection. Null members of geometry
// collections are dropped: they hold no geometry and orb cannot decode them.
func ReadFeed(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFeedSize))
	if err != nil {
		return nil, eris.Wrap(err, "read feed")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "decode feed")
	}

	if dropNullMembers(doc) {
		if data, err = json.Marshal(doc); err != nil {
			return nil, eris.Wrap(err, "decode feed")
		}
	}

	return unmarshalFeed(data)
}

// dropNullMembers removes null entries from the member list of every
// GeometryCollection in v and reports whether anything was removed.
func dropNullMembers(v any) bool {
	changed := false

	switch t := v.(type) {
	case map[string]any:
		if t["type"] == "GeometryCollection" {
			if members, ok := t["geometries"].([]any); ok {
				kept := make([]any, 0, len(members))
				for _, m := range members {
					if m != nil {
						kept = append(kept, m)
					}
				}
				changed = len(kept) != len(members)
				t["geometries"] = kept
			}
		}
		for _, child := range t {
			changed = dropNullMembers(child) || changed
		}

	case []any:
		for _, child := range t {
			changed = dropNullMembers(child) || changed
		}
	}

	return changed
}

// unmarshalFeed turns a panic in the orb decoder on malformed geometry
// into an error.
func unmarshalFeed(data []byte) (fc *geojson.FeatureCollection, err error) {
	defer func() {
		if r := recover(); r != nil {
			fc, err = nil, eris.Errorf("decode feed: malformed geometry: %v", r)
		}
	}()

	fc, err = geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrap(err, "decode feed")
	}

	return fc, nil
}
