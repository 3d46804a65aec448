// Package server publishes cleaned incident feeds over HTTP.
package server

import (
	"encoding/json"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/rfsfeed/internal/geo"
	"github.com/woozymasta/rfsfeed/internal/processor"

	"github.com/rs/zerolog/log"
)

const etagCap = 32

// HandleFeedsList serves the JSON list of configured feeds.
func (s *ServerContext) HandleFeedsList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Config.Feeds)
}

// HandleFeed serves a cleaned feed as GeoJSON.
// Path: /feeds/{name}.geojson, query: bbox=minLon,minLat,maxLon,maxLat, sort=order
func (s *ServerContext) HandleFeed(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	requested, ok := strings.CutSuffix(file, ".geojson")
	if !ok {
		http.NotFound(w, r)
		return
	}

	name, ok := s.FeedResolver[requested]
	if !ok {
		http.NotFound(w, r)
		return
	}

	cached, err := s.cleanedFeed(r.Context(), name)
	if err != nil {
		log.Error().Err(err).Str("feed", name).Msg("Failed to refresh feed")
		http.Error(w, "upstream feed unavailable", http.StatusBadGateway)
		return
	}

	opts := cached.opts
	q := r.URL.Query()
	if v := q.Get("bbox"); v != "" {
		b, err := geo.ParseBound(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Bound = &b
	}
	if v := q.Get("sort"); v != "" {
		order, err := processor.ParseOrder(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Order = order
	}

	fc := cached.fc
	if opts.Bound != nil {
		fc = processor.FilterBound(fc, *opts.Bound)
	}
	fc = processor.SortFeatures(fc, opts.Order)

	body, err := processor.Marshal(fc, processor.FormatJSON, q.Has("pretty"))
	if err != nil {
		log.Error().Err(err).Str("feed", name).Msg("Failed to encode feed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	etag := bodyETag(body)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(s.Config.CacheTTL.Seconds())))
	_, _ = w.Write(body)
}

// bodyETag builds a strong ETag from the body length and its FNV-1a hash.
func bodyETag(body []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(body)

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, int64(len(body)), 16)
	buf = append(buf, '-')
	buf = strconv.AppendUint(buf, h.Sum64(), 16)
	buf = append(buf, '"')
	return string(buf)
}
