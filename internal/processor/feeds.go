package processor

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/rfsfeed/internal/config"
	"github.com/woozymasta/rfsfeed/internal/geo"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// FeedResult summarizes the processing of one configured feed.
type FeedResult struct {
	Err      error
	Name     string
	Path     string
	Features int
	Warnings int
	Skipped  bool
}

// FeedOptions converts the per feed policies of the configuration.
func FeedOptions(f config.Feed) (Options, error) {
	var opts Options

	order, err := ParseOrder(f.Sort)
	if err != nil {
		return opts, eris.Wrapf(err, "feed %s", f.Name)
	}
	opts.Order = order

	if len(f.BBox) > 0 {
		b, err := geo.BoundFromSlice(f.BBox)
		if err != nil {
			return opts, eris.Wrapf(err, "feed %s", f.Name)
		}
		opts.Bound = &b
	}

	return opts, nil
}

// ProcessFeed fetches, cleans and stores one feed as <outDir>/<name>.geojson.
// An existing file is kept unless force is set.
func ProcessFeed(ctx context.Context, client *http.Client, p *Pipeline, f config.Feed, outDir string, force bool) FeedResult {
	res := FeedResult{Name: f.Name, Path: filepath.Join(outDir, f.Name+".geojson")}

	if _, err := os.Stat(res.Path); err == nil && !force {
		log.Debug().Str("feed", f.Name).Msg("Feed file exists, skipping")
		res.Skipped = true
		return res
	}

	opts, err := FeedOptions(f)
	if err != nil {
		res.Err = err
		return res
	}

	log.Info().
		Str("feed", f.Name).
		Str("source", f.URL).
		Msg("Processing feed")

	fc, err := FetchFeed(ctx, client, f.URL)
	if err != nil {
		res.Err = err
		return res
	}

	cleaned, err := p.Run(fc, opts)
	if err != nil {
		res.Err = eris.Wrapf(err, "clean feed %s", f.Name)
		return res
	}

	res.Features = len(cleaned.Collection.Features)
	res.Warnings = len(cleaned.Warnings)
	res.Err = saveGeoJSON(res.Path, cleaned.Collection)

	return res
}

// ProcessFeeds runs ProcessFeed over feeds with a bounded worker pool.
// Results keep the order of feeds.
func ProcessFeeds(ctx context.Context, client *http.Client, p *Pipeline, feeds []config.Feed, outDir string, concurrency int, force bool) []FeedResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	type job struct {
		idx  int
		feed config.Feed
	}

	jobs := make(chan job, len(feeds))
	results := make([]FeedResult, len(feeds))

	go func() {
		for i, f := range feeds {
			jobs <- job{idx: i, feed: f}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := ProcessFeed(ctx, client, p, j.feed, outDir, force)
				if res.Err != nil {
					log.Error().
						Err(res.Err).
						Str("feed", j.feed.Name).
						Msg("Failed to process feed")
				}
				results[j.idx] = res
			}
		}()
	}
	wg.Wait()

	return results
}
