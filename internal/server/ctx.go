package server

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/woozymasta/rfsfeed/internal/config"
	"github.com/woozymasta/rfsfeed/internal/processor"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config       *config.Config
	Client       *http.Client
	Pipeline     *processor.Pipeline
	FeedResolver map[string]string

	// feeds is filled once by NewServerContext and only read afterwards.
	feeds map[string]*feedState
	now   func() time.Time
}

// feedState serializes refreshes of one feed so that a slow upstream only
// stalls requests for that feed.
type feedState struct {
	feed config.Feed

	mu     sync.Mutex
	cached *cachedFeed
}

type cachedFeed struct {
	fetched time.Time
	fc      *geojson.FeatureCollection
	opts    processor.Options
}

// NewServerContext initializes the context and the feed name resolver.
// Feeds are sorted by name; aliases clashing with another feed are ignored.
func NewServerContext(cfg *config.Config, client *http.Client, p *processor.Pipeline) *ServerContext {
	log.Info().Int("config_feeds_count", len(cfg.Feeds)).Msg("Initializing server context")

	resolver := make(map[string]string)
	feeds := make(map[string]*feedState, len(cfg.Feeds))

	for _, f := range cfg.Feeds {
		resolver[f.Name] = f.Name
		feeds[f.Name] = &feedState{feed: f}
	}

	for _, f := range cfg.Feeds {
		for _, alias := range f.Aliases {
			if owner, ok := resolver[alias]; ok && owner != f.Name {
				log.Warn().
					Str("feed", f.Name).
					Str("alias", alias).
					Str("owner", owner).
					Msg("Alias already taken, ignoring")
				continue
			}
			resolver[alias] = f.Name
		}

		log.Debug().
			Str("feed", f.Name).
			Strs("aliases", f.Aliases).
			Msg("Feed added to context")
	}

	sort.Slice(cfg.Feeds, func(i, j int) bool {
		return cfg.Feeds[i].Name < cfg.Feeds[j].Name
	})

	return &ServerContext{
		Config:       cfg,
		Client:       client,
		Pipeline:     p,
		FeedResolver: resolver,
		feeds:        feeds,
		now:          time.Now,
	}
}

// cleanedFeed returns the cleaned feed, refreshing it from upstream once the
// cached copy is older than the configured TTL. The returned collection is
// shared and must not be modified. Requests for other feeds are not blocked
// while this one is fetched.
func (s *ServerContext) cleanedFeed(ctx context.Context, name string) (*cachedFeed, error) {
	st, ok := s.feeds[name]
	if !ok {
		return nil, eris.Errorf("unknown feed %q", name)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if c := st.cached; c != nil && s.now().Sub(c.fetched) < s.Config.CacheTTL {
		return c, nil
	}

	f := st.feed
	opts, err := processor.FeedOptions(f)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.Config.Timeout)
	defer cancel()

	raw, err := processor.FetchFeed(ctx, s.Client, f.URL)
	if err != nil {
		return nil, err
	}

	res, err := s.Pipeline.Clean(raw)
	if err != nil {
		return nil, err
	}

	c := &cachedFeed{fetched: s.now(), fc: res.Collection, opts: opts}
	st.cached = c

	log.Info().
		Str("feed", name).
		Int("features", len(res.Collection.Features)).
		Int("warnings", len(res.Warnings)).
		Msg("Feed refreshed")

	return c, nil
}
