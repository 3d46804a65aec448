// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultGenericLink is the feed's "fires near me" landing page. Incidents
// pointing at it carry no incident specific link.
const DefaultGenericLink = "http://www.rfs.nsw.gov.au/fire-information/fires-near-me"

// DefaultFeedURL is the upstream NSW RFS major incidents feed.
const DefaultFeedURL = "https://www.rfs.nsw.gov.au/feeds/majorIncidents.json"

// Config represents the root configuration file structure.
type Config struct {
	GenericLink string        `yaml:"generic_link,omitempty" json:"-"`
	Feeds       []Feed        `yaml:"feeds" json:"feeds"`
	Timeout     time.Duration `yaml:"timeout,omitempty" json:"-"`
	CacheTTL    time.Duration `yaml:"cache_ttl,omitempty" json:"cache_ttl,omitempty"`
}

// Feed represents a single upstream incident feed.
type Feed struct {
	Name    string   `yaml:"name" json:"name"`
	URL     string   `yaml:"url" json:"-"`
	Sort    string   `yaml:"sort,omitempty" json:"sort,omitempty"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`

	// optional bbox filter, minLon,minLat,maxLon,maxLat
	BBox []float64 `yaml:"bbox,omitempty" json:"bbox,omitempty"`
}

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read config %s", path)
	}

	return Parse(data)
}

// Parse decodes a YAML configuration and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrap(err, "parse config")
	}

	if cfg.GenericLink == "" {
		cfg.GenericLink = DefaultGenericLink
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}

	seen := make(map[string]bool, len(cfg.Feeds))
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return nil, eris.Errorf("feed #%d has no name", i)
		}
		if seen[f.Name] {
			return nil, eris.Errorf("duplicate feed name %q", f.Name)
		}
		seen[f.Name] = true

		if f.URL == "" {
			cfg.Feeds[i].URL = DefaultFeedURL
		}
		if len(f.BBox) != 0 && len(f.BBox) != 4 {
			return nil, eris.Errorf("feed %q: bbox needs 4 values, got %d", f.Name, len(f.BBox))
		}
	}

	return &cfg, nil
}
