package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"

	"github.com/woozymasta/rfsfeed/internal/config"
	"github.com/woozymasta/rfsfeed/internal/logger"
	"github.com/woozymasta/rfsfeed/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	OutDir      string   `short:"d" long:"out-dir"     env:"OUT_DIR"     description:"Directory for cleaned feeds" default:"feeds"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit processing to specific feed names"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"4"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConnsPerHost: opts.Concurrency,
		},
		Timeout: cfg.Timeout,
	}

	// Filter feeds if limit is set
	feeds := cfg.Feeds
	if len(opts.Limit) > 0 {
		feeds = make([]config.Feed, 0)
		available := make(map[string]config.Feed)
		for _, f := range cfg.Feeds {
			available[f.Name] = f
		}

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if f, ok := available[limitName]; ok {
				feeds = append(feeds, f)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Feed specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("feeds_total", len(cfg.Feeds)).
		Int("feeds_queued", len(feeds)).
		Str("out_dir", opts.OutDir).
		Msg("Starting loader")

	p := processor.NewPipeline(cfg.GenericLink, log.Logger)
	results := processor.ProcessFeeds(context.Background(), client, p, feeds, opts.OutDir, opts.Concurrency, opts.Force)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if res.Skipped {
			continue
		}
		log.Info().
			Str("feed", res.Name).
			Str("path", res.Path).
			Int("features", res.Features).
			Int("warnings", res.Warnings).
			Msg("Feed saved")
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
