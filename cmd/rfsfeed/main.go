package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/rfsfeed/internal/config"
	"github.com/woozymasta/rfsfeed/internal/geo"
	"github.com/woozymasta/rfsfeed/internal/logger"
	"github.com/woozymasta/rfsfeed/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	URL         string        `short:"u" long:"url"          env:"FEED_URL"     description:"Upstream feed URL (default feed if neither --url nor --in is set and stdin is a terminal)"`
	Input       string        `short:"i" long:"in"           description:"Input GeoJSON file. Reads from stdin if empty and --url is not set"`
	Output      string        `short:"o" long:"out"          description:"Output file path. Writes to stdout if empty"`
	Format      string        `short:"f" long:"format"       description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Sort        string        `short:"s" long:"sort"         description:"Feature order" choice:"none" choice:"pub-date" choice:"updated" default:"none"`
	BBox        string        `short:"b" long:"bbox"         description:"Keep incidents intersecting minLon,minLat,maxLon,maxLat"`
	GenericLink string        `long:"generic-link"           env:"GENERIC_LINK" description:"Link dropped from incidents" default:"http://www.rfs.nsw.gov.au/fire-information/fires-near-me"`
	Timeout     time.Duration `short:"t" long:"timeout"      env:"TIMEOUT"      description:"Upstream request timeout" default:"15s"`
	Pretty      bool          `short:"p" long:"pretty"       description:"Indent JSON output"`
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

	runOpts, err := pipelineOptions(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid options")
	}

	fc, err := readInput(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read feed")
	}

	p := processor.NewPipeline(opts.GenericLink, log.Logger)
	res, err := p.Run(fc, runOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to clean feed")
	}

	if err := writeOutput(opts, res.Collection); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}

	log.Debug().
		Int("features", len(res.Collection.Features)).
		Int("warnings", len(res.Warnings)).
		Str("format", opts.Format).
		Msg("Feed converted")
}

func pipelineOptions(opts Options) (processor.Options, error) {
	var runOpts processor.Options

	order, err := processor.ParseOrder(opts.Sort)
	if err != nil {
		return runOpts, err
	}
	runOpts.Order = order

	if opts.BBox != "" {
		b, err := geo.ParseBound(opts.BBox)
		if err != nil {
			return runOpts, err
		}
		runOpts.Bound = &b
	}

	return runOpts, nil
}

func readInput(opts Options) (*geojson.FeatureCollection, error) {
	switch {
	case opts.Input != "":
		f, err := os.Open(opts.Input)
		if err != nil {
			return nil, eris.Wrap(err, "open input")
		}
		defer func() { _ = f.Close() }()
		return processor.ReadFeed(f)

	case opts.URL != "" || stdinIsTerminal():
		url := opts.URL
		if url == "" {
			url = config.DefaultFeedURL
		}
		log.Debug().Str("url", url).Msg("Fetching feed")

		ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
		defer cancel()
		return processor.FetchFeed(ctx, &http.Client{Timeout: opts.Timeout}, url)

	default:
		return processor.ReadFeed(os.Stdin)
	}
}

func writeOutput(opts Options, fc *geojson.FeatureCollection) error {
	var w io.Writer = os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				log.Error().Err(closeErr).Str("path", opts.Output).Msg("Failed to close file")
			}
		}()
		w = f
	}

	return processor.Encode(w, fc, opts.Format, opts.Pretty)
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
