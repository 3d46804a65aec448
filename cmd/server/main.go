package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/rfsfeed/internal/config"
	"github.com/woozymasta/rfsfeed/internal/logger"
	"github.com/woozymasta/rfsfeed/internal/processor"
	"github.com/woozymasta/rfsfeed/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string        `short:"c" long:"config"    env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Addr       string        `short:"a" long:"addr"      env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int           `short:"p" long:"port"      env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	CacheTTL   time.Duration `short:"t" long:"cache-ttl" env:"CACHE_TTL"      description:"Override feed cache TTL"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.CacheTTL > 0 {
		cfg.CacheTTL = opts.CacheTTL
	}

	client := &http.Client{Timeout: cfg.Timeout}
	p := processor.NewPipeline(cfg.GenericLink, log.Logger)
	srvCtx := server.NewServerContext(cfg, client, p)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	log.Info().
		Str("addr", listenAddr).
		Int("feeds_loaded", len(cfg.Feeds)).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Web server started")

	if err := http.ListenAndServe(listenAddr, srvCtx.Routes()); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
