package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"twgraph/pkg/auth"
	"twgraph/pkg/config"
	"twgraph/pkg/crawler"
	apierrors "twgraph/pkg/errors"
	"twgraph/pkg/logger"
	"twgraph/pkg/metrics"
	"twgraph/pkg/ratelimit"
	"twgraph/pkg/storage"
	"twgraph/pkg/twitter"
	"twgraph/pkg/ui"
)

var (
	configFile  = flag.String("config", "", "Path to configuration file")
	bearerToken = flag.String("bearer-token", "", "API bearer token")
	outputDir   = flag.String("output", "", "Output directory for crawl results")
	rateLimit   = flag.Int("rate-limit", 0, "Requests per minute")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus metrics listen address")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	quiet       = flag.Bool("quiet", false, "Suppress terminal progress output")
)

func main() {
	flag.Parse()

	if !*quiet {
		ui.PrintBanner()
	}

	// Seeds: positional args win over config/env
	flags := make(map[string]interface{})
	if args := flag.Args(); len(args) > 0 {
		flags["seeds"] = strings.Join(args, ",")
	}
	if *bearerToken != "" {
		flags["bearer-token"] = *bearerToken
	}
	if *outputDir != "" {
		flags["output"] = *outputDir
	}
	if *rateLimit > 0 {
		flags["rate-limit"] = *rateLimit
	}
	if *metricsAddr != "" {
		flags["metrics-addr"] = *metricsAddr
	}
	if *logLevel != "" {
		flags["log-level"] = *logLevel
	}

	// Fall back to the credential store chain when no token arrives via
	// flag or environment
	if *bearerToken == "" && os.Getenv("TWGRAPH_BEARER_TOKEN") == "" {
		if creds := storedCredentials(); creds != nil && creds.BearerToken != "" {
			flags["bearer-token"] = creds.BearerToken
		}
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		ui.PrintWarning("Usage: twgraph [flags] <seed_account>...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.WithField("seeds", cfg.Crawl.Seeds).Info("twgraph starting")

	ui.PrintInfo("Seed accounts", strings.Join(cfg.Crawl.Seeds, ", "))
	ui.PrintInfo("Output", cfg.Output.BaseDirectory)

	metrics.StartServer(cfg.Metrics.ListenAddr)

	store, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		log.WithError(err).Error("failed to prepare output directory")
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	tracker := ui.NewCrawlTracker(*quiet)
	governor := ratelimit.NewGovernor(cfg.RateLimit.CooldownWindow, cfg.RateLimit.RequestsPerMinute)
	governor.SetProgressFunc(tracker.Cooldown)

	stats := crawler.NewRunStatistics()
	client := twitter.NewClient(&cfg.Twitter, governor, stats, log)
	c := crawler.New(cfg, client, store, stats, tracker)

	if err := c.Run(context.Background()); err != nil {
		if errors.Is(err, twitter.ErrConnectionLost) {
			// flaky connectivity is tolerated; the resume checkpoint
			// makes the next run pick up where this one stopped
			log.WithError(err).Warn("crawl stopped by lost connection")
			ui.PrintWarning("Connection lost", "re-run to resume from the last checkpoint")
			os.Exit(0)
		}
		var apiErr *apierrors.Error
		if errors.As(err, &apiErr) {
			logger.LogFatal(apiErr.Path, apiErr.Params, apiErr.Code, err)
		} else {
			log.WithError(err).Error("crawl failed")
		}
		ui.PrintError("CRAWL FAILED", err.Error())
		os.Exit(1)
	}

	log.WithField("requests", int64(stats.RequestsIssued())).Info("crawl completed")
	ui.PrintSuccess("Crawl completed, frontier drained")
}

// storedCredentials tries the credential store chain; absence is not an
// error here, only a missing token is.
func storedCredentials() *auth.Credentials {
	manager, err := auth.NewManager()
	if err != nil {
		return nil
	}
	creds, err := manager.RetrieveDefault()
	if err != nil {
		return nil
	}
	return creds
}
