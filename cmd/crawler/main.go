package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcastro/listing-snapshot/internal/api"
	"github.com/rcastro/listing-snapshot/internal/browser"
	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/dom"
	"github.com/rcastro/listing-snapshot/internal/events"
	"github.com/rcastro/listing-snapshot/internal/logger"
	"github.com/rcastro/listing-snapshot/internal/scraper"
	"github.com/rcastro/listing-snapshot/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		slog.Error("crawl run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		startURL      = flag.String("url", "", "Listing start URL (overrides SCRAPE_START_URL)")
		maxPages      = flag.Int("max-pages", 0, "Maximum pages to crawl (overrides SCRAPE_MAX_PAGES)")
		headless      = flag.Bool("headless", true, "Run the browser in headless mode")
		inputHTML     = flag.String("input-html", "", "Extract a single saved HTML page instead of driving a browser")
		selectorsFile = flag.String("selectors", "", "YAML selector overrides (overrides SCRAPE_SELECTORS_FILE)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *startURL != "" {
		cfg.Crawl.StartURL = *startURL
	}
	if *maxPages > 0 {
		cfg.Crawl.MaxPages = *maxPages
	}
	if *selectorsFile != "" {
		cfg.Crawl.SelectorsFile = *selectorsFile
	}
	if flagProvided(flag.CommandLine, "headless") {
		cfg.Browser.Headless = *headless
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	selectors := config.DefaultSelectors()
	if cfg.Crawl.SelectorsFile != "" {
		selectors, err = config.LoadSelectors(cfg.Crawl.SelectorsFile)
		if err != nil {
			return fmt.Errorf("failed to load selectors: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := scraper.NewMetrics()
	status := scraper.NewStatus()

	if cfg.Server.Enabled {
		srv := api.New(cfg.Server.Addr, status, metrics.Registry, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("status server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	b, err := openBrowser(cfg, *inputHTML)
	if err != nil {
		return err
	}
	defer b.Close()

	crawler, err := scraper.NewCrawler(b, selectors, cfg.Crawl, metrics, status, log)
	if err != nil {
		return fmt.Errorf("failed to build crawler: %w", err)
	}

	records, err := crawler.Crawl(ctx, cfg.Crawl.StartURL)
	status.Finish(err)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	log.Info("total records scraped", "count", len(records))

	now := time.Now()
	rawPath := snapshot.RawFilename(cfg.Output.RawDir, now)
	if err := snapshot.WriteRaw(records, rawPath); err != nil {
		return fmt.Errorf("failed to write raw file: %w", err)
	}
	log.Info("saved raw data", "path", rawPath)

	if cfg.Redis.Enabled {
		publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pub := events.NewPublisher(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Channel, log)
		defer pub.Close()

		event := &events.Event{
			EventType:    events.EventTypeCrawlCompleted,
			RunID:        status.RunID(),
			SnapshotDate: now.Format("2006-01-02"),
			TotalRows:    len(records),
			OutputPath:   rawPath,
		}
		if err := pub.Publish(publishCtx, event); err != nil {
			log.Warn("failed to publish crawl event", "error", err)
		}
	}

	return nil
}

// flagProvided reports whether the named flag was set on the command line.
// An explicit -headless=true or -headless=false overrides the environment
// value in either direction; the flag's default never does.
func flagProvided(fs *flag.FlagSet, name string) bool {
	provided := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			provided = true
		}
	})
	return provided
}

// openBrowser picks the browsing backend: a real Playwright session, or a
// static document when replaying a saved page offline.
func openBrowser(cfg *config.Config, inputHTML string) (dom.Browser, error) {
	if inputHTML != "" {
		doc, err := dom.NewStaticDocumentFromFile(inputHTML)
		if err != nil {
			return nil, err
		}
		return &dom.StaticBrowser{Doc: doc}, nil
	}

	if cfg.Crawl.StartURL == "" {
		return nil, fmt.Errorf("no start URL configured (set SCRAPE_START_URL or pass -url)")
	}

	return browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		AcceptLanguage: cfg.Browser.AcceptLanguage,
		TimezoneID:     cfg.Browser.TimezoneID,
		Locale:         cfg.Browser.Locale,
		UserAgent:      browser.DefaultOptions().UserAgent,
	})
}
