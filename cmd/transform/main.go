package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcastro/listing-snapshot/internal/api"
	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/events"
	"github.com/rcastro/listing-snapshot/internal/logger"
	"github.com/rcastro/listing-snapshot/internal/quality"
	"github.com/rcastro/listing-snapshot/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		slog.Error("transform run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := quality.NewMetrics()

	if cfg.Server.Enabled {
		srv := api.NewMetricsServer(cfg.Server.Addr, metrics.Registry, log)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	rawPath, err := snapshot.LatestRaw(cfg.Output.RawDir)
	if err != nil {
		return err
	}
	log.Info("reading raw data", "path", rawPath)

	records, err := snapshot.ReadRaw(rawPath)
	if err != nil {
		return err
	}
	log.Info("rows loaded", "count", len(records))

	if cfg.Output.DedupeLatest {
		before := len(records)
		records = snapshot.DedupeLatest(records)
		log.Info("deduplicated by sku", "before", before, "after", len(records))
	}

	valid, report := quality.Validate(records)
	metrics.Observe(report)
	log.Info("validation finished",
		"total", report.TotalRows,
		"valid", report.ValidRows,
		"invalid", report.InvalidRows,
	)
	if len(report.InvalidReasons) > 0 {
		log.Info("invalid reasons breakdown", "reasons", report.InvalidReasons)
	}

	now := time.Now()
	snapshotDate := now.Format("2006-01-02")

	factPath := snapshot.FactFilename(cfg.Output.ProcessedDir, now)
	if err := snapshot.WriteFact(valid, factPath, snapshotDate); err != nil {
		return fmt.Errorf("failed to write fact table: %w", err)
	}
	log.Info("saved processed fact table", "path", factPath)

	if cfg.Database.Enabled {
		store, err := snapshot.NewStore(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := store.UpsertSnapshot(ctx, snapshotDate, valid); err != nil {
			return err
		}
		log.Info("upserted snapshot into database", "rows", len(valid), "snapshot_date", snapshotDate)
	}

	if cfg.Redis.Enabled {
		publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pub := events.NewPublisher(cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Channel, log)
		defer pub.Close()

		event := &events.Event{
			EventType:      events.EventTypeSnapshotCompleted,
			SnapshotDate:   snapshotDate,
			TotalRows:      report.TotalRows,
			ValidRows:      report.ValidRows,
			InvalidRows:    report.InvalidRows,
			InvalidReasons: report.InvalidReasons,
			OutputPath:     factPath,
		}
		if err := pub.Publish(publishCtx, event); err != nil {
			log.Warn("failed to publish snapshot event", "error", err)
		}
	}

	return nil
}
