package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/irl-covid-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/irl-covid-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/opendata"
	"github.com/couchcryptid/irl-covid-dashboard/internal/config"
	"github.com/couchcryptid/irl-covid-dashboard/internal/dashboard"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/ingest"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
	"github.com/couchcryptid/irl-covid-dashboard/internal/refresh"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	match, err := domain.ParseMatchMode(cfg.DateMatch)
	if err != nil {
		logger.Error("invalid date match mode", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := archive.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open archive", "driver", cfg.ArchiveDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("archive opened", "driver", cfg.ArchiveDriver)

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED.
	var publisher refresh.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	}

	clock := clockwork.NewRealClock()
	loader := ingest.NewLoader(
		opendata.NewClient(cfg.FetchTimeout, logger),
		store,
		ingest.Sources{CountyURL: cfg.CountyURL, NationalURL: cfg.NationalURL},
		clock, logger, metrics,
	)
	refresher := refresh.New(loader, publisher, clock, cfg.RefreshInterval, logger, metrics)

	// The dashboard cannot start without both tables.
	if err := refresher.Init(ctx); err != nil {
		logger.Error("initial dataset load failed", "error", err)
		os.Exit(1)
	}

	var geo *dashboard.GeoJSON
	if cfg.GeoJSONPath != "" {
		geo, err = dashboard.LoadGeoJSON(cfg.GeoJSONPath)
		if err != nil {
			logger.Warn("county boundaries unavailable", "path", cfg.GeoJSONPath, "error", err)
		} else {
			noFeature, noRows := geo.Unmatched(refresher.Current())
			if len(noFeature) > 0 || len(noRows) > 0 {
				logger.Warn("county names do not line up with boundaries",
					"without_feature", noFeature, "without_rows", noRows)
			}
		}
	}

	svc := dashboard.NewService(refresher, match, cfg.QueryCacheSize, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, svc, geo, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("archive close error", "error", err)
	}

	logger.Info("shutdown complete")
}
