package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/csvsource"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/oil-spill-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/oil-spill-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/oil-spill-dashboard/internal/config"
	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
	"github.com/couchcryptid/oil-spill-dashboard/internal/pipeline"
	"github.com/couchcryptid/oil-spill-dashboard/internal/view"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var writer *kafkaadapter.Writer
	var loader pipeline.BatchLoader
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loader = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	p := pipeline.New(
		csvsource.New(cfg.DatasetPath),
		pipeline.NewPreparer(geocoder, logger),
		loader, logger, metrics, cfg.BatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dataset is required before anything can be served.
	table, err := p.Load(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DatasetPath, "error", err)
		os.Exit(1)
	}

	renderer := view.NewRenderer(table, view.ConfigFrom(cfg), nil, metrics)
	sessions := view.NewSessionStore(renderer, cfg.SessionCacheSize, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, httpadapter.NewAPI(renderer, sessions, logger), logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Publish the cleaned dataset downstream.
	var published <-chan int
	if loader != nil {
		published = p.PublishAsync(ctx, table)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if published != nil {
		select {
		case <-published:
		case <-shutdownCtx.Done():
			logger.Warn("publish still running at shutdown timeout")
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
