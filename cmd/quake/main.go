package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/earthquake-locator/internal/adapter/mapbox"
	"github.com/couchcryptid/earthquake-locator/internal/adapter/nominatim"
	"github.com/couchcryptid/earthquake-locator/internal/adapter/usgs"
	"github.com/couchcryptid/earthquake-locator/internal/cli"
	"github.com/couchcryptid/earthquake-locator/internal/config"
	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
	"github.com/couchcryptid/earthquake-locator/internal/search"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	// Mapbox when a token is configured, OpenStreetMap Nominatim otherwise.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		logger.Debug("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	} else {
		geocoder = nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, metrics, logger)
		logger.Debug("nominatim geocoding enabled", "base_url", cfg.NominatimBaseURL)
	}

	catalog := usgs.NewClient(cfg.USGSBaseURL, cfg.USGSTimeout, metrics, logger)
	svc := search.NewService(geocoder, catalog, cfg.DisplayLocation, logger, metrics)

	root := cli.NewRootCommand(cli.Deps{
		Config:  cfg,
		Service: svc,
		Catalog: catalog,
		Logger:  logger,
		Metrics: metrics,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.Execute(ctx); err != nil {
		if !errors.Is(err, cli.ErrActionFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
