package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all client and service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// USGS earthquake catalog.
	USGSBaseURL string
	USGSTimeout time.Duration

	// Mapbox geocoding configuration. When disabled, Nominatim is used.
	MapboxToken   string
	MapboxEnabled bool
	MapboxTimeout time.Duration

	NominatimBaseURL   string
	NominatimUserAgent string
	NominatimTimeout   time.Duration

	DisplayLocation *time.Location

	// Latest-quake feed.
	KafkaBrokers   []string
	KafkaFeedTopic string
	FeedEnabled    bool
	WatchSchedule  string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	usgsTimeout, err := parsePositiveDuration("USGS_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	nominatimTimeout, err := parsePositiveDuration("NOMINATIM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	zone := sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC")
	displayLoc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	feedEnabled := len(brokers) > 0
	if v := os.Getenv("FEED_ENABLED"); v != "" {
		feedEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		USGSBaseURL: sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1"),
		USGSTimeout: usgsTimeout,

		MapboxToken:   mapboxToken,
		MapboxEnabled: mapboxEnabled,
		MapboxTimeout: mapboxTimeout,

		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "earthquake-locator/1.0"),
		NominatimTimeout:   nominatimTimeout,

		DisplayLocation: displayLoc,

		KafkaBrokers:   brokers,
		KafkaFeedTopic: sharedcfg.EnvOrDefault("KAFKA_FEED_TOPIC", "earthquake-feed"),
		FeedEnabled:    feedEnabled,
		WatchSchedule:  sharedcfg.EnvOrDefault("WATCH_SCHEDULE", "@every 1m"),
	}

	if _, err := url.ParseRequestURI(cfg.USGSBaseURL); err != nil {
		return nil, errors.New("invalid USGS_BASE_URL")
	}
	if _, err := url.ParseRequestURI(cfg.NominatimBaseURL); err != nil {
		return nil, errors.New("invalid NOMINATIM_BASE_URL")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.FeedEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("FEED_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.FeedEnabled && cfg.KafkaFeedTopic == "" {
		return nil, errors.New("KAFKA_FEED_TOPIC is required")
	}
	if _, err := cron.ParseStandard(cfg.WatchSchedule); err != nil {
		return nil, fmt.Errorf("invalid WATCH_SCHEDULE: %w", err)
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
