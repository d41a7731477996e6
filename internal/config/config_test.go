package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://earthquake.usgs.gov/fdsnws/event/1", cfg.USGSBaseURL)
	assert.Equal(t, 15*time.Second, cfg.USGSTimeout)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 10*time.Second, cfg.NominatimTimeout)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.NominatimBaseURL)
	assert.Equal(t, "earthquake-locator/1.0", cfg.NominatimUserAgent)
	assert.Equal(t, time.UTC, cfg.DisplayLocation)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "earthquake-feed", cfg.KafkaFeedTopic)
	assert.False(t, cfg.FeedEnabled)
	assert.Equal(t, "@every 1m", cfg.WatchSchedule)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("USGS_BASE_URL", "http://localhost:9999/fdsn")
	t.Setenv("USGS_TIMEOUT", "3s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("NOMINATIM_USER_AGENT", "tests/0.1")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_FEED_TOPIC", "quakes")
	t.Setenv("WATCH_SCHEDULE", "*/5 * * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:9999/fdsn", cfg.USGSBaseURL)
	assert.Equal(t, 3*time.Second, cfg.USGSTimeout)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, "tests/0.1", cfg.NominatimUserAgent)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quakes", cfg.KafkaFeedTopic)
	assert.True(t, cfg.FeedEnabled)
	assert.Equal(t, "*/5 * * * *", cfg.WatchSchedule)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidUSGSTimeout(t *testing.T) {
	t.Setenv("USGS_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USGS_TIMEOUT")
}

func TestLoad_InvalidMapboxTimeout(t *testing.T) {
	t.Setenv("MAPBOX_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TIMEOUT")
}

func TestLoad_InvalidUSGSBaseURL(t *testing.T) {
	t.Setenv("USGS_BASE_URL", "not a url")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USGS_BASE_URL")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("DISPLAY_TIMEZONE", "Mars/Olympus_Mons")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DISPLAY_TIMEZONE")
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}

func TestLoad_FeedEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("FEED_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_FeedExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("FEED_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.FeedEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidWatchSchedule(t *testing.T) {
	t.Setenv("WATCH_SCHEDULE", "every so often")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WATCH_SCHEDULE")
}

func TestLoad_InvalidNominatimTimeout(t *testing.T) {
	t.Setenv("NOMINATIM_TIMEOUT", "0s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOMINATIM_TIMEOUT")
}
