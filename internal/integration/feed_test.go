//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/adapter/kafka"
	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
	"github.com/couchcryptid/earthquake-locator/internal/watch"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeedTopic = "test-earthquake-feed"

// sequenceCatalog returns the next record on each Latest call and then
// keeps returning the last one.
type sequenceCatalog struct {
	mu      sync.Mutex
	records []domain.EarthquakeRecord
	calls   int
}

func (c *sequenceCatalog) Query(context.Context, domain.CatalogQuery) ([]domain.EarthquakeRecord, error) {
	return nil, nil
}

func (c *sequenceCatalog) Latest(context.Context) (domain.EarthquakeRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := min(c.calls, len(c.records)-1)
	c.calls++
	return c.records[i], true, nil
}

type feedMessage struct {
	Record  domain.EarthquakeRecord
	Key     string
	Headers map[string]string
}

func readFeed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) feedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from feed topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var rec domain.EarthquakeRecord
	require.NoError(t, json.Unmarshal(msg.Value, &rec), "unmarshal feed message")
	return feedMessage{Record: rec, Key: string(msg.Key), Headers: headers}
}

// TestWatcherPublishesToKafka polls a scripted catalog three times and expects
// exactly the two distinct events on the topic, in order.
func TestWatcherPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testFeedTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	writer := kafka.NewWriter([]string{broker}, testFeedTopic, logger)
	defer writer.Close()

	first := domain.EarthquakeRecord{ID: "us1", Magnitude: 4.2, Place: "Off the coast of Oregon", OccurredAtEpochMillis: 1714144200000, Longitude: -125.1, Latitude: 44.0}
	second := domain.EarthquakeRecord{ID: "us2", Magnitude: 5.0, Place: "Kuril Islands", OccurredAtEpochMillis: 1714147800000, Longitude: 152.3, Latitude: 47.1}
	cat := &sequenceCatalog{records: []domain.EarthquakeRecord{first, first, second}}

	w := watch.New(cat, writer, "@every 1h", logger, observability.NewMetricsForTesting())
	for range 3 {
		_, err := w.Poll(ctx)
		require.NoError(t, err)
	}

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testFeedTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer consumer.Close()

	got1 := readFeed(ctx, t, consumer)
	assert.Equal(t, "us1", got1.Key)
	assert.Equal(t, first, got1.Record)
	assert.Equal(t, "usgs", got1.Headers["source"])
	assert.Equal(t, "2024-04-26T15:10:00Z", got1.Headers["occurred_at"])

	got2 := readFeed(ctx, t, consumer)
	assert.Equal(t, "us2", got2.Key)
	assert.Equal(t, second, got2.Record)

	shortCtx, shortCancel := context.WithTimeout(ctx, 3*time.Second)
	defer shortCancel()
	_, err := consumer.ReadMessage(shortCtx)
	require.Error(t, err, "the repeated event must not be published twice")
}
