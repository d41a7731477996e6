package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes earthquake records to the feed topic.
// It implements watch.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the given feed topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish writes a single record, keyed by its catalog ID.
func (w *Writer) Publish(ctx context.Context, rec domain.EarthquakeRecord) error {
	msg, err := serializeToMessage(rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", rec.ID, w.writer.Topic, err)
	}
	w.logger.Debug("record published", "id", rec.ID, "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EarthquakeRecord into a Kafka message.
func serializeToMessage(rec domain.EarthquakeRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize earthquake record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("usgs")},
			{Key: "occurred_at", Value: []byte(rec.OccurredAt().Format(time.RFC3339))},
		},
	}, nil
}
