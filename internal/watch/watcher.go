// Package watch polls the catalog on a cron schedule and publishes each new
// latest event exactly once per process.
package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/earthquake-locator/internal/domain"
	"github.com/couchcryptid/earthquake-locator/internal/observability"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule polls once a minute.
const DefaultSchedule = "@every 1m"

// Publisher delivers a newly observed event.
type Publisher interface {
	Publish(ctx context.Context, rec domain.EarthquakeRecord) error
}

// Watcher tracks the newest catalog event. The last seen ID lives in memory
// only, so a restart publishes the current latest event again.
type Watcher struct {
	catalog   domain.Catalog
	publisher Publisher
	schedule  string
	logger    *slog.Logger
	metrics   *observability.Metrics

	mu     sync.Mutex
	lastID string
}

// New creates a Watcher. An empty schedule falls back to DefaultSchedule.
func New(catalog domain.Catalog, publisher Publisher, schedule string, logger *slog.Logger, metrics *observability.Metrics) *Watcher {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Watcher{
		catalog:   catalog,
		publisher: publisher,
		schedule:  schedule,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run polls once immediately, then on every schedule tick until ctx is
// cancelled. It waits for an in-flight poll before returning.
func (w *Watcher) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{w.logger})))
	if _, err := c.AddFunc(w.schedule, func() { w.poll(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", w.schedule, err)
	}

	w.metrics.FeedEnabled.Set(1)
	defer w.metrics.FeedEnabled.Set(0)

	w.logger.Info("watcher started", "schedule", w.schedule)
	w.poll(ctx)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	w.logger.Info("watcher stopped")
	return nil
}

func (w *Watcher) poll(ctx context.Context) {
	if _, err := w.Poll(ctx); err != nil {
		w.logger.Error("feed poll failed", "error", err)
	}
}

// Poll fetches the latest event and publishes it when its ID differs from
// the previous one. It reports whether something was published.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, ok, err := w.catalog.Latest(ctx)
	if err != nil {
		w.metrics.FeedErrors.Inc()
		return false, fmt.Errorf("fetch latest: %w", err)
	}
	if !ok || rec.ID == w.lastID {
		return false, nil
	}

	if err := w.publisher.Publish(ctx, rec); err != nil {
		w.metrics.FeedErrors.Inc()
		return false, err
	}
	w.lastID = rec.ID
	w.metrics.FeedPublished.Inc()
	w.logger.Info("new latest event", "id", rec.ID, "magnitude", rec.Magnitude, "place", rec.Place)
	return true, nil
}

// LogPublisher writes one line per event. It stands in for Kafka when the
// feed topic is not configured.
type LogPublisher struct {
	Out      io.Writer
	Location *time.Location
}

func (p LogPublisher) Publish(_ context.Context, rec domain.EarthquakeRecord) error {
	_, err := fmt.Fprintf(p.Out, "%s  M%.1f  %s  %s\n",
		domain.FormatOccurredAt(rec.OccurredAtEpochMillis, p.Location), rec.Magnitude, rec.Place, rec.ID)
	return err
}

// cronLogger routes robfig/cron diagnostics through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
