package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/couchcryptid/earthquake-locator/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/earthquake-locator/internal/adapter/kafka"
	"github.com/couchcryptid/earthquake-locator/internal/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (r *RootCommand) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API (and the feed watcher when enabled)",
		Long: `Serve /api/v1/earthquakes/{search,quick,latest} plus /healthz, /readyz and
/metrics on HTTP_ADDR. With FEED_ENABLED the watcher publishes new events to Kafka.
Stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.serve(cmd.Context())
		},
	}
}

func (r *RootCommand) newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Publish each new latest event until interrupted",
		Long: `Poll the catalog on WATCH_SCHEDULE and publish every event whose ID differs from
the previous one. Events go to Kafka when FEED_ENABLED is set and are printed otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, closeFeed := r.newWatcher()
			defer closeFeed()
			return w.Run(cmd.Context())
		},
	}
}

func (r *RootCommand) serve(ctx context.Context) error {
	cfg := r.deps.Config
	srv := httpadapter.NewServer(cfg.HTTPAddr, r.deps.Service, r.deps.Service, r.deps.Logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.FeedEnabled {
		w, closeFeed := r.newWatcher()
		defer closeFeed()
		g.Go(func() error { return w.Run(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		r.deps.Logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	r.deps.Logger.Info("shutdown complete")
	return err
}

// newWatcher builds the feed watcher. Kafka is used when the feed is enabled;
// otherwise events are printed.
func (r *RootCommand) newWatcher() (*watch.Watcher, func()) {
	cfg := r.deps.Config

	var (
		pub       watch.Publisher
		closeFeed = func() {}
	)
	switch {
	case cfg.FeedEnabled:
		writer := kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaFeedTopic, r.deps.Logger)
		pub = writer
		closeFeed = func() {
			if err := writer.Close(); err != nil {
				r.deps.Logger.Error("kafka writer close error", "error", err)
			}
		}
		r.deps.Logger.Info("kafka feed enabled", "topic", cfg.KafkaFeedTopic, "brokers", cfg.KafkaBrokers)
	default:
		pub = watch.LogPublisher{Out: r.out, Location: cfg.DisplayLocation}
	}

	return watch.New(r.deps.Catalog, pub, cfg.WatchSchedule, r.deps.Logger, r.deps.Metrics), closeFeed
}

func shutdownTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
