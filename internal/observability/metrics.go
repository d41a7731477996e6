package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quake_locator"

// Metrics holds the Prometheus counters and histograms for searches and the
// outbound collaborators they call.
type Metrics struct {
	// Search actions.
	Searches       *prometheus.CounterVec   // labels: kind={search,quick,latest}, outcome={ok,invalid,not_found,no_results,error}
	SearchDuration *prometheus.HistogramVec // labels: kind
	MapLinkBytes   prometheus.Histogram

	// Catalog (USGS) requests.
	CatalogRequests *prometheus.CounterVec   // labels: query={search,latest}, outcome={success,error}
	CatalogDuration *prometheus.HistogramVec // labels: query

	// Geocoding.
	GeocodeRequests    *prometheus.CounterVec   // labels: provider, method={forward,reverse}, outcome={success,error,empty}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: provider, method

	// Feed.
	FeedPublished prometheus.Counter
	FeedErrors    prometheus.Counter
	FeedEnabled   prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search actions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end duration of a search action, validation through link building.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		MapLinkBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "map_link_bytes",
			Help:      "Length of generated geojson.io links in bytes.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}),
		CatalogRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "USGS catalog requests by query type and outcome.",
		}, []string{"query", "outcome"}),
		CatalogDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "USGS catalog request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"query"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by provider, method and outcome.",
		}, []string{"provider", "method", "outcome"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider", "method"}),
		FeedPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_published_total",
			Help:      "Earthquake records published to the feed.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Feed polls or publishes that failed.",
		}),
		FeedEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_enabled",
			Help:      "1 when the latest-quake feed is running, 0 otherwise.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Searches,
		m.SearchDuration,
		m.MapLinkBytes,
		m.CatalogRequests,
		m.CatalogDuration,
		m.GeocodeRequests,
		m.GeocodeAPIDuration,
		m.FeedPublished,
		m.FeedErrors,
		m.FeedEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
