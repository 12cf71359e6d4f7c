// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	ItemsPostedTotal     prometheus.Counter
	VotesTotal           *prometheus.CounterVec
	GroupChangesTotal    *prometheus.CounterVec
	SuggestQueriesTotal  *prometheus.CounterVec
	SuggestLatency       *prometheus.HistogramVec
	SuggestResultsCount  prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DictWordsLoadedTotal prometheus.Counter
	SentinelCleanupFails prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all Prometheus metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ItemsPostedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "board_items_posted_total",
				Help: "Total items posted to the board.",
			},
		),
		VotesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_votes_total",
				Help: "Total vote attempts by outcome (accepted, already_voted, window_closed, error).",
			},
			[]string{"outcome"},
		),
		GroupChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "board_group_changes_total",
				Help: "Total group membership changes by kind (add, remove).",
			},
			[]string{"kind"},
		),
		SuggestQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggest_queries_total",
				Help: "Total suggest queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SuggestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suggest_latency_seconds",
				Help:    "Suggest query latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SuggestResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suggest_results_count",
				Help:    "Number of words returned per suggest query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggest_cache_hits_total",
				Help: "Total suggest cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggest_cache_misses_total",
				Help: "Total suggest cache misses.",
			},
		),
		DictWordsLoadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dictionary_words_loaded_total",
				Help: "Total dictionary words bulk-loaded.",
			},
		),
		SentinelCleanupFails: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "suggest_sentinel_cleanup_failures_total",
				Help: "Sentinel removals that failed and may have left markers behind.",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ItemsPostedTotal,
		m.VotesTotal,
		m.GroupChangesTotal,
		m.SuggestQueriesTotal,
		m.SuggestLatency,
		m.SuggestResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DictWordsLoadedTotal,
		m.SentinelCleanupFails,
	)
	return m
}

// Handler returns the scrape handler for this metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
