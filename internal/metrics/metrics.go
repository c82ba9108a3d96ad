// Package metrics provides Prometheus metrics for the card catalog proxy.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tcg_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Upstream catalog API Metrics
	UpstreamAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_upstream_attempts_total",
			Help: "Upstream catalog API attempts by outcome",
		},
		[]string{"outcome"}, // "ok", "retryable", "failed", "transport"
	)

	UpstreamRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tcg_upstream_retries_total",
			Help: "Total number of upstream retries after a transient failure",
		},
	)

	UpstreamLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_upstream_latency_seconds",
			Help:    "Upstream catalog API attempt latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 12},
		},
	)

	// Result Cache Metrics
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_cache_lookups_total",
			Help: "Server result cache lookups by resource and result",
		},
		[]string{"resource", "result"}, // result: "hit", "miss", "stale"
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tcg_cache_entries",
			Help: "Number of entries held by the server result cache",
		},
	)

	// Curation Metrics
	CuratedBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tcg_curated_builds_total",
			Help: "Curated list requests by how they were served",
		},
		[]string{"result"}, // "cached", "built", "stale_latest", "unavailable"
	)

	CuratedBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_curated_build_duration_seconds",
			Help:    "Time taken to build a curated list from upstream",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	CuratedSetsConsulted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tcg_curated_sets_consulted",
			Help:    "Number of sets consulted per curated build",
			Buckets: []float64{2, 4, 6, 8, 10, 12},
		},
	)
)
