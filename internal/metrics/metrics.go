package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry creates a registry preloaded with the standard Go runtime,
// process and build info collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	return registry
}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPDurationSeconds *prometheus.HistogramVec

	// Source metrics
	SourceFetchesTotal  *prometheus.CounterVec
	SourceFetchDuration *prometheus.HistogramVec
	SourcePayloadBytes  prometheus.Histogram

	// Reload metrics
	ReloadsTotal   *prometheus.CounterVec
	ReloadDuration prometheus.Histogram

	// Cache metrics
	CacheReadsTotal        *prometheus.CounterVec
	SingleflightDedupTotal prometheus.Counter

	// Directory metrics
	DirectoryRecords  prometheus.Gauge
	DirectoryLoadedAt prometheus.Gauge

	// Search metrics
	SearchesTotal  *prometheus.CounterVec
	SearchDuration *prometheus.HistogramVec
	SearchResults  prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guia_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "path", "status"},
		),

		HTTPDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guia_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method and route",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60}, // Reload in the request path can take a while
			},
			[]string{"method", "path"},
		),

		// Source metrics
		SourceFetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guia_source_fetches_total",
				Help: "Total number of directory source fetches by backend and status",
			},
			[]string{"backend", "status"}, // status: success, not_found, malformed, unavailable
		),

		SourceFetchDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guia_source_fetch_duration_seconds",
				Help:    "Directory source fetch duration in seconds by backend",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // Matches 60s fetch timeout + backoff
			},
			[]string{"backend"}, // backend: http, file, s3
		),

		SourcePayloadBytes: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guia_source_payload_bytes",
				Help:    "Size of fetched directory payloads in bytes",
				Buckets: []float64{16384, 65536, 262144, 1048576, 4194304, 16777216}, // 16KB to 16MB
			},
		),

		// Reload metrics
		ReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guia_directory_reloads_total",
				Help: "Total number of directory reloads by status",
			},
			[]string{"status"}, // status: success, error
		),

		ReloadDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guia_directory_reload_duration_seconds",
				Help:    "Directory reload duration in seconds (fetch, decode and parse)",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 180},
			},
		),

		// Cache metrics
		CacheReadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guia_cache_reads_total",
				Help: "Total number of snapshot cache reads by outcome",
			},
			[]string{"outcome"}, // outcome: hit, stale, reload, error
		),

		SingleflightDedupTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "guia_singleflight_dedup_total",
				Help: "Total number of reloads that waited on an in-flight reload instead of executing",
			},
		),

		// Directory metrics
		DirectoryRecords: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "guia_directory_records",
				Help: "Number of personnel records in the current snapshot",
			},
		),

		DirectoryLoadedAt: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "guia_directory_loaded_timestamp_seconds",
				Help: "Unix timestamp of the last successful directory load",
			},
		),

		// Search metrics
		SearchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "guia_searches_total",
				Help: "Total number of searches by query branch",
			},
			[]string{"branch"}, // branch: name, extension, rejected
		),

		SearchDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guia_search_duration_seconds",
				Help:    "In-memory search duration in seconds by query branch",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"branch"},
		),

		SearchResults: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "guia_search_results",
				Help:    "Number of records returned per search",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),
	}

	return m
}

// RecordHTTPRequest records a completed HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPDurationSeconds.WithLabelValues(method, path).Observe(duration)
}

// RecordSourceFetch records a directory source fetch with status
func (m *Metrics) RecordSourceFetch(backend, status string, bytes int, duration float64) {
	m.SourceFetchesTotal.WithLabelValues(backend, status).Inc()
	m.SourceFetchDuration.WithLabelValues(backend).Observe(duration)
	if bytes > 0 {
		m.SourcePayloadBytes.Observe(float64(bytes))
	}
}

// RecordReload records a directory reload attempt
func (m *Metrics) RecordReload(status string, duration float64) {
	m.ReloadsTotal.WithLabelValues(status).Inc()
	m.ReloadDuration.Observe(duration)
}

// RecordCacheRead records a snapshot cache read outcome
func (m *Metrics) RecordCacheRead(outcome string) {
	m.CacheReadsTotal.WithLabelValues(outcome).Inc()
}

// RecordSingleflightDedup records a reload that coalesced onto an in-flight one
func (m *Metrics) RecordSingleflightDedup() {
	m.SingleflightDedupTotal.Inc()
}

// RecordDirectoryLoaded records the size and time of a successful load
func (m *Metrics) RecordDirectoryLoaded(records int) {
	m.DirectoryRecords.Set(float64(records))
	m.DirectoryLoadedAt.SetToCurrentTime()
}

// RecordSearch records a search with its branch and result count
func (m *Metrics) RecordSearch(branch string, results int, duration float64) {
	m.SearchesTotal.WithLabelValues(branch).Inc()
	m.SearchDuration.WithLabelValues(branch).Observe(duration)
	m.SearchResults.Observe(float64(results))
}
