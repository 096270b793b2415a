// Package metrics provides Prometheus metrics for the pricetrack client and gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pricetrack service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Canonicalization outcomes by marketplace and result.
	normalizations *prometheus.CounterVec

	// Synchronizer operations.
	addOutcomes    *prometheus.CounterVec
	listRefreshes  *prometheus.CounterVec
	deletes        *prometheus.CounterVec
	busyRejections prometheus.Counter
	sessionsActive prometheus.Gauge

	// Tracking service round trips.
	trackerRequests        *prometheus.CounterVec
	trackerRequestDuration *prometheus.HistogramVec

	// Gateway HTTP.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pricetrack",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.normalizations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalizations_total",
		Help:      "URL canonicalization attempts by marketplace and result",
	}, []string{"marketplace", "result"})

	m.addOutcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "add_outcomes_total",
		Help:      "Add-item submissions by marketplace and outcome",
	}, []string{"marketplace", "outcome"})

	m.listRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "list_refreshes_total",
		Help:      "Tracked-item list refreshes by result",
	}, []string{"result"})

	m.deletes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deletes_total",
		Help:      "Tracked-item deletions by result",
	}, []string{"result"})

	m.busyRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "busy_rejections_total",
		Help:      "Operations refused because another request was in flight for the session",
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Number of open user sessions holding a tracked-item collection",
	})

	m.trackerRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracker_requests_total",
		Help:      "Requests to the tracking service by endpoint and status code",
	}, []string{"endpoint", "status_code"})

	m.trackerRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracker_request_duration_milliseconds",
		Help:      "Tracking service round-trip latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Gateway HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Gateway HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Gateway errors by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordNormalization counts one canonicalization attempt.
func RecordNormalization(marketplace, result string) {
	globalManager.normalizations.WithLabelValues(marketplace, result).Inc()
}

// RecordAddOutcome counts one add-item submission outcome.
func RecordAddOutcome(marketplace, outcome string) {
	globalManager.addOutcomes.WithLabelValues(marketplace, outcome).Inc()
}

// RecordListRefresh counts one list refresh.
func RecordListRefresh(result string) {
	globalManager.listRefreshes.WithLabelValues(result).Inc()
}

// RecordDelete counts one delete attempt.
func RecordDelete(result string) {
	globalManager.deletes.WithLabelValues(result).Inc()
}

// RecordBusyRejection counts one single-flight rejection.
func RecordBusyRejection() {
	globalManager.busyRejections.Inc()
}

// UpdateSessionsActive sets the number of open sessions.
func UpdateSessionsActive(count int) {
	globalManager.sessionsActive.Set(float64(count))
}

// RecordTrackerRequest records a completed tracking service round trip.
func RecordTrackerRequest(endpoint, statusCode string, durationMs float64) {
	globalManager.trackerRequests.WithLabelValues(endpoint, statusCode).Inc()
	globalManager.trackerRequestDuration.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordHTTPRequest records a gateway HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records gateway HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records a gateway error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
