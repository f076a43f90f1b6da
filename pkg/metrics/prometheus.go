// Package metrics provides Prometheus metrics for the chart record service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Manager manages all Prometheus metrics for the chart record service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Collection
	recordsTotal      prometheus.Gauge
	recordSubmissions *prometheus.CounterVec

	// Import
	imports               *prometheus.CounterVec
	importEntriesRejected prometheus.Counter
	importDuration        prometheus.Histogram

	// Remote fetch
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	// Store
	storeOperations        *prometheus.CounterVec
	storeOperationDuration *prometheus.HistogramVec

	// Catalog
	searchQueries prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "chartrec",
		subsystem:        "records",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "count",
		Help:        "Number of records in the collection",
		ConstLabels: m.customLabels,
	})

	m.recordSubmissions = auto.NewCounterVec(
		m.counterOpts("submissions_total", "Record submissions by merge outcome"),
		[]string{"outcome"},
	)

	m.imports = auto.NewCounterVec(
		m.counterOpts("imports_total", "Import attempts by payload shape and result"),
		[]string{"shape", "result"},
	)

	m.importEntriesRejected = auto.NewCounter(
		m.counterOpts("import_entries_rejected_total", "Import entries rejected during reconciliation"),
	)

	m.importDuration = auto.NewHistogram(
		m.histogramOpts("import_duration_milliseconds", "Import reconciliation duration in milliseconds"),
	)

	m.fetches = auto.NewCounterVec(
		m.counterOpts("fetches_total", "Remote capture fetches by result"),
		[]string{"result"},
	)

	m.fetchDuration = auto.NewHistogram(
		m.histogramOpts("fetch_duration_milliseconds", "Remote capture fetch duration in milliseconds"),
	)

	m.storeOperations = auto.NewCounterVec(
		m.counterOpts("store_operations_total", "Store operations by kind and result"),
		[]string{"operation", "result"},
	)

	m.storeOperationDuration = auto.NewHistogramVec(
		m.histogramOpts("store_operation_duration_milliseconds", "Store operation duration in milliseconds"),
		[]string{"operation"},
	)

	m.searchQueries = auto.NewCounter(
		m.counterOpts("search_queries_total", "Catalog search queries"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "Heap memory in use in bytes",
		ConstLabels: m.customLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: m.customLabels,
	})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// UpdateRecordsTotal sets the collection size.
func UpdateRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// RecordSubmission counts a record submission by merge outcome.
func RecordSubmission(outcome string) {
	globalManager.recordSubmissions.WithLabelValues(outcome).Inc()
}

// RecordImport counts an import attempt and its rejected entries.
func RecordImport(shape string, rejected int, d time.Duration, err error) {
	if shape == "" {
		shape = "unknown"
	}
	globalManager.imports.WithLabelValues(shape, result(err)).Inc()
	globalManager.importEntriesRejected.Add(float64(rejected))
	globalManager.importDuration.Observe(millis(d))
}

// RecordFetch counts a remote fetch. Superseded fetches use their own label.
func RecordFetch(res string, d time.Duration) {
	globalManager.fetches.WithLabelValues(res).Inc()
	globalManager.fetchDuration.Observe(millis(d))
}

// RecordStoreOperation records a store load or save.
func RecordStoreOperation(op string, d time.Duration, err error) {
	globalManager.storeOperations.WithLabelValues(op, result(err)).Inc()
	globalManager.storeOperationDuration.WithLabelValues(op).Observe(millis(d))
}

// RecordSearch counts a catalog search.
func RecordSearch() {
	globalManager.searchQueries.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
