// Package metrics provides Prometheus metrics for the monuments map service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Dataset
	datasetPoints  prometheus.Gauge
	markersTotal   prometheus.Gauge
	pointsDropped  prometheus.Counter
	loadsTotal     *prometheus.CounterVec
	loadLatency    prometheus.Histogram
	lastLoadUnix   prometheus.Gauge
	optionsPerList *prometheus.GaugeVec

	// View
	refreshesTotal prometheus.Counter
	refreshLatency prometheus.Histogram
	visibleMarkers prometheus.Histogram
	emptyResults   prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry. It must
// run before collectors are registered or the registry is served.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append([]Option{WithPrometheusRegistry(customRegistry)}, opts...)...)
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hiddengems",
		subsystem:        "map",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.datasetPoints = m.gauge("dataset_points", "Number of features in the loaded dataset, invalid ones included")
	m.markersTotal = m.gauge("markers_total", "Number of renderable markers built from the dataset")
	m.pointsDropped = m.counter("points_dropped_total", "Features dropped for missing or short coordinates")
	m.loadsTotal = m.counterVec("dataset_loads_total", "Dataset load attempts by result", "result")
	m.loadLatency = m.histogram("dataset_load_latency_milliseconds", "Dataset fetch and parse latency in milliseconds", m.histogramBuckets)
	m.lastLoadUnix = m.gauge("dataset_last_load_timestamp_seconds", "Unix time of the last successful dataset load")
	m.optionsPerList = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("filter_options"), Help: "Number of options per filter control", ConstLabels: m.customLabels,
	}, []string{"control"})

	m.refreshesTotal = m.counter("view_refreshes_total", "Number of view synchronizer passes")
	m.refreshLatency = m.histogram("view_refresh_latency_milliseconds", "View synchronizer pass latency in milliseconds", m.histogramBuckets)
	m.visibleMarkers = m.histogram("view_visible_markers", "Visible markers per view pass", prometheus.ExponentialBuckets(1, 2, 10))
	m.emptyResults = m.counter("view_empty_results_total", "View passes where no marker matched the filters")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds", "Latency of operations that ended in error", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets)
}

// Dataset metrics.

// RecordDatasetLoaded records a successful load of points features producing markers.
func RecordDatasetLoaded(points, markers, dropped int, latencyMs float64) {
	globalManager.datasetPoints.Set(float64(points))
	globalManager.markersTotal.Set(float64(markers))
	globalManager.pointsDropped.Add(float64(dropped))
	globalManager.loadsTotal.WithLabelValues("ok").Inc()
	globalManager.loadLatency.Observe(latencyMs)
	globalManager.lastLoadUnix.SetToCurrentTime()
}

// RecordDatasetLoadError records a failed load.
func RecordDatasetLoadError(latencyMs float64) {
	globalManager.loadsTotal.WithLabelValues("error").Inc()
	globalManager.loadLatency.Observe(latencyMs)
	RecordErrorByComponent("loader", "load_error")
	RecordErrorLatency("loader", "load_error", latencyMs)
}

// UpdateFilterOptions sets the option count of a filter control.
func UpdateFilterOptions(control string, count int) {
	globalManager.optionsPerList.WithLabelValues(control).Set(float64(count))
}

// View metrics.

// RecordRefresh records one view synchronizer pass.
func RecordRefresh(visible int, latencyMs float64) {
	globalManager.refreshesTotal.Inc()
	globalManager.refreshLatency.Observe(latencyMs)
	globalManager.visibleMarkers.Observe(float64(visible))
	if visible == 0 {
		globalManager.emptyResults.Inc()
	}
}

// HTTP metrics.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// Register adds an extra collector to the service registry.
func Register(c prometheus.Collector) error {
	if err := customRegistry.Register(c); err != nil {
		return fmt.Errorf("%w: %w", ErrRegister, err)
	}
	return nil
}

// RefreshInterval is how often gauge updaters should poll.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
