// Package metrics provides Prometheus metrics for the auto-apply service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Run lifecycle
	runsStarted   prometheus.Counter
	runsFinished  *prometheus.CounterVec
	runsByStatus  *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec

	// Scoring
	scoringLatency   *prometheus.HistogramVec
	scoringFallbacks *prometheus.CounterVec
	rankingFallbacks *prometheus.CounterVec

	// Sink mirror
	sinkWrites       *prometheus.CounterVec
	sinkWriteLatency prometheus.Histogram
	sinkDropped      prometheus.Counter

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	workerCount   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "autoapply",
		subsystem:        "pipeline",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
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
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.runsStarted = auto.NewCounter(m.counterOpts("runs_started_total",
		"Total number of auto-apply runs started"))
	m.runsFinished = auto.NewCounterVec(m.counterOpts("runs_finished_total",
		"Total number of runs reaching a terminal state"), []string{"status"})
	m.runsByStatus = auto.NewGaugeVec(m.gaugeOpts("runs_by_status",
		"Current number of stored runs per status"), []string{"status"})
	m.stageDuration = auto.NewHistogramVec(m.histogramOpts("stage_duration_milliseconds",
		"Duration of pipeline stages in milliseconds"), []string{"stage"})

	m.scoringLatency = auto.NewHistogramVec(m.histogramOpts("scoring_latency_milliseconds",
		"Latency of a single job scoring call in milliseconds"), []string{"scorer"})
	m.scoringFallbacks = auto.NewCounterVec(m.counterOpts("scoring_fallbacks_total",
		"Scoring calls that fell back to the heuristic"), []string{"reason"})
	m.rankingFallbacks = auto.NewCounterVec(m.counterOpts("ranking_fallbacks_total",
		"Runs ranked with the synthetic fallback ranking"), []string{"cause"})

	m.sinkWrites = auto.NewCounterVec(m.counterOpts("sink_writes_total",
		"Durable sink writes by sink and result"), []string{"sink", "result"})
	m.sinkWriteLatency = auto.NewHistogram(m.histogramOpts("sink_write_latency_milliseconds",
		"Durable sink write latency in milliseconds"))
	m.sinkDropped = auto.NewCounter(m.counterOpts("sink_dropped_total",
		"Run records dropped because the mirror queue was full or closed"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current number of run records waiting in the mirror queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Capacity of the mirror queue"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count",
		"Number of sink mirror workers"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_total",
		"Errors by component and type"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// RecordRunStarted increments the runs started counter.
func RecordRunStarted() {
	globalManager.runsStarted.Inc()
}

// RecordRunFinished counts a run reaching the given terminal status.
func RecordRunFinished(status string) {
	globalManager.runsFinished.WithLabelValues(status).Inc()
}

// UpdateRunsByStatus sets the stored-runs gauge for a status.
func UpdateRunsByStatus(status string, count int) {
	globalManager.runsByStatus.WithLabelValues(status).Set(float64(count))
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, durationMs float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(durationMs)
}

// RecordScoringLatency records a scoring call latency for the named scorer.
func RecordScoringLatency(scorer string, latencyMs float64) {
	globalManager.scoringLatency.WithLabelValues(scorer).Observe(latencyMs)
}

// RecordScoringFallback counts a backend scoring call replaced by the heuristic.
func RecordScoringFallback(reason string) {
	globalManager.scoringFallbacks.WithLabelValues(reason).Inc()
}

// RecordRankingFallback counts a run ranked with the synthetic fallback.
func RecordRankingFallback(cause string) {
	globalManager.rankingFallbacks.WithLabelValues(cause).Inc()
}

// RecordSinkWrite counts a sink write; result is "ok" or "error".
func RecordSinkWrite(sink, result string, latencyMs float64) {
	globalManager.sinkWrites.WithLabelValues(sink, result).Inc()
	globalManager.sinkWriteLatency.Observe(latencyMs)
}

// RecordSinkDropped counts a record that never reached the sink.
func RecordSinkDropped() {
	globalManager.sinkDropped.Inc()
}

// UpdateQueueSize sets the current mirror queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the mirror queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateWorkerCount sets the number of mirror workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
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
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
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
