// Package metrics provides Prometheus metrics for the training history service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultLatencyBuckets are millisecond bounds shared by every latency histogram.
var defaultLatencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Pipeline metrics
	pipelinesStarted   *prometheus.CounterVec
	pipelinesCompleted *prometheus.CounterVec
	pipelinesFailed    *prometheus.CounterVec
	pipelineLatency    *prometheus.HistogramVec

	// Upstream fetch metrics
	fetchLatency  *prometheus.HistogramVec
	fetchFailures *prometheus.CounterVec
	partialData   *prometheus.CounterVec

	// Data quality
	reconstructionClamps *prometheus.CounterVec
	recordsSkipped       *prometheus.CounterVec
	conversionsPassed    *prometheus.CounterVec

	// Comparison
	comparisonEntities *prometheus.CounterVec
	comparisonSize     prometheus.Histogram

	// Report cache
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	cacheEntries prometheus.Gauge

	// Queue / worker
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueRejected    prometheus.Counter
	workerCount      prometheus.Gauge
	workerBusy       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "trainhist",
		subsystem:        "history",
		histogramBuckets: defaultLatencyBuckets,
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
	if m.metricPrefix != "" {
		return m.metricPrefix + "_" + n
	}
	return n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	msBuckets := m.histogramBuckets

	m.pipelinesStarted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipelines_started_total"),
		Help:        "Entity pipelines started, by mode (detail, compare, offline)",
		ConstLabels: m.customLabels,
	}, []string{"mode"})

	m.pipelinesCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipelines_completed_total"),
		Help:        "Entity pipelines that produced a result, by mode",
		ConstLabels: m.customLabels,
	}, []string{"mode"})

	m.pipelinesFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipelines_failed_total"),
		Help:        "Entity pipelines aborted, by mode and error kind",
		ConstLabels: m.customLabels,
	}, []string{"mode", "kind"})

	m.pipelineLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("pipeline_latency_milliseconds"),
		Help:        "End-to-end entity pipeline latency in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: m.customLabels,
	}, []string{"mode"})

	m.fetchLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_latency_milliseconds"),
		Help:        "Upstream fetch latency in milliseconds, by source",
		Buckets:     msBuckets,
		ConstLabels: m.customLabels,
	}, []string{"source"})

	m.fetchFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_failures_total"),
		Help:        "Upstream fetch failures, by source",
		ConstLabels: m.customLabels,
	}, []string{"source"})

	m.partialData = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("partial_data_total"),
		Help:        "Pipelines that continued with defaults after an optional source failed",
		ConstLabels: m.customLabels,
	}, []string{"source"})

	m.reconstructionClamps = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reconstruction_clamps_total"),
		Help:        "Reconstructed skill values clamped at zero (gain tally exceeds current value)",
		ConstLabels: m.customLabels,
	}, []string{"skill"})

	m.recordsSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("records_skipped_total"),
		Help:        "Malformed records skipped, by kind (event, transfer, price)",
		ConstLabels: m.customLabels,
	}, []string{"kind"})

	m.conversionsPassed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("conversions_unsupported_total"),
		Help:        "Currency conversions passed through unchanged because a code is unknown",
		ConstLabels: m.customLabels,
	}, []string{"code"})

	m.comparisonEntities = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("comparison_entities_total"),
		Help:        "Entities processed in comparisons, by outcome",
		ConstLabels: m.customLabels,
	}, []string{"outcome"})

	m.comparisonSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("comparison_size"),
		Help:        "Number of entities requested per comparison",
		Buckets:     []float64{1, 2, 3, 5, 8, 13, 21},
		ConstLabels: m.customLabels,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_cache_hits_total"),
		Help:        "Report cache hits",
		ConstLabels: m.customLabels,
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_cache_misses_total"),
		Help:        "Report cache misses",
		ConstLabels: m.customLabels,
	})

	m.cacheEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("report_cache_entries"),
		Help:        "Reports currently cached",
		ConstLabels: m.customLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Comparison jobs waiting in the queue",
		ConstLabels: m.customLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum comparison jobs the queue accepts",
		ConstLabels: m.customLabels,
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_utilization_ratio"),
		Help:        "Queue size divided by capacity",
		ConstLabels: m.customLabels,
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_rejected_total"),
		Help:        "Comparison jobs rejected because the queue was full or closed",
		ConstLabels: m.customLabels,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_count"),
		Help:        "Workers in the comparison pool",
		ConstLabels: m.customLabels,
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("worker_busy"),
		Help:        "Workers currently running an entity pipeline",
		ConstLabels: m.customLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "HTTP requests, by endpoint, method and status",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     msBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_errors_total"),
		Help:        "HTTP error responses, by endpoint, method and error type",
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: m.customLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: m.customLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.customLabels,
	})
}

// Pipeline Metrics Functions.

// RecordPipelineStarted counts an entity pipeline start.
func RecordPipelineStarted(mode string) { globalManager.recordPipelineStarted(mode) }

func (m *Manager) recordPipelineStarted(mode string) {
	if !m.enabled {
		return
	}
	m.pipelinesStarted.WithLabelValues(mode).Inc()
}

// RecordPipelineCompleted counts a successful pipeline and its latency.
func RecordPipelineCompleted(mode string, latencyMs float64) { globalManager.recordPipelineCompleted(mode, latencyMs) }

func (m *Manager) recordPipelineCompleted(mode string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.pipelinesCompleted.WithLabelValues(mode).Inc()
	m.pipelineLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordPipelineFailed counts an aborted pipeline.
func RecordPipelineFailed(mode, kind string) { globalManager.recordPipelineFailed(mode, kind) }

func (m *Manager) recordPipelineFailed(mode, kind string) {
	if !m.enabled {
		return
	}
	m.pipelinesFailed.WithLabelValues(mode, kind).Inc()
}

// Upstream Metrics Functions.

// RecordFetchLatency records how long a fetch from source took.
func RecordFetchLatency(source string, latencyMs float64) { globalManager.recordFetchLatency(source, latencyMs) }

func (m *Manager) recordFetchLatency(source string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.fetchLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordFetchFailure counts a failed fetch from source.
func RecordFetchFailure(source string) { globalManager.recordFetchFailure(source) }

func (m *Manager) recordFetchFailure(source string) {
	if !m.enabled {
		return
	}
	m.fetchFailures.WithLabelValues(source).Inc()
}

// RecordPartialData counts a pipeline that fell back to defaults for source.
func RecordPartialData(source string) { globalManager.recordPartialData(source) }

func (m *Manager) recordPartialData(source string) {
	if !m.enabled {
		return
	}
	m.partialData.WithLabelValues(source).Inc()
}

// Data Quality Metrics Functions.

// RecordReconstructionClamp counts a clamped skill value.
func RecordReconstructionClamp(skill string) { globalManager.recordReconstructionClamp(skill) }

func (m *Manager) recordReconstructionClamp(skill string) {
	if !m.enabled {
		return
	}
	m.reconstructionClamps.WithLabelValues(skill).Inc()
}

// RecordRecordsSkipped counts malformed records of kind that were skipped.
func RecordRecordsSkipped(kind string, n int) { globalManager.recordRecordsSkipped(kind, n) }

func (m *Manager) recordRecordsSkipped(kind string, n int) {
	if !m.enabled {
		return
	}
	if n <= 0 {
		return
	}
	m.recordsSkipped.WithLabelValues(kind).Add(float64(n))
}

// RecordConversionUnsupported counts a pass-through conversion.
func RecordConversionUnsupported(code string) { globalManager.recordConversionUnsupported(code) }

func (m *Manager) recordConversionUnsupported(code string) {
	if !m.enabled {
		return
	}
	m.conversionsPassed.WithLabelValues(code).Inc()
}

// Comparison Metrics Functions.

// RecordComparison records the requested size of a comparison.
func RecordComparison(size int) { globalManager.recordComparison(size) }

func (m *Manager) recordComparison(size int) {
	if !m.enabled {
		return
	}
	m.comparisonSize.Observe(float64(size))
}

// RecordComparisonEntity counts one entity outcome ("ok" or "failed").
func RecordComparisonEntity(outcome string) { globalManager.recordComparisonEntity(outcome) }

func (m *Manager) recordComparisonEntity(outcome string) {
	if !m.enabled {
		return
	}
	m.comparisonEntities.WithLabelValues(outcome).Inc()
}

// Cache Metrics Functions.

// RecordCacheHit increments the report cache hit counter.
func RecordCacheHit() { globalManager.recordCacheHit() }

func (m *Manager) recordCacheHit() {
	if !m.enabled {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss increments the report cache miss counter.
func RecordCacheMiss() { globalManager.recordCacheMiss() }

func (m *Manager) recordCacheMiss() {
	if !m.enabled {
		return
	}
	m.cacheMisses.Inc()
}

// UpdateCacheEntries sets the number of cached reports.
func UpdateCacheEntries(n int) { globalManager.updateCacheEntries(n) }

func (m *Manager) updateCacheEntries(n int) {
	if !m.enabled {
		return
	}
	m.cacheEntries.Set(float64(n))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.updateQueueSize(size) }

func (m *Manager) updateQueueSize(size int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.updateQueueCapacity(capacity) }

func (m *Manager) updateQueueCapacity(capacity int) {
	if !m.enabled {
		return
	}
	m.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.updateQueueUtilization(utilization) }

func (m *Manager) updateQueueUtilization(utilization float64) {
	if !m.enabled {
		return
	}
	m.queueUtilization.Set(utilization)
}

// RecordQueueRejected increments the rejected job counter.
func RecordQueueRejected() { globalManager.recordQueueRejected() }

func (m *Manager) recordQueueRejected() {
	if !m.enabled {
		return
	}
	m.queueRejected.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.updateWorkerCount(count) }

func (m *Manager) updateWorkerCount(count int) {
	if !m.enabled {
		return
	}
	m.workerCount.Set(float64(count))
}

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta int) { globalManager.addWorkerBusy(delta) }

func (m *Manager) addWorkerBusy(delta int) {
	if !m.enabled {
		return
	}
	m.workerBusy.Add(float64(delta))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) { globalManager.recordHTTPRequest(endpoint, method, statusCode) }

func (m *Manager) recordHTTPRequest(endpoint, method, statusCode string) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) { globalManager.recordHTTPRequestDuration(endpoint, method, statusCode, duration) }

func (m *Manager) recordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) { globalManager.recordErrorByEndpoint(endpoint, method, errorType) }

func (m *Manager) recordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.updateSystemMemoryUsage(bytes) }

func (m *Manager) updateSystemMemoryUsage(bytes uint64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.updateSystemGoroutineCount(count) }

func (m *Manager) updateSystemGoroutineCount(count int) {
	if !m.enabled {
		return
	}
	m.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.recordSystemGCPauseTime(pauseMs) }

func (m *Manager) recordSystemGCPauseTime(pauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Enabled reports whether the global manager records metrics.
func Enabled() bool {
	return globalManager.enabled
}

// RefreshInterval returns how often background gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
