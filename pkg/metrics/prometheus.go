// Package metrics provides Prometheus metrics for the headcount service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Detection latency buckets in milliseconds; inference usually lands in 5-200ms.
var detectionBuckets = []float64{1, 2.5, 5, 10, 20, 33, 50, 75, 100, 150, 250, 500, 1000} //nolint:gochecknoglobals // fixed bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Tick pipeline
	ticks            prometheus.Counter
	detectionErrors  prometheus.Counter
	detectionLatency prometheus.Histogram
	staleSamples     prometheus.Counter
	faceCount        prometheus.Gauge
	instantaneousFPS prometheus.Gauge
	averageFaceCount prometheus.Gauge
	windowLength     prometheus.Gauge

	// Attendance
	attendanceEvents    *prometheus.CounterVec
	attendanceLogLength prometheus.Gauge

	// Driver lifecycle
	monitorState         prometheus.Gauge
	modelLoadErrors      prometheus.Counter
	cameraAcquireErrors  prometheus.Counter
	monitoringRunsTotal  prometheus.Counter
	feedSubscribers      prometheus.Gauge
	feedDroppedSnapshots prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
	processCPUPercent    prometheus.Gauge
	processRSSBytes      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "headcount",
		subsystem:        "monitor",
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

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.ticks = auto.NewCounter(m.counterOpts("ticks_total", "Ticks whose sample was applied to the aggregator"))
	m.detectionErrors = auto.NewCounter(m.counterOpts("detection_errors_total", "Ticks skipped because the estimator failed"))
	m.detectionLatency = auto.NewHistogram(m.histogramOpts("detection_latency_milliseconds", "Estimator call latency in milliseconds", detectionBuckets))
	m.staleSamples = auto.NewCounter(m.counterOpts("stale_samples_total", "Detection results discarded because their run had ended"))
	m.faceCount = auto.NewGauge(m.gaugeOpts("face_count", "Face count of the latest sample"))
	m.instantaneousFPS = auto.NewGauge(m.gaugeOpts("instantaneous_fps", "Frame rate derived from the last inter-tick interval"))
	m.averageFaceCount = auto.NewGauge(m.gaugeOpts("average_face_count", "Rolling average of the face count, one decimal"))
	m.windowLength = auto.NewGauge(m.gaugeOpts("window_length", "Samples currently held by the rolling window"))

	m.attendanceEvents = auto.NewCounterVec(m.counterOpts("attendance_events_total", "Attendance events by kind"), []string{"kind"})
	m.attendanceLogLength = auto.NewGauge(m.gaugeOpts("attendance_log_length", "Entries currently held by the attendance log"))

	m.monitorState = auto.NewGauge(m.gaugeOpts("state", "Loop driver state (0=idle 1=loading 2=ready 3=running 4=stopped)"))
	m.modelLoadErrors = auto.NewCounter(m.counterOpts("model_load_errors_total", "Failed estimator loads"))
	m.cameraAcquireErrors = auto.NewCounter(m.counterOpts("camera_acquisition_errors_total", "Failed camera acquisitions"))
	m.monitoringRunsTotal = auto.NewCounter(m.counterOpts("runs_total", "Monitoring runs started"))
	m.feedSubscribers = auto.NewGauge(m.gaugeOpts("feed_subscribers", "Connected snapshot feed subscribers"))
	m.feedDroppedSnapshots = auto.NewCounter(m.counterOpts("feed_dropped_total", "Snapshots dropped for slow feed subscribers"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
	m.processCPUPercent = auto.NewGauge(m.gaugeOpts("process_cpu_percent", "Process CPU usage percent"))
	m.processRSSBytes = auto.NewGauge(m.gaugeOpts("process_rss_bytes", "Process resident set size in bytes"))
}

// Manager methods.

func (m *Manager) RecordTick()                        { m.ticks.Inc() }
func (m *Manager) RecordDetectionError()              { m.detectionErrors.Inc() }
func (m *Manager) RecordDetectionLatency(ms float64)  { m.detectionLatency.Observe(ms) }
func (m *Manager) RecordStaleSample()                 { m.staleSamples.Inc() }
func (m *Manager) UpdateFaceCount(count int)          { m.faceCount.Set(float64(count)) }
func (m *Manager) UpdateInstantaneousFPS(fps int)     { m.instantaneousFPS.Set(float64(fps)) }
func (m *Manager) UpdateAverageFaceCount(avg float64) { m.averageFaceCount.Set(avg) }
func (m *Manager) UpdateWindowLength(n int)           { m.windowLength.Set(float64(n)) }
func (m *Manager) RecordAttendanceEvent(kind string)  { m.attendanceEvents.WithLabelValues(kind).Inc() }
func (m *Manager) UpdateAttendanceLogLength(n int)    { m.attendanceLogLength.Set(float64(n)) }
func (m *Manager) UpdateMonitorState(state int)       { m.monitorState.Set(float64(state)) }
func (m *Manager) RecordModelLoadError()              { m.modelLoadErrors.Inc() }
func (m *Manager) RecordCameraAcquisitionError()      { m.cameraAcquireErrors.Inc() }
func (m *Manager) RecordMonitoringRun()               { m.monitoringRunsTotal.Inc() }
func (m *Manager) UpdateFeedSubscribers(n int)        { m.feedSubscribers.Set(float64(n)) }
func (m *Manager) RecordFeedDropped()                 { m.feedDroppedSnapshots.Inc() }

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Global helpers delegating to the process-wide manager.

// RecordTick increments the applied tick counter.
func RecordTick() { globalManager.RecordTick() }

// RecordDetectionError increments the failed detection counter.
func RecordDetectionError() { globalManager.RecordDetectionError() }

// RecordDetectionLatency records estimator latency in milliseconds.
func RecordDetectionLatency(ms float64) { globalManager.RecordDetectionLatency(ms) }

// RecordStaleSample increments the discarded late result counter.
func RecordStaleSample() { globalManager.RecordStaleSample() }

// UpdateFaceCount sets the latest face count.
func UpdateFaceCount(count int) { globalManager.UpdateFaceCount(count) }

// UpdateInstantaneousFPS sets the instantaneous frame rate.
func UpdateInstantaneousFPS(fps int) { globalManager.UpdateInstantaneousFPS(fps) }

// UpdateAverageFaceCount sets the rolling average face count.
func UpdateAverageFaceCount(avg float64) { globalManager.UpdateAverageFaceCount(avg) }

// UpdateWindowLength sets the rolling window fill level.
func UpdateWindowLength(n int) { globalManager.UpdateWindowLength(n) }

// RecordAttendanceEvent counts an attendance event of the given kind.
func RecordAttendanceEvent(kind string) { globalManager.RecordAttendanceEvent(kind) }

// UpdateAttendanceLogLength sets the attendance log length.
func UpdateAttendanceLogLength(n int) { globalManager.UpdateAttendanceLogLength(n) }

// UpdateMonitorState sets the numeric driver state.
func UpdateMonitorState(state int) { globalManager.UpdateMonitorState(state) }

// RecordModelLoadError counts a failed estimator load.
func RecordModelLoadError() { globalManager.RecordModelLoadError() }

// RecordCameraAcquisitionError counts a failed camera acquisition.
func RecordCameraAcquisitionError() { globalManager.RecordCameraAcquisitionError() }

// RecordMonitoringRun counts a started run.
func RecordMonitoringRun() { globalManager.RecordMonitoringRun() }

// UpdateFeedSubscribers sets the number of feed subscribers.
func UpdateFeedSubscribers(n int) { globalManager.UpdateFeedSubscribers(n) }

// RecordFeedDropped counts a snapshot dropped for a slow subscriber.
func RecordFeedDropped() { globalManager.RecordFeedDropped() }

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// UpdateProcessCPUPercent sets the process CPU usage.
func UpdateProcessCPUPercent(pct float64) { globalManager.processCPUPercent.Set(pct) }

// UpdateProcessRSS sets the process resident set size.
func UpdateProcessRSS(bytes uint64) { globalManager.processRSSBytes.Set(float64(bytes)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
