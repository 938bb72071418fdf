// Package metrics provides Prometheus metrics for the daybook calendar service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for add attempts.
const (
	OutcomeOK       = "ok"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
)

// Result labels for saves and exports.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultDropped = "dropped"
)

// latencyBuckets are in milliseconds; store operations are sub-millisecond.
var latencyBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500} //nolint:gochecknoglobals // constant bucket layout

// Manager owns the calendar service metrics.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Store
	eventsStored    *prometheus.GaugeVec
	eventAdds       *prometheus.CounterVec
	eventDeletes    *prometheus.CounterVec
	storeOpDuration *prometheus.HistogramVec

	// Persistence
	saves           *prometheus.CounterVec
	saveQueueDepth  prometheus.Gauge
	recordsSkipped  prometheus.Counter
	icsExports      *prometheus.CounterVec
	duplicateCreate prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default global one.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	customRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Without WithPrometheusRegistry the
// metrics register on prometheus.DefaultRegisterer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "daybook",
		subsystem:        "calendar",
		histogramBuckets: latencyBuckets,
		enabled:          true,
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

	m.eventsStored = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events",
		Help:      "Number of stored events by kind",
	}, []string{"kind"})

	m.eventAdds = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_adds_total",
		Help:      "Add attempts by outcome",
	}, []string{"outcome"})

	m.eventDeletes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_deletes_total",
		Help:      "Events removed by delete operation",
	}, []string{"operation"})

	m.storeOpDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_operation_duration_milliseconds",
		Help:      "Store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.saves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "saves_total",
		Help:      "Event file saves by result",
	}, []string{"result"})

	m.saveQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "save_queue_depth",
		Help:      "Pending save requests",
	})

	m.recordsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_skipped_total",
		Help:      "Malformed event records skipped while loading",
	})

	m.icsExports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ics_exports_total",
		Help:      "iCalendar exports by result",
	}, []string{"result"})

	m.duplicateCreate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_creates_total",
		Help:      "Create requests ignored because their request id was already seen",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Error responses by endpoint, method and error type",
	}, []string{"endpoint", "method", "error_type"})
}

// RecordAdd counts an add attempt. outcome must be one of the Outcome* labels.
func (m *Manager) RecordAdd(outcome string) error {
	switch outcome {
	case OutcomeOK, OutcomeConflict, OutcomeInvalid:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	if m.enabled {
		m.eventAdds.WithLabelValues(outcome).Inc()
	}
	return nil
}

// SetEventCounts sets the stored-events gauge per kind.
func (m *Manager) SetEventCounts(oneTime, recurring int) {
	if !m.enabled {
		return
	}
	m.eventsStored.WithLabelValues("one_time").Set(float64(oneTime))
	m.eventsStored.WithLabelValues("recurring").Set(float64(recurring))
}

func (m *Manager) RecordDeleted(operation string, n int) {
	if m.enabled && n > 0 {
		m.eventDeletes.WithLabelValues(operation).Add(float64(n))
	}
}

func (m *Manager) RecordStoreLatency(operation string, latencyMs float64) {
	if m.enabled {
		m.storeOpDuration.WithLabelValues(operation).Observe(latencyMs)
	}
}

func (m *Manager) RecordSave(result string) {
	if m.enabled {
		m.saves.WithLabelValues(result).Inc()
	}
}

func (m *Manager) UpdateSaveQueueDepth(n int) {
	if m.enabled {
		m.saveQueueDepth.Set(float64(n))
	}
}

func (m *Manager) RecordSkippedRecords(n int) {
	if m.enabled && n > 0 {
		m.recordsSkipped.Add(float64(n))
	}
}

func (m *Manager) RecordICSExport(result string) {
	if m.enabled {
		m.icsExports.WithLabelValues(result).Inc()
	}
}

func (m *Manager) RecordDuplicateCreate() {
	if m.enabled {
		m.duplicateCreate.Inc()
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// Package-level helpers record on the global manager.

// RecordAdd counts an add attempt on the global manager.
func RecordAdd(outcome string) { _ = globalManager.RecordAdd(outcome) }

// SetEventCounts updates the stored-events gauge.
func SetEventCounts(oneTime, recurring int) { globalManager.SetEventCounts(oneTime, recurring) }

// RecordDeleted counts removed events for a delete operation.
func RecordDeleted(operation string, n int) { globalManager.RecordDeleted(operation, n) }

// RecordStoreLatency observes a store operation latency.
func RecordStoreLatency(operation string, latencyMs float64) {
	globalManager.RecordStoreLatency(operation, latencyMs)
}

func RecordSave(result string) { globalManager.RecordSave(result) }
func UpdateSaveQueueDepth(n int) { globalManager.UpdateSaveQueueDepth(n) }
func RecordSkippedRecords(n int) { globalManager.RecordSkippedRecords(n) }
func RecordICSExport(result string) { globalManager.RecordICSExport(result) }
func RecordDuplicateCreate() { globalManager.RecordDuplicateCreate() }

// RecordHTTPRequest counts a request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint counts an error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
