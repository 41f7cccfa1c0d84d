package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raka-dev/sekolah-hr-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the scheduling
// core: HTTP traffic plus domain counters for conflicts, overrides, lock
// sweeps and monthly generation.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	conflictsFound   *prometheus.CounterVec
	overridesApplied *prometheus.CounterVec
	locksReleased    prometheus.Counter
	rowsGenerated    prometheus.Counter
	placeholdersOut  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	conflictsFound := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_conflicts_detected_total",
		Help: "Conflicts surfaced by the detector, by type and severity",
	}, []string{"type", "severity"})

	overridesApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_overrides_applied_total",
		Help: "Overrides applied to generated schedule rows, by source",
	}, []string{"source"})

	locksReleased := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_locks_expired_released_total",
		Help: "Expired schedule locks released by the sweep",
	})

	rowsGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monthly_schedule_rows_generated_total",
		Help: "Employee schedule rows created by monthly generation",
	})

	placeholdersOut := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_placeholders_created_total",
		Help: "Expected-shift placeholders handed to the attendance subsystem",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, conflictsFound, overridesApplied,
		locksReleased, rowsGenerated, placeholdersOut, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conflictsFound:  conflictsFound,
		overridesApplied: overridesApplied,
		locksReleased:   locksReleased,
		rowsGenerated:   rowsGenerated,
		placeholdersOut: placeholdersOut,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordConflicts counts detector findings.
func (m *MetricsService) RecordConflicts(findings []models.ConflictFinding) {
	if m == nil {
		return
	}
	for _, finding := range findings {
		m.conflictsFound.WithLabelValues(string(finding.Type), string(finding.Severity)).Inc()
	}
}

// RecordOverride counts an override application by source.
func (m *MetricsService) RecordOverride(source models.ScheduleSource) {
	if m == nil {
		return
	}
	m.overridesApplied.WithLabelValues(string(source)).Inc()
}

// RecordExpiredLocks counts locks released by the sweep.
func (m *MetricsService) RecordExpiredLocks(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.locksReleased.Add(float64(count))
}

// RecordGeneratedRows counts monthly generation output.
func (m *MetricsService) RecordGeneratedRows(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rowsGenerated.Add(float64(count))
}

// RecordPlaceholder counts one attendance placeholder fan-out.
func (m *MetricsService) RecordPlaceholder() {
	if m == nil {
		return
	}
	m.placeholdersOut.Inc()
}
