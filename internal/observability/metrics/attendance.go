// Package metrics provides Prometheus metrics for the timesheet engine
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transition results
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// AttendanceMetrics contains Prometheus metrics for clock actions and timesheet reads
type AttendanceMetrics struct {
	registry *prometheus.Registry

	// Clock action metrics
	transitionsTotal   *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec

	// Store metrics
	storeErrorsTotal *prometheus.CounterVec

	// Weekly timesheet cache
	weeklyCacheTotal *prometheus.CounterVec

	// Background jobs
	autoClosedTotal prometheus.Counter
}

// NewAttendanceMetrics creates and registers new attendance metrics
func NewAttendanceMetrics(registry *prometheus.Registry) (*AttendanceMetrics, error) {
	m := &AttendanceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AttendanceMetrics) initMetrics() {
	m.transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timesheet_transitions_total",
			Help: "Total number of clock actions by result",
		},
		[]string{"action", "result"}, // result: success, rejected, conflict, error
	)

	m.transitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "timesheet_transition_duration_seconds",
			Help: "Time taken to apply and persist a clock action",
			// 1ms to ~512ms
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"action"},
	)

	m.storeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timesheet_store_errors_total",
			Help: "Total number of time entry store failures",
		},
		[]string{"operation"},
	)

	m.weeklyCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timesheet_weekly_cache_total",
			Help: "Weekly timesheet cache lookups",
		},
		[]string{"result"}, // result: hit, miss
	)

	m.autoClosedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timesheet_auto_closed_entries_total",
			Help: "Total number of stale entries clocked out automatically",
		},
	)
}

// Describe implements the Collector interface
func (m *AttendanceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.transitionsTotal.Describe(ch)
	m.transitionDuration.Describe(ch)
	m.storeErrorsTotal.Describe(ch)
	m.weeklyCacheTotal.Describe(ch)
	m.autoClosedTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *AttendanceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.transitionsTotal.Collect(ch)
	m.transitionDuration.Collect(ch)
	m.storeErrorsTotal.Collect(ch)
	m.weeklyCacheTotal.Collect(ch)
	m.autoClosedTotal.Collect(ch)
}

// RecordTransition records a clock action outcome and how long it took
func (m *AttendanceMetrics) RecordTransition(action, result string, seconds float64) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(action, result).Inc()
	m.transitionDuration.WithLabelValues(action).Observe(seconds)
}

// RecordStoreError records a failed store operation
func (m *AttendanceMetrics) RecordStoreError(operation string) {
	if m == nil {
		return
	}
	m.storeErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordWeeklyCache records a weekly cache lookup
func (m *AttendanceMetrics) RecordWeeklyCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.weeklyCacheTotal.WithLabelValues(result).Inc()
}

// RecordAutoClosed adds n to the auto-closed entry counter
func (m *AttendanceMetrics) RecordAutoClosed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.autoClosedTotal.Add(float64(n))
}
