// Package metrics exposes the process Prometheus instruments.
package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	paymentsApplied    *prometheus.CounterVec
	paymentsRejected   *prometheus.CounterVec
	transitions        *prometheus.CounterVec
	transitionRejected *prometheus.CounterVec
	sweepRuns          prometheus.Counter
	sweepMarked        prometheus.Counter
	sweepErrors        prometheus.Counter
	sweepDuration      prometheus.Observer
	httpDuration       *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// Default returns the singleton metrics registry backed by the default
// Prometheus registerer.
func Default() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics()
	})
	return metrics
}

func newMetrics() *Metrics {
	return &Metrics{
		paymentsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worksuite_payments_applied_total",
			Help: "Payments applied to invoices, by method.",
		}, []string{"method"}),
		paymentsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worksuite_payments_rejected_total",
			Help: "Payments rejected before any state change, by reason.",
		}, []string{"reason"}),
		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worksuite_lifecycle_transitions_total",
			Help: "Lifecycle transitions applied, by entity type.",
		}, []string{"entity_type"}),
		transitionRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worksuite_lifecycle_transitions_rejected_total",
			Help: "Lifecycle transitions rejected by the validator, by entity type.",
		}, []string{"entity_type"}),
		sweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worksuite_overdue_sweep_runs_total",
			Help: "Overdue sweep executions.",
		}),
		sweepMarked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worksuite_overdue_sweep_marked_total",
			Help: "Invoices marked OVERDUE by the sweep.",
		}),
		sweepErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worksuite_overdue_sweep_errors_total",
			Help: "Per-invoice failures skipped by the sweep.",
		}),
		sweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worksuite_overdue_sweep_duration_seconds",
			Help:    "Overdue sweep wall time.",
			Buckets: prometheus.DefBuckets,
		}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worksuite_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) RecordPaymentApplied(method string) {
	if m == nil {
		return
	}
	m.paymentsApplied.WithLabelValues(strings.ToUpper(strings.TrimSpace(method))).Inc()
}

func (m *Metrics) RecordPaymentRejected(reason string) {
	if m == nil {
		return
	}
	m.paymentsRejected.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

func (m *Metrics) RecordTransition(entityType string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entityType).Inc()
}

func (m *Metrics) RecordTransitionRejected(entityType string) {
	if m == nil {
		return
	}
	m.transitionRejected.WithLabelValues(entityType).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if path == "" {
		path = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordSweep(marked int, errors int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepMarked.Add(float64(marked))
	m.sweepErrors.Add(float64(errors))
	m.sweepDuration.Observe(elapsed.Seconds())
}
