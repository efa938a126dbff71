package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	// BookingOps counts lifecycle operations by operation and outcome.
	BookingOps *prometheus.CounterVec

	// SweepDuration is the wall time of one reconciliation sweep.
	SweepDuration prometheus.Histogram

	// SweepUpdates counts writes made by sweeps, by kind (booking, room).
	SweepUpdates *prometheus.CounterVec

	// SweepFailures counts per-entity failures inside sweeps.
	SweepFailures *prometheus.CounterVec

	// SweepsSkipped counts ticks dropped because a sweep was still running.
	SweepsSkipped prometheus.Counter

	// NotificationsSent counts confirmation emails by result.
	NotificationsSent *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		BookingOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "booking_operations_total",
				Help:      "Booking lifecycle operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		SweepDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reconcile_sweep_duration_seconds",
				Help:      "Duration of a reconciliation sweep.",
				Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5},
			},
		),
		SweepUpdates: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_updates_total",
				Help:      "Rows rewritten by reconciliation sweeps.",
			},
			[]string{"kind"},
		),
		SweepFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_failures_total",
				Help:      "Per-entity failures during reconciliation sweeps.",
			},
			[]string{"kind"},
		),
		SweepsSkipped: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reconcile_skipped_total",
				Help:      "Ticks skipped because the previous sweep had not finished.",
			},
		),
		NotificationsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_sent_total",
				Help:      "Booking confirmation emails by result.",
			},
			[]string{"result"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status class.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// BookingOutcome records the result of a lifecycle operation.
func (m *Metrics) BookingOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.BookingOps.WithLabelValues(operation, outcome).Inc()
}

// SweepFinished records one completed sweep.
func (m *Metrics) SweepFinished(d time.Duration, bookingsUpdated, roomsUpdated, failures int) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(d.Seconds())
	m.SweepUpdates.WithLabelValues("booking").Add(float64(bookingsUpdated))
	m.SweepUpdates.WithLabelValues("room").Add(float64(roomsUpdated))
	m.SweepFailures.WithLabelValues("entity").Add(float64(failures))
}

func (m *Metrics) SweepSkipped() {
	if m == nil {
		return
	}
	m.SweepsSkipped.Inc()
}

func (m *Metrics) NotificationResult(err error) {
	if m == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	m.NotificationsSent.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}
