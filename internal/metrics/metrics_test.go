package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("roombooking", prometheus.NewRegistry())

	m.BookingOutcome("create", "ok")
	m.BookingOutcome("create", "ok")
	m.BookingOutcome("create", "slot_conflict")
	m.SweepFinished(20*time.Millisecond, 3, 1, 2)
	m.SweepSkipped()
	m.NotificationResult(nil)
	m.NotificationResult(errors.New("smtp down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingOps.WithLabelValues("create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingOps.WithLabelValues("create", "slot_conflict")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SweepUpdates.WithLabelValues("booking")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SweepFailures.WithLabelValues("entity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweepsSkipped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("failed")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingOutcome("cancel", "ok")
		m.SweepFinished(time.Second, 1, 1, 1)
		m.SweepSkipped()
		m.NotificationResult(nil)
	})
}
