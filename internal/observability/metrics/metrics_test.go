package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking(ResultCreated)
	m.ObserveBooking(ResultCreated)
	m.ObserveBooking(ResultConflict)
	m.ObserveTransition("PENDING", "ACCEPTED")
	m.ObserveSlotQuery(false)
	m.ObserveLockWait(0.002)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.bookingAttempts.WithLabelValues(ResultCreated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.bookingAttempts.WithLabelValues(ResultConflict)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("PENDING", "ACCEPTED")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.slotQueries.WithLabelValues("false")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lockWait))
}

func TestBookingMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewBookingMetrics(reg)
	assert.Panics(t, func() { NewBookingMetrics(reg) })
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking(ResultError)
	m.ObserveTransition("PENDING", "CANCELLED")
	m.ObserveSlotQuery(true)
	m.ObserveLockWait(0.1)
}
