package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking attempt results
const (
	ResultCreated             = "created"
	ResultConflict            = "conflict"
	ResultOutsideAvailability = "outside_availability"
	ResultPastDate            = "past_date"
	ResultInvalid             = "invalid"
	ResultError               = "error"
)

// BookingMetrics exposes counters/histograms for appointment scheduling.
// A nil *BookingMetrics is valid and records nothing.
type BookingMetrics struct {
	bookingAttempts *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	slotQueries     *prometheus.CounterVec
	lockWait        prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Appointment booking attempts by result",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Successful appointment status transitions",
		}, []string{"from", "to"}),
		slotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment",
			Subsystem: "slots",
			Name:      "queries_total",
			Help:      "Slot listing requests by whether the doctor works that day",
		}, []string{"available"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "appointment",
			Subsystem: "booking",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for the per doctor and date booking lock",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingAttempts, m.transitions, m.slotQueries, m.lockWait)
	return m
}

func (m *BookingMetrics) ObserveBooking(result string) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(result).Inc()
}

func (m *BookingMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *BookingMetrics) ObserveSlotQuery(doctorAvailable bool) {
	if m == nil {
		return
	}
	label := "false"
	if doctorAvailable {
		label = "true"
	}
	m.slotQueries.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveLockWait(seconds float64) {
	if m == nil {
		return
	}
	m.lockWait.Observe(seconds)
}
