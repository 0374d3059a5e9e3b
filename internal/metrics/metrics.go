package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the agent's Prometheus collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	holdsStarted      prometheus.Counter
	holdsEnded        *prometheus.CounterVec
	warningsFired     *prometheus.CounterVec
	selectionRejected *prometheus.CounterVec
	apiCalls          *prometheus.CounterVec
	apiLatency        *prometheus.HistogramVec
	secondsRemaining  prometheus.Gauge
	selectedSeats     prometheus.Gauge
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		holdsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "seathold_holds_started_total",
			Help: "Holds installed in the store",
		}),
		holdsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seathold_holds_ended_total",
			Help: "Holds removed from the store by reason",
		}, []string{"reason"}),
		warningsFired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seathold_warnings_fired_total",
			Help: "Warning events fired by level",
		}, []string{"level"}),
		selectionRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seathold_selection_rejections_total",
			Help: "Seat toggles rejected by reason",
		}, []string{"reason"}),
		apiCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "seathold_api_calls_total",
			Help: "Calls to the seat reservation API",
		}, []string{"operation", "status"}),
		apiLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "seathold_api_call_duration_seconds",
			Help:    "Latency of calls to the seat reservation API",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, []string{"operation"}),
		secondsRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seathold_hold_seconds_remaining",
			Help: "Seconds left on the current hold",
		}),
		selectedSeats: factory.NewGauge(prometheus.GaugeOpts{
			Name: "seathold_selected_seats",
			Help: "Seats in the pre-hold selection",
		}),
	}
}

func (m *Metrics) HoldStarted() {
	if m == nil {
		return
	}
	m.holdsStarted.Inc()
}

func (m *Metrics) HoldEnded(reason string) {
	if m == nil {
		return
	}
	m.holdsEnded.WithLabelValues(reason).Inc()
	m.secondsRemaining.Set(0)
}

func (m *Metrics) WarningFired(level string) {
	if m == nil {
		return
	}
	m.warningsFired.WithLabelValues(level).Inc()
}

func (m *Metrics) SelectionRejected(reason string) {
	if m == nil {
		return
	}
	m.selectionRejected.WithLabelValues(reason).Inc()
}

// APICall records one call to the seat authority
func (m *Metrics) APICall(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.apiCalls.WithLabelValues(operation, status).Inc()
	m.apiLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetSecondsRemaining(seconds int) {
	if m == nil {
		return
	}
	m.secondsRemaining.Set(float64(seconds))
}

func (m *Metrics) SetSelectedSeats(n int) {
	if m == nil {
		return
	}
	m.selectedSeats.Set(float64(n))
}
