package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for conversation turns and
// the booking backend calls they trigger.
type DialogueMetrics struct {
	turnsTotal     *prometheus.CounterVec
	backendTotal   *prometheus.CounterVec
	turnLatency    *prometheus.HistogramVec
	bookingsTotal  prometheus.Counter
	activeSessions prometheus.Gauge
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delane",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed customer turns",
		}, []string{"intent", "flow"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delane",
			Subsystem: "dialogue",
			Name:      "backend_calls_total",
			Help:      "Booking backend calls by operation and outcome",
		}, []string{"op", "status"}),
		turnLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "delane",
			Subsystem: "dialogue",
			Name:      "turn_latency_seconds",
			Help:      "Latency of a full dialogue turn",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		bookingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delane",
			Subsystem: "dialogue",
			Name:      "bookings_completed_total",
			Help:      "Appointments booked through the conversational funnel",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "delane",
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.backendTotal, m.turnLatency, m.bookingsTotal, m.activeSessions)
	return m
}

func (m *DialogueMetrics) ObserveTurn(intent, flow string, seconds float64) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent, flow).Inc()
	m.turnLatency.WithLabelValues(intent).Observe(seconds)
}

// ObserveBackend records one backend call; status is "ok" or an error kind.
func (m *DialogueMetrics) ObserveBackend(op, status string) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(op, status).Inc()
}

func (m *DialogueMetrics) ObserveBooking() {
	if m == nil {
		return
	}
	m.bookingsTotal.Inc()
}

func (m *DialogueMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
