package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	transitions   *prometheus.CounterVec
	commissions   prometheus.Counter
	commissionSum prometheus.Counter
	slotConflicts prometheus.Counter
	httpDuration  *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clickservice",
			Name:      "request_transitions_total",
			Help:      "Service request state transitions by target state.",
		}, []string{"state"}),
		commissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clickservice",
			Name:      "commissions_recorded_total",
			Help:      "Commission records created.",
		}),
		commissionSum: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clickservice",
			Name:      "commission_amount_total",
			Help:      "Sum of recorded commission amounts.",
		}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clickservice",
			Name:      "slot_reservation_conflicts_total",
			Help:      "Slot reservations rejected because the slot was taken or overlapped.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clickservice",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.transitions, m.commissions, m.commissionSum, m.slotConflicts, m.httpDuration)
	return m
}

func (m *Metrics) Transition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) Commission(amount float64) {
	if m == nil {
		return
	}
	m.commissions.Inc()
	if amount > 0 {
		m.commissionSum.Add(amount)
	}
}

func (m *Metrics) SlotConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
