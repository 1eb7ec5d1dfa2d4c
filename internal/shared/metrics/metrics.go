package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry      *prometheus.Registry
	transitions   *prometheus.CounterVec
	rejectedMoves *prometheus.CounterVec
	balanceClamps *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leave",
			Name:      "transitions_total",
			Help:      "Applied leave request status transitions.",
		}, []string{"from", "to"}),
		rejectedMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leave",
			Name:      "invalid_transitions_total",
			Help:      "Status transitions refused by the lifecycle engine.",
		}, []string{"from", "to"}),
		balanceClamps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leave",
			Name:      "balance_clamped_total",
			Help:      "Balance charges capped at the quota total.",
		}, []string{"leave_type"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.rejectedMoves,
		m.balanceClamps,
	)
	return m
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) InvalidTransition(from, to string) {
	if m == nil {
		return
	}
	m.rejectedMoves.WithLabelValues(from, to).Inc()
}

func (m *Metrics) BalanceClamped(leaveType string) {
	if m == nil {
		return
	}
	m.balanceClamps.WithLabelValues(leaveType).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
