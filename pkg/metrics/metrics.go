// Package metrics is this coordinator's prometheus registry, in the shape
// of FredMunene-railway's internal/server/metrics.go.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry exposes counters per escrow status transition and a gauge for
// the active escrow count, backing the /metrics endpoint and the Health
// command's active_escrows field (SPEC_FULL.md supplemented feature 2).
type Registry struct {
	registry        *prometheus.Registry
	transitionTotal *prometheus.CounterVec
	ledgerCallTotal *prometheus.CounterVec
	activeEscrows   prometheus.Gauge
}

func New() *Registry {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrowd_transitions_total",
		Help: "Total number of escrow status transitions",
	}, []string{"status"})

	ledgerCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "escrowd_ledger_calls_total",
		Help: "Total ledger adapter calls by capability and outcome",
	}, []string{"capability", "outcome"})

	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "escrowd_active_escrows",
		Help: "Number of escrows not yet in a terminal status",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(transitions, ledgerCalls, active)

	return &Registry{
		registry:        r,
		transitionTotal: transitions,
		ledgerCallTotal: ledgerCalls,
		activeEscrows:   active,
	}
}

func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Registry) IncTransition(status string) {
	m.transitionTotal.WithLabelValues(status).Inc()
}

func (m *Registry) IncLedgerCall(capability, outcome string) {
	m.ledgerCallTotal.WithLabelValues(capability, outcome).Inc()
}

func (m *Registry) SetActiveEscrows(n int) {
	m.activeEscrows.Set(float64(n))
}
