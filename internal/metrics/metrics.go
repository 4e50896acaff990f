// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ledger counts monetary movements. A nil *Ledger is valid and records nothing.
type Ledger struct {
	registry *prometheus.Registry

	depositsInitiated  prometheus.Counter
	settlementOutcomes *prometheus.CounterVec
	transfers          *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

// New registers the ledger collectors, plus Go runtime collectors, on a
// dedicated registry.
func New() *Ledger {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Ledger{
		registry: reg,
		depositsInitiated: factory.NewCounter(prometheus.CounterOpts{
			Name: "wallet_deposits_initiated_total",
			Help: "Deposits handed off to the payment gateway",
		}),
		settlementOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_settlement_outcomes_total",
			Help: "Webhook settlement results by outcome",
		}, []string{"outcome"}),
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_transfers_total",
			Help: "Transfer attempts by result",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_http_requests_total",
			Help: "HTTP requests by route pattern and status class",
		}, []string{"route", "code"}),
	}
}

// DepositInitiated records a successful gateway hand-off.
func (l *Ledger) DepositInitiated() {
	if l == nil {
		return
	}
	l.depositsInitiated.Inc()
}

// Settlement records a webhook outcome such as "settled" or "duplicate".
func (l *Ledger) Settlement(outcome string) {
	if l == nil {
		return
	}
	l.settlementOutcomes.WithLabelValues(outcome).Inc()
}

// Transfer records a transfer result such as "success" or "insufficient_funds".
func (l *Ledger) Transfer(result string) {
	if l == nil {
		return
	}
	l.transfers.WithLabelValues(result).Inc()
}

// HTTPRequest records a served request.
func (l *Ledger) HTTPRequest(route, code string) {
	if l == nil {
		return
	}
	l.httpRequests.WithLabelValues(route, code).Inc()
}

// Handler exposes the registry in the Prometheus text format. A nil Ledger
// serves 404.
func (l *Ledger) Handler() http.Handler {
	if l == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry. Used by tests.
func (l *Ledger) Registry() *prometheus.Registry {
	if l == nil {
		return nil
	}
	return l.registry
}
