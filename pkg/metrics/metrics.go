// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "axeria"

var (
	LedgerPostings = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_postings_total",
		Help:      "Ledger entries written, by balance field and direction.",
	}, []string{"field", "direction"})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_decisions_total",
		Help:      "Admin approvals and rejections, by kind and outcome.",
	}, []string{"kind", "outcome"})

	PriceFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fetch_failures_total",
		Help:      "Price ticker lookups that failed.",
	})

	SettledTrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_trades_settled_total",
		Help:      "Live trades closed by the settlement job, by outcome.",
	}, []string{"outcome"})
)

// ObservePosting counts one ledger entry.
func ObservePosting(field string, delta decimal.Decimal) {
	direction := "credit"
	if delta.IsNegative() {
		direction = "debit"
	}
	LedgerPostings.WithLabelValues(field, direction).Inc()
}

// HTTPRequests counts served requests by method, route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "http_requests_total",
	Help:      "HTTP requests served, by method, route and status code.",
}, []string{"method", "route", "status"})
