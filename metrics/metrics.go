// Package metrics exposes Prometheus counters for ledger operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	opsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomrental_ledger_transactions_applied_total",
			Help: "Ledger transactions committed, by operation.",
		},
		[]string{"op"},
	)
	opsAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomrental_ledger_transactions_aborted_total",
			Help: "Ledger transactions aborted with no state change, by operation.",
		},
		[]string{"op"},
	)
)

// Observer records one ledger operation outcome. Wire it with
// ledger.WithObserver.
func Observer(op string, err error) {
	if err != nil {
		opsAborted.WithLabelValues(op).Inc()
		return
	}
	opsApplied.WithLabelValues(op).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
