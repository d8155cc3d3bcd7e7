// Package metrics registers the ledger's Prometheus collectors on the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Ledger use cases by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	mutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_mutation_duration_seconds",
			Help:    "Duration of ledger use cases including retries",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2},
		},
		[]string{"operation"},
	)

	versionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_version_conflicts_total",
			Help: "Optimistic version conflicts that caused a unit of work to be retried",
		},
		[]string{"operation"},
	)

	settlementReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_settlement_reads_total",
			Help: "Settlement summary reads by cache result",
		},
		[]string{"cache"},
	)

	sharingsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_sharings_expired_total",
			Help: "Pending join requests moved to EXPIRED",
		},
	)
)

// ObserveMutation records the outcome and duration of one use case
func ObserveMutation(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	mutations.WithLabelValues(operation, status).Inc()
	mutationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// VersionConflict counts a retried attempt
func VersionConflict(operation string) {
	versionConflicts.WithLabelValues(operation).Inc()
}

// SettlementRead counts a settlement read served from cache (hit) or recomputed (miss)
func SettlementRead(hit bool) {
	if hit {
		settlementReads.WithLabelValues("hit").Inc()
		return
	}
	settlementReads.WithLabelValues("miss").Inc()
}

// SharingsExpired adds n expired join requests
func SharingsExpired(n int) {
	sharingsExpired.Add(float64(n))
}
