// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/settleup/internal/calculator"
)

const namespace = "settleup"

var (
	// RPCRequests counts finished RPCs by procedure and Connect code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rpc_requests_total",
		Help:      "Number of RPCs handled, by procedure and result code.",
	}, []string{"procedure", "code"})

	// RPCDuration observes RPC latency by procedure.
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rpc_duration_seconds",
		Help:      "RPC handling latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure"})

	// LedgerRecordsSkipped counts ledger rows left out of a balance
	// calculation because they reference unknown members or carry
	// non-finite amounts.
	LedgerRecordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_records_skipped_total",
		Help:      "Ledger records skipped during balance calculation, by kind.",
	}, []string{"kind"})

	// SimplifiedTransactions observes how many payments a simplification suggests.
	SimplifiedTransactions = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simplify_transactions",
		Help:      "Number of suggested payments per debt simplification.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	// SimplificationSavings counts payments avoided compared to every debtor
	// paying every creditor.
	SimplificationSavings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simplify_savings_total",
		Help:      "Payments saved by debt simplification.",
	})
)

// ObserveSkipped records a skipped ledger record.
func ObserveSkipped(s calculator.Skipped) {
	LedgerRecordsSkipped.WithLabelValues(string(s.Kind)).Inc()
}

// ObserveSimplification records the outcome of a debt simplification.
func ObserveSimplification(s calculator.Simplification) {
	SimplifiedTransactions.Observe(float64(len(s.Transactions)))
	SimplificationSavings.Add(float64(s.Savings))
}
