package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ledger
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_events_total",
			Help: "Total events appended to the ledger",
		},
		[]string{"event_type"},
	)
	ResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_resets_total",
			Help: "Total ledger resets",
		},
	)
	SummariesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_summaries_total",
			Help: "Total summaries computed",
		},
	)
	ReduceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_reduce_duration_seconds",
			Help:    "Time spent folding the event log into a summary.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)
	AvailableCredit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_available_credit",
			Help: "Available credit in the last computed summary",
		},
	)
	PayableBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_payable_balance",
			Help: "Payable balance in the last computed summary",
		},
	)
	PendingTransactions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_pending_transactions",
			Help: "Open holds in the last computed summary",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			EventsTotal,
			ResetsTotal,
			SummariesTotal,
			ReduceDuration,
			AvailableCredit,
			PayableBalance,
			PendingTransactions,
			WorkerQueueDepth,
		)
	})
}
