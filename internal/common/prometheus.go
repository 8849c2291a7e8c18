package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal             = "http_requests_total"
	HTTPRequestDurationSeconds   = "http_request_duration_seconds"
	BlockchainTransactionFailure = "blockchain_transaction_failure"
	RewardClaimTotal             = "reward_claim_total"
	LedgerWriteFailure           = "ledger_write_failure"
	ConfirmationDurationSeconds  = "confirmation_duration_seconds"
	ReconciledTransactionTotal   = "reconciled_transaction_total"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"method", "status_code"}),
		BlockchainTransactionFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: BlockchainTransactionFailure,
			Help: "Count of all blockchain transaction failure",
		}, []string{"method"}),
		RewardClaimTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardClaimTotal,
			Help: "Count of reward claims by outcome",
		}, []string{"outcome"}),
		LedgerWriteFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerWriteFailure,
			Help: "Count of ledger writes which failed after a chain operation",
		}, []string{"operation"}),
		ReconciledTransactionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: ReconciledTransactionTotal,
			Help: "Count of pending transactions resolved by the reconciler",
		}, []string{"kind", "status"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"method", "status_code"}),
		ConfirmationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    ConfirmationDurationSeconds,
			Help:    "Duration of confirmation watches",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 240},
		}, []string{"kind", "state"}),
	}
)
