package settlement

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsInitiated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_initiated_total",
			Help: "Number of transactions recorded by the settlement engine, by kind.",
		},
		[]string{"kind"},
	)

	transactionsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_finalized_total",
			Help: "Number of pending transactions settled by an administrator decision, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	initiationsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_initiations_rejected_total",
			Help: "Number of initiation requests rejected before reaching the database, by kind and reason.",
		},
		[]string{"kind", "reason"},
	)
)

const (
	rejectReasonLimits       = "limits"
	rejectReasonRailDisabled = "rail_disabled"
	rejectReasonDisabled     = "disabled"
	rejectReasonInvalid      = "invalid"
)
