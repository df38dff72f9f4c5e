package shared

// TransactionKind defines the money-movement kinds recorded in the ledger
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal TransactionKind = "WITHDRAWAL"
	TransactionKindInvestment TransactionKind = "INVESTMENT"
)

// TransactionStatus defines transaction settlement states
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// SettlementOutcome defines the administrator decision on a pending transaction
type SettlementOutcome string

const (
	SettlementOutcomeApprove SettlementOutcome = "APPROVE"
	SettlementOutcomeReject  SettlementOutcome = "REJECT"
)

// Rail identifies an external payment channel. Rails are enabled and disabled
// independently per direction through configuration; the engine never talks to
// the channel itself, it only records claimed references.
type Rail string

const (
	RailJazzCash  Rail = "JAZZCASH"
	RailEasypaisa Rail = "EASYPAISA"
	RailBank      Rail = "BANK"
)

// OutboxStatus defines settlement event publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
