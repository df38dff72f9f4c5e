package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/jackc/pgx/v5"
)

// TxRunner runs a function inside one database transaction, retrying
// transient serialization and deadlock failures. *persistence.PostgresDB
// satisfies it.
type TxRunner interface {
	ExecuteTxWithRetry(ctx context.Context, maxRetries int, fn func(tx pgx.Tx) error) error
}

// DepositCommand asks the engine to record a deposit claim
type DepositCommand struct {
	WalletID      uuid.UUID
	Amount        int64 // Minor units, positive
	Source        transaction.SourceDetails
	CorrelationID string
}

// WithdrawalCommand asks the engine to reserve and record a withdrawal
type WithdrawalCommand struct {
	WalletID      uuid.UUID
	Amount        int64 // Minor units, positive
	Payout        transaction.PayoutDetails
	CorrelationID string
}

// InvestmentCommand asks the engine to purchase an investment plan
type InvestmentCommand struct {
	WalletID      uuid.UUID
	Price         int64 // Minor units, positive
	Plan          transaction.PlanRef
	CorrelationID string
}

// FinalizeCommand carries an administrator decision on a pending transaction
type FinalizeCommand struct {
	TransactionID uuid.UUID
	Outcome       shared.SettlementOutcome
	CorrelationID string
}

// Engine is the write side of the ledger. Every operation mutates the wallet
// balance, the transaction log, and the settlement outbox in one database
// transaction, so no committed state can disagree with another.
type Engine interface {
	// InitiateDeposit records a pending deposit claim. The balance does not
	// move until an administrator approves it.
	InitiateDeposit(ctx context.Context, cmd *DepositCommand) (*transaction.Transaction, error)

	// InitiateWithdrawal debits the wallet immediately, reserving the funds
	// while the withdrawal awaits moderation.
	InitiateWithdrawal(ctx context.Context, cmd *WithdrawalCommand) (*transaction.Transaction, error)

	// InitiateInvestment debits the plan price and records the purchase as
	// completed. Investments have no moderation step.
	InitiateInvestment(ctx context.Context, cmd *InvestmentCommand) (*transaction.Transaction, error)

	// FinalizeDeposit settles a pending deposit: approval credits the
	// wallet, rejection leaves the balance untouched.
	FinalizeDeposit(ctx context.Context, cmd *FinalizeCommand) (*transaction.Transaction, error)

	// FinalizeWithdrawal settles a pending withdrawal: approval only flips
	// the status, rejection refunds the reserved amount.
	FinalizeWithdrawal(ctx context.Context, cmd *FinalizeCommand) (*transaction.Transaction, error)
}
