package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
)

// Entry is the read-model projection of one transaction. Entries are built
// from settlement events by the projector and upserted by transaction ID, so
// the finalization event for a transaction replaces the initiation entry
// rather than appearing next to it.
type Entry struct {
	TransactionID uuid.UUID                `json:"transaction_id" bson:"transaction_id"`
	WalletID      uuid.UUID                `json:"wallet_id" bson:"wallet_id"`
	Kind          shared.TransactionKind   `json:"kind" bson:"kind"`
	Amount        int64                    `json:"amount" bson:"amount"` // Minor units, signed per kind
	Status        shared.TransactionStatus `json:"status" bson:"status"`
	BalanceAfter  int64                    `json:"balance_after" bson:"balance_after"`
	Rail          shared.Rail              `json:"rail,omitempty" bson:"rail,omitempty"`
	HolderName    string                   `json:"holder_name,omitempty" bson:"holder_name,omitempty"`
	AccountNumber string                   `json:"account_number,omitempty" bson:"account_number,omitempty"`
	Reference     string                   `json:"reference,omitempty" bson:"reference,omitempty"`
	BankName      string                   `json:"bank_name,omitempty" bson:"bank_name,omitempty"`
	PlanID        string                   `json:"plan_id,omitempty" bson:"plan_id,omitempty"`
	PlanName      string                   `json:"plan_name,omitempty" bson:"plan_name,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at" bson:"created_at"`
	SettledAt     *time.Time               `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// EntryFromEvent builds the projection entry for a settlement event
func EntryFromEvent(event *shared.SettlementEvent) *Entry {
	return &Entry{
		TransactionID: event.TransactionID,
		WalletID:      event.WalletID,
		Kind:          event.Kind,
		Amount:        event.Amount,
		Status:        event.Status,
		BalanceAfter:  event.BalanceAfter,
		Rail:          event.Rail,
		HolderName:    event.HolderName,
		AccountNumber: event.AccountNumber,
		Reference:     event.Reference,
		BankName:      event.BankName,
		PlanID:        event.PlanID,
		PlanName:      event.PlanName,
		CorrelationID: event.CorrelationID,
		CreatedAt:     event.CreatedAt,
		SettledAt:     event.SettledAt,
	}
}

// PlanHolding is one plan annotation attached to a wallet, written when an
// investment settles
type PlanHolding struct {
	WalletID   uuid.UUID `json:"wallet_id" bson:"wallet_id"`
	PlanID     string    `json:"plan_id" bson:"plan_id"`
	PlanName   string    `json:"plan_name" bson:"plan_name"`
	Price      int64     `json:"price" bson:"price"` // Minor units, positive
	AcquiredAt time.Time `json:"acquired_at" bson:"acquired_at"`
}

// WalletActivity holds per-kind sums of a wallet's completed movements over
// some window. Deposited, Invested and Withdrawn are absolute minor-unit
// amounts. Earned sums only the positive amounts of deposits and
// investments, so plan purchases (stored negative) contribute nothing.
type WalletActivity struct {
	Deposited int64 `json:"deposited" bson:"deposited"`
	Invested  int64 `json:"invested" bson:"invested"`
	Withdrawn int64 `json:"withdrawn" bson:"withdrawn"`
	Earned    int64 `json:"earned" bson:"earned"`
}

// GlobalTotals aggregates completed movement volume across all wallets,
// plus the size of each moderation queue
type GlobalTotals struct {
	Deposited          int64 `json:"deposited" bson:"deposited"`
	Withdrawn          int64 `json:"withdrawn" bson:"withdrawn"`
	Invested           int64 `json:"invested" bson:"invested"`
	PendingDeposits    int64 `json:"pending_deposits" bson:"pending_deposits"`
	PendingWithdrawals int64 `json:"pending_withdrawals" bson:"pending_withdrawals"`
}
