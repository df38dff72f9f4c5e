package shared

import (
	"time"

	"github.com/google/uuid"
)

// SettlementEvent is published to Kafka after a ledger mutation commits.
// It carries the full transaction snapshot plus the wallet balance produced
// by the commit, so the read-model projector never has to query the write
// side. One event is emitted per committed initiation or finalization.
type SettlementEvent struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	WalletID      uuid.UUID         `json:"wallet_id"`
	Kind          TransactionKind   `json:"kind"`
	Amount        int64             `json:"amount"` // Minor units, signed per kind
	Status        TransactionStatus `json:"status"`
	BalanceAfter  int64             `json:"balance_after"`
	Rail          Rail              `json:"rail,omitempty"`
	HolderName    string            `json:"holder_name,omitempty"`
	AccountNumber string            `json:"account_number,omitempty"`
	Reference     string            `json:"reference,omitempty"`
	BankName      string            `json:"bank_name,omitempty"`
	PlanID        string            `json:"plan_id,omitempty"`
	PlanName      string            `json:"plan_name,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	SettledAt     *time.Time        `json:"settled_at,omitempty"`
}
