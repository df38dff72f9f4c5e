package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository manages the read-model projection. Upsert semantics make the
// projector idempotent under Kafka's at-least-once delivery.
type Repository interface {
	// Upsert writes the entry keyed by transaction ID, replacing any prior
	// projection of the same transaction.
	Upsert(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Entry, error)
	GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)

	// GetWalletActivity sums completed movements for one wallet since the
	// given instant.
	GetWalletActivity(ctx context.Context, walletID uuid.UUID, since time.Time) (*WalletActivity, error)

	// GetGlobalTotals aggregates completed volume and moderation queue sizes
	// across all wallets.
	GetGlobalTotals(ctx context.Context) (*GlobalTotals, error)

	// AddPlanHolding records a plan annotation for a wallet.
	AddPlanHolding(ctx context.Context, holding *PlanHolding) error
	GetPlanHoldings(ctx context.Context, walletID uuid.UUID) ([]*PlanHolding, error)
}

// ErrEntryNotFound indicates missing projection entry
type ErrEntryNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "history entry not found: " + e.TransactionID.String()
}

// Is implements errors.Is; a target with a nil ID matches any instance
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
