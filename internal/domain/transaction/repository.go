package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

// Repository manages the append-style transaction log on the write side.
// Records are only ever inserted or settled; nothing is deleted.
type Repository interface {
	Create(ctx context.Context, txn *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// LockForSettlement acquires a row lock on the transaction for the
	// duration of the surrounding database transaction, so two concurrent
	// finalize calls serialize and the loser observes a terminal status.
	LockForSettlement(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// UpdateStatus persists the terminal status and settlement timestamp
	// produced by Transaction.Settle.
	UpdateStatus(ctx context.Context, txn *Transaction) error

	GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error)

	// GetPendingByKind lists the global moderation queue for one kind,
	// oldest first.
	GetPendingByKind(ctx context.Context, kind shared.TransactionKind, limit, offset int) ([]*Transaction, error)
	CountPendingByKind(ctx context.Context, kind shared.TransactionKind) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.TransactionID.String()
}

// Is implements errors.Is; a target with a nil ID matches any instance
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrNotPending indicates a finalize attempt on a transaction that already
// reached a terminal state
type ErrNotPending struct {
	TransactionID uuid.UUID
	Status        shared.TransactionStatus
}

func (e ErrNotPending) Error() string {
	return "transaction " + e.TransactionID.String() + " is not pending: " + string(e.Status)
}

// Is implements errors.Is; a target with a nil ID matches any instance
func (e ErrNotPending) Is(target error) bool {
	t, ok := target.(ErrNotPending)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrWrongKind indicates a finalize command addressed to a transaction of a
// different kind
type ErrWrongKind struct {
	TransactionID uuid.UUID
	Want          shared.TransactionKind
	Got           shared.TransactionKind
}

func (e ErrWrongKind) Error() string {
	return "transaction " + e.TransactionID.String() + " is " + string(e.Got) + ", not " + string(e.Want)
}

// Is implements errors.Is; a target with a nil ID matches any instance
func (e ErrWrongKind) Is(target error) bool {
	t, ok := target.(ErrWrongKind)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrInvalidOutcome indicates an unknown settlement outcome value
type ErrInvalidOutcome struct {
	Outcome shared.SettlementOutcome
}

func (e ErrInvalidOutcome) Error() string {
	return "invalid settlement outcome: " + string(e.Outcome)
}
