package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidAccountNo  = errors.New("account number must be positive")
)

// Wallet is the balance-holding account owned by one user. The wallet ID is
// the owning user's identity; the account number is the human-readable
// identifier issued by the sequence allocator.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	AccountNo int64     `json:"account_no"`
	Balance   int64     `json:"balance"` // Stored in minor units
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a wallet with a zero balance for the given owner identity
func New(ownerID uuid.UUID, accountNo int64) (*Wallet, error) {
	if accountNo <= 0 {
		return nil, ErrInvalidAccountNo
	}

	now := time.Now()
	return &Wallet{
		ID:        ownerID,
		AccountNo: accountNo,
		Balance:   0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Credit adds the specified amount to the wallet balance
func (w *Wallet) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	w.Balance += amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// Debit subtracts the specified amount from the wallet balance.
// The balance may never go below zero.
func (w *Wallet) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if w.Balance < amount {
		return ErrInsufficientFunds
	}

	w.Balance -= amount
	w.UpdatedAt = time.Now()
	w.Version++
	return nil
}

// CanDebit checks whether the wallet holds at least the given amount
func (w *Wallet) CanDebit(amount int64) bool {
	return w.Balance >= amount
}
