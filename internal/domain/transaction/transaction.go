package transaction

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
)

// Common errors
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrMissingRail       = errors.New("payment rail is required")
	ErrMissingHolderName = errors.New("account holder name is required")
	ErrMissingAccountNo  = errors.New("account number is required")
	ErrMissingReference  = errors.New("deposit reference is required")
	ErrMissingBankName   = errors.New("bank name is required for bank withdrawals")
	ErrMissingPlan       = errors.New("investment plan is required")
)

// SourceDetails are the claimed external-account details attached to a
// deposit: where the user says the money came from and the reference (TID)
// of the transfer they performed. Informational only; never verified here.
type SourceDetails struct {
	Rail          shared.Rail
	HolderName    string
	AccountNumber string
	Reference     string
}

// PayoutDetails describe where a withdrawal should be paid out
type PayoutDetails struct {
	Rail          shared.Rail
	HolderName    string
	AccountNumber string
	BankName      string // Only for the bank rail
}

// PlanRef identifies the investment plan purchased by an investment debit
type PlanRef struct {
	PlanID   string
	PlanName string
}

// Transaction is one recorded money-movement intent and its outcome.
// Immutable once created except for the status field and the one-time
// settlement timestamp. The kind discriminates which detail fields are set;
// constructors validate them so a loosely populated record cannot exist.
type Transaction struct {
	ID            uuid.UUID                `json:"id"`
	WalletID      uuid.UUID                `json:"wallet_id"`
	Kind          shared.TransactionKind   `json:"kind"`
	Amount        int64                    `json:"amount"` // Minor units; deposits +N, withdrawals and investments -N
	Status        shared.TransactionStatus `json:"status"`
	Rail          shared.Rail              `json:"rail,omitempty"`
	HolderName    string                   `json:"holder_name,omitempty"`
	AccountNumber string                   `json:"account_number,omitempty"`
	Reference     string                   `json:"reference,omitempty"`
	BankName      string                   `json:"bank_name,omitempty"`
	PlanID        string                   `json:"plan_id,omitempty"`
	PlanName      string                   `json:"plan_name,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	SettledAt     *time.Time               `json:"settled_at,omitempty"`
}

// NewDeposit creates a pending deposit claim. The amount is stored positive
// and is not applied to any balance until an administrator approves it.
func NewDeposit(walletID uuid.UUID, amount int64, src SourceDetails) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if src.Rail == "" {
		return nil, ErrMissingRail
	}
	if src.HolderName == "" {
		return nil, ErrMissingHolderName
	}
	if src.AccountNumber == "" {
		return nil, ErrMissingAccountNo
	}
	if src.Reference == "" {
		return nil, ErrMissingReference
	}

	return &Transaction{
		ID:            uuid.New(),
		WalletID:      walletID,
		Kind:          shared.TransactionKindDeposit,
		Amount:        amount,
		Status:        shared.TransactionStatusPending,
		Rail:          src.Rail,
		HolderName:    src.HolderName,
		AccountNumber: src.AccountNumber,
		Reference:     src.Reference,
		CreatedAt:     time.Now(),
	}, nil
}

// NewWithdrawal creates a pending withdrawal. The amount is stored negative;
// the reservation debit happens in the same atomic unit as this record.
func NewWithdrawal(walletID uuid.UUID, amount int64, dst PayoutDetails) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if dst.Rail == "" {
		return nil, ErrMissingRail
	}
	if dst.HolderName == "" {
		return nil, ErrMissingHolderName
	}
	if dst.AccountNumber == "" {
		return nil, ErrMissingAccountNo
	}
	if dst.Rail == shared.RailBank && dst.BankName == "" {
		return nil, ErrMissingBankName
	}

	return &Transaction{
		ID:            uuid.New(),
		WalletID:      walletID,
		Kind:          shared.TransactionKindWithdrawal,
		Amount:        -amount,
		Status:        shared.TransactionStatusPending,
		Rail:          dst.Rail,
		HolderName:    dst.HolderName,
		AccountNumber: dst.AccountNumber,
		BankName:      dst.BankName,
		CreatedAt:     time.Now(),
	}, nil
}

// NewInvestment creates a completed investment debit. Investments have no
// moderation step; they are terminal at creation.
func NewInvestment(walletID uuid.UUID, planPrice int64, plan PlanRef) (*Transaction, error) {
	if planPrice <= 0 {
		return nil, ErrInvalidAmount
	}
	if plan.PlanID == "" || plan.PlanName == "" {
		return nil, ErrMissingPlan
	}

	now := time.Now()
	return &Transaction{
		ID:        uuid.New(),
		WalletID:  walletID,
		Kind:      shared.TransactionKindInvestment,
		Amount:    -planPrice,
		Status:    shared.TransactionStatusCompleted,
		PlanID:    plan.PlanID,
		PlanName:  plan.PlanName,
		CreatedAt: now,
		SettledAt: &now,
	}, nil
}

// Settle moves a pending transaction to its terminal state. Calling it on a
// transaction that already left PENDING is an error, never a silent no-op:
// double-finalization must surface in the caller.
func (t *Transaction) Settle(outcome shared.SettlementOutcome) error {
	if t.Status != shared.TransactionStatusPending {
		return ErrNotPending{TransactionID: t.ID, Status: t.Status}
	}

	switch outcome {
	case shared.SettlementOutcomeApprove:
		t.Status = shared.TransactionStatusCompleted
	case shared.SettlementOutcomeReject:
		t.Status = shared.TransactionStatusFailed
	default:
		return ErrInvalidOutcome{Outcome: outcome}
	}

	now := time.Now()
	t.SettledAt = &now
	return nil
}

// IsTerminal reports whether the transaction reached a final state
func (t *Transaction) IsTerminal() bool {
	return t.Status == shared.TransactionStatusCompleted || t.Status == shared.TransactionStatusFailed
}
