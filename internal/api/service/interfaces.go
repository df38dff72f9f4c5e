package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/investpro/ledger/internal/domain/wallet"
)

// WalletService defines the interface for wallet operations
type WalletService interface {
	// CreateWallet opens a wallet for the given owner, allocating its
	// account number. Returns ErrDuplicateWallet if the owner already has
	// one.
	CreateWallet(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error)

	// GetWallet retrieves a wallet by its ID.
	// Returns ErrWalletNotFound if the wallet doesn't exist.
	GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error)
}

// TransactionService defines the read-side queries over transactions
type TransactionService interface {
	// GetTransactionByID retrieves a transaction from the write side.
	// Returns ErrTransactionNotFound if it doesn't exist.
	GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// ListWalletHistory returns the paginated projection entries for a
	// wallet, newest first, plus the total count.
	ListWalletHistory(ctx context.Context, walletID uuid.UUID, page, perPage int) ([]*history.Entry, int64, error)

	// ListPendingByKind returns the global moderation queue for one kind,
	// oldest first, plus the total count.
	ListPendingByKind(ctx context.Context, kind shared.TransactionKind, page, perPage int) ([]*transaction.Transaction, int64, error)
}
