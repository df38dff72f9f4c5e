package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
)

// TransactionServiceImpl implements the TransactionService interface.
// Point lookups and the moderation queue read the write side; the per-wallet
// history comes from the projection.
type TransactionServiceImpl struct {
	txnRepo     transaction.Repository
	historyRepo history.Repository
	logger      *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(logger *slog.Logger, txnRepo transaction.Repository, historyRepo history.Repository) TransactionService {
	return &TransactionServiceImpl{
		txnRepo:     txnRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetTransactionByID retrieves a transaction from the write side
func (s *TransactionServiceImpl) GetTransactionByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.txnRepo.GetByID(ctx, id)
}

// ListWalletHistory retrieves the paginated projection entries for a wallet
// Returns entries, total count, and any error
func (s *TransactionServiceImpl) ListWalletHistory(ctx context.Context, walletID uuid.UUID, page, perPage int) ([]*history.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.historyRepo.GetByWalletID(ctx, walletID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.historyRepo.CountByWalletID(ctx, walletID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListPendingByKind retrieves the paginated moderation queue for one kind
// Returns transactions, total count, and any error
func (s *TransactionServiceImpl) ListPendingByKind(ctx context.Context, kind shared.TransactionKind, page, perPage int) ([]*transaction.Transaction, int64, error) {
	offset := (page - 1) * perPage

	pending, err := s.txnRepo.GetPendingByKind(ctx, kind, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txnRepo.CountPendingByKind(ctx, kind)
	if err != nil {
		return nil, 0, err
	}

	return pending, total, nil
}
