package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/sequence"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/platform/cache"
	"github.com/investpro/ledger/internal/settlement"
	"github.com/jackc/pgx/v5"
)

// WalletServiceImpl implements the WalletService interface
type WalletServiceImpl struct {
	db         settlement.TxRunner
	walletRepo wallet.Repository
	allocator  sequence.Allocator
	cache      *cache.Cache
	maxRetries int
	logger     *slog.Logger
}

// NewWalletService creates a new wallet service
func NewWalletService(
	logger *slog.Logger,
	db settlement.TxRunner,
	walletRepo wallet.Repository,
	allocator sequence.Allocator,
	balanceCache *cache.Cache,
	maxRetries int,
) WalletService {
	return &WalletServiceImpl{
		db:         db,
		walletRepo: walletRepo,
		allocator:  allocator,
		cache:      balanceCache,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// CreateWallet opens a wallet for the owner. The account number allocation
// and the wallet insert share one database transaction, so a failed insert
// never burns a number.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	var w *wallet.Wallet

	err := s.db.ExecuteTxWithRetry(ctx, s.maxRetries, func(tx pgx.Tx) error {
		accountNo, err := s.allocator.WithTx(tx).Next(ctx, sequence.CounterAccountNo)
		if err != nil {
			return err
		}

		w, err = wallet.New(ownerID, accountNo)
		if err != nil {
			return err
		}

		return s.walletRepo.WithTx(tx).Create(ctx, w)
	})
	if err != nil {
		var duplicateErr wallet.ErrDuplicateWallet
		if errors.As(err, &duplicateErr) {
			s.logger.Warn("Attempt to open a second wallet", "owner_id", ownerID.String())
			return nil, err
		}
		s.logger.Error("Failed to create wallet", "owner_id", ownerID.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Wallet opened",
		"wallet_id", w.ID.String(),
		"account_no", w.AccountNo,
	)
	return w, nil
}

// GetWallet retrieves a wallet by ID and refreshes the cached balance on the
// way through
func (s *WalletServiceImpl) GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	w, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.SetBalance(ctx, w.ID.String(), w.Balance); cacheErr != nil {
		s.logger.Warn("Failed to cache wallet balance", "wallet_id", w.ID.String(), "error", cacheErr)
	}
	return w, nil
}
