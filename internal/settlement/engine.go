// Package settlement implements the write side of the ledger: initiating
// deposits, withdrawals and investment purchases, and applying administrator
// decisions to the pending ones. Each operation runs as one database
// transaction that moves the wallet balance, appends the transaction record
// and enqueues the settlement event together.
package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/investpro/ledger/internal/config"
	"github.com/investpro/ledger/internal/domain/outbox"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/platform/cache"
	"github.com/jackc/pgx/v5"
)

// EngineImpl implements the Engine interface
type EngineImpl struct {
	db         TxRunner
	walletRepo wallet.Repository
	txnRepo    transaction.Repository
	outboxRepo outbox.Repository
	cache      *cache.Cache
	limits     config.LedgerConfig
	rails      config.RailsConfig
	logger     *slog.Logger
}

// NewEngine creates a new settlement engine
func NewEngine(
	logger *slog.Logger,
	db TxRunner,
	walletRepo wallet.Repository,
	txnRepo transaction.Repository,
	outboxRepo outbox.Repository,
	balanceCache *cache.Cache,
	limits config.LedgerConfig,
	rails config.RailsConfig,
) Engine {
	return &EngineImpl{
		db:         db,
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		outboxRepo: outboxRepo,
		cache:      balanceCache,
		limits:     limits,
		rails:      rails,
		logger:     logger,
	}
}

// InitiateDeposit records a pending deposit claim. The wallet row is locked
// only to snapshot the balance for the settlement event; the balance itself
// does not move until approval.
func (e *EngineImpl) InitiateDeposit(ctx context.Context, cmd *DepositCommand) (*transaction.Transaction, error) {
	logger := e.withCorrelation(cmd.CorrelationID)

	if cmd.Amount < e.limits.MinDeposit || cmd.Amount > e.limits.MaxDeposit {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindDeposit), rejectReasonLimits).Inc()
		return nil, ErrAmountOutOfBounds{
			Kind:   shared.TransactionKindDeposit,
			Amount: cmd.Amount,
			Min:    e.limits.MinDeposit,
			Max:    e.limits.MaxDeposit,
		}
	}
	if err := e.depositRailEnabled(cmd.Source.Rail); err != nil {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindDeposit), rejectReasonRailDisabled).Inc()
		return nil, err
	}

	txn, err := transaction.NewDeposit(cmd.WalletID, cmd.Amount, cmd.Source)
	if err != nil {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindDeposit), rejectReasonInvalid).Inc()
		return nil, err
	}

	err = e.db.ExecuteTxWithRetry(ctx, e.limits.TxMaxRetries, func(tx pgx.Tx) error {
		w, lockErr := e.walletRepo.WithTx(tx).LockForUpdate(ctx, cmd.WalletID)
		if lockErr != nil {
			return lockErr
		}

		// The record timestamp is taken behind the wallet lock so the
		// per-wallet history order matches commit order.
		txn.CreatedAt = time.Now()
		if createErr := e.txnRepo.WithTx(tx).Create(ctx, txn); createErr != nil {
			return createErr
		}

		return e.enqueueEvent(ctx, tx, txn, w.Balance, cmd.CorrelationID)
	})
	if err != nil {
		logger.Error("Failed to initiate deposit",
			"wallet_id", cmd.WalletID.String(),
			"amount", cmd.Amount,
			"error", err,
		)
		return nil, err
	}

	transactionsInitiated.WithLabelValues(string(shared.TransactionKindDeposit)).Inc()
	logger.Info("Deposit claim recorded",
		"transaction_id", txn.ID.String(),
		"wallet_id", cmd.WalletID.String(),
		"amount", cmd.Amount,
		"rail", string(cmd.Source.Rail),
	)
	return txn, nil
}

// InitiateWithdrawal reserves the requested amount by debiting the wallet in
// the same transaction that records the pending withdrawal. A wallet can
// never promise more than it holds.
func (e *EngineImpl) InitiateWithdrawal(ctx context.Context, cmd *WithdrawalCommand) (*transaction.Transaction, error) {
	logger := e.withCorrelation(cmd.CorrelationID)

	if cmd.Amount < e.limits.MinWithdrawal || cmd.Amount > e.limits.MaxWithdrawal {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindWithdrawal), rejectReasonLimits).Inc()
		return nil, ErrAmountOutOfBounds{
			Kind:   shared.TransactionKindWithdrawal,
			Amount: cmd.Amount,
			Min:    e.limits.MinWithdrawal,
			Max:    e.limits.MaxWithdrawal,
		}
	}
	if err := e.withdrawalRailEnabled(cmd.Payout.Rail); err != nil {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindWithdrawal), rejectReasonRailDisabled).Inc()
		return nil, err
	}

	txn, err := transaction.NewWithdrawal(cmd.WalletID, cmd.Amount, cmd.Payout)
	if err != nil {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindWithdrawal), rejectReasonInvalid).Inc()
		return nil, err
	}

	err = e.db.ExecuteTxWithRetry(ctx, e.limits.TxMaxRetries, func(tx pgx.Tx) error {
		walletRepoTx := e.walletRepo.WithTx(tx)
		w, lockErr := walletRepoTx.LockForUpdate(ctx, cmd.WalletID)
		if lockErr != nil {
			return lockErr
		}

		if debitErr := w.Debit(cmd.Amount); debitErr != nil {
			return debitErr
		}
		if updateErr := walletRepoTx.Update(ctx, w); updateErr != nil {
			return updateErr
		}

		txn.CreatedAt = time.Now()
		if createErr := e.txnRepo.WithTx(tx).Create(ctx, txn); createErr != nil {
			return createErr
		}

		return e.enqueueEvent(ctx, tx, txn, w.Balance, cmd.CorrelationID)
	})
	if err != nil {
		logger.Error("Failed to initiate withdrawal",
			"wallet_id", cmd.WalletID.String(),
			"amount", cmd.Amount,
			"error", err,
		)
		return nil, err
	}

	e.cache.InvalidateBalance(ctx, cmd.WalletID.String())
	transactionsInitiated.WithLabelValues(string(shared.TransactionKindWithdrawal)).Inc()
	logger.Info("Withdrawal reserved",
		"transaction_id", txn.ID.String(),
		"wallet_id", cmd.WalletID.String(),
		"amount", cmd.Amount,
		"rail", string(cmd.Payout.Rail),
	)
	return txn, nil
}

// InitiateInvestment debits the plan price and records the purchase in a
// terminal COMPLETED state. There is no moderation step to undo it.
func (e *EngineImpl) InitiateInvestment(ctx context.Context, cmd *InvestmentCommand) (*transaction.Transaction, error) {
	logger := e.withCorrelation(cmd.CorrelationID)

	if !e.rails.InvestmentsEnabled {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindInvestment), rejectReasonDisabled).Inc()
		return nil, ErrInvestmentsDisabled
	}

	txn, err := transaction.NewInvestment(cmd.WalletID, cmd.Price, cmd.Plan)
	if err != nil {
		initiationsRejected.WithLabelValues(string(shared.TransactionKindInvestment), rejectReasonInvalid).Inc()
		return nil, err
	}

	err = e.db.ExecuteTxWithRetry(ctx, e.limits.TxMaxRetries, func(tx pgx.Tx) error {
		walletRepoTx := e.walletRepo.WithTx(tx)
		w, lockErr := walletRepoTx.LockForUpdate(ctx, cmd.WalletID)
		if lockErr != nil {
			return lockErr
		}

		if debitErr := w.Debit(cmd.Price); debitErr != nil {
			return debitErr
		}
		if updateErr := walletRepoTx.Update(ctx, w); updateErr != nil {
			return updateErr
		}

		now := time.Now()
		txn.CreatedAt = now
		txn.SettledAt = &now
		if createErr := e.txnRepo.WithTx(tx).Create(ctx, txn); createErr != nil {
			return createErr
		}

		return e.enqueueEvent(ctx, tx, txn, w.Balance, cmd.CorrelationID)
	})
	if err != nil {
		logger.Error("Failed to purchase investment plan",
			"wallet_id", cmd.WalletID.String(),
			"plan_id", cmd.Plan.PlanID,
			"price", cmd.Price,
			"error", err,
		)
		return nil, err
	}

	e.cache.InvalidateBalance(ctx, cmd.WalletID.String())
	transactionsInitiated.WithLabelValues(string(shared.TransactionKindInvestment)).Inc()
	logger.Info("Investment plan purchased",
		"transaction_id", txn.ID.String(),
		"wallet_id", cmd.WalletID.String(),
		"plan_id", cmd.Plan.PlanID,
		"price", cmd.Price,
	)
	return txn, nil
}

// FinalizeDeposit settles a pending deposit
func (e *EngineImpl) FinalizeDeposit(ctx context.Context, cmd *FinalizeCommand) (*transaction.Transaction, error) {
	return e.finalize(ctx, cmd, shared.TransactionKindDeposit)
}

// FinalizeWithdrawal settles a pending withdrawal
func (e *EngineImpl) FinalizeWithdrawal(ctx context.Context, cmd *FinalizeCommand) (*transaction.Transaction, error) {
	return e.finalize(ctx, cmd, shared.TransactionKindWithdrawal)
}

// finalize applies an administrator decision to a pending transaction of the
// given kind. The transaction row is locked first so two concurrent
// decisions serialize; the loser observes a terminal status and fails with
// ErrNotPending instead of applying the balance change twice.
func (e *EngineImpl) finalize(ctx context.Context, cmd *FinalizeCommand, want shared.TransactionKind) (*transaction.Transaction, error) {
	logger := e.withCorrelation(cmd.CorrelationID)

	var txn *transaction.Transaction
	var balanceChanged bool

	err := e.db.ExecuteTxWithRetry(ctx, e.limits.TxMaxRetries, func(tx pgx.Tx) error {
		txn = nil
		balanceChanged = false

		txnRepoTx := e.txnRepo.WithTx(tx)
		t, lockErr := txnRepoTx.LockForSettlement(ctx, cmd.TransactionID)
		if lockErr != nil {
			return lockErr
		}
		if t.Kind != want {
			return transaction.ErrWrongKind{TransactionID: t.ID, Want: want, Got: t.Kind}
		}
		if settleErr := t.Settle(cmd.Outcome); settleErr != nil {
			return settleErr
		}

		walletRepoTx := e.walletRepo.WithTx(tx)
		w, lockErr := walletRepoTx.LockForUpdate(ctx, t.WalletID)
		if lockErr != nil {
			return lockErr
		}

		// Deposits apply money on approval. Withdrawals were debited at
		// initiation, so only a rejection moves money back.
		switch {
		case want == shared.TransactionKindDeposit && cmd.Outcome == shared.SettlementOutcomeApprove:
			if creditErr := w.Credit(t.Amount); creditErr != nil {
				return creditErr
			}
			balanceChanged = true
		case want == shared.TransactionKindWithdrawal && cmd.Outcome == shared.SettlementOutcomeReject:
			if creditErr := w.Credit(-t.Amount); creditErr != nil {
				return creditErr
			}
			balanceChanged = true
		}

		if balanceChanged {
			if updateErr := walletRepoTx.Update(ctx, w); updateErr != nil {
				return updateErr
			}
		}

		if statusErr := txnRepoTx.UpdateStatus(ctx, t); statusErr != nil {
			return statusErr
		}

		txn = t
		return e.enqueueEvent(ctx, tx, t, w.Balance, cmd.CorrelationID)
	})
	if err != nil {
		logger.Error("Failed to finalize transaction",
			"transaction_id", cmd.TransactionID.String(),
			"kind", string(want),
			"outcome", string(cmd.Outcome),
			"error", err,
		)
		return nil, err
	}

	if balanceChanged {
		e.cache.InvalidateBalance(ctx, txn.WalletID.String())
	}
	transactionsFinalized.WithLabelValues(string(want), string(cmd.Outcome)).Inc()
	logger.Info("Transaction finalized",
		"transaction_id", txn.ID.String(),
		"wallet_id", txn.WalletID.String(),
		"kind", string(want),
		"outcome", string(cmd.Outcome),
		"status", string(txn.Status),
	)
	return txn, nil
}

// enqueueEvent writes the settlement event to the outbox inside the caller's
// database transaction
func (e *EngineImpl) enqueueEvent(ctx context.Context, tx pgx.Tx, txn *transaction.Transaction, balanceAfter int64, correlationID string) error {
	event := &shared.SettlementEvent{
		TransactionID: txn.ID,
		WalletID:      txn.WalletID,
		Kind:          txn.Kind,
		Amount:        txn.Amount,
		Status:        txn.Status,
		BalanceAfter:  balanceAfter,
		Rail:          txn.Rail,
		HolderName:    txn.HolderName,
		AccountNumber: txn.AccountNumber,
		Reference:     txn.Reference,
		BankName:      txn.BankName,
		PlanID:        txn.PlanID,
		PlanName:      txn.PlanName,
		CorrelationID: correlationID,
		CreatedAt:     txn.CreatedAt,
		SettledAt:     txn.SettledAt,
	}

	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return e.outboxRepo.WithTx(tx).Create(ctx, message)
}

func (e *EngineImpl) depositRailEnabled(rail shared.Rail) error {
	switch rail {
	case shared.RailJazzCash:
		if e.rails.DepositJazzCash {
			return nil
		}
	case shared.RailEasypaisa:
		if e.rails.DepositEasypaisa {
			return nil
		}
	}
	return ErrRailDisabled{Kind: shared.TransactionKindDeposit, Rail: rail}
}

func (e *EngineImpl) withdrawalRailEnabled(rail shared.Rail) error {
	switch rail {
	case shared.RailJazzCash:
		if e.rails.WithdrawalJazzCash {
			return nil
		}
	case shared.RailEasypaisa:
		if e.rails.WithdrawalEasypaisa {
			return nil
		}
	case shared.RailBank:
		if e.rails.WithdrawalBank {
			return nil
		}
	}
	return ErrRailDisabled{Kind: shared.TransactionKindWithdrawal, Rail: rail}
}

func (e *EngineImpl) withCorrelation(correlationID string) *slog.Logger {
	if correlationID == "" {
		return e.logger
	}
	return e.logger.With("correlation_id", correlationID)
}
