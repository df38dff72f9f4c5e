package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/investpro/ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, wallet_id, kind, amount, status, rail, holder_name, account_number, reference, bank_name, plan_id, plan_name, created_at, settled_at`

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic operations
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanTransaction(row pgx.Row) (*transaction.Transaction, error) {
	var txn transaction.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.WalletID,
		&txn.Kind,
		&txn.Amount,
		&txn.Status,
		&txn.Rail,
		&txn.HolderName,
		&txn.AccountNumber,
		&txn.Reference,
		&txn.BankName,
		&txn.PlanID,
		&txn.PlanName,
		&txn.CreatedAt,
		&txn.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Create appends a transaction record to the log
func (r *TransactionRepository) Create(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		INSERT INTO transactions (id, wallet_id, kind, amount, status, rail, holder_name, account_number, reference, bank_name, plan_id, plan_name, created_at, settled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.WalletID,
		txn.Kind,
		txn.Amount,
		txn.Status,
		txn.Rail,
		txn.HolderName,
		txn.AccountNumber,
		txn.Reference,
		txn.BankName,
		txn.PlanID,
		txn.PlanName,
		txn.CreatedAt,
		txn.SettledAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transaction record", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to create transaction record: %w", err)
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// LockForSettlement obtains a pessimistic lock on the transaction row.
// Concurrent finalize calls serialize here; the loser re-reads a terminal
// status after the winner commits.
func (r *TransactionRepository) LockForSettlement(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	txn, err := scanTransaction(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to lock transaction for settlement", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock transaction for settlement: %w", err)
	}

	return txn, nil
}

// UpdateStatus persists the terminal status and settlement timestamp.
// The guard on the current status makes double-finalization impossible even
// outside a locking transaction.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, txn *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, settled_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		txn.SettledAt,
		txn.ID,
		shared.TransactionStatusPending,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction status", "id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrNotPending{TransactionID: txn.ID, Status: txn.Status}
	}

	return nil
}

// GetByWalletID lists a wallet's transactions, newest first
func (r *TransactionRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get transactions for wallet", "wallet_id", walletID.String(), "error", err)
		return nil, fmt.Errorf("failed to get transactions for wallet: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// CountByWalletID returns the number of transactions recorded for a wallet
func (r *TransactionRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE wallet_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, walletID).Scan(&count); err != nil {
		r.logger.Error("Failed to count transactions for wallet", "wallet_id", walletID.String(), "error", err)
		return 0, fmt.Errorf("failed to count transactions for wallet: %w", err)
	}

	return count, nil
}

// GetPendingByKind lists the global moderation queue for one kind, oldest first
func (r *TransactionRepository) GetPendingByKind(ctx context.Context, kind shared.TransactionKind, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE kind = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.querier.Query(ctx, query, kind, shared.TransactionStatusPending, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get pending transactions", "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to get pending transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// CountPendingByKind returns the size of the moderation queue for one kind
func (r *TransactionRepository) CountPendingByKind(ctx context.Context, kind shared.TransactionKind) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE kind = $1 AND status = $2`

	var count int64
	if err := r.querier.QueryRow(ctx, query, kind, shared.TransactionStatusPending).Scan(&count); err != nil {
		r.logger.Error("Failed to count pending transactions", "kind", string(kind), "error", err)
		return 0, fmt.Errorf("failed to count pending transactions: %w", err)
	}

	return count, nil
}

func collectTransactions(rows pgx.Rows) ([]*transaction.Transaction, error) {
	var txns []*transaction.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return txns, nil
}
