package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestWalletRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}

	w := &wallet.Wallet{
		ID:        uuid.New(),
		AccountNo: 100001,
		Balance:   0,
		Version:   1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO wallets \(id, account_no, balance, version, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.ID, w.AccountNo, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, w)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate owner", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.ID, w.AccountNo, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := repo.Create(ctx, w)
		var dupErr wallet.ErrDuplicateWallet
		assert.ErrorAs(t, err, &dupErr)
		assert.Equal(t, w.ID, dupErr.WalletID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(w.ID, w.AccountNo, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, w)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create wallet")
		assert.ErrorIs(t, err, expectedErr) // Check underlying error if wrapped
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	walletID := uuid.New()
	now := time.Now()

	expectedWallet := &wallet.Wallet{
		ID:        walletID,
		AccountNo: 100007,
		Balance:   250000,
		Version:   4,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		SELECT id, account_no, balance, version, created_at, updated_at
		FROM wallets
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "account_no", "balance", "version", "created_at", "updated_at"}).
			AddRow(expectedWallet.ID, expectedWallet.AccountNo, expectedWallet.Balance, expectedWallet.Version, expectedWallet.CreatedAt, expectedWallet.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(walletID).WillReturnRows(rows)

		w, err := repo.GetByID(ctx, walletID)
		assert.NoError(t, err)
		assert.Equal(t, expectedWallet, w)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(walletID).WillReturnError(pgx.ErrNoRows)

		w, err := repo.GetByID(ctx, walletID)
		assert.Error(t, err)
		assert.Nil(t, w)
		var notFoundErr wallet.ErrWalletNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, walletID, notFoundErr.WalletID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_GetByAccountNo(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	accountNo := int64(100042)
	now := time.Now()

	query := `
		SELECT id, account_no, balance, version, created_at, updated_at
		FROM wallets
		WHERE account_no = \$1
	`

	t.Run("success", func(t *testing.T) {
		walletID := uuid.New()
		rows := pgxmock.NewRows([]string{"id", "account_no", "balance", "version", "created_at", "updated_at"}).
			AddRow(walletID, accountNo, int64(100), 1, now, now)
		mock.ExpectQuery(query).WithArgs(accountNo).WillReturnRows(rows)

		w, err := repo.GetByAccountNo(ctx, accountNo)
		assert.NoError(t, err)
		assert.Equal(t, accountNo, w.AccountNo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(accountNo).WillReturnError(pgx.ErrNoRows)

		w, err := repo.GetByAccountNo(ctx, accountNo)
		assert.Nil(t, w)
		assert.ErrorIs(t, err, wallet.ErrWalletNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_Update(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}

	w := &wallet.Wallet{
		ID:        uuid.New(),
		AccountNo: 100001,
		Balance:   5000,
		Version:   3,
		UpdatedAt: time.Now(),
	}

	query := `
		UPDATE wallets
		SET balance = \$1, version = \$2, updated_at = \$3
		WHERE id = \$4 AND version = \$5
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.Balance, w.Version, w.UpdatedAt, w.ID, w.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Update(ctx, w)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(w.Balance, w.Version, w.UpdatedAt, w.ID, w.Version-1).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, w)
		var concurrentErr wallet.ErrConcurrentModification
		assert.ErrorAs(t, err, &concurrentErr)
		assert.Equal(t, w.ID, concurrentErr.WalletID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &WalletRepository{querier: mock, logger: logger}
	walletID := uuid.New()
	now := time.Now()

	query := `
		SELECT id, account_no, balance, version, created_at, updated_at
		FROM wallets
		WHERE id = \$1
		FOR UPDATE
	`

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"id", "account_no", "balance", "version", "created_at", "updated_at"}).
			AddRow(walletID, int64(100001), int64(7500), 2, now, now)
		mock.ExpectQuery(query).WithArgs(walletID).WillReturnRows(rows)

		w, err := repo.LockForUpdate(ctx, walletID)
		assert.NoError(t, err)
		assert.Equal(t, int64(7500), w.Balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(walletID).WillReturnError(pgx.ErrNoRows)

		w, err := repo.LockForUpdate(ctx, walletID)
		assert.Nil(t, w)
		assert.ErrorIs(t, err, wallet.ErrWalletNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
