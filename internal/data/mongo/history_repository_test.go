package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Upsert(ctx context.Context, entry *history.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*history.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Entry), args.Error(1)
}

func (m *MockHistoryRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*history.Entry, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.Entry), args.Error(1)
}

func (m *MockHistoryRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHistoryRepository) GetWalletActivity(ctx context.Context, walletID uuid.UUID, since time.Time) (*history.WalletActivity, error) {
	args := m.Called(ctx, walletID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.WalletActivity), args.Error(1)
}

func (m *MockHistoryRepository) GetGlobalTotals(ctx context.Context) (*history.GlobalTotals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.GlobalTotals), args.Error(1)
}

func (m *MockHistoryRepository) AddPlanHolding(ctx context.Context, holding *history.PlanHolding) error {
	args := m.Called(ctx, holding)
	return args.Error(0)
}

func (m *MockHistoryRepository) GetPlanHoldings(ctx context.Context, walletID uuid.UUID) ([]*history.PlanHolding, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.PlanHolding), args.Error(1)
}

func TestNewHistoryRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewHistoryRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &HistoryRepository{}, repo)
}

func TestHistoryRepository_Upsert(t *testing.T) {
	mockRepo := &MockHistoryRepository{}

	txID := uuid.New()
	walletID := uuid.New()
	entry := &history.Entry{
		TransactionID: txID,
		WalletID:      walletID,
		Kind:          shared.TransactionKindDeposit,
		Amount:        100000,
		Status:        shared.TransactionStatusPending,
		BalanceAfter:  250000,
		Rail:          shared.RailJazzCash,
		HolderName:    "Asad Mehmood",
		AccountNumber: "03001234567",
		Reference:     "TXN-920431",
		CorrelationID: "corr1",
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError error
	}{
		{
			name: "successful upsert",
			setupMocks: func() {
				mockRepo.On("Upsert", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func() {
				mockRepo.On("Upsert", mock.Anything, entry).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMocks()

			err := mockRepo.Upsert(context.Background(), entry)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError.Error(), err.Error())
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHistoryRepository_GetByTransactionID(t *testing.T) {
	mockRepo := &MockHistoryRepository{}

	txID := uuid.New()
	entry := &history.Entry{
		TransactionID: txID,
		WalletID:      uuid.New(),
		Kind:          shared.TransactionKindWithdrawal,
		Amount:        -75000,
		Status:        shared.TransactionStatusCompleted,
		CreatedAt:     time.Now(),
	}

	tests := []struct {
		name          string
		setupMocks    func()
		expectedEntry *history.Entry
		expectedError error
	}{
		{
			name: "entry found",
			setupMocks: func() {
				mockRepo.On("GetByTransactionID", mock.Anything, txID).Return(entry, nil)
			},
			expectedEntry: entry,
			expectedError: nil,
		},
		{
			name: "entry not found",
			setupMocks: func() {
				mockRepo.On("GetByTransactionID", mock.Anything, txID).Return(nil, history.ErrEntryNotFound{TransactionID: txID})
			},
			expectedEntry: nil,
			expectedError: history.ErrEntryNotFound{TransactionID: txID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.ExpectedCalls = nil
			tt.setupMocks()

			got, err := mockRepo.GetByTransactionID(context.Background(), txID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, history.ErrEntryNotFound{})
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntry, got)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHistoryRepository_GetWalletActivity(t *testing.T) {
	mockRepo := &MockHistoryRepository{}

	walletID := uuid.New()
	since := time.Now().Add(-7 * 24 * time.Hour)
	activity := &history.WalletActivity{
		Deposited: 500000,
		Invested:  120000,
		Withdrawn: 80000,
		Earned:    500000,
	}

	mockRepo.On("GetWalletActivity", mock.Anything, walletID, since).Return(activity, nil)

	got, err := mockRepo.GetWalletActivity(context.Background(), walletID, since)

	assert.NoError(t, err)
	assert.Equal(t, int64(500000), got.Deposited)
	assert.Equal(t, int64(500000), got.Earned)
	assert.Equal(t, int64(80000), got.Withdrawn)
	mockRepo.AssertExpectations(t)
}

// The aggregation itself needs a live server, but the accumulator documents
// can be checked as built. Earned must gate on the amount's sign, never take
// absolute values: an investment stores a negative amount, and folding its
// magnitude in would report every plan purchase as earnings.
func TestActivityAccumulators(t *testing.T) {
	t.Run("PerKindSumsAreAbsolute", func(t *testing.T) {
		acc := sumForKind(shared.TransactionKindInvestment)

		cond := acc["$sum"].(bson.M)["$cond"].(bson.A)
		assert.Equal(t, bson.M{"$eq": bson.A{"$kind", shared.TransactionKindInvestment}}, cond[0])
		assert.Equal(t, bson.M{"$abs": "$amount"}, cond[1])
		assert.Equal(t, 0, cond[2])
	})

	t.Run("EarnedSumsOnlyCredits", func(t *testing.T) {
		acc := sumPositiveAmounts()

		cond := acc["$sum"].(bson.M)["$cond"].(bson.A)
		assert.Equal(t, bson.M{"$gt": bson.A{"$amount", 0}}, cond[0])
		assert.Equal(t, "$amount", cond[1], "credits pass through unchanged")
		assert.Equal(t, 0, cond[2], "debits contribute nothing")
	})
}

func TestEntryFromEvent(t *testing.T) {
	settledAt := time.Now()
	event := &shared.SettlementEvent{
		TransactionID: uuid.New(),
		WalletID:      uuid.New(),
		Kind:          shared.TransactionKindInvestment,
		Amount:        -150000,
		Status:        shared.TransactionStatusCompleted,
		BalanceAfter:  350000,
		PlanID:        "plan-gold",
		PlanName:      "Gold Plan",
		CorrelationID: "corr2",
		CreatedAt:     time.Now(),
		SettledAt:     &settledAt,
	}

	entry := history.EntryFromEvent(event)

	assert.Equal(t, event.TransactionID, entry.TransactionID)
	assert.Equal(t, event.WalletID, entry.WalletID)
	assert.Equal(t, shared.TransactionKindInvestment, entry.Kind)
	assert.Equal(t, int64(-150000), entry.Amount)
	assert.Equal(t, shared.TransactionStatusCompleted, entry.Status)
	assert.Equal(t, int64(350000), entry.BalanceAfter)
	assert.Equal(t, "plan-gold", entry.PlanID)
	assert.Equal(t, "Gold Plan", entry.PlanName)
	assert.NotNil(t, entry.SettledAt)
	assert.Equal(t, settledAt, *entry.SettledAt)
}
