package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/auth"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/reporting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateWallet(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) GetWallet(ctx context.Context, id uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) WalletSummary(ctx context.Context, walletID uuid.UUID) (*reporting.WalletSummary, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.WalletSummary), args.Error(1)
}

func (m *MockReporter) DashboardTotals(ctx context.Context, walletID uuid.UUID) (*reporting.DashboardTotals, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.DashboardTotals), args.Error(1)
}

func (m *MockReporter) WalletHoldings(ctx context.Context, walletID uuid.UUID) ([]*history.PlanHolding, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*history.PlanHolding), args.Error(1)
}

func (m *MockReporter) AdminOverview(ctx context.Context) (*reporting.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reporting.Overview), args.Error(1)
}

func TestWalletHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ownerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(testLogger(), mockService, new(MockReporter))

		w, err := wallet.New(ownerID, 100001)
		assert.NoError(t, err)
		mockService.On("CreateWallet", mock.Anything, ownerID).Return(w, nil)

		router := gin.New()
		router.POST("/wallet", authAs(ownerID, auth.RoleUser), handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/wallet", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := dataField(t, rr.Body.Bytes())
		assert.Equal(t, ownerID.String(), data["id"])
		assert.Equal(t, float64(100001), data["account_no"])
		assert.Equal(t, float64(0), data["balance"])
		mockService.AssertExpectations(t)
	})

	t.Run("DuplicateWallet", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(testLogger(), mockService, new(MockReporter))

		mockService.On("CreateWallet", mock.Anything, ownerID).Return(nil, wallet.ErrDuplicateWallet{WalletID: ownerID})

		router := gin.New()
		router.POST("/wallet", authAs(ownerID, auth.RoleUser), handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/wallet", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		handler := NewWalletHandler(testLogger(), new(MockWalletService), new(MockReporter))
		router := gin.New()
		router.POST("/wallet", handler.Create)

		req, _ := http.NewRequest(http.MethodPost, "/wallet", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestWalletHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	walletID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(testLogger(), mockService, new(MockReporter))

		w := &wallet.Wallet{ID: walletID, AccountNo: 100007, Balance: 350000, Version: 4, CreatedAt: time.Now(), UpdatedAt: time.Now()}
		mockService.On("GetWallet", mock.Anything, walletID).Return(w, nil)

		router := gin.New()
		router.GET("/wallet", authAs(walletID, auth.RoleUser), handler.Get)

		req, _ := http.NewRequest(http.MethodGet, "/wallet", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		data := dataField(t, rr.Body.Bytes())
		assert.Equal(t, float64(350000), data["balance"])
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockWalletService)
		handler := NewWalletHandler(testLogger(), mockService, new(MockReporter))

		mockService.On("GetWallet", mock.Anything, walletID).Return(nil, wallet.ErrWalletNotFound{WalletID: walletID})

		router := gin.New()
		router.GET("/wallet", authAs(walletID, auth.RoleUser), handler.Get)

		req, _ := http.NewRequest(http.MethodGet, "/wallet", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWalletHandler_Summary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	walletID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockReporter := new(MockReporter)
		handler := NewWalletHandler(testLogger(), new(MockWalletService), mockReporter)

		mockReporter.On("WalletSummary", mock.Anything, walletID).Return(&reporting.WalletSummary{
			WalletID:  walletID,
			AccountNo: 100007,
			Balance:   350000,
			Earned:    650000,
			Withdrawn: 80000,
			Since:     time.Now().Add(-168 * time.Hour),
		}, nil)

		router := gin.New()
		router.GET("/wallet/summary", authAs(walletID, auth.RoleUser), handler.Summary)

		req, _ := http.NewRequest(http.MethodGet, "/wallet/summary", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		data := dataField(t, rr.Body.Bytes())
		assert.Equal(t, float64(650000), data["earned"])
		assert.Equal(t, float64(80000), data["withdrawn"])
	})
}

func TestWalletHandler_Dashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	walletID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockReporter := new(MockReporter)
		handler := NewWalletHandler(testLogger(), new(MockWalletService), mockReporter)

		mockReporter.On("DashboardTotals", mock.Anything, walletID).Return(&reporting.DashboardTotals{
			WalletID:    walletID,
			Recharged:   900000,
			Income:      420000,
			Withdrawn:   120000,
			TodayIncome: 50000,
		}, nil)

		router := gin.New()
		router.GET("/wallet/dashboard", authAs(walletID, auth.RoleUser), handler.Dashboard)

		req, _ := http.NewRequest(http.MethodGet, "/wallet/dashboard", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		data := dataField(t, rr.Body.Bytes())
		assert.Equal(t, float64(900000), data["recharged"])
		assert.Equal(t, float64(420000), data["income"])
		assert.Equal(t, float64(120000), data["withdrawn"])
		assert.Equal(t, float64(50000), data["today_income"])
	})

	t.Run("WalletNotFound", func(t *testing.T) {
		mockReporter := new(MockReporter)
		handler := NewWalletHandler(testLogger(), new(MockWalletService), mockReporter)

		mockReporter.On("DashboardTotals", mock.Anything, walletID).
			Return(nil, wallet.ErrWalletNotFound{WalletID: walletID})

		router := gin.New()
		router.GET("/wallet/dashboard", authAs(walletID, auth.RoleUser), handler.Dashboard)

		req, _ := http.NewRequest(http.MethodGet, "/wallet/dashboard", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWalletHandler_Holdings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	walletID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mockReporter := new(MockReporter)
		handler := NewWalletHandler(testLogger(), new(MockWalletService), mockReporter)

		mockReporter.On("WalletHoldings", mock.Anything, walletID).Return([]*history.PlanHolding{
			{WalletID: walletID, PlanID: "plan-gold", PlanName: "Gold Plan", Price: 150000, AcquiredAt: time.Now()},
		}, nil)

		router := gin.New()
		router.GET("/wallet/holdings", authAs(walletID, auth.RoleUser), handler.Holdings)

		req, _ := http.NewRequest(http.MethodGet, "/wallet/holdings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var topLevel map[string]json.RawMessage
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &topLevel))
		var holdings []HoldingResponse
		assert.NoError(t, json.Unmarshal(topLevel["data"], &holdings))
		assert.Len(t, holdings, 1)
		assert.Equal(t, "Gold Plan", holdings[0].PlanName)
	})
}
