// Package reporting serves the read-model aggregations: per-wallet
// summaries, plan holdings and the admin overview. Everything here is
// derived from the MongoDB projection and the wallet table; nothing is ever
// written back except cache entries.
package reporting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/platform/cache"
)

const overviewCacheKey = "reporting:admin_overview"

// WalletSummary is the per-wallet dashboard block: the live balance plus
// completed movement totals over the trailing summary window.
type WalletSummary struct {
	WalletID  uuid.UUID `json:"wallet_id"`
	AccountNo int64     `json:"account_no"`
	Balance   int64     `json:"balance"`
	Earned    int64     `json:"earned"`    // Positive completed amounts only
	Withdrawn int64     `json:"withdrawn"` // Completed withdrawals, absolute
	Since     time.Time `json:"since"`
}

// DashboardTotals is the lifetime per-wallet dashboard block. All values are
// absolute minor-unit amounts over completed movements.
type DashboardTotals struct {
	WalletID    uuid.UUID `json:"wallet_id"`
	Recharged   int64     `json:"recharged"` // Completed deposits, lifetime
	Income      int64     `json:"income"`    // Completed investments, lifetime
	Withdrawn   int64     `json:"withdrawn"` // Completed withdrawals, lifetime
	TodayIncome int64     `json:"today_income"`
}

// Overview is the platform-wide admin block
type Overview struct {
	Deposited          int64     `json:"deposited"`
	Withdrawn          int64     `json:"withdrawn"`
	Invested           int64     `json:"invested"`
	PendingDeposits    int64     `json:"pending_deposits"`
	PendingWithdrawals int64     `json:"pending_withdrawals"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// Reporter exposes the aggregation queries
type Reporter interface {
	// WalletSummary returns the balance and trailing-window movement totals
	// for one wallet.
	WalletSummary(ctx context.Context, walletID uuid.UUID) (*WalletSummary, error)

	// DashboardTotals returns the lifetime movement totals for one wallet,
	// plus the investment income recorded today.
	DashboardTotals(ctx context.Context, walletID uuid.UUID) (*DashboardTotals, error)

	// WalletHoldings lists the plans purchased by one wallet, newest first.
	WalletHoldings(ctx context.Context, walletID uuid.UUID) ([]*history.PlanHolding, error)

	// AdminOverview returns the cached platform-wide totals.
	AdminOverview(ctx context.Context) (*Overview, error)
}

// ReporterImpl implements the Reporter interface
type ReporterImpl struct {
	walletRepo  wallet.Repository
	historyRepo history.Repository
	cache       *cache.Cache
	window      time.Duration
	logger      *slog.Logger
}

// NewReporter creates a new reporter. The window is the trailing period
// covered by wallet summaries.
func NewReporter(
	logger *slog.Logger,
	walletRepo wallet.Repository,
	historyRepo history.Repository,
	reportCache *cache.Cache,
	window time.Duration,
) Reporter {
	return &ReporterImpl{
		walletRepo:  walletRepo,
		historyRepo: historyRepo,
		cache:       reportCache,
		window:      window,
		logger:      logger,
	}
}

// WalletSummary combines the authoritative balance from the write side with
// the movement totals from the projection. The balance goes through the
// cache; the projection query does not, it is already cheap.
func (r *ReporterImpl) WalletSummary(ctx context.Context, walletID uuid.UUID) (*WalletSummary, error) {
	w, err := r.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}

	balance, err := r.cachedBalance(ctx, w)
	if err != nil {
		return nil, err
	}

	since := time.Now().Add(-r.window)
	activity, err := r.historyRepo.GetWalletActivity(ctx, walletID, since)
	if err != nil {
		r.logger.Error("Failed to aggregate wallet activity",
			"wallet_id", walletID.String(),
			"error", err,
		)
		return nil, err
	}

	return &WalletSummary{
		WalletID:  w.ID,
		AccountNo: w.AccountNo,
		Balance:   balance,
		Earned:    activity.Earned,
		Withdrawn: activity.Withdrawn,
		Since:     since,
	}, nil
}

// DashboardTotals aggregates a wallet's completed movements over its whole
// lifetime, plus the investment income since local midnight. Both reads hit
// the projection only.
func (r *ReporterImpl) DashboardTotals(ctx context.Context, walletID uuid.UUID) (*DashboardTotals, error) {
	if _, err := r.walletRepo.GetByID(ctx, walletID); err != nil {
		return nil, err
	}

	lifetime, err := r.historyRepo.GetWalletActivity(ctx, walletID, time.Time{})
	if err != nil {
		r.logger.Error("Failed to aggregate lifetime activity",
			"wallet_id", walletID.String(),
			"error", err,
		)
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := r.historyRepo.GetWalletActivity(ctx, walletID, midnight)
	if err != nil {
		r.logger.Error("Failed to aggregate today's activity",
			"wallet_id", walletID.String(),
			"error", err,
		)
		return nil, err
	}

	return &DashboardTotals{
		WalletID:    walletID,
		Recharged:   lifetime.Deposited,
		Income:      lifetime.Invested,
		Withdrawn:   lifetime.Withdrawn,
		TodayIncome: today.Invested,
	}, nil
}

// WalletHoldings lists the plan annotations recorded for the wallet
func (r *ReporterImpl) WalletHoldings(ctx context.Context, walletID uuid.UUID) ([]*history.PlanHolding, error) {
	holdings, err := r.historyRepo.GetPlanHoldings(ctx, walletID)
	if err != nil {
		r.logger.Error("Failed to list plan holdings",
			"wallet_id", walletID.String(),
			"error", err,
		)
		return nil, err
	}
	return holdings, nil
}

// AdminOverview serves the platform totals from the cache when fresh enough,
// falling back to the aggregation pipeline on a miss. Staleness up to the
// cache TTL is acceptable for this view.
func (r *ReporterImpl) AdminOverview(ctx context.Context) (*Overview, error) {
	var cached Overview
	err := r.cache.GetJSON(ctx, overviewCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Overview cache read failed, recomputing", "error", err)
	}

	totals, err := r.historyRepo.GetGlobalTotals(ctx)
	if err != nil {
		r.logger.Error("Failed to aggregate global totals", "error", err)
		return nil, err
	}

	overview := &Overview{
		Deposited:          totals.Deposited,
		Withdrawn:          totals.Withdrawn,
		Invested:           totals.Invested,
		PendingDeposits:    totals.PendingDeposits,
		PendingWithdrawals: totals.PendingWithdrawals,
		GeneratedAt:        time.Now(),
	}

	if err := r.cache.SetJSON(ctx, overviewCacheKey, overview); err != nil {
		r.logger.Warn("Failed to cache admin overview", "error", err)
	}

	return overview, nil
}

// cachedBalance reads the balance through the cache, seeding it from the
// wallet row already in hand on a miss
func (r *ReporterImpl) cachedBalance(ctx context.Context, w *wallet.Wallet) (int64, error) {
	balance, err := r.cache.GetBalance(ctx, w.ID.String())
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("Balance cache read failed", "wallet_id", w.ID.String(), "error", err)
	}

	if err := r.cache.SetBalance(ctx, w.ID.String(), w.Balance); err != nil {
		r.logger.Warn("Failed to cache wallet balance", "wallet_id", w.ID.String(), "error", err)
	}
	return w.Balance, nil
}
