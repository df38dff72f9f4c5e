package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/investpro/ledger/internal/api/middleware"
	"github.com/investpro/ledger/internal/api/service"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/reporting"
)

// WalletHandler handles HTTP requests for wallet operations. All routes act
// on the caller's own wallet; the wallet ID comes from the token, never from
// the request.
type WalletHandler struct {
	walletService service.WalletService
	reporter      reporting.Reporter
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService service.WalletService, reporter reporting.Reporter) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		reporter:      reporter,
		logger:        logger,
	}
}

// Create opens a wallet for the authenticated user
func (h *WalletHandler) Create(c *gin.Context) {
	ownerID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	w, err := h.walletService.CreateWallet(c.Request.Context(), ownerID)
	if err != nil {
		var duplicateErr wallet.ErrDuplicateWallet
		if errors.As(err, &duplicateErr) {
			RespondConflict(c, "Wallet already exists")
			return
		}
		h.logger.Error("Failed to create wallet", "owner_id", ownerID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapWalletToResponse(w))
}

// Get returns the authenticated user's wallet
func (h *WalletHandler) Get(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	w, err := h.walletService.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to get wallet", "wallet_id", walletID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapWalletToResponse(w))
}

// Summary returns the wallet dashboard block: balance plus trailing-window
// activity totals
func (h *WalletHandler) Summary(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	summary, err := h.reporter.WalletSummary(c.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to build wallet summary", "wallet_id", walletID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, SummaryResponse{
		WalletID:  summary.WalletID.String(),
		AccountNo: summary.AccountNo,
		Balance:   summary.Balance,
		Earned:    summary.Earned,
		Withdrawn: summary.Withdrawn,
		Since:     summary.Since.Format(time.RFC3339),
	})
}

// Dashboard returns the lifetime movement totals for the authenticated
// user's wallet
func (h *WalletHandler) Dashboard(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	totals, err := h.reporter.DashboardTotals(c.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound{}) {
			RespondNotFound(c, "Wallet not found")
			return
		}
		h.logger.Error("Failed to build dashboard totals", "wallet_id", walletID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, DashboardResponse{
		WalletID:    totals.WalletID.String(),
		Recharged:   totals.Recharged,
		Income:      totals.Income,
		Withdrawn:   totals.Withdrawn,
		TodayIncome: totals.TodayIncome,
	})
}

// Holdings lists the plans purchased by the authenticated user's wallet
func (h *WalletHandler) Holdings(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	holdings, err := h.reporter.WalletHoldings(c.Request.Context(), walletID)
	if err != nil {
		h.logger.Error("Failed to list holdings", "wallet_id", walletID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]HoldingResponse, 0, len(holdings))
	for _, holding := range holdings {
		responses = append(responses, HoldingResponse{
			PlanID:     holding.PlanID,
			PlanName:   holding.PlanName,
			Price:      holding.Price,
			AcquiredAt: holding.AcquiredAt.Format(time.RFC3339),
		})
	}

	RespondOK(c, responses)
}

// mapWalletToResponse maps a wallet entity to a wallet response DTO
func mapWalletToResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID.String(),
		AccountNo: w.AccountNo,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}
