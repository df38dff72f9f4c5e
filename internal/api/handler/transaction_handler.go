package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/api/middleware"
	"github.com/investpro/ledger/internal/api/service"
	"github.com/investpro/ledger/internal/auth"
	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/investpro/ledger/internal/domain/wallet"
	"github.com/investpro/ledger/internal/platform/persistence"
	"github.com/investpro/ledger/internal/settlement"
)

// TransactionHandler handles HTTP requests for money movements
type TransactionHandler struct {
	engine             settlement.Engine
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, engine settlement.Engine, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		engine:             engine,
		transactionService: transactionService,
		logger:             logger,
	}
}

// Deposit records a deposit claim for the authenticated user's wallet
func (h *TransactionHandler) Deposit(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.engine.InitiateDeposit(c.Request.Context(), &settlement.DepositCommand{
		WalletID: walletID,
		Amount:   req.Amount,
		Source: transaction.SourceDetails{
			Rail:          shared.Rail(req.Rail),
			HolderName:    req.HolderName,
			AccountNumber: req.AccountNumber,
			Reference:     req.Reference,
		},
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondInitiationError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Withdraw reserves funds and records a withdrawal for the authenticated
// user's wallet
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.engine.InitiateWithdrawal(c.Request.Context(), &settlement.WithdrawalCommand{
		WalletID: walletID,
		Amount:   req.Amount,
		Payout: transaction.PayoutDetails{
			Rail:          shared.Rail(req.Rail),
			HolderName:    req.HolderName,
			AccountNumber: req.AccountNumber,
			BankName:      req.BankName,
		},
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondInitiationError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// Invest purchases an investment plan from the authenticated user's wallet
func (h *TransactionHandler) Invest(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := h.engine.InitiateInvestment(c.Request.Context(), &settlement.InvestmentCommand{
		WalletID:      walletID,
		Price:         req.Price,
		Plan:          transaction.PlanRef{PlanID: req.PlanID, PlanName: req.PlanName},
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		h.respondInitiationError(c, err)
		return
	}

	RespondCreated(c, mapTransactionToResponse(txn))
}

// GetByID retrieves one transaction. Users only see their own; a foreign
// transaction reads as not found rather than forbidden.
func (h *TransactionHandler) GetByID(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transaction not found")
			return
		}
		h.logger.Error("Failed to get transaction", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	if txn.WalletID != walletID && middleware.GetRole(c) != auth.RoleAdmin {
		RespondNotFound(c, "Transaction not found")
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}

// History lists the authenticated user's transaction history, newest first
func (h *TransactionHandler) History(c *gin.Context) {
	walletID, ok := middleware.GetWalletID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.transactionService.ListWalletHistory(c.Request.Context(), walletID, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list wallet history", "wallet_id", walletID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, 200, responses, params.Page, params.PerPage, int(total))
}

// respondInitiationError maps engine failures to HTTP responses
func (h *TransactionHandler) respondInitiationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, settlement.ErrAmountOutOfBounds{}):
		RespondUnprocessable(c, "AMOUNT_OUT_OF_BOUNDS", err.Error())
	case errors.Is(err, settlement.ErrRailDisabled{}):
		RespondUnprocessable(c, "RAIL_DISABLED", err.Error())
	case errors.Is(err, settlement.ErrInvestmentsDisabled):
		RespondUnprocessable(c, "INVESTMENTS_DISABLED", err.Error())
	case errors.Is(err, wallet.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Wallet balance is too low")
	case errors.Is(err, wallet.ErrWalletNotFound{}):
		RespondNotFound(c, "Wallet not found")
	case errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrMissingRail),
		errors.Is(err, transaction.ErrMissingHolderName),
		errors.Is(err, transaction.ErrMissingAccountNo),
		errors.Is(err, transaction.ErrMissingReference),
		errors.Is(err, transaction.ErrMissingBankName),
		errors.Is(err, transaction.ErrMissingPlan):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, persistence.ErrTooManyConflicts):
		h.logger.Warn("Transaction gave up after transient conflicts", "error", err)
		RespondWithError(c, http.StatusServiceUnavailable, "TRANSIENT", "Please retry the request")
	default:
		h.logger.Error("Failed to initiate transaction", "error", err)
		RespondInternalError(c)
	}
}

// mapTransactionToResponse maps a transaction entity to a response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            txn.ID.String(),
		WalletID:      txn.WalletID.String(),
		Kind:          string(txn.Kind),
		Amount:        txn.Amount,
		Status:        string(txn.Status),
		Rail:          string(txn.Rail),
		HolderName:    txn.HolderName,
		AccountNumber: txn.AccountNumber,
		Reference:     txn.Reference,
		BankName:      txn.BankName,
		PlanID:        txn.PlanID,
		PlanName:      txn.PlanName,
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.SettledAt != nil {
		resp.SettledAt = txn.SettledAt.Format(time.RFC3339)
	}
	return resp
}

// mapEntryToResponse maps a projection entry to a response DTO
func mapEntryToResponse(entry *history.Entry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		TransactionResponse: TransactionResponse{
			ID:            entry.TransactionID.String(),
			WalletID:      entry.WalletID.String(),
			Kind:          string(entry.Kind),
			Amount:        entry.Amount,
			Status:        string(entry.Status),
			Rail:          string(entry.Rail),
			HolderName:    entry.HolderName,
			AccountNumber: entry.AccountNumber,
			Reference:     entry.Reference,
			BankName:      entry.BankName,
			PlanID:        entry.PlanID,
			PlanName:      entry.PlanName,
			CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
		},
		BalanceAfter: entry.BalanceAfter,
	}
	if entry.SettledAt != nil {
		resp.SettledAt = entry.SettledAt.Format(time.RFC3339)
	}
	return resp
}
