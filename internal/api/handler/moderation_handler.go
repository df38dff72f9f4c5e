package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/investpro/ledger/internal/api/middleware"
	"github.com/investpro/ledger/internal/api/service"
	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/domain/transaction"
	"github.com/investpro/ledger/internal/reporting"
	"github.com/investpro/ledger/internal/settlement"
)

// ModerationHandler handles the admin surface: pending queues, settlement
// decisions and the platform overview
type ModerationHandler struct {
	engine             settlement.Engine
	transactionService service.TransactionService
	reporter           reporting.Reporter
	logger             *slog.Logger
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(
	logger *slog.Logger,
	engine settlement.Engine,
	transactionService service.TransactionService,
	reporter reporting.Reporter,
) *ModerationHandler {
	return &ModerationHandler{
		engine:             engine,
		transactionService: transactionService,
		reporter:           reporter,
		logger:             logger,
	}
}

// PendingDeposits lists the deposit moderation queue, oldest first
func (h *ModerationHandler) PendingDeposits(c *gin.Context) {
	h.listPending(c, shared.TransactionKindDeposit)
}

// PendingWithdrawals lists the withdrawal moderation queue, oldest first
func (h *ModerationHandler) PendingWithdrawals(c *gin.Context) {
	h.listPending(c, shared.TransactionKindWithdrawal)
}

// DecideDeposit applies an administrator decision to a pending deposit
func (h *ModerationHandler) DecideDeposit(c *gin.Context) {
	h.decide(c, h.engine.FinalizeDeposit)
}

// DecideWithdrawal applies an administrator decision to a pending withdrawal
func (h *ModerationHandler) DecideWithdrawal(c *gin.Context) {
	h.decide(c, h.engine.FinalizeWithdrawal)
}

// Overview returns the platform-wide totals
func (h *ModerationHandler) Overview(c *gin.Context) {
	overview, err := h.reporter.AdminOverview(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to build admin overview", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, OverviewResponse{
		Deposited:          overview.Deposited,
		Withdrawn:          overview.Withdrawn,
		Invested:           overview.Invested,
		PendingDeposits:    overview.PendingDeposits,
		PendingWithdrawals: overview.PendingWithdrawals,
		GeneratedAt:        overview.GeneratedAt.Format(time.RFC3339),
	})
}

func (h *ModerationHandler) listPending(c *gin.Context, kind shared.TransactionKind) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	pending, total, err := h.transactionService.ListPendingByKind(c.Request.Context(), kind, params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list pending transactions", "kind", string(kind), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(pending))
	for _, txn := range pending {
		responses = append(responses, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, 200, responses, params.Page, params.PerPage, int(total))
}

func (h *ModerationHandler) decide(c *gin.Context, finalize func(ctx context.Context, cmd *settlement.FinalizeCommand) (*transaction.Transaction, error)) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid transaction ID")
		return
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txn, err := finalize(c.Request.Context(), &settlement.FinalizeCommand{
		TransactionID: id,
		Outcome:       shared.SettlementOutcome(req.Outcome),
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrTransactionNotFound{}):
			RespondNotFound(c, "Transaction not found")
		case errors.Is(err, transaction.ErrNotPending{}):
			RespondConflict(c, "Transaction has already been settled")
		case errors.Is(err, transaction.ErrWrongKind{}):
			RespondConflict(c, err.Error())
		default:
			h.logger.Error("Failed to finalize transaction",
				"transaction_id", idParam,
				"outcome", req.Outcome,
				"error", err,
			)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapTransactionToResponse(txn))
}
