package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
)

type ProjectionServiceImpl struct {
	historyRepo history.Repository
	logger      *slog.Logger
}

func NewProjectionService(
	logger *slog.Logger,
	historyRepo history.Repository,
) ProjectionService {
	return &ProjectionServiceImpl{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// ApplyEvent projects a settlement event into the read model. The entry is
// upserted by transaction ID, so a finalization event replaces the pending
// entry written at initiation and redelivered events are harmless.
func (s *ProjectionServiceImpl) ApplyEvent(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Projecting settlement event",
		"transaction_id", event.TransactionID.String(),
		"wallet_id", event.WalletID.String(),
		"kind", event.Kind,
		"status", event.Status,
	)

	entry := history.EntryFromEvent(event)
	if err := s.historyRepo.Upsert(ctx, entry); err != nil {
		logger.Error("Failed to upsert history entry",
			"transaction_id", event.TransactionID.String(),
			"error", err,
		)
		return fmt.Errorf("upsert history entry %s: %w", event.TransactionID.String(), err)
	}

	if event.Kind == shared.TransactionKindInvestment && event.Status == shared.TransactionStatusCompleted && event.PlanID != "" {
		holding := &history.PlanHolding{
			WalletID:   event.WalletID,
			PlanID:     event.PlanID,
			PlanName:   event.PlanName,
			Price:      -event.Amount, // Investment amounts are negative on the ledger
			AcquiredAt: event.CreatedAt,
		}
		if err := s.historyRepo.AddPlanHolding(ctx, holding); err != nil {
			logger.Error("Failed to record plan holding",
				"transaction_id", event.TransactionID.String(),
				"plan_id", event.PlanID,
				"error", err,
			)
			return fmt.Errorf("record plan holding for %s: %w", event.TransactionID.String(), err)
		}
	}

	logger.Info("Settlement event projected", "transaction_id", event.TransactionID.String())
	return nil
}
