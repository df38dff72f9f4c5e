package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/investpro/ledger/internal/domain/shared"
	"github.com/investpro/ledger/internal/platform/messaging/producers"
	"github.com/investpro/ledger/internal/projector/service"
)

// SettlementEventHandler handles incoming settlement events from Kafka
type SettlementEventHandler struct {
	projectionService service.ProjectionService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewSettlementEventHandler creates a new handler
func NewSettlementEventHandler(
	logger *slog.Logger,
	projectionService service.ProjectionService,
	producer producers.DeadLetterPublisher,
) *SettlementEventHandler {
	return &SettlementEventHandler{
		projectionService: projectionService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. Poison messages go to the DLQ and
// their offset is committed; projection failures are returned so the offset
// stays put and the event is redelivered.
func (h *SettlementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.SettlementEvent
	if err := json.Unmarshal(value, &event); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal settlement event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received settlement event",
		"transaction_id", event.TransactionID.String(),
		"wallet_id", event.WalletID.String(),
		"kind", event.Kind,
		"status", event.Status,
	)

	if err := h.projectionService.ApplyEvent(ctx, &event); err != nil {
		logger.Error("Failed to project settlement event",
			"transaction_id", event.TransactionID.String(),
			"wallet_id", event.WalletID.String(),
			"error", err,
		)
		return fmt.Errorf("projecting settlement event %s failed: %w", event.TransactionID.String(), err)
	}

	logger.Info("Settlement event applied", "transaction_id", event.TransactionID.String())
	return nil
}
