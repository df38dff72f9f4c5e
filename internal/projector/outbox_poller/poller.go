package outbox_poller

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/investpro/ledger/internal/config"
	"github.com/investpro/ledger/internal/domain/outbox"
	"github.com/investpro/ledger/internal/domain/shared"
)

// Poller drains the settlement outbox into the event topic. Messages that
// keep failing are marked FAILED_TO_PUBLISH after maxRetryAttempts so a bad
// row cannot wedge the relay.
type Poller struct {
	outboxRepo       outbox.Repository
	eventPublisher   EventPublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	eventPublisher EventPublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		eventPublisher:   eventPublisher,
		logger:           logger,
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start relays batches on a fixed interval until ctx is canceled
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Starting outbox poller",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopping")
			return
		case <-ticker.C:
			if err := p.relayBatch(ctx); err != nil {
				p.logger.Error("Outbox batch relay failed", "error", err)
			}
		}
	}
}

func (p *Poller) relayBatch(ctx context.Context) error {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return nil
	}

	p.logger.Debug("Relaying pending outbox messages", "count", len(messages))
	for _, msg := range messages {
		p.relayMessage(ctx, msg)
	}
	return nil
}

func (p *Poller) relayMessage(ctx context.Context, msg *outbox.Message) {
	logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID)
	if event, err := msg.GetSettlementEvent(); err == nil && event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	err := p.eventPublisher.PublishEvent(ctx, msg)
	if err == nil {
		logger.Debug("Outbox message relayed")
		return
	}
	logger.Error("Failed to relay outbox message", "current_attempts", msg.Attempts, "error", err)

	if err := p.outboxRepo.IncrementAttempts(ctx, msg.ID); err != nil {
		logger.Error("Failed to increment outbox attempts", "error", err)
		return
	}

	if msg.Attempts+1 >= p.maxRetryAttempts {
		logger.Warn("Outbox message exhausted its retries, marking FAILED_TO_PUBLISH",
			"attempts_made", msg.Attempts+1,
		)
		if err := p.outboxRepo.UpdateStatus(ctx, msg.ID, shared.OutboxStatusFailedToPublish); err != nil {
			logger.Error("Failed to mark outbox message FAILED_TO_PUBLISH", "error", err)
		}
	}
}
