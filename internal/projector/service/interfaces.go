package service

import (
	"context"

	"github.com/investpro/ledger/internal/domain/shared"
)

// ProjectionService applies settlement events to the read model.
type ProjectionService interface {
	ApplyEvent(ctx context.Context, event *shared.SettlementEvent) error
}
