package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/investpro/ledger/internal/domain/sequence"
	"github.com/investpro/ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// SequenceRepository implements the sequence.Allocator interface for PostgreSQL.
// Counters live in a single table; allocation is one upsert-increment
// statement so concurrent allocators serialize on the row lock and no value
// is ever handed out twice.
type SequenceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
	floors  map[string]int64
}

// NewSequenceRepository creates a new PostgreSQL sequence allocator.
// floors maps counter names to the first value each counter hands out.
func NewSequenceRepository(logger *slog.Logger, db *persistence.PostgresDB, floors map[string]int64) sequence.Allocator {
	return &SequenceRepository{
		querier: db.Pool(),
		logger:  logger,
		floors:  floors,
	}
}

// WithTx wraps the allocator with a transaction so allocation commits or
// rolls back together with the wallet creation that consumes the value
func (r *SequenceRepository) WithTx(tx pgx.Tx) sequence.Allocator {
	return &SequenceRepository{
		querier: tx,
		logger:  r.logger,
		floors:  r.floors,
	}
}

// Next returns the next value of the named counter, creating the counter at
// its configured floor on first use
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	floor, ok := r.floors[name]
	if !ok {
		return 0, sequence.ErrUnknownCounter{Name: name}
	}

	query := `
		INSERT INTO sequence_counters (name, last_value)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET last_value = sequence_counters.last_value + 1
		RETURNING last_value
	`

	var value int64
	if err := r.querier.QueryRow(ctx, query, name, floor).Scan(&value); err != nil {
		r.logger.Error("Failed to allocate sequence value", "counter", name, "error", err)
		return 0, fmt.Errorf("failed to allocate sequence value for %s: %w", name, err)
	}

	return value, nil
}
