package sequence

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Allocator hands out gap-free monotonically increasing values from named
// counters. Allocation happens inside the caller's database transaction so a
// rolled-back wallet creation never burns an account number.
type Allocator interface {
	// Next returns the next value of the named counter, creating the
	// counter at its configured floor on first use.
	Next(ctx context.Context, name string) (int64, error)

	WithTx(tx pgx.Tx) Allocator
}

// Counter names used by the engine.
const (
	CounterAccountNo = "account_no"
)

// ErrUnknownCounter indicates a counter name with no configured floor
type ErrUnknownCounter struct {
	Name string
}

func (e ErrUnknownCounter) Error() string {
	return "unknown sequence counter: " + e.Name
}
