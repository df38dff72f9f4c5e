package settlement

import (
	"errors"
	"strconv"

	"github.com/investpro/ledger/internal/domain/shared"
)

// ErrInvestmentsDisabled indicates investment purchases are switched off
var ErrInvestmentsDisabled = errors.New("investments are disabled")

// ErrAmountOutOfBounds indicates the requested amount falls outside the
// configured limits for its kind. Amounts are in minor units.
type ErrAmountOutOfBounds struct {
	Kind   shared.TransactionKind
	Amount int64
	Min    int64
	Max    int64
}

func (e ErrAmountOutOfBounds) Error() string {
	return string(e.Kind) + " amount " + strconv.FormatInt(e.Amount, 10) +
		" outside limits [" + strconv.FormatInt(e.Min, 10) + ", " + strconv.FormatInt(e.Max, 10) + "]"
}

// Is implements errors.Is; a target with an empty kind matches any instance
func (e ErrAmountOutOfBounds) Is(target error) bool {
	t, ok := target.(ErrAmountOutOfBounds)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return true
	}
	return e.Kind == t.Kind && e.Amount == t.Amount
}

// ErrRailDisabled indicates the requested payment rail is switched off for
// the given direction
type ErrRailDisabled struct {
	Kind shared.TransactionKind
	Rail shared.Rail
}

func (e ErrRailDisabled) Error() string {
	return "rail " + string(e.Rail) + " is disabled for " + string(e.Kind)
}

// Is implements errors.Is; a target with an empty rail matches any instance
func (e ErrRailDisabled) Is(target error) bool {
	t, ok := target.(ErrRailDisabled)
	if !ok {
		return false
	}
	if t.Rail == "" {
		return true
	}
	return e.Kind == t.Kind && e.Rail == t.Rail
}
