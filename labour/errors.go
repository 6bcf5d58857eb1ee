package labour

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no assignment row exists for the identifier.
	ErrNotFound = errors.New("labour: assignment not found")
	// ErrConflict signals the record changed concurrently; the caller must
	// re-read the fresh state before retrying.
	ErrConflict = errors.New("labour: assignment changed concurrently")
)

// InvalidTransitionError reports an operation that is not legal from the
// assignment's current status. The record is left untouched.
type InvalidTransitionError struct {
	Current Status
	Op      Operation
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("labour: %s not permitted from status %s", e.Op, e.Current)
}

// ValidationError rejects operator input. RequiredTotal carries the exact
// collected amount a correction must confirm; it is nil when the rejected
// input has no reconciled total attached. A pointer keeps a legitimate
// required total of 0.00 distinguishable from absence.
type ValidationError struct {
	Msg           string
	RequiredTotal *float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("labour: %s", e.Msg)
}

// ReconciliationPendingError refuses SETTLE while a balance remains.
// Remaining is signed: positive means the labour person under-collected,
// negative means a refund is owed. RequiredTotal is the exact collected
// amount that clears the balance.
type ReconciliationPendingError struct {
	Remaining     float64
	RequiredTotal float64
}

func (e *ReconciliationPendingError) Error() string {
	return fmt.Sprintf("labour: settlement pending reconciliation: remaining %.2f, required total collection %.2f",
		e.Remaining, e.RequiredTotal)
}
