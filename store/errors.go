package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no item exists at the requested key.
	ErrNotFound = errors.New("store: item not found")

	// ErrConditionFailed is returned when a single-item conditional write
	// fails its condition.
	ErrConditionFailed = errors.New("store: condition failed")
)

// CancellationReason describes why one write of a cancelled transaction failed.
type CancellationReason struct {
	// ConditionFailed is true when the write's condition did not hold.
	ConditionFailed bool
}

// TransactionCanceledError is returned when a transaction is cancelled with
// no effect. Reasons is index-aligned with the submitted writes.
type TransactionCanceledError struct {
	Reasons []CancellationReason
}

func (e *TransactionCanceledError) Error() string {
	return fmt.Sprintf("store: transaction cancelled (%d writes, first failed index %d)",
		len(e.Reasons), e.FailedIndex())
}

// FailedIndex returns the index of the first write whose condition failed,
// or -1 if no reason carries a condition failure.
func (e *TransactionCanceledError) FailedIndex() int {
	for i, r := range e.Reasons {
		if r.ConditionFailed {
			return i
		}
	}
	return -1
}

// ConditionFailedAt reports whether the write at index i failed its condition.
func (e *TransactionCanceledError) ConditionFailedAt(i int) bool {
	return i >= 0 && i < len(e.Reasons) && e.Reasons[i].ConditionFailed
}
