package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Common service errors. Every failure here is caller-recoverable: state is
// never left partially mutated, the caller re-renders and retries.
var (
	// ErrEmptyCart is returned when a commit is attempted with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvoiceNotFound is returned when a journal operation names an
	// unknown invoice id.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// ValidationError reports bad user input to a ledger or engine operation.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}

// InsufficientStockError reports the first cart line whose requested
// quantity exceeds the item's current stock. The entire commit is rejected.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// UniquenessConflictError reports an invoice id collision at commit time.
// The journal is never silently overwritten.
type UniquenessConflictError struct {
	InvoiceID string
}

func (e *UniquenessConflictError) Error() string {
	return fmt.Sprintf("invoice id %s already exists", e.InvoiceID)
}

// ReconciliationError reports a compound write whose second document could
// not be confirmed after the first applied. AppliedKey committed, FailedKey
// did not; the two documents need manual reconciliation.
type ReconciliationError struct {
	AppliedKey string
	FailedKey  string
	Err        error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("compound write incomplete: %q applied but %q failed: %v",
		e.AppliedKey, e.FailedKey, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }
