package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all manager implementations.
var (
	// ErrStoreNotSupported is returned when an operation is structurally
	// impossible for a store: a write to a read-only store, a store the
	// host never wired up, or a write routed through Auto. It must reach
	// the caller of the triggering operation, never be silently swallowed.
	ErrStoreNotSupported = errors.New("store not supported")

	// ErrValueNotSettable is returned when a store could accept writes in
	// general but not for this particular setting (for example a dotenv
	// write for a setting with no definition to project an env var from).
	ErrValueNotSettable = fmt.Errorf("%w: value not settable", ErrStoreNotSupported)
)

// NotSupported wraps ErrStoreNotSupported with the store kind and operation
// so the failure names what was attempted.
func NotSupported(kind Kind, operation string) error {
	return fmt.Errorf("%s store: %s: %w", kind, operation, ErrStoreNotSupported)
}

// StoreError is a custom error type for store-specific failures with
// additional context.
type StoreError struct {
	Store     string // The store name (e.g., "dotenv", "database")
	Operation string // The operation that failed (e.g., "get", "reset")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s store failed: %s: %v", e.Operation, e.Store, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s store failed: %s", e.Operation, e.Store, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given store, operation,
// message, and wrapped error.
func NewStoreError(store, operation, message string, err error) *StoreError {
	return &StoreError{
		Store:     store,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
