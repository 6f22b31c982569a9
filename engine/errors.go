package engine

import "errors"

// Validation errors are raised before any state mutation; a persistence
// failure after an optimistic apply triggers rollback and is re-thrown
// wrapped in ErrPersistenceFailure.
var (
	// ErrInsufficientQuantity is returned when a borrow asks for more than
	// the resource has available (or a non-positive amount).
	ErrInsufficientQuantity = errors.New("insufficient quantity available")

	// ErrInvalidReturnQuantity is returned when a return is non-positive,
	// exceeds the outstanding quantity, or targets a completed transaction.
	ErrInvalidReturnQuantity = errors.New("invalid return quantity")

	// ErrEntityNotFound is returned when a referenced resource, transaction,
	// or item does not exist in the store.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrPersistenceFailure wraps a failed remote write attempted while
	// online.
	ErrPersistenceFailure = errors.New("persistence failure")
)
