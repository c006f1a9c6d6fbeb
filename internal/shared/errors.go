package shared

import "errors"

var (
	// ErrNotFound indicates the entity is absent or outside tenant scope.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates the entity is in the wrong state for the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvariant indicates the operation would break a ledger invariant.
	ErrInvariant = errors.New("invariant violation")
	// ErrConflict indicates a uniqueness collision under concurrency.
	ErrConflict = errors.New("conflict")
)
