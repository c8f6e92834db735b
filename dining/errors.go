/*
errors.go - Error taxonomy for the dining engine

ERROR KINDS:
  1. Validation - malformed input, reported before any side effect
  2. Conflict   - a business rule refused the write (no table, duplicate number)
  3. Storage    - connection or transaction failure; partial work rolled back
  4. NotFound   - referenced restaurant, table, menu item or order is missing

Every structured error unwraps to exactly one kind sentinel, so callers can
classify with errors.Is(err, ErrConflict) and still match specific sentinels
such as ErrNoTablesAvailable.

SEE ALSO:
  - api/handlers.go: maps kinds to HTTP status codes
*/
package dining

import (
	"errors"
	"fmt"
)

// =============================================================================
// KIND SENTINELS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
	ErrNotFound   = errors.New("not found")

	// ErrConcurrentModification is returned by a store when a competing
	// writer held the database lock. The allocator retries on it.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// SPECIFIC ERRORS
// =============================================================================

var (
	ErrNoTablesAvailable    = &ConflictError{Reason: "no tables available"}
	ErrDuplicateTableNumber = &ConflictError{Reason: "a table already exists with the given table number"}
	ErrOrderClosed          = &ConflictError{Reason: "the order is no longer open"}
	ErrAlreadyManager       = &ConflictError{Reason: "the user already manages a restaurant"}
	ErrDuplicateEmail       = &ConflictError{Reason: "an account with this email already exists"}

	ErrDateInPast = &ValidationError{Field: "date", Message: "date in past"}

	ErrMenuItemNotFound    = &NotFoundError{Resource: "menu item"}
	ErrOrderNotFound       = &NotFoundError{Resource: "order"}
	ErrRestaurantNotFound  = &NotFoundError{Resource: "restaurant"}
	ErrTableNotFound       = &NotFoundError{Resource: "table"}
	ErrReservationNotFound = &NotFoundError{Resource: "reservation"}
	ErrUserNotFound        = &NotFoundError{Resource: "user"}
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError describes malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError describes a write refused by a business rule.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("the %s does not exist", e.Resource) }

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StorageError wraps a driver failure with the operation that hit it.
// It matches both ErrStorage and the wrapped cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("an error occurred %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// storageErr wraps err unless it is already classified.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to the caller's input or a
// business rule rather than the store.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
