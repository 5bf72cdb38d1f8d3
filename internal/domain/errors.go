package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request/transaction layer. Handlers map these to
// error responses; anything not matched here is treated as a storage error.
var (
	ErrNotFound         = errors.New("not found")
	ErrSoldOut          = errors.New("no seats remaining")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrFlightDeleted    = errors.New("flight already deleted")
	ErrUsernameTaken    = errors.New("username already exists")
	ErrBadCredentials   = errors.New("wrong username or password")

	// ErrCapacityBelowSold rejects a capacity revision that would shrink
	// total_seats below the number of seats already sold.
	ErrCapacityBelowSold = errors.New("total_seats smaller than sold seats")

	// ErrSeatInvariant rejects a revision with remaining_seats > total_seats.
	ErrSeatInvariant = errors.New("remaining_seats greater than total_seats")
)

// ValidationError reports a bad request field. It fails only the request,
// never the connection.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict groups the errors caused by a request losing a race or
// violating a state invariant that another request may have changed.
func IsConflict(err error) bool {
	return errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrFlightDeleted) ||
		errors.Is(err, ErrUsernameTaken) ||
		errors.Is(err, ErrCapacityBelowSold) ||
		errors.Is(err, ErrSeatInvariant)
}
