package service

import (
	"errors"

	"pos-backend/internal/pricing"
)

// Validation failures are rejected before any write and are recoverable by
// resubmitting corrected input. Anything else that escapes a service is a
// transaction failure: the invoice does not exist afterwards.
var (
	ErrMissingDate         = errors.New("invoice date is required")
	ErrInvalidDate         = errors.New("invoice date is not a recognized date/time")
	ErrEmptyCart           = errors.New("invoice must contain at least one item")
	ErrInsufficientPayment = errors.New("cash + card payment does not cover the net total")
	ErrInvalidCredentials  = errors.New("invalid username or password")
)

// IsValidationError reports whether err should surface as a 400 rather than
// a 500.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrMissingDate,
		ErrInvalidDate,
		ErrEmptyCart,
		ErrInsufficientPayment,
		pricing.ErrInvalidLine,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
