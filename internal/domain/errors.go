package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by the store, the service and the HTTP layer.
// Callers match with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrNotFound            = errors.New("not found")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")
	ErrInvalidState        = errors.New("invalid state transition")
	ErrStorage             = errors.New("storage failure")
)

// Validationf builds an ErrValidation with a detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
