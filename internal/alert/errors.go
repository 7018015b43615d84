package alert

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSymbol    = errors.New("symbol is required")
	ErrInvalidAction    = errors.New("action must be buy or sell")
	ErrInvalidOrderType = errors.New("orderType must be market or limit")
	ErrMissingQuantity  = errors.New("quantity is required")
	ErrInvalidQuantity  = errors.New("quantity must be a positive number")
	ErrMissingPrice     = errors.New("price is required for limit orders")
	ErrInvalidPrice     = errors.New("price must be a positive number")
)

// ValidationError reports an alert field that cannot be turned into an order.
// Err is one of the sentinel errors of this package.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, value string, err error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Err: err}
}

// IsValidation reports whether err was caused by bad alert input.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
