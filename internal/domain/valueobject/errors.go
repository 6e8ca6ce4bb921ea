package valueobject

import (
	"errors"
	"fmt"
)

// Rule violations. Every ValidationError unwraps to exactly one of these.
var (
	ErrRequired              = errors.New("value is required")
	ErrMalformedGUID         = errors.New("value is not a valid GUID")
	ErrGatewayMethodPrefix   = errors.New("gateway payment method id must start with " + GatewayMethodPrefix)
	ErrGatewayCustomerPrefix = errors.New("gateway customer id must start with " + GatewayCustomerPrefix)
	ErrUnsupportedBrand      = errors.New("card brand is not supported")
	ErrExpiryMonthOutOfRange = errors.New("expiry month must be between 1 and 12")
	ErrExpiryYearInPast      = errors.New("expiry year is before the current year")
	ErrLast4Length           = errors.New("last4 must have exactly 4 characters")
	ErrLast4NotNumeric       = errors.New("last4 must contain only digits")
	ErrRegisteredInFuture    = errors.New("registration date is in the future")
	ErrAmountNotPositive     = errors.New("amount must be greater than zero")
	ErrMalformedAmount       = errors.New("amount is not a valid decimal")
	ErrAmountTooLarge        = errors.New("amount exceeds the largest chargeable value")
)

// ValidationError reports the field that broke a construction rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}
