package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidCoupon       = errors.New("invalid coupon code")
	ErrCouponMinimumNotMet = errors.New("coupon minimum order value not met")
	ErrPersistenceRead     = errors.New("persisted collection could not be read")
	ErrPricingInvariant    = errors.New("discount exceeds order value")
	ErrIllegalTransition   = errors.New("illegal transition of checkout stage")
)

// ValidationError names the fields that are missing or malformed.
type ValidationError struct {
	Fields []string
}

func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ValidationFields extracts the field list from err, if it is a ValidationError.
func ValidationFields(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
