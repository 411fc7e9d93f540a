package errors

import (
	"errors"
	"fmt"
)

// Request failure categories

var (
	// ErrUnauthorized indicates a missing or mismatched webhook secret
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput indicates a body that is not valid JSON
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a well-formed payload missing required fields
	ErrValidation = errors.New("validation failed")

	// ErrDeliveryFailed indicates the message could not be delivered
	ErrDeliveryFailed = errors.New("delivery failed")
)

// InvalidInputError creates an invalid input error with context
func InvalidInputError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", reason, ErrInvalidInput)
	}
	return fmt.Errorf("%s: %w: %w", reason, ErrInvalidInput, err)
}

// ValidationError creates a validation error for a missing field
func ValidationError(field string) error {
	return fmt.Errorf("%s is required: %w", field, ErrValidation)
}

// DeliveryError wraps a failed send to a named destination
func DeliveryError(destination string, err error) error {
	return fmt.Errorf("%s: %w: %w", destination, ErrDeliveryFailed, err)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
