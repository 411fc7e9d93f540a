package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidInputError(t *testing.T) {
	cause := errors.New("unexpected EOF")

	err := InvalidInputError("decode body", cause)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.True(t, Is(err, cause))
	assert.Equal(t, "decode body: invalid input: unexpected EOF", err.Error())

	err = InvalidInputError("decode body", nil)
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Equal(t, "decode body: invalid input", err.Error())
}

func TestValidationError(t *testing.T) {
	err := ValidationError("data.properties")
	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrInvalidInput))
	assert.Equal(t, "data.properties is required: validation failed", err.Error())
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "status" }

func TestDeliveryError(t *testing.T) {
	err := DeliveryError("group", &statusError{code: 403})

	assert.True(t, Is(err, ErrDeliveryFailed))

	var se *statusError
	assert.True(t, As(err, &se))
	assert.Equal(t, 403, se.code)
	assert.Contains(t, err.Error(), "group: delivery failed")
}
