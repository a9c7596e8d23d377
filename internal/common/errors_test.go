package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictErrorsWrapConflict(t *testing.T) {
	for _, err := range []error{ErrorUsernameTaken, ErrorEmailTaken, ErrorPositionTaken} {
		assert.ErrorIs(t, err, ErrorConflict)
		assert.NotErrorIs(t, err, ErrorValidation)
	}
	assert.False(t, errors.Is(ErrorUsernameTaken, ErrorEmailTaken), "username and email collisions must stay distinguishable")
}

func TestValidationErrorsWrapValidation(t *testing.T) {
	for _, err := range []error{ErrorNoFieldsToUpdate, ErrorPositionOutOfRange, ErrorUnsupportedKind, ErrorKindMismatch} {
		assert.ErrorIs(t, err, ErrorValidation)
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("missing required fields: %s", "title")
	assert.ErrorIs(t, err, ErrorValidation)
	assert.Equal(t, "missing required fields: title", err.Error())
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("error creating user: %w", ErrorEmailTaken)
	assert.Equal(t, "email already exists", Message(wrapped, "internal error"))
	assert.Equal(t, "internal error", Message(errors.New("boom"), "internal error"))
}
