// Package common defines the sentinel errors shared by the repository,
// service and transport layers of slidedeck. Callers match them with
// errors.Is; layers wrap them with fmt.Errorf("...: %w", ...) to add context.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Uniqueness violations, all matching ErrorConflict.
var (
	ErrorUsernameTaken = &KindError{Msg: "username already exists", Kind: ErrorConflict}
	ErrorEmailTaken    = &KindError{Msg: "email already exists", Kind: ErrorConflict}
	ErrorPositionTaken = &KindError{Msg: "slide number already exists in this presentation", Kind: ErrorConflict}
)

// Caller mistakes, all matching ErrorValidation.
var (
	ErrorNoFieldsToUpdate   = &KindError{Msg: "no fields to update", Kind: ErrorValidation}
	ErrorPositionOutOfRange = &KindError{Msg: "slide number out of range", Kind: ErrorValidation}
	ErrorUnsupportedKind    = &KindError{Msg: "unsupported element type", Kind: ErrorValidation}
	ErrorKindMismatch       = &KindError{Msg: "element type does not match the stored element", Kind: ErrorValidation}
)

// KindError is a human-readable error that classifies as one of the
// taxonomy sentinels (ErrorValidation, ErrorConflict, ...).
type KindError struct {
	Msg  string
	Kind error
}

func (e *KindError) Error() string { return e.Msg }

func (e *KindError) Unwrap() error { return e.Kind }

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &KindError{Msg: fmt.Sprintf(format, args...), Kind: ErrorValidation}
}

// Message returns the message of the outermost KindError in err's chain,
// falling back to fallback when there is none.
func Message(err error, fallback string) string {
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Msg
	}
	return fallback
}
