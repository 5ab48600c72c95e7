package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrInvalidCode     = errors.New("invalid handover code")
	ErrCodeExpired     = errors.New("handover code expired")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// NotFoundError names the missing entity and matches ErrNotFound.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}
