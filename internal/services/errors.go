package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrAuthFailure = errors.New("invalid username or password")
	ErrPermission  = errors.New("insufficient permissions")
	ErrSelfDelete  = errors.New("cannot delete the currently logged-in user")
	ErrEmptyCart   = errors.New("no items in order")
	ErrAlreadyPaid = errors.New("order is paid; mark it unpaid before cancelling")
)

// ValidationError reports bad input that the caller can correct and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
