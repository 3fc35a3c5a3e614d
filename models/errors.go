package models

import (
	"errors"
	"fmt"
)

// ValidationError marks input that must be rejected before any computation runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidMarket is wrapped when a stored market carries settings pricing cannot use.
var ErrInvalidMarket = errors.New("invalid market settings")

// ErrNotFound is returned by repositories when a keyed lookup has no match.
var ErrNotFound = errors.New("not found")
