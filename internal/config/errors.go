package config

import (
	"errors"
	"fmt"
)

// Validation errors for setting values.
var (
	ErrRequired        = errors.New("a value is required")
	ErrPatternMismatch = errors.New("value does not match the required format")
	ErrNotInteger      = errors.New("value must be a whole number")
	ErrNotBoolean      = errors.New("value must be yes or no")
	ErrMismatch        = errors.New("values do not match")
)

// ValidationError reports a setting that could not be resolved to a valid value.
// The rejected value itself is never included.
type ValidationError struct {
	Setting string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Setting, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
