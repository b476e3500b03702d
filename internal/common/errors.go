package common

import "errors"

var (
	// Validation errors (user input rejected before reaching the backend).
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
