package services

import "fmt"

// ValidationError marks client-input failures (missing address, missing
// amount/recipient, malformed wallet key) so the HTTP layer can answer 400
// instead of 500. Infrastructure failures stay plain errors.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// NewValidationError builds a ValidationError with a formatted detail string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}
