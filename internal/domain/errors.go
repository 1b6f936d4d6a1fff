package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation signals a malformed query or product. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrEncoding signals that an item's embedding could not be computed.
	ErrEncoding = errors.New("encoding failed")
	// ErrStoreUnavailable signals that the vector store is unreachable or the
	// call timed out. Retryable.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrUnsupported signals a retrieval type that is recognized at the
	// boundary but not implemented by the orchestrator.
	ErrUnsupported = errors.New("unsupported retrieval type")
	// ErrNotReady signals that the service cannot serve requests yet.
	ErrNotReady = errors.New("not ready")
)

// ValidationError is a single violated constraint on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a field-level validation error.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidationErrors collects every violated constraint found during
// construction. A record is rejected whole, never partially accepted.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

func (e ValidationErrors) Unwrap() error { return ErrValidation }

// Messages returns the individual violation strings for error responses.
func (e ValidationErrors) Messages() []string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return msgs
}
