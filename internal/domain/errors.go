package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals input rejected before any store call.
	ErrValidation = errors.New("validation error")
	// ErrNotFound signals a missing document.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable signals the engine could not be reached or the outcome is unknown.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrMalformedQuery signals a query the engine refused to parse.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrPartialBulkFailure signals that some items of a bulk call failed.
	ErrPartialBulkFailure = errors.New("partial bulk failure")
	// ErrEmbeddingFailure signals that a document could not be embedded.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrVectorDimMismatch signals a vector whose length differs from the index dimension.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// ValidationError names the offending input. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// EmbeddingFailureError records a document whose embedding could not be computed.
// It matches both ErrEmbeddingFailure and its cause.
type EmbeddingFailureError struct {
	DocID string
	Cause error
}

func (e *EmbeddingFailureError) Error() string {
	return fmt.Sprintf("%s for document %q: %v", ErrEmbeddingFailure.Error(), e.DocID, e.Cause)
}

func (e *EmbeddingFailureError) Unwrap() []error { return []error{ErrEmbeddingFailure, e.Cause} }
