package shelfdex

import "github.com/kailas-cloud/shelfdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrNotFound               = domain.ErrNotFound
	ErrStoreUnavailable       = domain.ErrStoreUnavailable
	ErrMalformedQuery         = domain.ErrMalformedQuery
	ErrPartialBulkFailure     = domain.ErrPartialBulkFailure
	ErrEmbeddingFailure       = domain.ErrEmbeddingFailure
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrRateLimited            = domain.ErrRateLimited
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
)

// ValidationError names the rejected input field.
type ValidationError = domain.ValidationError

// EmbeddingFailureError reports a document that could not be embedded.
type EmbeddingFailureError = domain.EmbeddingFailureError
