package search

import (
	"context"

	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/query"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Lexical(ctx context.Context, index string, q query.Lexical) ([]hit.Hit, error)
	KNN(ctx context.Context, index, field string, q query.KNN) ([]hit.Hit, error)
}

// QueryEmbedder turns query text into a vector.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
