package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/query"
)

// DefaultTextK is the neighbour count for text queries that give none.
const DefaultTextK = 5

// Service runs lexical and vector searches against one index. Queries are
// validated before any engine call; ranking is left to the engine.
type Service struct {
	repo        Repository
	embed       QueryEmbedder
	index       string
	vectorField string
	dim         int
}

// New creates a search service.
func New(repo Repository, embed QueryEmbedder, index, vectorField string, dim int) *Service {
	return &Service{repo: repo, embed: embed, index: index, vectorField: vectorField, dim: dim}
}

// Lexical matches value against one of the allowed text fields. Hits come
// back by descending engine score; tie order is engine-defined.
func (s *Service) Lexical(ctx context.Context, field, value string, size int) ([]hit.Hit, error) {
	q, err := query.NewLexical(field, value, size)
	if err != nil {
		return nil, err
	}
	hits, err := s.repo.Lexical(ctx, s.index, q)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return hits, nil
}

// KNN returns the k documents nearest to vector, nearest first.
func (s *Service) KNN(ctx context.Context, vector []float32, k int) ([]hit.Hit, error) {
	q, err := query.NewKNN(vector, k, s.dim)
	if err != nil {
		return nil, err
	}
	hits, err := s.repo.KNN(ctx, s.index, s.vectorField, q)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// KNNText embeds text and runs KNN with it. k <= 0 means DefaultTextK.
func (s *Service) KNNText(ctx context.Context, text string, k int) ([]hit.Hit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("query", "is required")
	}
	if k <= 0 {
		k = DefaultTextK
	}
	if k > query.MaxK {
		return nil, domain.NewValidationError("k", "must be at most %d", query.MaxK)
	}

	vec, err := s.embed.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.KNN(ctx, vec, k)
}
