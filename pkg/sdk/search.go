package shelfdex

import (
	"context"
	"fmt"
	"time"
)

// SearchService runs lexical and vector queries.
type SearchService struct {
	svc searchUseCase
	obs *observer
}

// Lexical matches value against one of title, author or description.
// A zero size uses the default.
func (s *SearchService) Lexical(ctx context.Context, field, value string, size int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.lexical", start, err) }()

	if hits, err = s.svc.Lexical(ctx, field, value, size); err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	return hits, nil
}

// KNN returns the k nearest documents to vector, best first.
func (s *SearchService) KNN(ctx context.Context, vector []float32, k int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.knn", start, err) }()

	if hits, err = s.svc.KNN(ctx, vector, k); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// KNNText embeds text and runs KNN with the result.
func (s *SearchService) KNNText(ctx context.Context, text string, k int) (hits []Hit, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search.knn_text", start, err) }()

	if hits, err = s.svc.KNNText(ctx, text, k); err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}
