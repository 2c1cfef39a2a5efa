package shelfdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

// Embedder converts texts to vectors, one vector per text in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (EmbeddingResult, error)
}

// EmbeddingResult carries the vectors and the token usage of one call.
type EmbeddingResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter wraps a public Embedder to satisfy domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, texts []string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, texts)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	if len(r.Vectors) != len(texts) {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: got %d vectors for %d texts",
			domain.ErrEmbeddingProviderError, len(r.Vectors), len(texts))
	}
	return domain.EmbeddingResult{
		Vectors:      r.Vectors,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// HealthCheck forwards to the inner embedder when it has one.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

var errNoEmbedder = errors.New("shelfdex: embedder not configured (use WithEmbedder, WithOpenAI or WithOllama)")

// noopEmbedder fails every call. Writes degrade to documents without
// embeddings; vector search by text fails.
type noopEmbedder struct{}

func (noopEmbedder) Embed(context.Context, []string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, errNoEmbedder)
}

func (noopEmbedder) HealthCheck(context.Context) error { return errNoEmbedder }
