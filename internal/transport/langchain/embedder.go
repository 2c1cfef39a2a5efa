// Package langchain adapts langchaingo embedders (OpenAI-compatible or
// Ollama backends) to domain.Embedder.
package langchain

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/metrics"
)

// Backend names.
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// Config holds the langchaingo backend settings.
type Config struct {
	Backend   string // openai | ollama
	BaseURL   string
	APIKey    string
	Model     string
	BatchSize int
	Logger    *zap.Logger
}

// Embedder implements domain.Embedder over a langchaingo embedder.
type Embedder struct {
	embedder embeddings.Embedder
	backend  string
	model    string
	logger   *zap.Logger
}

// NewEmbedder builds the backend client and wraps it in a langchaingo embedder.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch cfg.Backend {
	case BackendOpenAI, "":
		token := cfg.APIKey
		if token == "" {
			// local OpenAI-compatible servers accept any token
			token = "none"
		}
		opts := []openai.Option{openai.WithToken(token), openai.WithEmbeddingModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		client, err = openai.New(opts...)
	case BackendOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		client, err = ollama.New(opts...)
	default:
		return nil, fmt.Errorf("unknown langchain backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Backend, err)
	}

	embOpts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.BatchSize > 0 {
		embOpts = append(embOpts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	emb, err := embeddings.NewEmbedder(client, embOpts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = BackendOpenAI
	}
	return newWithEmbedder(emb, backend, cfg.Model, cfg.Logger), nil
}

func newWithEmbedder(emb embeddings.Embedder, backend, model string, logger *zap.Logger) *Embedder {
	return &Embedder{embedder: emb, backend: backend, model: model, logger: logger}
}

// Embed implements domain.Embedder. langchaingo reports no token usage.
func (e *Embedder) Embed(ctx context.Context, texts []string) (domain.EmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.EmbeddingResult{}, nil
	}

	provider := "langchain-" + e.backend
	start := time.Now()
	raw, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("%s embeddings: %w: %w", e.backend, domain.ErrEmbeddingProviderError, err)
	}
	if len(raw) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "count_mismatch").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(raw), domain.ErrEmbeddingProviderError)
	}

	vectors := make([][]float32, len(raw))
	for i, v := range raw {
		if vectors[i], err = domain.Normalize(v); err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embedding %d: %w", i, err)
		}
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(time.Since(start).Seconds())
	e.logger.Debug("Embedded batch", zap.String("backend", e.backend), zap.Int("texts", len(texts)))

	return domain.EmbeddingResult{Vectors: vectors}, nil
}

// HealthCheck embeds a probe string.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.embedder.EmbedQuery(ctx, "ping"); err != nil {
		return fmt.Errorf("%s health check: %w", e.backend, err)
	}
	return nil
}
