// Package app is the composition root: it wires every shelfdex service to
// one Redis store.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/config"
	"github.com/kailas-cloud/shelfdex/internal/db"
	dbRedis "github.com/kailas-cloud/shelfdex/internal/db/redis"
	"github.com/kailas-cloud/shelfdex/internal/domain"
	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
	"github.com/kailas-cloud/shelfdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/shelfdex/internal/repository/document"
	"github.com/kailas-cloud/shelfdex/internal/repository/embcache"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
	schemarepo "github.com/kailas-cloud/shelfdex/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/shelfdex/internal/repository/search"
	langchainEmb "github.com/kailas-cloud/shelfdex/internal/transport/langchain"
	openaiEmb "github.com/kailas-cloud/shelfdex/internal/transport/openai"
	"github.com/kailas-cloud/shelfdex/internal/usecase/augment"
	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/shelfdex/internal/usecase/document"
	embeddinguc "github.com/kailas-cloud/shelfdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/shelfdex/internal/usecase/health"
	schemauc "github.com/kailas-cloud/shelfdex/internal/usecase/schema"
	searchuc "github.com/kailas-cloud/shelfdex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Store     *dbRedis.Store
	Schema    *schemauc.Manager
	Documents *documentuc.Service
	Search    *searchuc.Service
	Bulk      *bulkuc.Loader
	Health    *healthuc.Service
}

// Build connects to Redis and assembles the services. A nil provider is
// built from cfg.Embedding. The caller owns Close.
func Build(ctx context.Context, cfg config.Config, provider domain.Embedder, logger *zap.Logger) (*App, error) {
	metrics.Register()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}

	a, err := Wire(cfg, store, provider, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

// Wire assembles the services over an existing store without touching it.
func Wire(cfg config.Config, store *dbRedis.Store, provider domain.Embedder, logger *zap.Logger) (*App, error) {
	dim := cfg.Index.VectorDimensions

	metric, err := domschema.ParseMetric(cfg.Index.Similarity)
	if err != nil {
		return nil, fmt.Errorf("index.similarity: %w", err)
	}
	algo, err := db.ParseVectorAlgorithm(cfg.Index.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("index.algorithm: %w", err)
	}
	books, err := domschema.Books(cfg.Index.Name, dim, metric)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	policy, err := augment.ParsePolicy(cfg.Embedding.OnFailure)
	if err != nil {
		return nil, fmt.Errorf("embedding.on_failure: %w", err)
	}

	if provider == nil {
		if provider, err = NewProvider(cfg.Embedding, logger); err != nil {
			return nil, err
		}
	}
	embedder, err := buildEmbedder(cfg, provider, store, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", dim),
		zap.String("on_failure", string(policy)),
		zap.Bool("cache", cfg.Embedding.Cache.Enabled),
	)

	keys := keyspace.New(cfg.Database.KeyPrefix)
	schemaMgr := schemauc.New(
		schemarepo.New(store, keys).WithVectorIndex(schemarepo.VectorIndexConfig{
			Algorithm:   algo,
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		}),
		books,
		logger,
	)
	docRepo := documentrepo.New(store, keys)
	augmenter := augment.New(embedder, dim, policy, logger)

	docSvc := documentuc.New(docRepo, schemaMgr, augmenter, cfg.Index.Name, dim).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	searchSvc := searchuc.New(searchrepo.New(store, keys).WithMetric(metric), augmenter, cfg.Index.Name, domschema.EmbeddingField, dim)
	loader := bulkuc.New(docRepo, schemaMgr, augmenter, cfg.Index.Name, dim, logger).
		WithConcurrency(cfg.Embedding.Concurrency)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(provider), docSvc)

	return &App{
		Store:     store,
		Schema:    schemaMgr,
		Documents: docSvc,
		Search:    searchSvc,
		Bulk:      loader,
		Health:    healthSvc,
	}, nil
}

// Close releases the Redis connection.
func (a *App) Close() { a.Store.Close() }

// NewProvider creates the base embedding provider named by cfg.Provider.
func NewProvider(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		}), nil
	case "langchain":
		emb, err := langchainEmb.NewEmbedder(&langchainEmb.Config{
			Backend: cfg.Backend,
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create langchain embedder: %w", err)
		}
		return emb, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// buildEmbedder assembles the decorator chain: provider -> cached -> instrumented.
func buildEmbedder(
	cfg config.Config, provider domain.Embedder, store *dbRedis.Store, logger *zap.Logger,
) (domain.Embedder, error) {
	embedder := provider
	if cfg.Embedding.Cache.Enabled {
		cached, err := embcache.New(provider, store, embcache.Options{
			KeyPrefix:  cfg.Database.KeyPrefix,
			Namespace:  cacheNamespace(cfg),
			MemorySize: cfg.Embedding.Cache.MemorySize,
			TTL:        time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		embedder = cached
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger), nil
}

// cacheNamespace keys cached vectors by provider, model and dimension so a
// config change never serves vectors from another embedding space.
func cacheNamespace(cfg config.Config) string {
	return fmt.Sprintf("%s:%s:%d", cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Index.VectorDimensions)
}

// embeddingHealthChecker adapts a domain.Embedder to health.EmbeddingChecker.
// Providers without a health check always pass.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
