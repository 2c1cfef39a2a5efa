package shelfdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/app"
	"github.com/kailas-cloud/shelfdex/internal/config"
	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/shelfdex/internal/usecase/document"
)

// Internal interfaces, swapped for fakes in tests.
type documentUseCase interface {
	Create(ctx context.Context, id string, b book.Book) (documentuc.WriteResult, error)
	Get(ctx context.Context, id string) (book.Book, error)
	Update(ctx context.Context, id string, p patch.Patch) (documentuc.WriteResult, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, cursor string, limit int) ([]document.Entry, string, error)
	Count(ctx context.Context) (int, error)
}

type bulkUseCase interface {
	Load(ctx context.Context, items []dombulk.Item, progress bulkuc.Progress) (dombulk.Result, error)
	LoadJSON(ctx context.Context, raw []byte, progress bulkuc.Progress) (dombulk.Result, error)
	LoadFile(ctx context.Context, path string, progress bulkuc.Progress) (dombulk.Result, error)
}

type searchUseCase interface {
	Lexical(ctx context.Context, field, value string, size int) ([]hit.Hit, error)
	KNN(ctx context.Context, vector []float32, k int) ([]hit.Hit, error)
	KNNText(ctx context.Context, text string, k int) ([]hit.Hit, error)
}

type schemaUseCase interface {
	EnsureIndex(ctx context.Context) (bool, error)
}

type storeHandle interface {
	Ping(ctx context.Context) error
	Close()
}

// Client is the shelfdex entry point.
type Client struct {
	store     storeHandle
	schema    schemaUseCase
	docSvc    documentUseCase
	bulkSvc   bulkUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New connects to Redis and wires the client. The context bounds the
// initial readiness check. The index is created on the first write, or
// explicitly with EnsureIndex.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	if len(cc.addrs) == 0 {
		return nil, errors.New("shelfdex: database address required (use WithRedis)")
	}
	if cc.vectorDimensions <= 0 {
		return nil, errors.New("shelfdex: vector dimensions required (use WithVectorDimensions)")
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}
	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, provider := cc.appConfig()
	a, err := app.Build(ctx, cfg, provider, logger)
	if err != nil {
		return nil, fmt.Errorf("shelfdex: %w", err)
	}
	return fromApp(a, obs), nil
}

// appConfig maps options onto the service configuration. The returned
// provider is nil when the configuration names a built-in one.
func (c *clientConfig) appConfig() (config.Config, domain.Embedder) {
	cfg := config.Config{
		Database: config.DatabaseConfig{
			Addrs:     c.addrs,
			Password:  c.password,
			KeyPrefix: c.keyPrefix,
		},
		Index: config.IndexConfig{
			Name:             c.index,
			VectorDimensions: c.vectorDimensions,
			Similarity:       c.similarity,
			Algorithm:        c.algorithm,
			HNSWM:            c.hnswM,
			HNSWEFConstruct:  c.hnswEFConstruct,
		},
		Embedding: config.EmbeddingConfig{
			Provider:    c.provider,
			Backend:     c.backend,
			Model:       c.model,
			APIKey:      c.apiKey,
			BaseURL:     c.baseURL,
			OnFailure:   c.onFailure,
			Concurrency: c.concurrency,
			Cache:       config.CacheConfig{Enabled: c.cacheEnabled},
		},
	}
	cfg.ApplyDefaults()

	switch {
	case c.embedder != nil:
		cfg.Embedding.Provider, cfg.Embedding.Model = "custom", "custom"
		return cfg, &embedderAdapter{inner: c.embedder}
	case c.provider == "":
		cfg.Embedding.Provider = "none"
		return cfg, noopEmbedder{}
	default:
		return cfg, nil
	}
}

func fromApp(a *app.App, obs *observer) *Client {
	return &Client{
		store:     a.Store,
		schema:    a.Schema,
		docSvc:    a.Documents,
		bulkSvc:   a.Bulk,
		searchSvc: a.Search,
		healthSvc: a.Health,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndex creates the index if it does not exist. Reports whether it
// was created by this call.
func (c *Client) EnsureIndex(ctx context.Context) (created bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.ensure", start, err) }()

	if created, err = c.schema.EnsureIndex(ctx); err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return created, nil
}

// Books returns the document service.
func (c *Client) Books() *BookService {
	return &BookService{docs: c.docSvc, bulk: c.bulkSvc, obs: c.obs}
}

// Search returns the search service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, obs: c.obs}
}
