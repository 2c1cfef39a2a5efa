package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Options tune the cache layers.
type Options struct {
	KeyPrefix  string        // e.g. "shelfdex:"
	Namespace  string        // embedding space, e.g. "openai:text-embedding-3-small:768"
	MemorySize int           // in-process LRU entries; 0 disables the memory layer
	TTL        time.Duration // Redis entry lifetime; 0 keeps entries forever
}

// CachedEmbedder caches embeddings in memory and in a key-value store.
// Lookups go memory, then store, then the inner embedder for the misses.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	mem        *lru.Cache[string, []float32]
	keyPrefix  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with labels "layer" ("memory"/"store") and
// "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Embedder,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	keyPrefix := opts.KeyPrefix + "emb_cache:"
	if opts.Namespace != "" {
		keyPrefix += opts.Namespace + ":"
	}
	c := &CachedEmbedder{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix,
		ttl:        opts.TTL,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
	if opts.MemorySize > 0 {
		mem, err := lru.New[string, []float32](opts.MemorySize)
		if err != nil {
			return nil, fmt.Errorf("create memory cache: %w", err)
		}
		c.mem = mem
	}
	return c, nil
}

// Embed returns cached vectors where possible and sends only the misses
// (deduplicated) to the inner embedder in one batch.
// Token usage covers the inner call only; cache hits consume none.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) (domain.EmbeddingResult, error) {
	vectors := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missTexts []string
	missPos := make(map[string][]int)
	for i, text := range texts {
		keys[i] = c.cacheKey(text)
		if vec, ok := c.lookup(ctx, keys[i]); ok {
			vectors[i] = vec
			continue
		}
		if _, seen := missPos[text]; !seen {
			missTexts = append(missTexts, text)
		}
		missPos[text] = append(missPos[text], i)
	}

	if len(missTexts) == 0 {
		return domain.EmbeddingResult{Vectors: vectors}, nil
	}

	result, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed texts: %w", err)
	}
	if len(result.Vectors) != len(missTexts) {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: expected %d vectors, got %d",
			domain.ErrEmbeddingProviderError, len(missTexts), len(result.Vectors))
	}

	for j, text := range missTexts {
		vec := result.Vectors[j]
		positions := missPos[text]
		for _, i := range positions {
			vectors[i] = vec
		}
		c.put(ctx, keys[positions[0]], vec)
	}

	return domain.EmbeddingResult{
		Vectors:      vectors,
		PromptTokens: result.PromptTokens,
		TotalTokens:  result.TotalTokens,
	}, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	if c.mem != nil {
		if vec, ok := c.mem.Get(key); ok {
			c.incCache("memory", "hit")
			return vec, true
		}
		c.incCache("memory", "miss")
	}

	vec, ok := c.getFromStore(ctx, key)
	if !ok {
		c.incCache("store", "miss")
		return nil, false
	}
	c.incCache("store", "hit")
	if c.mem != nil {
		c.mem.Add(key, vec)
	}
	return vec, true
}

func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	if c.mem != nil {
		c.mem.Add(key, vec)
	}

	data := vectorToCacheBytes(vec)
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) incCache(layer, result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(layer, result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromStore(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := bytesToVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func vectorToCacheBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
