package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{KeyPrefix: "shelfdex:"})

	result, err := ce.Embed(context.Background(), []string{"dune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vectors) != 1 || result.Vectors[0][0] != 4 {
		t.Fatalf("unexpected vectors: %v", result.Vectors)
	}
	if result.TotalTokens != 5 {
		t.Errorf("expected TotalTokens=5, got %d", result.TotalTokens)
	}
	if len(ms.data) != 1 {
		t.Fatalf("expected one cached entry, got %d", len(ms.data))
	}
	for k := range ms.data {
		if !strings.HasPrefix(k, "shelfdex:emb_cache:") {
			t.Errorf("unexpected cache key %s", k)
		}
	}
}

func TestEmbed_NamespaceSeparatesModels(t *testing.T) {
	inner := &mockEmbedder{}
	small, ms := newTestCachedEmbedder(t, inner, Options{KeyPrefix: "shelfdex:", Namespace: "openai:small:3"})
	if _, err := small.Embed(context.Background(), []string{"dune"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ms.data["shelfdex:emb_cache:openai:small:3:"+strings.TrimPrefix(small.cacheKey("dune"), small.keyPrefix)]; !ok {
		t.Fatalf("cache keys = %v", ms.data)
	}

	large, err := New(inner, ms, Options{KeyPrefix: "shelfdex:", Namespace: "openai:large:3"}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if large.cacheKey("dune") == small.cacheKey("dune") {
		t.Fatal("different models must not share cache keys")
	}
	if _, err := large.Embed(context.Background(), []string{"dune"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inner.calls) != 2 {
		t.Errorf("inner embedder called %d times; another model must miss the cache", len(inner.calls))
	}
	if len(ms.data) != 2 {
		t.Errorf("expected one entry per model, got %d", len(ms.data))
	}
}

func TestEmbed_StoreHit(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.data[ce.cacheKey("dune")] = vectorToCacheBytes([]float32{0.4, 0.5, 0.6})

	result, err := ce.Embed(context.Background(), []string{"dune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vectors[0][0] != 0.4 {
		t.Errorf("expected cached vector, got %v", result.Vectors[0])
	}
	if result.TotalTokens != 0 {
		t.Errorf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if len(inner.calls) != 0 {
		t.Errorf("inner embedder called %d times", len(inner.calls))
	}
}

func TestEmbed_MemoryLayerShieldsStore(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{MemorySize: 8})
	ctx := context.Background()

	if _, err := ce.Embed(ctx, []string{"dune"}); err != nil {
		t.Fatal(err)
	}
	getsAfterFirst := ms.gets

	if _, err := ce.Embed(ctx, []string{"dune"}); err != nil {
		t.Fatal(err)
	}
	if ms.gets != getsAfterFirst {
		t.Errorf("store consulted on a memory hit: %d gets", ms.gets-getsAfterFirst)
	}
	if len(inner.calls) != 1 {
		t.Errorf("inner calls = %d, want 1", len(inner.calls))
	}
}

func TestEmbed_PartialHitsKeepOrder(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.data[ce.cacheKey("bb")] = vectorToCacheBytes([]float32{9, 9, 9})

	result, err := ce.Embed(context.Background(), []string{"a", "bb", "ccc", "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float32{1, 9, 3, 1}
	for i, v := range result.Vectors {
		if v[0] != want[i] {
			t.Errorf("vector[%d][0] = %v, want %v", i, v[0], want[i])
		}
	}
	if len(inner.calls) != 1 {
		t.Fatalf("inner calls = %d, want 1", len(inner.calls))
	}
	if got := inner.calls[0]; len(got) != 2 || got[0] != "a" || got[1] != "ccc" {
		t.Errorf("inner batch = %v, want deduplicated misses [a ccc]", got)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})

	_, err := ce.Embed(context.Background(), []string{"dune"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("nothing must be cached on error")
	}
}

func TestEmbed_StoreFailuresAreNotFatal(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("connection refused") }
	ms.setFn = func(_ context.Context, _ string, _ []byte) error { return errors.New("connection refused") }

	result, err := ce.Embed(context.Background(), []string{"dune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Vectors) != 1 {
		t.Errorf("vectors = %v", result.Vectors)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{})
	ms.data[ce.cacheKey("dune")] = []byte{1, 2, 3}

	result, err := ce.Embed(context.Background(), []string{"dune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vectors[0][0] != 4 || len(inner.calls) != 1 {
		t.Errorf("expected fresh embedding, got %v", result.Vectors[0])
	}
}

func TestEmbed_TTL(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner, Options{TTL: time.Hour})

	if _, err := ce.Embed(context.Background(), []string{"dune"}); err != nil {
		t.Fatal(err)
	}
	if ms.ttls[ce.cacheKey("dune")] != time.Hour {
		t.Errorf("ttl = %v", ms.ttls[ce.cacheKey("dune")])
	}
}

func TestEmbed_Metrics(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"layer", "result"})
	inner := &mockEmbedder{}
	ms := &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
	ce, err := New(inner, ms, Options{MemorySize: 4}, counter, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	_, _ = ce.Embed(ctx, []string{"dune"})
	_, _ = ce.Embed(ctx, []string{"dune"})

	if got := testutil.ToFloat64(counter.WithLabelValues("memory", "hit")); got != 1 {
		t.Errorf("memory hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("store", "miss")); got != 1 {
		t.Errorf("store misses = %v, want 1", got)
	}
}

func TestBytesToVector_Invalid(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd-length data")
	}
}
