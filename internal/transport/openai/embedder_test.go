package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func newServer(t *testing.T, handler func(texts []string) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, body := handler(req.Input)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string) *Embedder {
	return NewEmbedder(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	srv := newServer(t, func(texts []string) (int, any) {
		if len(texts) != 1 || texts[0] != "hello world" {
			t.Errorf("input = %v", texts)
		}
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{{Object: "embedding", Embedding: []float32{0.1, 0.2, 0.3, 0.4}}}
		resp.Usage.PromptTokens = 42
		resp.Usage.TotalTokens = 42
		return http.StatusOK, resp
	})

	result, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"hello world"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Vectors) != 1 || len(result.Vectors[0]) != 4 || result.Vectors[0][3] != 0.4 {
		t.Fatalf("vectors = %v", result.Vectors)
	}
	if result.PromptTokens != 42 || result.TotalTokens != 42 {
		t.Errorf("usage = %d/%d, want 42/42", result.PromptTokens, result.TotalTokens)
	}
}

func TestEmbedder_Embed_RestoresInputOrder(t *testing.T) {
	srv := newServer(t, func(_ []string) (int, any) {
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{
			{Object: "embedding", Embedding: []float32{0.3, 0.4}, Index: 1},
			{Object: "embedding", Embedding: []float32{0.1, 0.2}, Index: 0},
		}
		return http.StatusOK, resp
	})

	result, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if result.Vectors[0][0] != 0.1 || result.Vectors[1][0] != 0.3 {
		t.Errorf("vectors = %v", result.Vectors)
	}
}

func TestEmbedder_Embed_Empty(t *testing.T) {
	result, err := newTestEmbedder("http://unused").Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vectors != nil {
		t.Errorf("expected no vectors, got %v", result.Vectors)
	}
}

func TestEmbedder_Embed_CountMismatch(t *testing.T) {
	srv := newServer(t, func(_ []string) (int, any) {
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{{Object: "embedding", Embedding: []float32{0.1}}}
		return http.StatusOK, resp
	})

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbedder_Embed_DuplicateIndex(t *testing.T) {
	srv := newServer(t, func(_ []string) (int, any) {
		resp := embeddingResponse{Object: "list", Model: "test-model"}
		resp.Data = []embeddingData{
			{Object: "embedding", Embedding: []float32{0.1}, Index: 0},
			{Object: "embedding", Embedding: []float32{0.2}, Index: 0},
		}
		return http.StatusOK, resp
	})

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestEmbedder_RateLimited(t *testing.T) {
	srv := newServer(t, func(_ []string) (int, any) {
		return http.StatusTooManyRequests, map[string]any{
			"error": map[string]any{"message": "rate limit exceeded", "type": "rate_limit_error"},
		}
	})

	_, err := newTestEmbedder(srv.URL).Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected provider error, got %v", err)
	}
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected rate limited, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("extractDetail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("extractDetail = %q, want empty", got)
	}
}
