package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain"
	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/query"
)

func mustLexical(t *testing.T, field, value string, size int) query.Lexical {
	t.Helper()
	q, err := query.NewLexical(field, value, size)
	if err != nil {
		t.Fatalf("NewLexical: %v", err)
	}
	return q
}

func mustKNN(t *testing.T, k int) query.KNN {
	t.Helper()
	q, err := query.NewKNN(testVector(), k, len(testVector()))
	if err != nil {
		t.Fatalf("NewKNN: %v", err)
	}
	return q
}

// --- Lexical ---

func TestLexical_KeepsEngineOrder(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "shelfdex:books:idx" {
			t.Errorf("index = %s", q.IndexName)
		}
		if q.Field != "title" || q.Query != "harry potter" || q.TopK != 3 {
			t.Errorf("query = %+v", q)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "shelfdex:books:9", Score: 2.5, Fields: map[string]string{"$": `{"title":"Harry Potter 2"}`}},
			{Key: "shelfdex:books:1", Score: 1.5, Fields: map[string]string{"$": `{"title":"Harry Potter 1"}`}},
		}}, nil
	}

	hits, err := repo.Lexical(context.Background(), "books", mustLexical(t, "title", "harry potter", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "9" || hits[1].ID != "1" {
		t.Errorf("order = %s, %s; want 9, 1", hits[0].ID, hits[1].ID)
	}
	if hits[0].Book.Title != "Harry Potter 2" || hits[0].Score != 2.5 {
		t.Errorf("hit[0] = %+v", hits[0])
	}
}

func TestLexical_NoMatches(t *testing.T) {
	repo, _ := newTestRepo(t)

	hits, err := repo.Lexical(context.Background(), "books", mustLexical(t, "author", "nobody", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits == nil || len(hits) != 0 {
		t.Errorf("expected empty non-nil hits, got %v", hits)
	}
}

func TestLexical_MissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: no such index", db.ErrIndexNotFound)}
	}

	hits, err := repo.Lexical(context.Background(), "books", mustLexical(t, "title", "x", 10))
	if err != nil || len(hits) != 0 {
		t.Errorf("hits=%v err=%v", hits, err)
	}
}

func TestLexical_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unavailable", fmt.Errorf("%w: dial", db.ErrUnavailable), domain.ErrStoreUnavailable},
		{"malformed", fmt.Errorf("%w: syntax error", db.ErrInvalidQuery), domain.ErrMalformedQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
				return nil, &db.Error{Op: db.OpSearch, Err: tt.err}
			}
			_, err := repo.Lexical(context.Background(), "books", mustLexical(t, "title", "x", 10))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// --- KNN ---

func TestKNN(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.Field != "embedding" || q.K != 2 || len(q.Vector) != 4 {
			t.Errorf("query = %+v", q)
		}
		if len(q.ReturnFields) != 1 || q.ReturnFields[0] != "$" {
			t.Errorf("return fields = %v", q.ReturnFields)
		}
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "shelfdex:books:a", Score: 0.02, Fields: map[string]string{"$": `{"title":"A"}`}},
			{Key: "shelfdex:books:b", Score: 0.29, Fields: map[string]string{"$": `{"title":"B"}`}},
		}}, nil
	}

	hits, err := repo.KNN(context.Background(), "books", "embedding", mustKNN(t, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 || hits[0].ID != "a" || hits[1].ID != "b" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Score < hits[1].Score {
		t.Error("nearest hit must come first")
	}
}

func TestKNN_ScoreByMetric(t *testing.T) {
	tests := []struct {
		name      string
		metric    domschema.Metric
		distances []float64
		want      []float64
	}{
		{"cosine", domschema.Cosine, []float64{0.1, 1.5}, []float64{0.9, -0.5}},
		{"inner product", domschema.Dot, []float64{0.25, 1.75}, []float64{0.75, -0.75}},
		{"l2 keeps distance", domschema.L2, []float64{4, 9}, []float64{4, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			repo.WithMetric(tt.metric)
			ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
				entries := make([]db.SearchEntry, len(tt.distances))
				for i, d := range tt.distances {
					entries[i] = db.SearchEntry{
						Key:    fmt.Sprintf("shelfdex:books:%d", i),
						Score:  d,
						Fields: map[string]string{"$": `{"title":"T"}`},
					}
				}
				return &db.SearchResult{Total: len(entries), Entries: entries}, nil
			}

			hits, err := repo.KNN(context.Background(), "books", "embedding", mustKNN(t, len(tt.distances)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(hits) != len(tt.want) {
				t.Fatalf("hits = %+v", hits)
			}
			for i, w := range tt.want {
				if d := hits[i].Score - w; d > 1e-9 || d < -1e-9 {
					t.Errorf("hit %d score = %v, want %v", i, hits[i].Score, w)
				}
			}
		})
	}
}

func TestKNN_BadDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "shelfdex:books:a", Fields: map[string]string{"$": `{not json`}},
		}}, nil
	}

	if _, err := repo.KNN(context.Background(), "books", "embedding", mustKNN(t, 1)); err == nil {
		t.Error("expected decode error")
	}
}
