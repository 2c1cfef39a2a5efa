package chi

import (
	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
)

// BookResponse is a stored document. EmbeddingFailure is set when the
// document was stored without an embedding.
type BookResponse struct {
	ID               string    `json:"id"`
	Document         book.Book `json:"document"`
	EmbeddingFailure string    `json:"embedding_failure,omitempty"`
}

// BookListResponse is one page of documents.
type BookListResponse struct {
	Items      []BookResponse `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

// SearchResponse lists hits in engine order.
type SearchResponse struct {
	Hits  []hit.Hit `json:"hits"`
	Total int       `json:"total"`
}

// VectorSearchRequest is the POST /api/books/vector-search body. Exactly one
// of Vector or Query is expected.
type VectorSearchRequest struct {
	Vector []float32 `json:"vector,omitempty"`
	Query  string    `json:"query,omitempty"`
	K      int       `json:"k"`
}

// BulkResponse reports a bulk load. Message is set on partial failure.
type BulkResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Failures  []dombulk.Failure `json:"failures"`
	Degraded  []dombulk.Failure `json:"degraded,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Documents *int              `json:"documents,omitempty"`
}

func bookToResponse(id string, b book.Book, failure *domain.EmbeddingFailureError) BookResponse {
	resp := BookResponse{ID: id, Document: b}
	if failure != nil {
		resp.EmbeddingFailure = failure.Error()
	}
	return resp
}

func entriesToResponse(entries []document.Entry, next string) BookListResponse {
	items := make([]BookResponse, len(entries))
	for i, e := range entries {
		items[i] = BookResponse{ID: e.ID, Document: e.Book}
	}
	return BookListResponse{Items: items, NextCursor: next, HasMore: next != ""}
}

func hitsToResponse(hits []hit.Hit) SearchResponse {
	if hits == nil {
		hits = []hit.Hit{}
	}
	return SearchResponse{Hits: hits, Total: len(hits)}
}

func bulkToResponse(res dombulk.Result) BulkResponse {
	failures := res.Failures
	if failures == nil {
		failures = []dombulk.Failure{}
	}
	resp := BulkResponse{
		Succeeded: res.Succeeded,
		Failed:    len(failures),
		Failures:  failures,
		Degraded:  res.Degraded,
	}
	if err := res.Err(); err != nil {
		resp.Message = err.Error()
	}
	return resp
}
