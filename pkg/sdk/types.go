package shelfdex

import (
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
)

type (
	// Book is a stored document. Empty strings and nil numbers mean absent.
	Book = book.Book
	// Hit is one search result in engine order.
	Hit = hit.Hit
	// Entry is a document with its id.
	Entry = document.Entry
	// BulkResult aggregates a bulk load.
	BulkResult = dombulk.Result
	// BulkFailure is one failed or degraded bulk item.
	BulkFailure = dombulk.Failure
	// Progress receives the number of embedded items so far. It may be
	// called from several goroutines.
	Progress = bulkuc.Progress
)

// Float and Integer are the numeric field types of Book.
type (
	Float   = book.Float
	Integer = book.Integer
)

// FloatPtr returns a pointer to v as a Float.
func FloatPtr(v float64) *Float { return book.FloatPtr(v) }

// IntegerPtr returns a pointer to v as an Integer.
func IntegerPtr(v int64) *Integer { return book.IntegerPtr(v) }

// BulkItem is one document of a bulk load. An empty ID is replaced by the
// item's 1-indexed position.
type BulkItem struct {
	ID   string
	Book Book
}

// WriteResult reports a stored document. EmbeddingFailure is set when the
// document was stored without an embedding.
type WriteResult struct {
	Book             Book
	Created          bool
	EmbeddingFailure *EmbeddingFailureError
}

// Page is one page of a listing. NextCursor is empty on the last page.
type Page struct {
	Books      []Entry
	NextCursor string
}
