package bulk

import (
	"context"

	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
	"github.com/kailas-cloud/shelfdex/internal/usecase/augment"
)

// BulkWriter submits many documents in one call. The slice holds one error
// per entry; a non-nil error means per-entry outcomes are unknown.
type BulkWriter interface {
	PutMulti(ctx context.Context, index string, entries []document.Entry) ([]error, error)
}

// SchemaEnsurer creates the index on first write.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Augmenter attaches embeddings to documents.
type Augmenter interface {
	Augment(ctx context.Context, id string, b book.Book) (augment.Result, error)
}

// Progress is called after each item is embedded with the number done so
// far. It may be called from several goroutines.
type Progress func(done, total int)
