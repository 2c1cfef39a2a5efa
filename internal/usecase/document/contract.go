package document

import (
	"context"

	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
	"github.com/kailas-cloud/shelfdex/internal/usecase/augment"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Put(ctx context.Context, index, id string, b book.Book) (created bool, err error)
	Get(ctx context.Context, index, id string) (book.Book, error)
	Merge(ctx context.Context, index, id string, mergeDoc []byte) error
	Delete(ctx context.Context, index, id string) (bool, error)
	List(ctx context.Context, index, cursor string, limit int) ([]document.Entry, string, error)
	Count(ctx context.Context, index string) (int, error)
}

// SchemaEnsurer creates the index on first write.
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Augmenter attaches embeddings to documents.
type Augmenter interface {
	Augment(ctx context.Context, id string, b book.Book) (augment.Result, error)
}
