package chi

import (
	"context"

	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/shelfdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/shelfdex/internal/usecase/health"
)

// DocumentService is the document CRUD consumed by the HTTP layer.
type DocumentService interface {
	Create(ctx context.Context, id string, b book.Book) (documentuc.WriteResult, error)
	Get(ctx context.Context, id string) (book.Book, error)
	Update(ctx context.Context, id string, p patch.Patch) (documentuc.WriteResult, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, cursor string, limit int) ([]document.Entry, string, error)
}

// SearchService runs lexical and vector queries.
type SearchService interface {
	Lexical(ctx context.Context, field, value string, size int) ([]hit.Hit, error)
	KNN(ctx context.Context, vector []float32, k int) ([]hit.Hit, error)
	KNNText(ctx context.Context, text string, k int) ([]hit.Hit, error)
}

// BulkLoader ingests JSON arrays of documents.
type BulkLoader interface {
	LoadJSON(ctx context.Context, raw []byte, progress bulkuc.Progress) (dombulk.Result, error)
	LoadFile(ctx context.Context, path string, progress bulkuc.Progress) (dombulk.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
