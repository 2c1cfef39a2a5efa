package shelfdex

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

// --- documentUseCase mock ---

type mockDocumentUC struct {
	createFn func(ctx context.Context, id string, b book.Book) (documentuc.WriteResult, error)
	getFn    func(ctx context.Context, id string) (book.Book, error)
	updateFn func(ctx context.Context, id string, p patch.Patch) (documentuc.WriteResult, error)
	deleteFn func(ctx context.Context, id string) (bool, error)
	listFn   func(ctx context.Context, cursor string, limit int) ([]document.Entry, string, error)
	countFn  func(ctx context.Context) (int, error)
}

func (m *mockDocumentUC) Create(ctx context.Context, id string, b book.Book) (documentuc.WriteResult, error) {
	return m.createFn(ctx, id, b)
}

func (m *mockDocumentUC) Get(ctx context.Context, id string) (book.Book, error) {
	return m.getFn(ctx, id)
}

func (m *mockDocumentUC) Update(ctx context.Context, id string, p patch.Patch) (documentuc.WriteResult, error) {
	return m.updateFn(ctx, id, p)
}

func (m *mockDocumentUC) Delete(ctx context.Context, id string) (bool, error) {
	return m.deleteFn(ctx, id)
}

func (m *mockDocumentUC) List(ctx context.Context, cursor string, limit int) ([]document.Entry, string, error) {
	return m.listFn(ctx, cursor, limit)
}

func (m *mockDocumentUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

// --- bulkUseCase mock ---

type mockBulkUC struct {
	loadFn     func(ctx context.Context, items []dombulk.Item, progress bulkuc.Progress) (dombulk.Result, error)
	loadJSONFn func(ctx context.Context, raw []byte, progress bulkuc.Progress) (dombulk.Result, error)
	loadFileFn func(ctx context.Context, path string, progress bulkuc.Progress) (dombulk.Result, error)
}

func (m *mockBulkUC) Load(ctx context.Context, items []dombulk.Item, progress bulkuc.Progress) (dombulk.Result, error) {
	return m.loadFn(ctx, items, progress)
}

func (m *mockBulkUC) LoadJSON(ctx context.Context, raw []byte, progress bulkuc.Progress) (dombulk.Result, error) {
	return m.loadJSONFn(ctx, raw, progress)
}

func (m *mockBulkUC) LoadFile(ctx context.Context, path string, progress bulkuc.Progress) (dombulk.Result, error) {
	return m.loadFileFn(ctx, path, progress)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	lexicalFn func(ctx context.Context, field, value string, size int) ([]hit.Hit, error)
	knnFn     func(ctx context.Context, vector []float32, k int) ([]hit.Hit, error)
	knnTextFn func(ctx context.Context, text string, k int) ([]hit.Hit, error)
}

func (m *mockSearchUC) Lexical(ctx context.Context, field, value string, size int) ([]hit.Hit, error) {
	return m.lexicalFn(ctx, field, value, size)
}

func (m *mockSearchUC) KNN(ctx context.Context, vector []float32, k int) ([]hit.Hit, error) {
	return m.knnFn(ctx, vector, k)
}

func (m *mockSearchUC) KNNText(ctx context.Context, text string, k int) ([]hit.Hit, error) {
	return m.knnTextFn(ctx, text, k)
}

// --- schema, store and health mocks ---

type mockSchemaUC struct {
	ensureFn func(ctx context.Context) (bool, error)
}

func (m *mockSchemaUC) EnsureIndex(ctx context.Context) (bool, error) { return m.ensureFn(ctx) }

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) Close()                     { m.closed = true }

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- embedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, texts []string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) (EmbeddingResult, error) {
	return m.fn(ctx, texts)
}

type healthyEmbedder struct {
	mockEmbedder
	err error
}

func (h *healthyEmbedder) HealthCheck(context.Context) error { return h.err }

// --- helpers ---

func testClient(docs documentUseCase, bulk bulkUseCase, search searchUseCase) *Client {
	return &Client{
		docSvc:    docs,
		bulkSvc:   bulk,
		searchSvc: search,
	}
}
