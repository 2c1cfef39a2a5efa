package shelfdex

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	documentuc "github.com/kailas-cloud/shelfdex/internal/usecase/document"
)

// BookService manages the documents of the index.
type BookService struct {
	docs documentUseCase
	bulk bulkUseCase
	obs  *observer
}

// Create stores b under id, overwriting any existing document.
func (s *BookService) Create(ctx context.Context, id string, b Book) (res WriteResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.create", start, err) }()

	r, err := s.docs.Create(ctx, id, b)
	if err != nil {
		return WriteResult{}, fmt.Errorf("create book: %w", err)
	}
	return toWriteResult(r), nil
}

// Get retrieves a document by id.
func (s *BookService) Get(ctx context.Context, id string) (b Book, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.get", start, err) }()

	if b, err = s.docs.Get(ctx, id); err != nil {
		return Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// Update merges a JSON object of fields into an existing document. A null
// value removes the field.
func (s *BookService) Update(ctx context.Context, id string, fields []byte) (res WriteResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.update", start, err) }()

	p, err := patch.Decode(fields)
	if err != nil {
		return WriteResult{}, fmt.Errorf("update book: %w", err)
	}
	r, err := s.docs.Update(ctx, id, p)
	if err != nil {
		return WriteResult{}, fmt.Errorf("update book: %w", err)
	}
	return toWriteResult(r), nil
}

// Delete removes a document. Reports whether it existed.
func (s *BookService) Delete(ctx context.Context, id string) (deleted bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.delete", start, err) }()

	if deleted, err = s.docs.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	return deleted, nil
}

// List returns one page of documents. A zero limit uses the default page size.
func (s *BookService) List(ctx context.Context, cursor string, limit int) (page Page, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.list", start, err) }()

	entries, next, err := s.docs.List(ctx, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("list books: %w", err)
	}
	return Page{Books: entries, NextCursor: next}, nil
}

// Count returns the number of indexed documents.
func (s *BookService) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.count", start, err) }()

	if n, err = s.docs.Count(ctx); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Load embeds and stores items in one submission. Item failures are listed
// in the result; the error is set only when the outcome is unknown.
func (s *BookService) Load(ctx context.Context, items []BulkItem, progress Progress) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.load", start, err) }()

	in := make([]dombulk.Item, len(items))
	for i, it := range items {
		in[i] = dombulk.Item{ID: it.ID, Book: it.Book}
	}
	if res, err = s.bulk.Load(ctx, in, progress); err != nil {
		return BulkResult{}, fmt.Errorf("load books: %w", err)
	}
	return res, nil
}

// LoadJSON loads a JSON array of documents. An element may carry its id in "_id".
func (s *BookService) LoadJSON(ctx context.Context, raw []byte, progress Progress) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.load", start, err) }()

	if res, err = s.bulk.LoadJSON(ctx, raw, progress); err != nil {
		return BulkResult{}, fmt.Errorf("load books: %w", err)
	}
	return res, nil
}

// LoadFile loads a JSON array of documents from a file.
func (s *BookService) LoadFile(ctx context.Context, path string, progress Progress) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("book.load", start, err) }()

	if res, err = s.bulk.LoadFile(ctx, path, progress); err != nil {
		return BulkResult{}, fmt.Errorf("load books: %w", err)
	}
	return res, nil
}

func toWriteResult(r documentuc.WriteResult) WriteResult {
	return WriteResult{Book: r.Book, Created: r.Created, EmbeddingFailure: r.EmbeddingFailure}
}
