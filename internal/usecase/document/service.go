package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
)

// WriteResult reports a stored document. EmbeddingFailure is set when the
// document was stored without an embedding.
type WriteResult struct {
	Book             book.Book
	Created          bool
	EmbeddingFailure *domain.EmbeddingFailureError
}

// Service handles document CRUD with automatic embedding.
type Service struct {
	repo            Repository
	schema          SchemaEnsurer
	augmenter       Augmenter
	index           string
	dim             int
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service for one index.
func New(repo Repository, schema SchemaEnsurer, augmenter Augmenter, index string, dim int) *Service {
	return &Service{
		repo:            repo,
		schema:          schema,
		augmenter:       augmenter,
		index:           index,
		dim:             dim,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Create stores b under id, overwriting any existing document in full.
func (s *Service) Create(ctx context.Context, id string, b book.Book) (WriteResult, error) {
	if err := book.ValidateID(id); err != nil {
		return WriteResult{}, err
	}
	if err := b.Validate(s.dim); err != nil {
		return WriteResult{}, err
	}
	if err := s.schema.Ensure(ctx); err != nil {
		return WriteResult{}, fmt.Errorf("ensure schema: %w", err)
	}

	aug, err := s.augmenter.Augment(ctx, id, b)
	if err != nil {
		return WriteResult{}, fmt.Errorf("augment document: %w", err)
	}

	created, err := s.repo.Put(ctx, s.index, id, aug.Book)
	if err != nil {
		return WriteResult{}, fmt.Errorf("put document: %w", err)
	}
	return WriteResult{Book: aug.Book, Created: created, EmbeddingFailure: aug.Failure}, nil
}

// Get retrieves a document by id.
func (s *Service) Get(ctx context.Context, id string) (book.Book, error) {
	if err := book.ValidateID(id); err != nil {
		return book.Book{}, err
	}
	b, err := s.repo.Get(ctx, s.index, id)
	if err != nil {
		return book.Book{}, fmt.Errorf("get document: %w", err)
	}
	return b, nil
}

// Update merges the supplied fields into an existing document. When title,
// author or description change, the merged document is re-embedded; a
// degraded re-embed removes the stale embedding.
func (s *Service) Update(ctx context.Context, id string, p patch.Patch) (WriteResult, error) {
	if err := book.ValidateID(id); err != nil {
		return WriteResult{}, err
	}
	if err := s.schema.Ensure(ctx); err != nil {
		return WriteResult{}, fmt.Errorf("ensure schema: %w", err)
	}

	current, err := s.repo.Get(ctx, s.index, id)
	if err != nil {
		return WriteResult{}, fmt.Errorf("get document: %w", err)
	}

	merged := p.Apply(current)
	if err := merged.Validate(s.dim); err != nil {
		return WriteResult{}, err
	}

	var (
		mergeDoc []byte
		failure  *domain.EmbeddingFailureError
	)
	if p.TouchesText() {
		aug, err := s.augmenter.Augment(ctx, id, merged)
		if err != nil {
			return WriteResult{}, fmt.Errorf("augment document: %w", err)
		}
		merged, failure = aug.Book, aug.Failure
		mergeDoc, err = p.MergeDocument(true, merged.Embedding)
		if err != nil {
			return WriteResult{}, fmt.Errorf("render patch: %w", err)
		}
	} else {
		mergeDoc, err = p.MergeDocument(false, nil)
		if err != nil {
			return WriteResult{}, fmt.Errorf("render patch: %w", err)
		}
	}

	if err := s.repo.Merge(ctx, s.index, id, mergeDoc); err != nil {
		return WriteResult{}, fmt.Errorf("merge document: %w", err)
	}
	return WriteResult{Book: merged, EmbeddingFailure: failure}, nil
}

// Delete removes a document and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if err := book.ValidateID(id); err != nil {
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, s.index, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return deleted, nil
}

// List returns a page of documents and the cursor of the next page ("" at the end).
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]document.Entry, string, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	limit = min(limit, s.maxPageSize)

	entries, next, err := s.repo.List(ctx, s.index, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return entries, next, nil
}

// Count returns the number of indexed documents.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx, s.index)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
