package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
	"github.com/kailas-cloud/shelfdex/internal/repository/storeerr"
)

// store is the consumer interface for documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) ([]error, error)
	JSONMerge(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Entry is a document with its id.
type Entry struct {
	ID   string
	Book book.Book
}

// Repo implements the document store gateway over JSON keys.
// Writes are last-write-wins; there is no version check.
type Repo struct {
	store store
	keys  keyspace.Space
}

// New creates a document repository.
func New(s store, keys keyspace.Space) *Repo {
	return &Repo{store: s, keys: keys}
}

// Put replaces the whole document. Returns true if the id was new.
func (r *Repo) Put(ctx context.Context, index, id string, b book.Book) (bool, error) {
	key := r.keys.Doc(index, id)
	data, err := json.Marshal(b)
	if err != nil {
		return false, fmt.Errorf("marshal document: %w", err)
	}

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, storeerr.Wrap("check exists "+key, err)
	}

	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, storeerr.Wrap("json.set "+key, err)
	}
	return !exists, nil
}

// PutMulti replaces all entries in one pipelined round trip. The slice holds
// one error per entry (nil on success). A non-nil error means the outcome of
// the batch is unknown and no per-entry result is available.
func (r *Repo) PutMulti(ctx context.Context, index string, entries []Entry) ([]error, error) {
	items := make([]db.JSONSetItem, len(entries))
	for i, e := range entries {
		data, err := json.Marshal(e.Book)
		if err != nil {
			return nil, fmt.Errorf("marshal document %s: %w", e.ID, err)
		}
		items[i] = db.JSONSetItem{Key: r.keys.Doc(index, e.ID), Path: "$", Data: data}
	}

	errs, err := r.store.JSONSetMulti(ctx, items)
	if err != nil {
		return nil, storeerr.Wrap("json.set pipeline", err)
	}
	return errs, nil
}

// Get returns a document by id.
func (r *Repo) Get(ctx context.Context, index, id string) (book.Book, error) {
	key := r.keys.Doc(index, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return book.Book{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
		}
		return book.Book{}, storeerr.Wrap("json.get "+key, err)
	}

	// JSON.GET with a JSONPath returns an array of matches.
	var docs []book.Book
	if err := json.Unmarshal(raw, &docs); err != nil {
		return book.Book{}, fmt.Errorf("unmarshal document %s: %w", key, err)
	}
	if len(docs) == 0 {
		return book.Book{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return docs[0], nil
}

// Merge applies a JSON merge document to an existing document.
func (r *Repo) Merge(ctx context.Context, index, id string, mergeDoc []byte) error {
	key := r.keys.Doc(index, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return storeerr.Wrap("check exists "+key, err)
	}
	if !exists {
		return fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}

	if err := r.store.JSONMerge(ctx, key, "$", mergeDoc); err != nil {
		return storeerr.Wrap("json.merge "+key, err)
	}
	return nil
}

// Delete removes a document and reports whether it existed.
func (r *Repo) Delete(ctx context.Context, index, id string) (bool, error) {
	key := r.keys.Doc(index, id)
	deleted, err := r.store.Del(ctx, key)
	if err != nil {
		return false, storeerr.Wrap("del "+key, err)
	}
	return deleted, nil
}

// List returns documents with offset-cursor pagination. A missing index
// lists nothing: the index is created on the first write.
func (r *Repo) List(ctx context.Context, index, cursor string, limit int) ([]Entry, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", domain.NewValidationError("cursor", "invalid cursor %q", cursor)
		}
		offset = parsed
	}

	result, err := r.store.SearchList(ctx, r.keys.Index(index), "*", offset, limit+1, []string{"$"})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []Entry{}, "", nil
		}
		return nil, "", storeerr.Wrap("search list "+index, err)
	}

	entries := make([]Entry, 0, min(limit, len(result.Entries)))
	for i, e := range result.Entries {
		if i >= limit {
			break
		}
		var b book.Book
		if err := json.Unmarshal([]byte(e.Fields["$"]), &b); err != nil {
			return nil, "", fmt.Errorf("unmarshal document %s: %w", e.Key, err)
		}
		entries = append(entries, Entry{ID: r.keys.DocID(index, e.Key), Book: b})
	}

	var next string
	if len(result.Entries) > limit {
		next = strconv.Itoa(offset + limit)
	}
	return entries, next, nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context, index string) (int, error) {
	n, err := r.store.SearchCount(ctx, r.keys.Index(index), "*")
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return 0, nil
		}
		return 0, storeerr.Wrap("search count "+index, err)
	}
	return n, nil
}
