package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
)

var errUnavailable = &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: connection reset", db.ErrUnavailable)}

// --- Put / Get ---

func TestPut_ThenGetRoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	b := testBook(t)

	stored := map[string][]byte{}
	ms.existsFn = func(_ context.Context, key string) (bool, error) {
		_, ok := stored[key]
		return ok, nil
	}
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		if path != "$" {
			t.Errorf("unexpected path: %s", path)
		}
		stored[key] = data
		return nil
	}
	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		data, ok := stored[key]
		if !ok {
			return nil, db.ErrKeyNotFound
		}
		return []byte("[" + string(data) + "]"), nil
	}

	created, err := repo.Put(ctx, "books", "1", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for a new id")
	}
	if _, ok := stored["shelfdex:books:1"]; !ok {
		t.Fatalf("document stored under unexpected key: %v", stored)
	}

	got, err := repo.Get(ctx, "books", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, b)
	}

	created, err = repo.Put(ctx, "books", "1", b)
	if err != nil || created {
		t.Errorf("overwrite: created=%v err=%v, want false, nil", created, err)
	}
}

func TestPut_Unavailable(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetFn = func(_ context.Context, _, _ string, _ []byte) error { return errUnavailable }

	_, err := repo.Put(context.Background(), "books", "1", testBook(t))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "books", "42")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- PutMulti ---

func TestPutMulti_PerItemErrors(t *testing.T) {
	repo, ms := newTestRepo(t)

	itemErr := errors.New("ERR bad json")
	ms.jsonSetMultiFn = func(_ context.Context, items []db.JSONSetItem) ([]error, error) {
		if len(items) != 2 {
			t.Fatalf("expected one pipeline with 2 items, got %d", len(items))
		}
		if items[0].Key != "shelfdex:books:1" || items[1].Key != "shelfdex:books:2" {
			t.Errorf("keys = %s, %s", items[0].Key, items[1].Key)
		}
		return []error{nil, itemErr}, nil
	}

	errs, err := repo.PutMulti(context.Background(), "books", []Entry{
		{ID: "1", Book: testBook(t)},
		{ID: "2", Book: testBook(t)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errs[0] != nil || !errors.Is(errs[1], itemErr) {
		t.Errorf("errs = %v", errs)
	}
}

func TestPutMulti_UnknownOutcome(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, _ []db.JSONSetItem) ([]error, error) {
		return nil, errUnavailable
	}

	_, err := repo.PutMulti(context.Background(), "books", []Entry{{ID: "1"}})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

// --- Merge ---

func TestMerge(t *testing.T) {
	repo, ms := newTestRepo(t)

	var merged []byte
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.jsonMergeFn = func(_ context.Context, key, path string, data []byte) error {
		if key != "shelfdex:books:7" || path != "$" {
			t.Errorf("merge target = %s %s", key, path)
		}
		merged = data
		return nil
	}

	if err := repo.Merge(context.Background(), "books", "7", []byte(`{"publisher":"Ace"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(merged) != `{"publisher":"Ace"}` {
		t.Errorf("merged = %s", merged)
	}
}

func TestMerge_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonMergeFn = func(_ context.Context, _, _ string, _ []byte) error {
		t.Error("JSON.MERGE must not run for a missing document")
		return nil
	}

	err := repo.Merge(context.Background(), "books", "7", []byte(`{}`))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete_ThenGetNotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	present := true
	ms.delFn = func(_ context.Context, key string) (bool, error) {
		if key != "shelfdex:books:42" {
			t.Errorf("unexpected key %s", key)
		}
		was := present
		present = false
		return was, nil
	}

	deleted, err := repo.Delete(ctx, "books", "42")
	if err != nil || !deleted {
		t.Fatalf("first delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = repo.Delete(ctx, "books", "42")
	if err != nil || deleted {
		t.Errorf("second delete: deleted=%v err=%v, want false, nil", deleted, err)
	}
	if _, err := repo.Get(ctx, "books", "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
}

// --- List / Count ---

func TestList_Pagination(t *testing.T) {
	repo, ms := newTestRepo(t)

	doc, _ := json.Marshal(book.Book{Title: "x"})
	ms.searchListFn = func(_ context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error) {
		if index != "shelfdex:books:idx" || query != "*" {
			t.Errorf("index=%s query=%s", index, query)
		}
		if offset != 2 || limit != 3 {
			t.Errorf("offset=%d limit=%d, want 2 and 3", offset, limit)
		}
		if len(fields) != 1 || fields[0] != "$" {
			t.Errorf("fields = %v", fields)
		}
		return &db.SearchResult{Total: 9, Entries: []db.SearchEntry{
			{Key: "shelfdex:books:3", Fields: map[string]string{"$": string(doc)}},
			{Key: "shelfdex:books:4", Fields: map[string]string{"$": string(doc)}},
			{Key: "shelfdex:books:5", Fields: map[string]string{"$": string(doc)}},
		}}, nil
	}

	entries, next, err := repo.List(context.Background(), "books", "2", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "3" || entries[1].ID != "4" {
		t.Errorf("entries = %+v", entries)
	}
	if next != "4" {
		t.Errorf("next cursor = %q, want 4", next)
	}
}

func TestList_MissingIndexIsEmpty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchListFn = func(_ context.Context, _, _ string, _, _ int, _ []string) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: no such index", db.ErrIndexNotFound)}
	}

	entries, next, err := repo.List(context.Background(), "books", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 || next != "" {
		t.Errorf("entries=%v next=%q", entries, next)
	}
}

func TestList_InvalidCursor(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, _, err := repo.List(context.Background(), "books", "abc", 10); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(_ context.Context, index, _ string) (int, error) {
		if index != "shelfdex:books:idx" {
			t.Errorf("index = %s", index)
		}
		return 5, nil
	}

	n, err := repo.Count(context.Background(), "books")
	if err != nil || n != 5 {
		t.Errorf("Count = %d, %v", n, err)
	}
}
