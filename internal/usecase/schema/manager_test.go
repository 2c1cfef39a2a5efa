package schema

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
)

type mockRepo struct {
	calls   int
	created bool
	err     error
}

func (m *mockRepo) EnsureIndex(_ context.Context, _ domschema.Schema) (bool, error) {
	m.calls++
	return m.created, m.err
}

func testSchema(t *testing.T) domschema.Schema {
	t.Helper()
	s, err := domschema.Books("books", 4, domschema.Cosine)
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	return s
}

func TestEnsure_MemoizesSuccess(t *testing.T) {
	repo := &mockRepo{created: true}
	m := New(repo, testSchema(t), zap.NewNop())
	ctx := context.Background()

	for range 3 {
		if err := m.Ensure(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if repo.calls != 1 {
		t.Errorf("engine asked %d times, want 1", repo.calls)
	}
}

func TestEnsure_RetriesAfterFailure(t *testing.T) {
	repo := &mockRepo{err: domain.ErrStoreUnavailable}
	m := New(repo, testSchema(t), zap.NewNop())
	ctx := context.Background()

	if err := m.Ensure(ctx); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	repo.err = nil
	if err := m.Ensure(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("calls = %d, want 2", repo.calls)
	}
}

func TestEnsureIndex_ReportsCreation(t *testing.T) {
	repo := &mockRepo{created: false}
	m := New(repo, testSchema(t), zap.NewNop())

	created, err := m.EnsureIndex(context.Background())
	if err != nil || created {
		t.Errorf("created=%v err=%v, want false, nil", created, err)
	}
}
