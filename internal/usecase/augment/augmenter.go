// Package augment attaches embeddings to documents before they are stored.
package augment

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
)

// Policy decides what happens to a document whose embedding failed.
type Policy string

// Failure policies.
const (
	// Degrade stores the document without an embedding.
	Degrade Policy = "degrade"
	// Abort rejects the write.
	Abort Policy = "abort"
)

// ParsePolicy accepts degrade or abort; empty means Degrade.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(s)); p {
	case "":
		return Degrade, nil
	case Degrade, Abort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown embedding failure policy %q", s)
	}
}

// Result is an augmented document. Failure is set when the document was
// degraded to lexical-only storage.
type Result struct {
	Book    book.Book
	Failure *domain.EmbeddingFailureError
}

// Augmenter embeds the canonical text of a document.
type Augmenter struct {
	embedder domain.Embedder
	dim      int
	policy   Policy
	logger   *zap.Logger
}

// New creates an augmenter producing vectors of length dim.
func New(embedder domain.Embedder, dim int, policy Policy, logger *zap.Logger) *Augmenter {
	return &Augmenter{embedder: embedder, dim: dim, policy: policy, logger: logger}
}

// Policy returns the configured failure policy.
func (a *Augmenter) Policy() Policy { return a.policy }

// Augment replaces the document's embedding with a fresh one computed from
// its canonical text. A provider error or a vector of the wrong length is an
// embedding failure: under Degrade the document comes back without an
// embedding and Result.Failure set; under Abort the failure is returned as
// the error.
func (a *Augmenter) Augment(ctx context.Context, id string, b book.Book) (Result, error) {
	vec, err := a.embed(ctx, b.CanonicalText())
	if err == nil {
		return Result{Book: b.WithEmbedding(vec)}, nil
	}

	failure := &domain.EmbeddingFailureError{DocID: id, Cause: err}
	if a.policy == Abort {
		return Result{}, failure
	}

	a.logger.Warn("Storing document without embedding",
		zap.String("id", id),
		zap.Error(err),
	)
	return Result{Book: b.WithEmbedding(nil), Failure: failure}, nil
}

// EmbedQuery embeds free query text. Failures are always returned.
func (a *Augmenter) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := a.embed(ctx, text)
	if err != nil {
		return nil, &domain.EmbeddingFailureError{Cause: err}
	}
	return vec, nil
}

func (a *Augmenter) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := domain.EmbedOne(ctx, a.embedder, text)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckDim(vec, a.dim); err != nil {
		return nil, err
	}
	return vec, nil
}
