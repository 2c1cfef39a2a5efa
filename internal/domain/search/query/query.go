// Package query builds validated lexical and vector queries.
package query

import (
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

// Query limits.
const (
	DefaultSize    = 10
	MaxSize        = 100
	MaxK           = 1000
	MaxValueLength = 1024
)

// LexicalFields is the allow-list for full-text match queries.
var LexicalFields = []string{"title", "author"}

// Lexical is an analyzed full-text match on one allowed field.
type Lexical struct {
	field string
	value string
	size  int
}

// NewLexical validates a match query. size <= 0 falls back to DefaultSize;
// larger than MaxSize is clamped.
func NewLexical(field, value string, size int) (Lexical, error) {
	if !slices.Contains(LexicalFields, field) {
		return Lexical{}, domain.NewValidationError("field",
			"%q is not searchable, use one of %s", field, strings.Join(LexicalFields, ", "))
	}
	if strings.TrimSpace(value) == "" {
		return Lexical{}, domain.NewValidationError("value", "is required")
	}
	if len(value) > MaxValueLength {
		return Lexical{}, domain.NewValidationError("value", "too long (max %d bytes)", MaxValueLength)
	}
	if size <= 0 {
		size = DefaultSize
	}
	return Lexical{field: field, value: value, size: min(size, MaxSize)}, nil
}

// Field returns the matched field.
func (q Lexical) Field() string { return q.field }

// Value returns the match text.
func (q Lexical) Value() string { return q.value }

// Size returns the maximum number of hits.
func (q Lexical) Size() int { return q.size }

// KNN is a top-k nearest-neighbor query.
type KNN struct {
	vector []float32
	k      int
}

// NewKNN validates a vector query against the index dimension.
func NewKNN(vector []float32, k, dim int) (KNN, error) {
	if k <= 0 {
		return KNN{}, domain.NewValidationError("k", "must be a positive integer, got %d", k)
	}
	if k > MaxK {
		return KNN{}, domain.NewValidationError("k", "must not exceed %d", MaxK)
	}
	if len(vector) != dim {
		return KNN{}, domain.NewValidationError("vector", "length %d does not match index dimension %d", len(vector), dim)
	}
	for i, f := range vector {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return KNN{}, domain.NewValidationError("vector", "element %d is not finite", i)
		}
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	return KNN{vector: v, k: k}, nil
}

// Vector returns the query vector.
func (q KNN) Vector() []float32 { return q.vector }

// K returns the number of neighbors requested.
func (q KNN) K() int { return q.k }
