// Package schema describes an index mapping: field names to field-type descriptors.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the field-type tag.
type Kind int

// Field kinds.
const (
	Text Kind = iota + 1
	Keyword
	Integer
	Float
	Vector
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Keyword:
		return "keyword"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Vector:
		return "vector"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Metric is a vector similarity metric.
type Metric string

// Supported metrics.
const (
	Cosine Metric = "cosine"
	L2     Metric = "l2"
	Dot    Metric = "ip"
)

// ParseMetric accepts cosine, l2 or ip (case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(s)); m {
	case Cosine, L2, Dot:
		return m, nil
	default:
		return "", fmt.Errorf("unknown similarity metric %q", s)
	}
}

// VectorSpec is the payload of a Vector field.
type VectorSpec struct {
	Dim    int
	Metric Metric
}

// Field is a tagged union: Vector is set only when Kind == Vector.
type Field struct {
	Name   string
	Kind   Kind
	Array  bool // keyword fields holding a set of values
	Vector *VectorSpec
}

// Schema is an immutable index mapping.
type Schema struct {
	name   string
	fields []Field
}

// New validates and creates a Schema. Exactly one vector field is allowed.
func New(name string, fields []Field) (Schema, error) {
	if name == "" {
		return Schema{}, fmt.Errorf("index name is required")
	}
	if len(fields) == 0 {
		return Schema{}, fmt.Errorf("at least one field is required")
	}

	seen := make(map[string]bool, len(fields))
	vectors := 0
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("field name is required")
		}
		if seen[f.Name] {
			return Schema{}, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		switch f.Kind {
		case Text, Keyword, Integer, Float:
			if f.Vector != nil {
				return Schema{}, fmt.Errorf("field %q: vector settings on %s field", f.Name, f.Kind)
			}
		case Vector:
			if f.Vector == nil || f.Vector.Dim <= 0 {
				return Schema{}, fmt.Errorf("field %q: vector dimension must be positive", f.Name)
			}
			if _, err := ParseMetric(string(f.Vector.Metric)); err != nil {
				return Schema{}, fmt.Errorf("field %q: %w", f.Name, err)
			}
			vectors++
		default:
			return Schema{}, fmt.Errorf("field %q: unknown kind %s", f.Name, f.Kind)
		}
	}
	if vectors > 1 {
		return Schema{}, fmt.Errorf("at most one vector field is supported, got %d", vectors)
	}

	out := make([]Field, len(fields))
	copy(out, fields)
	return Schema{name: name, fields: out}, nil
}

// Name returns the index name.
func (s Schema) Name() string { return s.name }

// Fields returns a copy of the field specs in declaration order.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// VectorField returns the vector field, if any.
func (s Schema) VectorField() (Field, bool) {
	for _, f := range s.fields {
		if f.Kind == Vector {
			return f, true
		}
	}
	return Field{}, false
}

// Dim returns the vector dimension, or 0 when there is no vector field.
func (s Schema) Dim() int {
	if f, ok := s.VectorField(); ok {
		return f.Vector.Dim
	}
	return 0
}

// EmbeddingField is the vector field name used for book documents.
const EmbeddingField = "embedding"

// Books returns the book mapping with the given vector dimension and metric.
func Books(name string, dim int, metric Metric) (Schema, error) {
	return New(name, []Field{
		{Name: "book_id", Kind: Integer},
		{Name: "title", Kind: Text},
		{Name: "author", Kind: Text},
		{Name: "language", Kind: Keyword},
		{Name: "publication_date", Kind: Keyword},
		{Name: "format", Kind: Keyword},
		{Name: "publisher", Kind: Keyword},
		{Name: "image_url", Kind: Keyword},
		{Name: "average_rating", Kind: Float},
		{Name: "ratings_count", Kind: Integer},
		{Name: "description", Kind: Text},
		{Name: "shelves", Kind: Keyword, Array: true},
		{Name: EmbeddingField, Kind: Vector, Vector: &VectorSpec{Dim: dim, Metric: metric}},
	})
}
