// Package book holds the typed document stored in the index.
package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_.:-]+$`)

// MaxIDLength bounds caller-visible ids.
const MaxIDLength = 256

// Book is a document. Empty strings and nil numbers mean "absent".
type Book struct {
	BookID          *Integer  `json:"book_id,omitempty"`
	Title           string    `json:"title,omitempty"`
	Author          string    `json:"author,omitempty"`
	Language        string    `json:"language,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty"`
	Format          string    `json:"format,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	AverageRating   *Float    `json:"average_rating,omitempty"`
	RatingsCount    *Integer  `json:"ratings_count,omitempty"`
	Description     string    `json:"description,omitempty"`
	Shelves         []string  `json:"shelves,omitempty"`
	Embedding       []float32 `json:"embedding,omitempty"`
}

// Decode parses one raw document. Numbers may arrive as JSON numbers or as
// numeric strings; anything else in a typed field is a validation error.
// Unknown fields are ignored.
func Decode(raw []byte) (Book, error) {
	var b Book
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&b); err != nil {
		return Book{}, decodeErr(err)
	}
	if dec.More() {
		return Book{}, domain.NewValidationError("", "trailing data after document")
	}
	return b, nil
}

func decodeErr(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.NewValidationError(typeErr.Field, "expected %s, got JSON %s", typeErr.Type, typeErr.Value)
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return domain.NewValidationError("", "%s", fieldErr.Error())
	}
	return domain.NewValidationError("", "malformed document: %v", err)
}

// Validate checks the invariants that decoding alone cannot, including the
// embedding length against the index dimension.
func (b *Book) Validate(dim int) error {
	if b.AverageRating != nil && !b.AverageRating.finite() {
		return domain.NewValidationError("average_rating", "must be a finite number")
	}
	if b.RatingsCount != nil && *b.RatingsCount < 0 {
		return domain.NewValidationError("ratings_count", "must not be negative")
	}
	for i, s := range b.Shelves {
		if strings.TrimSpace(s) == "" {
			return domain.NewValidationError("shelves", "element %d is blank", i)
		}
	}
	if b.Embedding != nil {
		if err := domain.CheckDim(b.Embedding, dim); err != nil {
			return domain.NewValidationError("embedding", "%v", err)
		}
	}
	return nil
}

// ValidateID checks a caller-visible document id.
func ValidateID(id string) error {
	switch {
	case id == "":
		return domain.NewValidationError("id", "is required")
	case len(id) > MaxIDLength:
		return domain.NewValidationError("id", "too long (max %d)", MaxIDLength)
	case !idRegex.MatchString(id):
		return domain.NewValidationError("id", "must match %s", idRegex.String())
	}
	return nil
}

// CanonicalText is the embedding input: description, title and author joined
// by single spaces. Absent fields contribute "", so separators are kept.
func (b *Book) CanonicalText() string {
	return b.Description + " " + b.Title + " " + b.Author
}

// WithEmbedding returns a copy carrying vec (nil removes the embedding).
func (b Book) WithEmbedding(vec []float32) Book {
	if vec == nil {
		b.Embedding = nil
		return b
	}
	b.Embedding = make([]float32, len(vec))
	copy(b.Embedding, vec)
	return b
}

// Float is a JSON float that also accepts numeric strings.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	v, err := parseNumber(data, "float")
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

func (f Float) finite() bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

// FloatPtr is a helper for literals.
func FloatPtr(v float64) *Float { f := Float(v); return &f }

// Integer is a JSON integer that also accepts numeric strings.
type Integer int64

// UnmarshalJSON implements json.Unmarshaler. Fractional values are rejected.
func (n *Integer) UnmarshalJSON(data []byte) error {
	v, err := parseNumber(data, "integer")
	if err != nil {
		return err
	}
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return &FieldError{Kind: "integer", Raw: string(data)}
	}
	*n = Integer(v)
	return nil
}

// IntegerPtr is a helper for literals.
func IntegerPtr(v int64) *Integer { n := Integer(v); return &n }

// FieldError reports a value that does not fit its typed field.
type FieldError struct {
	Kind string
	Raw  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("value %s is not a valid %s", e.Raw, e.Kind)
}

func parseNumber(data []byte, kind string) (float64, error) {
	s := string(bytes.TrimSpace(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Kind: kind, Raw: string(data)}
	}
	return v, nil
}
