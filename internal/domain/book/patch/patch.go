// Package patch models a partial document update.
package patch

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
)

// copyField copies one field from src to dst; a nil src clears it.
type copyField func(dst, src *book.Book)

var fields = map[string]copyField{
	"book_id":          func(d, s *book.Book) { d.BookID = s.BookID },
	"title":            func(d, s *book.Book) { d.Title = s.Title },
	"author":           func(d, s *book.Book) { d.Author = s.Author },
	"language":         func(d, s *book.Book) { d.Language = s.Language },
	"publication_date": func(d, s *book.Book) { d.PublicationDate = s.PublicationDate },
	"format":           func(d, s *book.Book) { d.Format = s.Format },
	"publisher":        func(d, s *book.Book) { d.Publisher = s.Publisher },
	"image_url":        func(d, s *book.Book) { d.ImageURL = s.ImageURL },
	"average_rating":   func(d, s *book.Book) { d.AverageRating = s.AverageRating },
	"ratings_count":    func(d, s *book.Book) { d.RatingsCount = s.RatingsCount },
	"description":      func(d, s *book.Book) { d.Description = s.Description },
	"shelves":          func(d, s *book.Book) { d.Shelves = s.Shelves },
}

// textFields feed the canonical embedding text.
var textFields = map[string]bool{"title": true, "author": true, "description": true}

// Patch is a partial update. Only supplied fields change; a JSON null clears one.
type Patch struct {
	values book.Book
	keys   []string
	nulls  map[string]bool
}

// Decode parses a JSON object of supplied fields. At least one field is
// required, unknown fields are rejected, and "embedding" cannot be set
// directly since it is derived from the text fields.
func Decode(raw []byte) (Patch, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Patch{}, domain.NewValidationError("", "patch must be a JSON object: %v", err)
	}
	if len(obj) == 0 {
		return Patch{}, domain.NewValidationError("", "at least one field must be provided")
	}

	p := Patch{nulls: make(map[string]bool)}
	for k, v := range obj {
		if k == "embedding" {
			return Patch{}, domain.NewValidationError(k, "is derived and cannot be updated")
		}
		if _, ok := fields[k]; !ok {
			return Patch{}, domain.NewValidationError(k, "unknown field")
		}
		p.keys = append(p.keys, k)
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			p.nulls[k] = true
		}
	}
	sort.Strings(p.keys)

	// Supplied fields decode through the typed document so type rules match Decode.
	values, err := book.Decode(raw)
	if err != nil {
		return Patch{}, err
	}
	p.values = values
	return p, nil
}

// Fields returns the supplied field names, sorted.
func (p Patch) Fields() []string { return p.keys }

// TouchesText reports whether the canonical embedding text may change.
func (p Patch) TouchesText() bool {
	for _, k := range p.keys {
		if textFields[k] {
			return true
		}
	}
	return false
}

// Apply returns b with the supplied fields replaced.
func (p Patch) Apply(b book.Book) book.Book {
	for _, k := range p.keys {
		fields[k](&b, &p.values)
	}
	return b
}

// MergeDocument renders the patch as an RFC 7396 merge document. With
// replaceEmbedding set, embedding is written as well (nil emits null, which
// removes a stale vector).
func (p Patch) MergeDocument(replaceEmbedding bool, embedding []float32) ([]byte, error) {
	full, err := json.Marshal(p.values)
	if err != nil {
		return nil, err
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(full, &present); err != nil {
		return nil, err
	}

	doc := make(map[string]any, len(p.keys)+1)
	for _, k := range p.keys {
		v, ok := present[k]
		if p.nulls[k] || !ok {
			// Explicit null or a value that marshals as absent ("" / []).
			doc[k] = nil
			continue
		}
		doc[k] = v
	}
	if replaceEmbedding {
		if embedding == nil {
			doc["embedding"] = nil
		} else {
			doc["embedding"] = embedding
		}
	}
	return json.Marshal(doc)
}
