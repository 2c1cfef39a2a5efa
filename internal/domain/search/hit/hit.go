// Package hit is the normalized search result.
package hit

import "github.com/kailas-cloud/shelfdex/internal/domain/book"

// Hit is one search result: the document id, the engine score and the
// stored document. Hits are kept in engine order.
type Hit struct {
	ID    string    `json:"id"`
	Score float64   `json:"score"`
	Book  book.Book `json:"document"`
}
