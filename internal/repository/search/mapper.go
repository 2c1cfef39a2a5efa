package search

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
)

// mapper flattens engine entries into hits. Engine order is kept as-is:
// no re-ranking, filtering or deduplication happens here.
type mapper struct {
	keys  keyspace.Space
	index string
}

func newMapper(keys keyspace.Space, index string) mapper {
	return mapper{keys: keys, index: index}
}

// Map converts a search result into hits.
func (m mapper) Map(sr *db.SearchResult) ([]hit.Hit, error) {
	if sr == nil {
		return []hit.Hit{}, nil
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		h, err := m.entry(e)
		if err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (m mapper) entry(e db.SearchEntry) (hit.Hit, error) {
	h := hit.Hit{ID: m.keys.DocID(m.index, e.Key), Score: e.Score}

	raw, ok := e.Fields[documentField]
	if !ok || raw == "" {
		return h, nil
	}
	var b book.Book
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return hit.Hit{}, fmt.Errorf("decode hit %s: %w", e.Key, err)
	}
	h.Book = b
	return h, nil
}
