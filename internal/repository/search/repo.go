package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/db"
	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/hit"
	"github.com/kailas-cloud/shelfdex/internal/domain/search/query"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
	"github.com/kailas-cloud/shelfdex/internal/repository/storeerr"
)

// documentField returns the whole JSON document from FT.SEARCH.
const documentField = "$"

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	keys   keyspace.Space
	metric domschema.Metric
}

// New creates a search repository for a cosine index.
func New(s store, keys keyspace.Space) *Repo {
	return &Repo{store: s, keys: keys, metric: domschema.Cosine}
}

// WithMetric sets the vector metric of the index, which decides how KNN
// distances become scores.
func (r *Repo) WithMetric(m domschema.Metric) *Repo {
	r.metric = m
	return r
}

// Lexical runs a full-text match on the query's field.
// A missing index yields no hits: nothing has been written yet.
func (r *Repo) Lexical(ctx context.Context, index string, q query.Lexical) ([]hit.Hit, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.keys.Index(index),
		Field:        q.Field(),
		Query:        q.Value(),
		TopK:         q.Size(),
		ReturnFields: []string{documentField},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []hit.Hit{}, nil
		}
		return nil, storeerr.Wrap(fmt.Sprintf("search %s on %s", q.Field(), index), err)
	}
	return newMapper(r.keys, index).Map(sr)
}

// KNN returns the k nearest documents to the query vector, nearest first.
func (r *Repo) KNN(ctx context.Context, index, field string, q query.KNN) ([]hit.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.keys.Index(index),
		Field:        field,
		Vector:       q.Vector(),
		K:            q.K(),
		ReturnFields: []string{documentField},
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []hit.Hit{}, nil
		}
		return nil, storeerr.Wrap("knn search on "+index, err)
	}
	for i := range sr.Entries {
		sr.Entries[i].Score = knnScore(r.metric, sr.Entries[i].Score)
	}
	return newMapper(r.keys, index).Map(sr)
}

// knnScore converts an engine distance into the reported score.
// COSINE and IP distances are 1-similarity, so the score is the similarity
// (range [-1, 1] for cosine). L2 has no bounded similarity; the score is the
// distance itself and lower is nearer.
func knnScore(m domschema.Metric, distance float64) float64 {
	if m == domschema.L2 {
		return distance
	}
	return 1 - distance
}
