package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain/schema"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
	"github.com/kailas-cloud/shelfdex/internal/repository/storeerr"
)

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// VectorIndexConfig selects the vector algorithm and its build parameters.
type VectorIndexConfig struct {
	Algorithm   db.VectorAlgorithm
	M           int
	EFConstruct int
	BlockSize   int
}

// Repo implements usecase/schema.Repository.
type Repo struct {
	store store
	keys  keyspace.Space
	vec   VectorIndexConfig
}

// New creates a schema repository using HNSW (M=16, EF_CONSTRUCTION=200).
func New(s store, keys keyspace.Space) *Repo {
	return &Repo{store: s, keys: keys, vec: VectorIndexConfig{Algorithm: db.VectorHNSW, M: 16, EFConstruct: 200}}
}

// WithVectorIndex overrides the vector algorithm settings; zero values keep defaults.
func (r *Repo) WithVectorIndex(cfg VectorIndexConfig) *Repo {
	if cfg.Algorithm != "" {
		r.vec.Algorithm = cfg.Algorithm
	}
	if cfg.M > 0 {
		r.vec.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.vec.EFConstruct = cfg.EFConstruct
	}
	if cfg.BlockSize > 0 {
		r.vec.BlockSize = cfg.BlockSize
	}
	return r
}

// EnsureIndex creates the FT index for s unless it already exists.
// It reports whether this call issued the successful FT.CREATE. Losing a
// creation race ("Index already exists") is success with created=false.
func (r *Repo) EnsureIndex(ctx context.Context, s schema.Schema) (bool, error) {
	name := r.keys.Index(s.Name())

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, storeerr.Wrap("check index "+name, err)
	}
	if exists {
		return false, nil
	}

	def, err := buildIndex(r.keys, s, r.vec)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, storeerr.Wrap("create index "+name, err)
	}
	return true, nil
}
