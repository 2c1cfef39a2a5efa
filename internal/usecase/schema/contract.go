package schema

import (
	"context"

	domschema "github.com/kailas-cloud/shelfdex/internal/domain/schema"
)

// Repository creates indexes in the engine.
type Repository interface {
	EnsureIndex(ctx context.Context, s domschema.Schema) (created bool, err error)
}
