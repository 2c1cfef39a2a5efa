package schema

import (
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain/schema"
	"github.com/kailas-cloud/shelfdex/internal/repository/keyspace"
)

// buildIndex maps schema kinds onto FT field types: text→TEXT,
// keyword→TAG, integer/float→NUMERIC, vector→VECTOR.
func buildIndex(keys keyspace.Space, s schema.Schema, vec VectorIndexConfig) (*db.IndexDefinition, error) {
	b := db.NewIndex(keys.Index(s.Name())).Prefix(keys.DocPrefix(s.Name()))

	for _, f := range s.Fields() {
		switch f.Kind {
		case schema.Text:
			b.Text(f.Name)
		case schema.Keyword:
			if f.Array {
				b.TagArray(f.Name)
			} else {
				b.Tag(f.Name)
			}
		case schema.Integer, schema.Float:
			b.Numeric(f.Name)
		case schema.Vector:
			metric, err := db.ParseDistanceMetric(string(f.Vector.Metric))
			if err != nil {
				return nil, err
			}
			switch vec.Algorithm {
			case db.VectorFlat:
				b.VectorFlat(f.Name, f.Vector.Dim, metric, vec.BlockSize)
			case db.VectorHNSW:
				b.VectorHNSW(f.Name, f.Vector.Dim, metric, vec.M, vec.EFConstruct)
			default:
				return nil, fmt.Errorf("unknown vector algorithm %q", vec.Algorithm)
			}
		default:
			return nil, fmt.Errorf("unknown field kind: %s", f.Kind)
		}
	}

	return b.Build()
}
