package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_JSONPaths(t *testing.T) {
	idx := NewIndex("books:idx").
		Prefix("books:").
		Text("title").
		Tag("language").
		Numeric("average_rating").
		MustBuild()

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	if len(idx.Fields) != 3 {
		t.Fatalf("fields count = %d, want 3", len(idx.Fields))
	}
	want := []struct {
		name, alias string
		typ         IndexFieldType
	}{
		{"$.title", "title", IndexFieldText},
		{"$.language", "language", IndexFieldTag},
		{"$.average_rating", "average_rating", IndexFieldNumeric},
	}
	for i, w := range want {
		f := idx.Fields[i]
		if f.Name != w.name || f.Alias != w.alias || f.Type != w.typ {
			t.Errorf("field[%d] = %+v, want %s AS %s %s", i, f, w.name, w.alias, w.typ)
		}
	}
}

func TestIndexBuilder_TagArray(t *testing.T) {
	idx := NewIndex("t-idx").TagArray("shelves").MustBuild()

	f := idx.Fields[0]
	if f.Name != "$.shelves[*]" {
		t.Errorf("name = %q, want $.shelves[*]", f.Name)
	}
	if f.Attribute() != "shelves" {
		t.Errorf("attribute = %q, want shelves", f.Attribute())
	}
}

func TestIndexBuilder_VectorFlat(t *testing.T) {
	idx := NewIndex("vec-idx").
		Prefix("emb:").
		VectorFlat("embedding", 1536, DistanceCosine, 0).
		MustBuild()

	f := idx.Fields[0]
	if f.VectorAlgo != VectorFlat {
		t.Errorf("algo = %q, want FLAT", f.VectorAlgo)
	}
	if f.VectorDim != 1536 {
		t.Errorf("dim = %d, want 1536", f.VectorDim)
	}
	if f.VectorDistance != DistanceCosine {
		t.Errorf("distance = %q, want COSINE", f.VectorDistance)
	}
}

func TestIndexBuilder_VectorHNSW(t *testing.T) {
	idx := NewIndex("hnsw-idx").
		Tag("type").
		VectorHNSW("embedding", 384, DistanceL2, 32, 400).
		MustBuild()

	f := idx.Fields[1]
	if f.VectorAlgo != VectorHNSW {
		t.Errorf("algo = %q, want HNSW", f.VectorAlgo)
	}
	if f.VectorM != 32 || f.VectorEFConstruct != 400 {
		t.Errorf("M/EF = %d/%d, want 32/400", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "vector without dim",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").VectorFlat("v", 0, DistanceCosine, 0).Build()
			},
			wantErr: "positive DIM",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x").Build()
			},
			wantErr: "invalid characters",
		},
		{
			name: "duplicate attribute",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Tag("x").Numeric("x").Build()
			},
			wantErr: "duplicate field name: x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		Prefix("doc:").
		Text("title").
		VectorFlat("embedding", 512, DistanceCosine, 0).
		MustBuild()

	want := "FT.CREATE my-idx ON JSON PREFIX doc: SCHEMA $.title AS title TEXT $.embedding AS embedding VECTOR FLAT"
	if got := idx.String(); got != want {
		t.Errorf("String() = %q\nwant %q", got, want)
	}
}

func TestParseDistanceMetric(t *testing.T) {
	for in, want := range map[string]DistanceMetric{"cosine": DistanceCosine, "L2": DistanceL2, "ip": DistanceIP} {
		got, err := ParseDistanceMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseDistanceMetric(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDistanceMetric("manhattan"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestParseVectorAlgorithm(t *testing.T) {
	if a, err := ParseVectorAlgorithm("hnsw"); err != nil || a != VectorHNSW {
		t.Errorf("hnsw -> %q, %v", a, err)
	}
	if a, err := ParseVectorAlgorithm("FLAT"); err != nil || a != VectorFlat {
		t.Errorf("FLAT -> %q, %v", a, err)
	}
	if _, err := ParseVectorAlgorithm("ivf"); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
