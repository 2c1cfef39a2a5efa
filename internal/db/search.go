package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Field        string // vector field alias
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for full-text search on a single TEXT field.
type TextQuery struct {
	IndexName    string
	Field        string
	Query        string
	TopK         int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. For KNN queries Score
// is the engine distance (lower is nearer); for text queries it is the
// engine relevance score.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
