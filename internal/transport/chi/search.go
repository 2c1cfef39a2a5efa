package chi

import (
	"encoding/json"
	"net/http"

	"github.com/oapi-codegen/runtime"
)

// LexicalSearch handles GET /api/books/search?field=&value=&size=.
func (s *Server) LexicalSearch(w http.ResponseWriter, r *http.Request) {
	var (
		field, value string
		size         int
	)
	q := r.URL.Query()
	for name, dest := range map[string]any{"field": &field, "value": &value, "size": &size} {
		if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter "+name+": "+err.Error())
			return
		}
	}

	hits, err := s.search.Lexical(r.Context(), field, value, size)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

// VectorSearchText handles GET /api/books/vector-search?query=&k=. The query
// text is embedded first; k defaults to 5.
func (s *Server) VectorSearchText(w http.ResponseWriter, r *http.Request) {
	var (
		text string
		k    int
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "query", q, &text); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter query: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "k", q, &k); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter k: "+err.Error())
		return
	}

	hits, err := s.search.KNNText(r.Context(), text, k)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

// VectorSearch handles POST /api/books/vector-search with a query vector or
// query text.
func (s *Server) VectorSearch(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	var req VectorSearchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	var err error
	var resp SearchResponse
	if req.Vector != nil {
		hits, kerr := s.search.KNN(r.Context(), req.Vector, req.K)
		resp, err = hitsToResponse(hits), kerr
	} else {
		hits, kerr := s.search.KNNText(r.Context(), req.Query, req.K)
		resp, err = hitsToResponse(hits), kerr
	}
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
