package chi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	"github.com/kailas-cloud/shelfdex/internal/domain/book/patch"
)

// CreateBook handles POST /api/books?id=.
func (s *Server) CreateBook(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindQueryParameter("form", true, true, "id", r.URL.Query(), &id); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter id: "+err.Error())
		return
	}

	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	b, err := book.Decode(raw)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	res, err := s.documents.Create(r.Context(), id, b)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/books/%s", id))
	}
	writeJSON(w, status, bookToResponse(id, res.Book, res.EmbeddingFailure))
}

// GetBook handles GET /api/books/{id}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	b, err := s.documents.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookToResponse(id, b, nil))
}

// UpdateBook handles PUT /api/books/{id}. Only supplied fields change.
func (s *Server) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	raw, ok := s.readBody(w, r)
	if !ok {
		return
	}
	p, err := patch.Decode(raw)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	res, err := s.documents.Update(r.Context(), id, p)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookToResponse(id, res.Book, res.EmbeddingFailure))
}

// DeleteBook handles DELETE /api/books/{id}.
func (s *Server) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := gochi.URLParam(r, "id")
	deleted, err := s.documents.Delete(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBooks handles GET /api/books?cursor=&limit=.
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	var (
		cursor string
		limit  int
	)
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "cursor", q, &cursor); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter cursor: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter limit: "+err.Error())
		return
	}

	entries, next, err := s.documents.List(r.Context(), cursor, limit)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToResponse(entries, next))
}

// readBody reads the request body up to the configured limit. On failure it
// writes the error response and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	return raw, true
}
