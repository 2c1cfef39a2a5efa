package chi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"

	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	logpkg "github.com/kailas-cloud/shelfdex/internal/logger"
)

// BulkLoad handles POST /api/books/bulk. The documents come from the JSON
// array body, or from a server-side file when ?filePath= is given and
// enabled. Item failures do not fail the call; they are listed in the body.
func (s *Server) BulkLoad(w http.ResponseWriter, r *http.Request) {
	var filePath string
	if err := runtime.BindQueryParameter("form", true, false, "filePath", r.URL.Query(), &filePath); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid query parameter filePath: "+err.Error())
		return
	}

	var (
		res dombulk.Result
		err error
	)
	if filePath != "" {
		if !s.opts.AllowFilePath {
			writeError(w, http.StatusForbidden, CodeForbidden, "loading from a server-side file is disabled")
			return
		}
		res, err = s.bulk.LoadFile(r.Context(), filePath, nil)
	} else {
		raw, ok := s.readBody(w, r)
		if !ok {
			return
		}
		res, err = s.bulk.LoadJSON(r.Context(), raw, nil)
	}
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	if partial := res.Err(); partial != nil {
		logpkg.FromContext(r.Context()).Warn("bulk load partially failed", zap.Error(partial))
	}
	writeJSON(w, http.StatusOK, bulkToResponse(res))
}
