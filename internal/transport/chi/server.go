// Package chi exposes the document, search and bulk services over HTTP.
package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfdex/internal/metrics"
	healthuc "github.com/kailas-cloud/shelfdex/internal/usecase/health"
)

const defaultMaxBodyBytes = 32 << 20

// Options tunes the HTTP surface.
type Options struct {
	// APIKeys enables Bearer authentication when non-empty.
	APIKeys []string
	// MaxBodyBytes bounds request bodies. Zero means 32 MiB.
	MaxBodyBytes int64
	// AllowFilePath lets POST /api/books/bulk read a server-side file.
	AllowFilePath bool
}

// Server serves the books API.
type Server struct {
	documents DocumentService
	search    SearchService
	bulk      BulkLoader
	health    HealthChecker
	opts      Options
	logger    *zap.Logger
}

// NewServer creates an HTTP API server. health can be nil.
func NewServer(
	documents DocumentService,
	search SearchService,
	bulk BulkLoader,
	health HealthChecker,
	opts Options,
	logger *zap.Logger,
) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Server{
		documents: documents,
		search:    search,
		bulk:      bulk,
		health:    health,
		opts:      opts,
		logger:    logger,
	}
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router() http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware)

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/books", func(r gochi.Router) {
		r.Post("/bulk", s.BulkLoad)
		r.Get("/search", s.LexicalSearch)
		r.Get("/vector-search", s.VectorSearchText)
		r.Post("/vector-search", s.VectorSearch)
		r.Post("/", s.CreateBook)
		r.Get("/", s.ListBooks)
		r.Get("/{id}", s.GetBook)
		r.Put("/{id}", s.UpdateBook)
		r.Delete("/{id}", s.DeleteBook)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{Status: string(healthuc.Healthy)})
		return
	}
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
	})
}
