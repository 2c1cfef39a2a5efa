package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means documents can be stored but not embedded.
	Degraded Status = "degraded"
	// Unhealthy means the engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results. Documents is nil when the count
// could not be read.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents *int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	docs      DocumentCounter
}

// New creates a Service. embedding and docs can be nil.
func New(db DBPinger, embedding EmbeddingChecker, docs DocumentCounter) *Service {
	return &Service{db: db, embedding: embedding, docs: docs}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult)}

	if err := s.db.Ping(ctx); err != nil {
		r.Checks["database"] = CheckError
		r.Status = Unhealthy
	} else {
		r.Checks["database"] = CheckOK
		if s.docs != nil {
			if n, err := s.docs.Count(ctx); err == nil {
				r.Documents = &n
			}
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			r.Checks["embedding"] = CheckError
			if r.Status == Healthy {
				r.Status = Degraded
			}
		} else {
			r.Checks["embedding"] = CheckOK
		}
	}

	return r
}
