// Package bulk holds bulk ingestion inputs and their aggregated outcome.
package bulk

import (
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/domain"
)

// ItemStatus is the processing outcome of a single bulk item.
type ItemStatus string

// Bulk item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// ItemResult is the outcome of one item.
type ItemResult struct {
	id     string
	status ItemStatus
	err    error
}

// NewOK creates a successful item result.
func NewOK(id string) ItemResult { return ItemResult{id: id, status: StatusOK} }

// NewError creates a failed item result.
func NewError(id string, err error) ItemResult {
	return ItemResult{id: id, status: StatusError, err: err}
}

// ID returns the item identifier.
func (r ItemResult) ID() string { return r.id }

// Status returns the processing outcome.
func (r ItemResult) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r ItemResult) Err() error { return r.err }

// Failure is one failed item as reported to callers.
type Failure struct {
	ID      string `json:"id"`
	Message string `json:"error"`
}

// Result aggregates a bulk call. Failures keep input order. Degraded lists
// items that were stored without an embedding; they count as succeeded.
type Result struct {
	Succeeded int       `json:"succeeded"`
	Failures  []Failure `json:"failures"`
	Degraded  []Failure `json:"degraded,omitempty"`
}

// Summarize folds item results (in input order) into a Result.
func Summarize(items []ItemResult, degraded []Failure) Result {
	res := Result{Failures: []Failure{}, Degraded: degraded}
	for _, it := range items {
		if it.status == StatusOK {
			res.Succeeded++
			continue
		}
		msg := "unknown error"
		if it.err != nil {
			msg = it.err.Error()
		}
		res.Failures = append(res.Failures, Failure{ID: it.id, Message: msg})
	}
	return res
}

// Err returns an error matching domain.ErrPartialBulkFailure when any item
// failed, nil otherwise.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d items failed",
		domain.ErrPartialBulkFailure, len(r.Failures), r.Succeeded+len(r.Failures))
}
