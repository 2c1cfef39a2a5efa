// Package bulk loads many documents in one store round trip.
package bulk

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
	dombulk "github.com/kailas-cloud/shelfdex/internal/domain/bulk"
	"github.com/kailas-cloud/shelfdex/internal/metrics"
	"github.com/kailas-cloud/shelfdex/internal/repository/document"
)

// DefaultConcurrency bounds parallel embedding calls during a load.
const DefaultConcurrency = 4

// Loader embeds every item and submits the valid ones as a single bulk call.
// Items fail independently; a failed item never rolls back the others.
type Loader struct {
	writer      BulkWriter
	schema      SchemaEnsurer
	augmenter   Augmenter
	index       string
	dim         int
	concurrency int
	logger      *zap.Logger
}

// New creates a bulk loader for one index.
func New(
	writer BulkWriter, schema SchemaEnsurer, augmenter Augmenter,
	index string, dim int, logger *zap.Logger,
) *Loader {
	return &Loader{
		writer:      writer,
		schema:      schema,
		augmenter:   augmenter,
		index:       index,
		dim:         dim,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// WithConcurrency sets how many items are embedded in parallel.
func (l *Loader) WithConcurrency(n int) *Loader {
	if n > 0 {
		l.concurrency = n
	}
	return l
}

// LoadFile reads a JSON array of documents from path and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string, progress Progress) (dombulk.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dombulk.Result{}, domain.NewValidationError("filePath", "cannot read %s: %v", path, err)
	}
	return l.LoadJSON(ctx, raw, progress)
}

// LoadJSON parses a JSON array of documents and loads it.
func (l *Loader) LoadJSON(ctx context.Context, raw []byte, progress Progress) (dombulk.Result, error) {
	items, err := dombulk.ParseItems(raw)
	if err != nil {
		return dombulk.Result{}, err
	}
	return l.Load(ctx, items, progress)
}

// Load validates and embeds every item, then submits the valid ones in one
// call. Items without an id get their 1-indexed position; an id already used
// by an earlier item fails validation. The returned error
// is only set when the outcome cannot be determined (schema or store
// unavailable); item failures are reported in the Result.
func (l *Loader) Load(ctx context.Context, items []dombulk.Item, progress Progress) (dombulk.Result, error) {
	start := time.Now()
	defer func() { metrics.BulkDuration.Observe(time.Since(start).Seconds()) }()

	dombulk.AssignIDs(items)
	if err := l.schema.Ensure(ctx); err != nil {
		return dombulk.Result{}, fmt.Errorf("ensure schema: %w", err)
	}

	itemErrs := make([]error, len(items))
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		itemErrs[i] = l.validate(it)
		if it.ID == "" {
			continue
		}
		// Later occurrences of an id would overwrite the first in the same submission.
		if _, dup := seen[it.ID]; dup && itemErrs[i] == nil {
			itemErrs[i] = domain.NewValidationError("_id", "duplicate id %q in bulk load", it.ID)
		}
		seen[it.ID] = struct{}{}
	}

	augmented, degraded, err := l.augmentAll(ctx, items, itemErrs, progress)
	if err != nil {
		return dombulk.Result{}, err
	}

	entries := make([]document.Entry, 0, len(items))
	pos := make([]int, 0, len(items))
	for i, it := range items {
		if itemErrs[i] == nil {
			entries = append(entries, document.Entry{ID: it.ID, Book: augmented[i]})
			pos = append(pos, i)
		}
	}

	if len(entries) > 0 {
		writeErrs, err := l.writer.PutMulti(ctx, l.index, entries)
		if err != nil {
			return dombulk.Result{}, fmt.Errorf("bulk submit: %w", err)
		}
		for j, i := range pos {
			if writeErrs[j] != nil {
				itemErrs[i] = writeErrs[j]
			}
		}
	}

	results := make([]dombulk.ItemResult, len(items))
	for i, it := range items {
		if itemErrs[i] != nil {
			results[i] = dombulk.NewError(it.ID, itemErrs[i])
		} else {
			results[i] = dombulk.NewOK(it.ID)
		}
	}
	res := dombulk.Summarize(results, degraded)

	metrics.BulkItemsTotal.WithLabelValues("ok").Add(float64(res.Succeeded))
	metrics.BulkItemsTotal.WithLabelValues("failed").Add(float64(len(res.Failures)))
	metrics.BulkItemsTotal.WithLabelValues("degraded").Add(float64(len(res.Degraded)))
	l.logger.Info("Bulk load finished",
		zap.String("index", l.index),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", len(res.Failures)),
		zap.Int("degraded", len(res.Degraded)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (l *Loader) validate(it dombulk.Item) error {
	if it.Err != nil {
		return it.Err
	}
	if err := book.ValidateID(it.ID); err != nil {
		return err
	}
	return it.Book.Validate(l.dim)
}

// augmentAll embeds the valid items with bounded parallelism. Abort-policy
// failures become item errors. Only context cancellation fails the call.
func (l *Loader) augmentAll(
	ctx context.Context, items []dombulk.Item, itemErrs []error, progress Progress,
) ([]book.Book, []dombulk.Failure, error) {
	augmented := make([]book.Book, len(items))
	failures := make([]*domain.EmbeddingFailureError, len(items))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range items {
		if itemErrs[i] != nil {
			report(progress, &done, len(items))
			continue
		}
		g.Go(func() error {
			defer report(progress, &done, len(items))
			res, err := l.augmenter.Augment(gctx, items[i].ID, items[i].Book)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				itemErrs[i] = err
				return nil
			}
			augmented[i] = res.Book
			failures[i] = res.Failure
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("embed items: %w", err)
	}

	var degraded []dombulk.Failure
	for i, f := range failures {
		if f != nil && itemErrs[i] == nil {
			degraded = append(degraded, dombulk.Failure{ID: items[i].ID, Message: f.Error()})
		}
	}
	return augmented, degraded, nil
}

func report(progress Progress, done *atomic.Int64, total int) {
	n := done.Add(1)
	if progress != nil {
		progress(int(n), total)
	}
}
