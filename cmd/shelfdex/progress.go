package main

import (
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	bulkuc "github.com/kailas-cloud/shelfdex/internal/usecase/bulk"
)

// embedProgress renders bulk embedding progress. The bar is created on the
// first report, once the item count is known. Reports may arrive from
// several goroutines and out of order.
type embedProgress struct {
	w    io.Writer
	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done int
}

func newEmbedProgress(w io.Writer) *embedProgress {
	return &embedProgress{w: w}
}

// Func returns the callback handed to the bulk loader.
func (p *embedProgress) Func() bulkuc.Progress {
	return func(done, total int) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.bar == nil {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Embedding"),
				progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(p.w, "\n") }),
			)
		}
		if done > p.done {
			p.done = done
			_ = p.bar.Set(done)
		}
	}
}

// Done returns the highest count reported so far.
func (p *embedProgress) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
