// Package batch runs the parsing pipeline over many documents with a fixed
// worker pool. Documents are independent, so the pool is embarrassingly
// parallel: the only shared state is the section vocabulary, whose stores
// are safe for interleaved appends.
//
// Results are keyed by document ID, never by completion order, and one
// failing document never aborts the batch.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/tsawler/cvlayout"
	"github.com/tsawler/cvlayout/model"
)

// Document is one unit of batch work: a stable identifier (typically the
// source file path) and its extracted token pages.
type Document struct {
	ID    string
	Pages []model.Page
}

// Result is the outcome for one document. Err is set when parsing failed
// or timed out; Doc is nil in that case.
type Result struct {
	ID      string
	Doc     *model.Document
	Err     error
	Elapsed time.Duration
}

// Config tunes the pool.
type Config struct {
	// Workers is the pool size. Default: GOMAXPROCS.
	Workers int

	// Timeout bounds one document's parse. Zero means no per-document
	// timeout.
	Timeout time.Duration

	// Logger for per-document failures. Nil means slog.Default().
	Logger *slog.Logger
}

// Runner executes batches against one shared parser.
type Runner struct {
	parser *cvlayout.Parser
	config Config
	logger *slog.Logger
}

// NewRunner creates a batch runner. The parser is shared across workers;
// its fluent configuration is immutable, so that is safe.
func NewRunner(parser *cvlayout.Parser, config Config) *Runner {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{parser: parser, config: config, logger: logger}
}

// Run parses every document and returns results keyed by document ID.
// Cancelling ctx stops dispatching new documents; in-flight ones finish.
func (r *Runner) Run(ctx context.Context, docs []Document) map[string]Result {
	jobs := make(chan Document)
	out := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < r.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				out <- r.runOne(ctx, doc)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, doc := range docs {
			select {
			case jobs <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make(map[string]Result, len(docs))
	for res := range out {
		results[res.ID] = res
	}
	// Documents never dispatched due to cancellation still get an entry.
	for _, doc := range docs {
		if _, ok := results[doc.ID]; !ok {
			results[doc.ID] = Result{ID: doc.ID, Err: ctx.Err()}
		}
	}
	return results
}

// runOne parses a single document, converting panics and timeouts into
// per-document errors so the batch survives.
func (r *Runner) runOne(ctx context.Context, doc Document) (res Result) {
	res.ID = doc.ID
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if p := recover(); p != nil {
			res.Doc = nil
			res.Err = fmt.Errorf("panic parsing %s: %v", doc.ID, p)
			r.logger.Error("document parse panicked", "id", doc.ID, "panic", p)
		}
	}()

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	parsed, err := r.parser.Parse(ctx, doc.Pages)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		r.logger.Warn("document parse failed", "id", doc.ID, "error", err)
		res.Err = fmt.Errorf("parse %s: %w", doc.ID, err)
		return res
	}
	res.Doc = parsed
	return res
}
