package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchProcessor handles concurrent analysis of multiple accounts.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-account execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each account.
	// We use a factory to ensure each analysis gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analyses.
	// Access is synchronized via mutex.
	results []*Analysis
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified; the graph API's rate limits bite well
// before CPU does.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each account to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// analyses and allows for per-account customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*Analysis, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple accounts concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each account gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all analyses collected, even for accounts that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, handles []string) ([]*Analysis, error) {
	bp.logger.Info("starting batch analysis",
		"total_accounts", len(handles),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*Analysis, len(handles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, handle := range handles {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analyzing account",
				"handle", handle,
				"index", i+1,
				"total", len(handles),
			)

			analysis := NewAnalysis(handle)
			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, analysis)

			// Store the result regardless of error; the analysis carries
			// error information if a step failed.
			bp.mu.Lock()
			bp.results[i] = analysis
			bp.mu.Unlock()

			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				bp.logger.Warn("analysis failed",
					"handle", handle,
					"error", err,
				)
				// Don't return the error to errgroup: one bad account
				// must not cancel the rest of the batch.
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch analysis complete",
		"total_accounts", len(handles),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple accounts and calls a callback
// for each completed analysis. This is useful for streaming results.
//
// The callback receives the analysis and the index of the handle in the
// original slice. The callback is called from the goroutine that completed
// the analysis, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	handles []string,
	callback func(analysis *Analysis, index int),
) error {
	bp.logger.Info("starting batch analysis with callback",
		"total_accounts", len(handles),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, handle := range handles {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			analysis := NewAnalysis(handle)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, analysis) //nolint:errcheck // Error is stored in the analysis

			callback(analysis, i)

			return nil
		})
	}

	return g.Wait()
}
