// Package batch runs one query configuration over many bibliography files
// with a bounded worker pool. Each file is an independent run.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/logging"
	"bibfilter/internal/match"
	"bibfilter/internal/query"
)

// Job is one file to filter.
type Job struct {
	Index int
	Path  string
}

// FileResult is produced by a worker. Err is set when the file could not
// be read or held no entries; Result is nil in that case.
type FileResult struct {
	Index   int
	Path    string
	Result  *match.RunResult
	Err     error
	Elapsed time.Duration
}

// Config controls a batch.
type Config struct {
	Query    *query.Config
	Parallel int // workers; <= 0 uses GOMAXPROCS
}

// Run filters every path with cfg.Query and returns one result per path in
// input order. A per-file failure is recorded in its FileResult and does not
// stop the batch; only an invalid configuration or a cancelled context
// fails the call.
func Run(ctx context.Context, paths []string, cfg Config) ([]FileResult, error) {
	if err := cfg.Query.Validate(); err != nil {
		return nil, fmt.Errorf("batch query: %w", err)
	}
	workers := cfg.Parallel
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger := logging.New("batch")
	logger.Info("batch start", "files", len(paths), "workers", workers)

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		job := Job{Index: i, Path: p}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[job.Index] = FileResult{Index: job.Index, Path: job.Path, Err: err}
				return err
			}
			results[job.Index] = runFile(job, cfg.Query.Clone())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Warn("file failed", "path", r.Path, "error", r.Err)
		}
	}
	logger.Info("batch done", "files", len(paths), "failed", failed)
	return results, nil
}

func runFile(job Job, cfg *query.Config) FileResult {
	start := time.Now()
	fr := FileResult{Index: job.Index, Path: job.Path}
	recs, err := bibtex.ParseFile(job.Path)
	if err == nil {
		fr.Result, err = match.Run(recs, cfg)
	}
	fr.Err = err
	fr.Elapsed = time.Since(start)
	logging.New("batch").Debug("file done", "path", job.Path, "elapsed", fr.Elapsed, "error", err)
	return fr
}

// Totals sums the summaries of successful results.
func Totals(results []FileResult) match.Summary {
	var s match.Summary
	for _, r := range results {
		if r.Result == nil {
			continue
		}
		s.Total += r.Result.Summary.Total
		s.Eligible += r.Result.Summary.Eligible
		s.Matched += r.Result.Summary.Matched
		s.Partial += r.Result.Summary.Partial
		s.Unmatched += r.Result.Summary.Unmatched
	}
	return s
}
