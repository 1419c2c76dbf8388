package main

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alnah/go-mdpreview/internal/logfields"
)

// MaxWorkers bounds the --workers flag.
const MaxWorkers = 32

// jobResult holds the outcome of a single file job.
type jobResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// jobFunc processes one file.
type jobFunc func(ctx context.Context, job fileJob) error

// runJobs processes jobs on up to workers goroutines and returns the results
// in job order. Jobs still queued when ctx is canceled fail with ctx.Err().
func runJobs(ctx context.Context, workers int, jobs []fileJob, logger *slog.Logger, fn jobFunc) []jobResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := min(max(workers, 1), len(jobs))
	results := make([]jobResult, len(jobs))
	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := range concurrency {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for idx := range queue {
				job := jobs[idx]
				res := jobResult{InputPath: job.InputPath, OutputPath: job.OutputPath}
				if err := ctx.Err(); err != nil {
					res.Err = err
					results[idx] = res
					continue
				}

				start := time.Now()
				res.Err = fn(ctx, job)
				res.Duration = time.Since(start)
				results[idx] = res

				if res.Err != nil {
					logger.Warn("file failed", logfields.Worker(id), logfields.Path(job.InputPath), logfields.Error(res.Err))
				} else {
					logger.Debug("file done", logfields.Worker(id), logfields.Path(job.OutputPath), logfields.Since(start))
				}
			}
		}(w)
	}

	wg.Wait()
	return results
}

// resolvePoolSize determines the worker count.
// Priority: explicit flag > GOMAXPROCS-based calculation.
func resolvePoolSize(flagWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers.
	n := runtime.GOMAXPROCS(0) / 2
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}
