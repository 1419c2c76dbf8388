package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name        string
		flagWorkers int
		want        int
	}{
		{"flag takes priority", 4, 4},
		{"flag=1 for sequential", 1, 1},
		{"flag=0 uses auto calculation", 0, min(max(gomaxprocs/2, 1), 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolvePoolSize(tt.flagWorkers); got != tt.want {
				t.Errorf("resolvePoolSize(%d) = %d, want %d", tt.flagWorkers, got, tt.want)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n       int
		wantErr bool
	}{
		{0, false},
		{1, false},
		{MaxWorkers, false},
		{-1, true},
		{MaxWorkers + 1, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.n), func(t *testing.T) {
			t.Parallel()

			err := validateWorkers(tt.n)
			if tt.wantErr && !errors.Is(err, ErrInvalidWorkerCount) {
				t.Errorf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", tt.n, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateWorkers(%d) = %v, want nil", tt.n, err)
			}
		})
	}
}

func TestRunJobs(t *testing.T) {
	t.Parallel()

	jobs := make([]fileJob, 20)
	failing := make(map[string]bool)
	for i := range jobs {
		jobs[i] = fileJob{InputPath: fmt.Sprintf("in-%d.md", i), OutputPath: fmt.Sprintf("out-%d.html", i)}
		failing[jobs[i].InputPath] = i%2 == 1
	}
	errOdd := errors.New("odd job")

	var calls atomic.Int32
	results := runJobs(context.Background(), 4, jobs, discardLogger(), func(_ context.Context, job fileJob) error {
		calls.Add(1)
		if failing[job.InputPath] {
			return errOdd
		}
		return nil
	})

	if got := calls.Load(); got != int32(len(jobs)) {
		t.Errorf("job func called %d times, want %d", got, len(jobs))
	}
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}
	for i, res := range results {
		if res.InputPath != jobs[i].InputPath || res.OutputPath != jobs[i].OutputPath {
			t.Errorf("results[%d] = %s -> %s, want job order preserved", i, res.InputPath, res.OutputPath)
		}
		wantErr := i%2 == 1
		if gotErr := errors.Is(res.Err, errOdd); gotErr != wantErr {
			t.Errorf("results[%d].Err = %v, want error %v", i, res.Err, wantErr)
		}
	}
}

func TestRunJobs_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []fileJob{{InputPath: "a.md"}, {InputPath: "b.md"}}
	results := runJobs(ctx, 2, jobs, discardLogger(), func(context.Context, fileJob) error {
		t.Error("job func called after cancellation")
		return nil
	})

	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, res.Err)
		}
	}
}

func TestRunJobs_Empty(t *testing.T) {
	t.Parallel()

	if got := runJobs(context.Background(), 4, nil, discardLogger(), nil); got != nil {
		t.Errorf("runJobs(nil) = %v, want nil", got)
	}
}
