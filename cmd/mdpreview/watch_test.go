package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

const testDebounce = 30 * time.Millisecond

// watchHarness runs watchLoop on fake channels.
type watchHarness struct {
	events   chan fsnotify.Event
	errs     chan error
	rebuilds chan struct{}
	done     chan error
	cancel   context.CancelFunc
}

func startWatch(t *testing.T, target string, rebuildErr func(n int) error) *watchHarness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := &watchHarness{
		events:   make(chan fsnotify.Event),
		errs:     make(chan error),
		rebuilds: make(chan struct{}, 16),
		done:     make(chan error, 1),
		cancel:   cancel,
	}

	n := 0
	rebuild := func() error {
		n++
		h.rebuilds <- struct{}{}
		if rebuildErr != nil {
			return rebuildErr(n)
		}
		return nil
	}

	go func() {
		h.done <- watchLoop(ctx, h.events, h.errs, target, testDebounce, rebuild, discardLogger())
	}()
	t.Cleanup(cancel)
	return h
}

func (h *watchHarness) waitRebuild(t *testing.T) {
	t.Helper()
	select {
	case <-h.rebuilds:
	case <-time.After(2 * time.Second):
		t.Fatal("rebuild not called")
	}
}

func (h *watchHarness) expectNoRebuild(t *testing.T) {
	t.Helper()
	select {
	case <-h.rebuilds:
		t.Fatal("unexpected rebuild")
	case <-time.After(5 * testDebounce):
	}
}

func (h *watchHarness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.done:
		if err != nil {
			t.Errorf("watchLoop() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchLoop did not return after cancel")
	}
}

func TestWatchLoop_DebouncesBursts(t *testing.T) {
	t.Parallel()

	target := filepath.Join("docs", "notes.md")
	h := startWatch(t, target, nil)

	for range 3 {
		h.events <- fsnotify.Event{Name: target, Op: fsnotify.Write}
	}
	h.waitRebuild(t)
	h.expectNoRebuild(t)
	h.stop(t)
}

func TestWatchLoop_IgnoresOtherEvents(t *testing.T) {
	t.Parallel()

	target := filepath.Join("docs", "notes.md")
	h := startWatch(t, target, nil)

	h.events <- fsnotify.Event{Name: filepath.Join("docs", "other.md"), Op: fsnotify.Write}
	h.events <- fsnotify.Event{Name: target, Op: fsnotify.Chmod}
	h.errs <- errors.New("queue overflow")
	h.expectNoRebuild(t)
	h.stop(t)
}

func TestWatchLoop_ContinuesAfterRebuildError(t *testing.T) {
	t.Parallel()

	target := "notes.md"
	h := startWatch(t, target, func(n int) error {
		if n == 1 {
			return errors.New("disk full")
		}
		return nil
	})

	h.events <- fsnotify.Event{Name: target, Op: fsnotify.Write}
	h.waitRebuild(t)
	h.events <- fsnotify.Event{Name: "./" + target, Op: fsnotify.Create}
	h.waitRebuild(t)
	h.stop(t)
}

func TestWatchLoop_ClosedEvents(t *testing.T) {
	t.Parallel()

	h := startWatch(t, "notes.md", nil)
	close(h.events)

	select {
	case err := <-h.done:
		if err != nil {
			t.Errorf("watchLoop() = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchLoop did not return after events closed")
	}
}

func TestIsChangeOf(t *testing.T) {
	t.Parallel()

	target := filepath.Clean("docs/notes.md")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"write", fsnotify.Event{Name: "docs/notes.md", Op: fsnotify.Write}, true},
		{"create after rename", fsnotify.Event{Name: "docs/notes.md", Op: fsnotify.Create}, true},
		{"unclean path", fsnotify.Event{Name: "docs/./notes.md", Op: fsnotify.Write}, true},
		{"remove", fsnotify.Event{Name: "docs/notes.md", Op: fsnotify.Remove}, false},
		{"chmod", fsnotify.Event{Name: "docs/notes.md", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "docs/notes.md.swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isChangeOf(tt.ev, target); got != tt.want {
				t.Errorf("isChangeOf(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestResolveDebounce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		flag         time.Duration
		configMillis int
		want         time.Duration
	}{
		{"flag wins", time.Second, 500, time.Second},
		{"config fallback", 0, 500, 500 * time.Millisecond},
		{"default", 0, 0, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveDebounce(tt.flag, tt.configMillis); got != tt.want {
				t.Errorf("resolveDebounce(%s, %d) = %s, want %s", tt.flag, tt.configMillis, got, tt.want)
			}
		})
	}
}
