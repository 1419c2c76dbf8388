// Package logfields holds the canonical slog attribute keys used across the
// preview pipeline, the library facade and the CLI.
package logfields

import (
	"log/slog"
	"time"
)

const (
	KeyLang       = "lang"
	KeyDurationMS = "duration_ms"
	KeyCache      = "cache"
	KeyError      = "error"
	KeyPath       = "path"
	KeyOutcome    = "outcome"
	KeyBytes      = "bytes"
	KeyWorker     = "worker"
)

func Lang(l string) slog.Attr         { return slog.String(KeyLang, l) }
func Cache(state string) slog.Attr    { return slog.String(KeyCache, state) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Bytes(n int) slog.Attr           { return slog.Int(KeyBytes, n) }
func Worker(id int) slog.Attr         { return slog.Int(KeyWorker, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// Since reports the elapsed time since start in milliseconds.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
