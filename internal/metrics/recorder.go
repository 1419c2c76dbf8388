package metrics

import "time"

// Outcome labels a render result.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomePlaceholder Outcome = "placeholder"
	OutcomeError       Outcome = "error"
)

// Recorder receives render, highlight and cache observations.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveRender(d time.Duration, outcome Outcome)
	IncHighlightFallback(lang string)
	IncCacheLookup(hit bool)
	ObserveExport(format string, d time.Duration, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(time.Duration, Outcome)      {}
func (NoopRecorder) IncHighlightFallback(string)               {}
func (NoopRecorder) IncCacheLookup(bool)                       {}
func (NoopRecorder) ObserveExport(string, time.Duration, bool) {}
