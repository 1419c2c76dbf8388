// Package metrics provides observability hooks for the preview pipeline.
//
// Recorder is the injection point; NoopRecorder is the default and
// PrometheusRecorder forwards to client_golang collectors registered on a
// caller supplied registry.
package metrics
