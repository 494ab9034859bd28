// Package metrics provides observability hooks for handler invocations.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics can be enabled by swapping implementations
// without code changes.
package metrics

import "time"

// Recorder defines observability hooks for handler invocations.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All
// methods must be safe for nil receivers when using the NoopRecorder
// (allowing optional injection).
type Recorder interface {
	// ObserveInvocation records one handler invocation with its cache
	// gate outcome ("cached" or "generated") and wall-clock duration.
	ObserveInvocation(stage, outcome string, d time.Duration)

	// IncFailure counts a failed invocation for a stage.
	IncFailure(stage string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveInvocation(string, string, time.Duration) {}
func (NoopRecorder) IncFailure(string)                              {}
