// Package timing defines the per-invocation timing record and the sinks
// that receive it.
package timing

import (
	"context"
	"errors"
	"time"
)

// Outcome labels for the cache gate decision.
const (
	OutcomeCached    = "cached"
	OutcomeGenerated = "generated"
)

// Record captures one handler invocation: what ran, whether the cache was
// hit, and how long it took.
type Record struct {
	ArtifactKey  string        `json:"artifact_key"`
	Fingerprint  string        `json:"fingerprint"`
	Document     string        `json:"document"`
	Stage        string        `json:"stage"`
	Outcome      string        `json:"outcome"`
	Start        time.Time     `json:"start"`
	Finish       time.Time     `json:"finish"`
	Elapsed      time.Duration `json:"elapsed"`
	InvocationID string        `json:"invocation_id,omitempty"`
}

// Sink receives timing records. Implementations must be safe for
// concurrent use; each Report call must append one whole record.
type Sink interface {
	Report(ctx context.Context, rec Record) error
	Close() error
}

// Multi fans a record out to several sinks. Report errors are joined so
// one failing sink does not starve the others.
type Multi []Sink

// Report delivers the record to every sink.
func (m Multi) Report(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Report(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
