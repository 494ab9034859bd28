package timing

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/stagehand/internal/logfields"
)

// SlogSink logs each timing record through a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to the given logger, or the default
// logger when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Report logs the record at info level.
func (s *SlogSink) Report(ctx context.Context, rec Record) error {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "Stage invocation",
		logfields.Artifact(rec.ArtifactKey),
		logfields.Fingerprint(rec.Fingerprint),
		logfields.Document(rec.Document),
		logfields.Stage(rec.Stage),
		logfields.Outcome(rec.Outcome),
		logfields.DurationMS(float64(rec.Elapsed.Microseconds())/1000.0),
		logfields.InvocationID(rec.InvocationID),
	)
	return nil
}

// Close is a no-op.
func (s *SlogSink) Close() error { return nil }
