// Package document models one unit of content flowing through a handler
// chain, together with its timing report hook.
package document

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/logfields"
	"git.home.luguber.info/inful/stagehand/internal/timing"
)

// Document is one source unit. Handlers read its identity and report
// per-invocation timing through it; they do not own it.
type Document struct {
	key       string
	ext       string
	fragments artifact.Data
	sink      timing.Sink
	logger    *slog.Logger
}

// Option configures a Document.
type Option func(*Document)

// WithTimingSink routes timing records from this document's handlers to
// the given sink.
func WithTimingSink(sink timing.Sink) Option {
	return func(d *Document) { d.sink = sink }
}

// WithLogger sets the logger used for sink failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// New creates a document with the given key, source extension and source
// fragments.
func New(key, ext string, fragments artifact.Data, opts ...Option) *Document {
	d := &Document{
		key:       key,
		ext:       ext,
		fragments: fragments,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Key returns the document identity.
func (d *Document) Key() string { return d.key }

// Ext returns the source format tag.
func (d *Document) Ext() string { return d.ext }

// Fragments returns the ordered source fragments.
func (d *Document) Fragments() artifact.Data { return d.fragments }

// ReportTiming forwards a timing record to the configured sink. Sink
// failures are logged, never propagated: the artifact is already final by
// the time timing is emitted.
func (d *Document) ReportTiming(ctx context.Context, rec timing.Record) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Report(ctx, rec); err != nil {
		d.logger.Warn("Timing sink report failed",
			logfields.Document(d.key),
			logfields.Stage(rec.Stage),
			logfields.Error(err))
	}
}
