package stage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/logfields"
	"git.home.luguber.info/inful/stagehand/internal/metrics"
	"git.home.luguber.info/inful/stagehand/internal/timing"
)

// GateLock serializes cache gate execution per fingerprint. Lock blocks
// until the key is free and returns the matching unlock.
type GateLock interface {
	Lock(key string) (unlock func())
}

// Handler runs one stage invocation for one document. Instances are
// single-use: created by NewHandler with extensions already resolved and
// the fingerprint fixed, consumed by one Generate call.
type Handler struct {
	spec      Spec
	proc      Processor
	doc       *document.Document
	store     artifact.Store
	art       *artifact.Artifact
	inputExt  string
	outputExt string

	logger   *slog.Logger
	recorder metrics.Recorder
	gate     GateLock
	runID    string
}

// HandlerOption configures a handler at setup time.
type HandlerOption func(*Handler)

// WithLogger injects the handler's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) HandlerOption {
	return func(h *Handler) { h.recorder = r }
}

// WithGateLock shares a per-fingerprint lock across concurrently running
// handlers, so two units computing the same fingerprint never both run the
// transformation.
func WithGateLock(g GateLock) HandlerOption {
	return func(h *Handler) { h.gate = g }
}

// NewHandler sets up a handler for one pipeline position. It validates the
// upstream format, resolves the output extension against the optional next
// stage, binds the handler's single artifact and fixes its fingerprint.
// Negotiation failures happen before any artifact exists.
func NewHandler(spec Spec, doc *document.Document, key string, prev *artifact.Artifact, next *Spec, store artifact.Store, opts ...HandlerOption) (*Handler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("stage %s requires a previous artifact", spec.Name())
	}

	proc := spec.newProcessor()
	if proc != nil {
		if _, err := StyleOf(proc); err != nil {
			return nil, fmt.Errorf("stage %s: %w", spec.Name(), err)
		}
	}

	ext := prev.Ext
	outputExt, err := ResolveOutputExt(ext, spec, next)
	if err != nil {
		return nil, err
	}

	h := &Handler{
		spec:      spec,
		proc:      proc,
		doc:       doc,
		store:     store,
		inputExt:  ext,
		outputExt: outputExt,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logfields.Stage(spec.Name()), logfields.Document(doc.Key()))

	art := &artifact.Artifact{
		Key:   key,
		Ext:   outputExt,
		Input: prev.Output.Clone(),
	}
	if next != nil {
		art.NextHandler = next.Name()
	}
	if err := h.bindArtifact(art); err != nil {
		return nil, err
	}

	fp, err := artifact.ComputeFingerprint(art.Input, ext, outputExt, spec.Name())
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", spec.Name(), err)
	}
	h.art.Fingerprint = fp

	h.logger.Debug("Handler set up",
		logfields.Artifact(key),
		logfields.Extension(outputExt),
		logfields.Fingerprint(fp))
	return h, nil
}

// bindArtifact attaches the handler's single artifact. A second bind is a
// lifecycle misuse.
func (h *Handler) bindArtifact(a *artifact.Artifact) error {
	if h.art != nil {
		return fmt.Errorf("%w: stage %s, artifact %s", ErrArtifactBound, h.spec.Name(), h.art.Key)
	}
	h.art = a
	return nil
}

// Spec returns the handler's stage spec.
func (h *Handler) Spec() Spec { return h.spec }

// InputExt returns the resolved input extension.
func (h *Handler) InputExt() string { return h.inputExt }

// OutputExt returns the resolved output extension.
func (h *Handler) OutputExt() string { return h.outputExt }

// Fingerprint returns the artifact's fingerprint.
func (h *Handler) Fingerprint() string { return h.art.Fingerprint }

// Process dispatches the stage's process style over the artifact's input
// and records the output fragments. Returns the style identifier used.
func (h *Handler) Process(ctx context.Context) (string, error) {
	out, style, err := Dispatch(ctx, h.proc, h.art.Input)
	if err != nil {
		return style, err
	}
	h.art.Output = out
	return style, nil
}

// Generate runs the cache gate and returns the finalized artifact.
//
// If a persisted artifact matches the fingerprint it is loaded verbatim
// (outcome "cached"); a corrupt record is treated as a miss, logged and
// regenerated. Otherwise the process dispatcher runs and the result is
// persisted (outcome "generated"); nothing is persisted on failure. One
// timing record is emitted either way.
func (h *Handler) Generate(ctx context.Context) (*artifact.Artifact, error) {
	start := time.Now()

	if h.gate != nil {
		unlock := h.gate.Lock(h.art.Fingerprint)
		defer unlock()
	}

	outcome, err := h.runGate(ctx)
	if err != nil {
		h.recorder.IncFailure(h.spec.Name())
		return nil, err
	}

	finish := time.Now()
	elapsed := finish.Sub(start)
	h.recorder.ObserveInvocation(h.spec.Name(), outcome, elapsed)
	h.doc.ReportTiming(ctx, timing.Record{
		ArtifactKey:  h.art.Key,
		Fingerprint:  h.art.Fingerprint,
		Document:     h.doc.Key(),
		Stage:        h.spec.Name(),
		Outcome:      outcome,
		Start:        start,
		Finish:       finish,
		Elapsed:      elapsed,
		InvocationID: h.runID,
	})

	return h.art, nil
}

func (h *Handler) runGate(ctx context.Context) (string, error) {
	fp := h.art.Fingerprint

	exists, err := h.store.Exists(ctx, fp)
	if err != nil {
		return "", fmt.Errorf("cache presence check: %w", err)
	}

	if exists {
		cached, err := h.store.Load(ctx, fp)
		switch {
		case err == nil:
			// Take only the computed result. Key, NextHandler and Input
			// describe this invocation's pipeline position, not the one
			// that first persisted the record.
			h.art.Output = cached.Output
			h.art.CreatedAt = cached.CreatedAt
			return timing.OutcomeCached, nil
		case artifact.IsCorrupt(err):
			// Policy: corrupt records are cache misses. Regenerate and
			// overwrite.
			h.logger.Warn("Cached artifact unreadable, regenerating",
				logfields.Fingerprint(fp),
				logfields.Error(err))
		default:
			return "", fmt.Errorf("load cached artifact: %w", err)
		}
	}

	style, err := h.Process(ctx)
	if err != nil {
		return "", fmt.Errorf("stage %s process: %w", h.spec.Name(), err)
	}
	h.logger.Debug("Processed", logfields.Style(style), logfields.Fingerprint(fp))

	if err := h.store.Persist(ctx, h.art); err != nil {
		return "", fmt.Errorf("persist artifact: %w", err)
	}
	return timing.OutcomeGenerated, nil
}
