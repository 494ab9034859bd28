// Package pipeline runs handler chains over documents.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/logfields"
	"git.home.luguber.info/inful/stagehand/internal/metrics"
	"git.home.luguber.info/inful/stagehand/internal/stage"
)

// Runner executes a stage chain for each document. Documents fan out
// across a bounded worker pool; within one document execution is strictly
// sequential (negotiate, gate, dispatch, log).
type Runner struct {
	registry *stage.Registry
	store    artifact.Store
	recorder metrics.Recorder
	logger   *slog.Logger
	workers  int
	gate     *KeyedLock
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds document-level parallelism. Default 1 (sequential).
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRecorder injects a metrics recorder shared by all handlers.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger injects the runner's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner over a registry and an artifact store.
func NewRunner(registry *stage.Registry, store artifact.Store, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		store:    store,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		workers:  1,
		gate:     NewKeyedLock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveChain maps stage aliases to their specs, preserving order.
func (r *Runner) ResolveChain(aliases []string) ([]stage.Spec, error) {
	if len(aliases) == 0 {
		return nil, fmt.Errorf("chain is empty")
	}
	chain := make([]stage.Spec, 0, len(aliases))
	for _, alias := range aliases {
		spec, ok := r.registry.Get(alias)
		if !ok {
			return nil, fmt.Errorf("stage %q not registered", alias)
		}
		chain = append(chain, spec)
	}
	return chain, nil
}

// DocumentResult is the outcome of one document's chain run.
type DocumentResult struct {
	Document string
	Final    *artifact.Artifact
	Err      error
}

// Result aggregates a full run.
type Result struct {
	Documents []DocumentResult
}

// Err joins all per-document failures.
func (r *Result) Err() error {
	var errs []error
	for _, d := range r.Documents {
		if d.Err != nil {
			errs = append(errs, fmt.Errorf("document %s: %w", d.Document, d.Err))
		}
	}
	return errors.Join(errs...)
}

// Run executes the chain for every document. A document failure aborts
// that document's remaining stages but not the other documents.
func (r *Runner) Run(ctx context.Context, docs []*document.Document, chain []stage.Spec) (*Result, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("chain is empty")
	}

	r.logger.Info("Executing pipeline",
		slog.Int("documents", len(docs)),
		slog.Int("stages", len(chain)),
		slog.Int("workers", r.workers))

	results := make([]DocumentResult, len(docs))
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			final, err := r.runDocument(ctx, doc, chain)
			results[i] = DocumentResult{Document: doc.Key(), Final: final, Err: err}
		}()
	}
	wg.Wait()

	res := &Result{Documents: results}
	return res, res.Err()
}

// runDocument threads one document through the chain: each position's
// finalized artifact becomes the next position's previous artifact.
func (r *Runner) runDocument(ctx context.Context, doc *document.Document, chain []stage.Spec) (*artifact.Artifact, error) {
	// Seed artifact: the document's source fragments in its source format.
	prev := &artifact.Artifact{
		Key:    doc.Key(),
		Ext:    doc.Ext(),
		Output: doc.Fragments(),
	}

	names := make([]string, 0, len(chain)+1)
	names = append(names, doc.Key())

	for i, spec := range chain {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		names = append(names, spec.Name())
		key := strings.Join(names, "|")

		var next *stage.Spec
		if i+1 < len(chain) {
			n := chain[i+1]
			next = &n
		}

		h, err := stage.NewHandler(spec, doc, key, prev, next, r.store,
			stage.WithLogger(r.logger),
			stage.WithRecorder(r.recorder),
			stage.WithGateLock(r.gate),
		)
		if err != nil {
			r.logger.Error("Handler setup failed",
				logfields.Document(doc.Key()),
				logfields.Stage(spec.Name()),
				logfields.Error(err))
			return nil, err
		}

		art, err := h.Generate(ctx)
		if err != nil {
			r.logger.Error("Stage failed",
				logfields.Document(doc.Key()),
				logfields.Stage(spec.Name()),
				logfields.Error(err))
			return nil, err
		}
		prev = art
	}

	return prev, nil
}
