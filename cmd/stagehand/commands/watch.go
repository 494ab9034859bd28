package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/metrics"
	"git.home.luguber.info/inful/stagehand/internal/pipeline"
	"git.home.luguber.info/inful/stagehand/internal/watch"
)

// WatchCmd implements the 'watch' command: run once, then re-run on source
// changes, with scheduled artifact pruning and optional Prometheus
// exposition.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Source.Git != "" {
		return fmt.Errorf("watch mode requires a directory source")
	}

	store, err := OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer store.Close()

	sink, err := BuildSinks(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer sink.Close()

	reg, err := BuiltinRegistry()
	if err != nil {
		return err
	}

	recorder := metrics.Recorder(metrics.NoopRecorder{})
	if cfg.Metrics.Enabled {
		promReg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(promReg)
		go func() {
			slog.Info("Serving metrics", "listen", cfg.Metrics.Listen)
			srv := &http.Server{
				Addr:              cfg.Metrics.Listen,
				Handler:           metrics.HTTPHandler(promReg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	runner := pipeline.NewRunner(reg, store,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithRecorder(recorder))
	chain, err := runner.ResolveChain(cfg.Pipeline.Chain)
	if err != nil {
		return err
	}

	rebuild := func(ctx context.Context) {
		docs, err := LoadDocuments(cfg, document.WithTimingSink(sink))
		if err != nil {
			slog.Error("Load documents failed", "error", err)
			return
		}
		if result, err := runner.Run(ctx, docs, chain); err != nil {
			slog.Error("Pipeline run failed", "error", err)
		} else {
			printSummary(result)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initial run before entering the watch loop.
	rebuild(ctx)

	if pruner, ok := store.(artifact.Pruner); ok {
		ps, err := watch.NewPruneScheduler(pruner, cfg.Watch.PruneInterval, cfg.Watch.PruneMaxAge, slog.Default())
		if err != nil {
			return err
		}
		ps.Start()
		defer func() { _ = ps.Stop() }()
	}

	watcher, err := watch.NewWatcher(cfg.Source.Dir, cfg.Watch.Debounce, slog.Default(), rebuild)
	if err != nil {
		return err
	}
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
