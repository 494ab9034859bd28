package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/pipeline"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Chain   []string `short:"s" help:"Stage chain override (aliases in order)"`
	Workers int      `short:"w" help:"Document parallelism override"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(r.Chain) > 0 {
		cfg.Pipeline.Chain = r.Chain
	}
	if r.Workers > 0 {
		cfg.Pipeline.Workers = r.Workers
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

	docs, err := LoadDocuments(cfg, document.WithTimingSink(sink))
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		slog.Warn("No documents found")
		return nil
	}

	runner := pipeline.NewRunner(reg, store, pipeline.WithWorkers(cfg.Pipeline.Workers))
	chain, err := runner.ResolveChain(cfg.Pipeline.Chain)
	if err != nil {
		return err
	}

	result, err := runner.Run(context.Background(), docs, chain)
	if result != nil {
		printSummary(result)
	}
	return err
}

func printSummary(result *pipeline.Result) {
	ok := 0
	for _, d := range result.Documents {
		if d.Err == nil {
			ok++
		}
	}
	fmt.Printf("Processed %d/%d documents\n", ok, len(result.Documents))
	for _, d := range result.Documents {
		if d.Err != nil {
			fmt.Printf("  FAILED %s: %v\n", d.Document, d.Err)
		}
	}
}
