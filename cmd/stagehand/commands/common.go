package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
	"git.home.luguber.info/inful/stagehand/internal/artifact/fsstore"
	"git.home.luguber.info/inful/stagehand/internal/artifact/sqlitestore"
	"git.home.luguber.info/inful/stagehand/internal/config"
	"git.home.luguber.info/inful/stagehand/internal/document"
	"git.home.luguber.info/inful/stagehand/internal/source"
	"git.home.luguber.info/inful/stagehand/internal/stage"
	"git.home.luguber.info/inful/stagehand/internal/stage/stages"
	"git.home.luguber.info/inful/stagehand/internal/timing"
	"github.com/alecthomas/kong"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"stagehand.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run    RunCmd    `cmd:"" help:"Run the stage chain over the configured document sources"`
	Watch  WatchCmd  `cmd:"" help:"Watch the source tree and re-run on changes"`
	Stages StagesCmd `cmd:"" help:"List registered stages with their formats"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig reads the config file, falling back to defaults when the file
// does not exist. Verbose always wins over the configured level.
func LoadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		slog.Debug("No config file, using defaults", "path", root.Config)
		cfg = config.Default()
	}
	if !root.Verbose {
		slog.SetDefault(cfg.Logging.NewLogger())
	}
	return cfg, nil
}

// OpenStore builds the configured artifact store backend.
func OpenStore(cfg *config.Config) (artifact.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		if err := os.MkdirAll(cfg.Store.Path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		return sqlitestore.New(filepath.Join(cfg.Store.Path, "artifacts.db"))
	default:
		return fsstore.New(cfg.Store.Path)
	}
}

// BuildSinks assembles the timing sink stack: slog always, file and NATS
// when configured.
func BuildSinks(cfg *config.Config, logger *slog.Logger) (timing.Sink, error) {
	sinks := timing.Multi{timing.NewSlogSink(logger)}

	if cfg.Timing.File != "" {
		fs, err := timing.NewFileSink(cfg.Timing.File)
		if err != nil {
			return nil, fmt.Errorf("timing file sink: %w", err)
		}
		sinks = append(sinks, fs)
	}
	if cfg.Timing.NATS.Enabled {
		ns, err := timing.NewNATSSink(cfg.Timing.NATS.URL, cfg.Timing.NATS.Subject)
		if err != nil {
			return nil, fmt.Errorf("timing NATS sink: %w", err)
		}
		sinks = append(sinks, ns)
	}
	return sinks, nil
}

// BuiltinRegistry returns a registry with all built-in stages.
func BuiltinRegistry() (*stage.Registry, error) {
	reg := stage.NewRegistry()
	if err := stages.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadDocuments loads documents from the configured source.
func LoadDocuments(cfg *config.Config, opts ...document.Option) ([]*document.Document, error) {
	if cfg.Source.Git != "" {
		return source.LoadGit(cfg.Source.Git, opts...)
	}
	return source.LoadDir(cfg.Source.Dir, opts...)
}
