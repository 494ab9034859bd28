// Package config loads and validates stagehand configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level stagehand configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Store    StoreConfig    `yaml:"store"`
	Timing   TimingConfig   `yaml:"timing"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Source   SourceConfig   `yaml:"source"`
	Watch    WatchConfig    `yaml:"watch"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// StoreConfig selects and locates the artifact store backend.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend"`
	Path    string       `yaml:"path"`
}

// StoreBackend enumerates supported artifact store backends.
type StoreBackend string

const (
	StoreBackendFS     StoreBackend = "fs"
	StoreBackendSQLite StoreBackend = "sqlite"
)

// TimingConfig configures timing record sinks. The slog sink is always
// active; file and NATS sinks are additive.
type TimingConfig struct {
	File string           `yaml:"file"`
	NATS NATSTimingConfig `yaml:"nats"`
}

// NATSTimingConfig configures the JetStream timing sink.
type NATSTimingConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// PipelineConfig names the stage chain and bounds document parallelism.
type PipelineConfig struct {
	Chain   []string `yaml:"chain"`
	Workers int      `yaml:"workers"`
}

// SourceConfig locates documents. Git, when set, takes precedence over Dir
// and loads the worktree at HEAD of a local clone.
type SourceConfig struct {
	Dir string `yaml:"dir"`
	Git string `yaml:"git"`
}

// WatchConfig controls watch mode: rebuild debounce and cache pruning.
type WatchConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	PruneInterval time.Duration `yaml:"prune_interval"`
	PruneMaxAge   time.Duration `yaml:"prune_max_age"`
}

// MetricsConfig controls the Prometheus exposition endpoint in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Load reads configuration from path, overlaying .env files and process
// environment, then applies defaults and validates.
func Load(path string) (*Config, error) {
	// Best effort: absent .env files are fine, existing env wins.
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load %s: %w", envPath, err)
			}
		}
	}

	// #nosec G304 - path comes from the CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, used when no
// config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("STAGEHAND_LOG_LEVEL"); v != "" {
		c.Logging.Level = NormalizeLogLevel(v)
	}
	if v := os.Getenv("STAGEHAND_LOG_FORMAT"); v != "" {
		c.Logging.Format = NormalizeLogFormat(v)
	}
	if v := os.Getenv("STAGEHAND_STORE_BACKEND"); v != "" {
		c.Store.Backend = StoreBackend(v)
	}
	if v := os.Getenv("STAGEHAND_NATS_URL"); v != "" {
		c.Timing.NATS.URL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendFS
	}
	if c.Store.Path == "" {
		c.Store.Path = ".stagehand"
	}
	if c.Timing.NATS.Subject == "" {
		c.Timing.NATS.Subject = "stagehand.timing"
	}
	if len(c.Pipeline.Chain) == 0 {
		c.Pipeline.Chain = []string{"normalize", "md"}
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = 4
	}
	if c.Source.Dir == "" && c.Source.Git == "" {
		c.Source.Dir = "."
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Watch.PruneInterval <= 0 {
		c.Watch.PruneInterval = time.Hour
	}
	if c.Watch.PruneMaxAge <= 0 {
		c.Watch.PruneMaxAge = 30 * 24 * time.Hour
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9100"
	}
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreBackendFS, StoreBackendSQLite:
	default:
		return fmt.Errorf("unknown store backend %q (want %q or %q)",
			c.Store.Backend, StoreBackendFS, StoreBackendSQLite)
	}
	if c.Timing.NATS.Enabled && c.Timing.NATS.URL == "" {
		return fmt.Errorf("timing.nats.url is required when the NATS sink is enabled")
	}
	return nil
}
