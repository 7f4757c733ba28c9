package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/michaelscutari/dutrace/internal/logging"
	"github.com/michaelscutari/dutrace/internal/rollup"
)

// Config holds all dutrace configuration.
type Config struct {
	Disk     DiskConfig     `yaml:"disk"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Replay   ReplayConfig   `yaml:"replay"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DiskConfig describes the disk used by the free-space analysis.
type DiskConfig struct {
	Capacity int64 `yaml:"capacity"`
	Required int64 `yaml:"required"`
}

// AnalysisConfig tunes the size analyses.
type AnalysisConfig struct {
	Threshold int64 `yaml:"threshold"` // exclusive upper bound for the small-directory sum
	Memoize   bool  `yaml:"memoize"`   // cache subtree sizes between queries
}

// ReplayConfig controls how transcripts are replayed.
type ReplayConfig struct {
	DedupeChildren bool `yaml:"dedupe_children"`
	Strict         bool `yaml:"strict"`
}

// SnapshotConfig controls where imported snapshots are stored.
type SnapshotConfig struct {
	Out       string `yaml:"out"`
	Retention int    `yaml:"retention"` // 0 = unlimited
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Disk: DiskConfig{
			Capacity: rollup.DefaultCapacity,
			Required: rollup.DefaultRequired,
		},
		Analysis: AnalysisConfig{
			Threshold: rollup.DefaultThreshold,
		},
		Snapshot: SnapshotConfig{
			Out:       "./data",
			Retention: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("DUTRACE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if out := os.Getenv("DUTRACE_SNAPSHOT_DIR"); out != "" {
		c.Snapshot.Out = out
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Disk.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("disk.capacity must be positive, got %d", c.Disk.Capacity))
	}
	if c.Disk.Required < 0 {
		errs = append(errs, fmt.Errorf("disk.required must not be negative, got %d", c.Disk.Required))
	}
	if c.Disk.Required > c.Disk.Capacity {
		errs = append(errs, fmt.Errorf("disk.required (%d) exceeds disk.capacity (%d)", c.Disk.Required, c.Disk.Capacity))
	}
	if c.Analysis.Threshold <= 0 {
		errs = append(errs, fmt.Errorf("analysis.threshold must be positive, got %d", c.Analysis.Threshold))
	}
	if c.Snapshot.Retention < 0 {
		errs = append(errs, fmt.Errorf("snapshot.retention must not be negative, got %d", c.Snapshot.Retention))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
