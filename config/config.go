// Package config loads coordinator settings from a TOML or YAML file with
// GRACEKIT_ environment overrides.
//
// Example gracekit.toml:
//
//	[shutdown]
//	timeout = "10s"
//	signals = ["SIGINT", "SIGTERM"]
//
//	[log]
//	level = "debug"
//
//	[metrics]
//	addr = ":9090"
//
// Environment variables map onto keys by dropping the prefix and turning
// underscores into dots: GRACEKIT_SHUTDOWN_TIMEOUT=2s sets shutdown.timeout.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	kiterrors "github.com/vinayprograms/gracekit/errors"
	"github.com/vinayprograms/gracekit/logging"
	"github.com/vinayprograms/gracekit/shutdown"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "GRACEKIT_"

// Defaults applied to fields left empty after loading.
const (
	DefaultLogLevel  = "info"
	DefaultComponent = "shutdown"
	DefaultNamespace = "gracekit"
)

// Config is the full gracekit configuration.
type Config struct {
	Shutdown ShutdownConfig `koanf:"shutdown"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ShutdownConfig controls the coordinator.
type ShutdownConfig struct {
	// Timeout bounds the whole shutdown cycle. Files must give a duration
	// string such as "10s"; bare numbers are rejected.
	Timeout time.Duration `koanf:"timeout"`

	// Signals lists signal names such as "SIGINT". Empty means the
	// platform defaults.
	Signals []string `koanf:"signals"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level     string `koanf:"level"`
	Component string `koanf:"component"`
}

// MetricsConfig controls the prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr      string `koanf:"addr"`
	Namespace string `koanf:"namespace"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (TOML or YAML by extension), layers GRACEKIT_ environment
// variables on top, fills defaults and validates the result. An empty path
// loads from the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, kiterrors.Wrapf(err, "load config file %s", path)
		}
	}

	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return nil, kiterrors.Wrap(err, "load env")
	}

	// A bare number would decode as nanoseconds.
	if v := k.Get("shutdown.timeout"); v != nil {
		if _, ok := v.(string); !ok {
			return nil, kiterrors.Newf(kiterrors.ErrCodeInvalidInput,
				"shutdown.timeout must be a duration string such as \"10s\", got %v", v)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, kiterrors.WrapWithCode(err, kiterrors.ErrCodeInvalidInput, "unmarshal config")
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOMLParser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, kiterrors.InvalidInput(fmt.Sprintf("unsupported config format %q", filepath.Ext(path)),
			kiterrors.WithMetadata("path", path))
	}
}

// applyDefaults runs after unmarshal so file lists replace defaults
// rather than merging into them.
func (c *Config) applyDefaults() {
	if c.Shutdown.Timeout == 0 {
		c.Shutdown.Timeout = shutdown.DefaultConfig().Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Component == "" {
		c.Log.Component = DefaultComponent
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
}

// Validate checks the timeout, signal names and log level.
func (c *Config) Validate() error {
	if c.Shutdown.Timeout <= 0 {
		return kiterrors.Newf(kiterrors.ErrCodeInvalidInput, "shutdown.timeout must be positive, got %s", c.Shutdown.Timeout)
	}
	if _, err := shutdown.ParseSignals(c.Shutdown.Signals); err != nil {
		return kiterrors.WrapWithCode(err, kiterrors.ErrCodeInvalidInput, "shutdown.signals")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return kiterrors.WrapWithCode(err, kiterrors.ErrCodeInvalidInput, "log.level")
	}
	return nil
}

// Logger builds a logger at the configured level and component.
func (c *Config) Logger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, kiterrors.WrapWithCode(err, kiterrors.ErrCodeInvalidInput, "log.level")
	}
	logger := logging.New().WithComponent(c.Log.Component)
	logger.SetLevel(level)
	return logger, nil
}

// Coordinator converts the loaded settings into a shutdown.Config that
// logs through logger. Callbacks are left for the caller to set.
func (c *Config) Coordinator(logger *logging.Logger) (shutdown.Config, error) {
	sigs, err := shutdown.ParseSignals(c.Shutdown.Signals)
	if err != nil {
		return shutdown.Config{}, kiterrors.WrapWithCode(err, kiterrors.ErrCodeInvalidInput, "shutdown.signals")
	}
	return shutdown.Config{
		Signals: sigs,
		Timeout: c.Shutdown.Timeout,
		Logger:  logger,
	}, nil
}
