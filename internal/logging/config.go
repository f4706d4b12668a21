package logging

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"go.uber.org/zap/zapcore"
)

// Config controls how a Logger encodes and routes entries.
type Config struct {
	Level  zapcore.Level
	Format string // "json" or "console"

	// Stream writes encoded entries to the writer passed to New.
	Stream bool
	// OTEL bridges entries to an OpenTelemetry log provider.
	OTEL bool

	Caller  bool
	Service string

	Sampling SamplingConfig
	Redact   RedactConfig
}

// SamplingConfig keeps the First entries with a given message per Tick, then
// every Thereafter-th.
type SamplingConfig struct {
	Enabled    bool
	Tick       time.Duration
	First      int
	Thereafter int
}

// RedactConfig lists field keys (case-insensitive) and value patterns to mask.
type RedactConfig struct {
	Keys     []string
	Patterns []string
}

// NewDefaultConfig returns the settings the CLI and server start from.
func NewDefaultConfig() *Config {
	return &Config{
		Level:   zapcore.InfoLevel,
		Format:  "json",
		Stream:  true,
		Caller:  true,
		Service: "lexisum",
		Sampling: SamplingConfig{
			Enabled:    true,
			Tick:       time.Second,
			First:      100,
			Thereafter: 10,
		},
		Redact: RedactConfig{
			Keys: []string{"api_key", "authorization", "token", "secret"},
			Patterns: []string{
				`(?i)bearer\s+\S+`,
				`(?i)api[_-]?key[=:]\s*\S+`,
			},
		},
	}
}

// ParseLevel accepts zap's level names plus "trace".
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "trace" {
		return TraceLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// FromAppConfig applies the user-facing logging settings to the defaults.
func FromAppConfig(c config.LoggingConfig) (*Config, error) {
	cfg := NewDefaultConfig()
	if c.Level != "" {
		lvl, err := ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
		}
		cfg.Level = lvl
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	cfg.OTEL = c.OTEL
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Format != "json" && c.Format != "console":
		return fmt.Errorf("format must be 'json' or 'console', got %q", c.Format)
	case !c.Stream && !c.OTEL:
		return errors.New("no log output enabled")
	case c.Sampling.Enabled && c.Sampling.Tick <= 0:
		return errors.New("sampling tick must be positive")
	}
	_, err := compilePatterns(c.Redact.Patterns)
	return err
}
