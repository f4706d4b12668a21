// Package config provides configuration loading for lexisum.
//
// Configuration is layered: built-in defaults, then an optional YAML file, then
// LEXISUM_-prefixed environment variables. See LoadWithFile.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Config holds the complete lexisum configuration.
type Config struct {
	Summarizer SummarizerConfig `koanf:"summarizer"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
}

// SummarizerConfig holds the signal coefficients and similarity mode.
type SummarizerConfig struct {
	CNNProbWeight      float64 `koanf:"cnn_prob_weight"`
	TextRankWeight     float64 `koanf:"textrank_weight"`
	TFIDFWeight        float64 `koanf:"tfidf_weight"`
	PositionWeight     float64 `koanf:"position_weight"`
	UseEmbeddings      bool    `koanf:"use_embeddings"`
	EmbeddingModelName string  `koanf:"embedding_model_name"`
}

// EmbeddingsConfig selects and configures the dense embedding backend.
type EmbeddingsConfig struct {
	Provider string `koanf:"provider"` // "fastembed" or "tei"
	BaseURL  string `koanf:"base_url"` // TEI only
	APIKey   Secret `koanf:"api_key"`  // TEI only
	CacheDir string `koanf:"cache_dir"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // requests per second, 0 disables
}

// LoggingConfig holds the subset of logging options exposed to users.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	OTEL   bool   `koanf:"otel"`
}

// TelemetryConfig holds OpenTelemetry export options.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"` // "grpc" or "http/protobuf"
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Default coefficient and model values.
const (
	DefaultCNNProbWeight      = 0.25
	DefaultTextRankWeight     = 0.35
	DefaultTFIDFWeight        = 0.30
	DefaultPositionWeight     = 0.10
	DefaultEmbeddingModelName = "sentence-transformers/all-MiniLM-L6-v2"
)

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Summarizer: SummarizerConfig{
			CNNProbWeight:      DefaultCNNProbWeight,
			TextRankWeight:     DefaultTextRankWeight,
			TFIDFWeight:        DefaultTFIDFWeight,
			PositionWeight:     DefaultPositionWeight,
			EmbeddingModelName: DefaultEmbeddingModelName,
		},
		Embeddings: EmbeddingsConfig{
			Provider: "fastembed",
			BaseURL:  "http://localhost:8080",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9191,
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimit:       20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			ServiceName: "lexisum",
			SampleRate:  1.0,
		},
	}
}

// Validate validates the configuration.
//
// Coefficients are only checked for range here; normalisation to a unit sum
// happens in the summarizer, which reports the correction as a warning.
func (c *Config) Validate() error {
	weights := map[string]float64{
		"cnn_prob_weight": c.Summarizer.CNNProbWeight,
		"textrank_weight": c.Summarizer.TextRankWeight,
		"tfidf_weight":    c.Summarizer.TFIDFWeight,
		"position_weight": c.Summarizer.PositionWeight,
	}
	var total float64
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("summarizer.%s must be finite, got %v", name, w)
		}
		if w < 0 {
			return fmt.Errorf("summarizer.%s must be >= 0, got %v", name, w)
		}
		total += w
	}
	if total == 0 {
		return errors.New("at least one summarizer weight must be positive")
	}

	if c.Summarizer.UseEmbeddings && c.Summarizer.EmbeddingModelName == "" {
		return errors.New("summarizer.embedding_model_name required when use_embeddings is set")
	}

	switch c.Embeddings.Provider {
	case "fastembed", "tei":
	default:
		return fmt.Errorf("embeddings.provider must be 'fastembed' or 'tei', got %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "tei" && c.Embeddings.BaseURL == "" {
		return errors.New("embeddings.base_url required for tei provider")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be >= 0, got %v", c.Server.RateLimit)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint required when telemetry is enabled")
		}
		if c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http/protobuf" {
			return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http/protobuf', got %q", c.Telemetry.Protocol)
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %v", c.Telemetry.SampleRate)
		}
	}

	return nil
}
