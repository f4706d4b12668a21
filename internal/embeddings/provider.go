package embeddings

import (
	"cmp"
	"context"
	"fmt"
	"path/filepath"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"go.uber.org/zap"
)

// Provider is the interface for embedding providers.
type Provider interface {
	// EmbedDocuments returns one vector per text, in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is the provider type: "fastembed" or "tei"
	Provider string
	// Model is the embedding model name
	Model string
	// BaseURL is the TEI URL (only used for TEI provider)
	BaseURL string
	// APIKey is sent as a bearer token to TEI when set
	APIKey config.Secret
	// CacheDir is the model cache directory (only used for FastEmbed)
	CacheDir string
	// Logger receives provider diagnostics. Nil means nop.
	Logger *zap.Logger
}

// FastEmbedConfig configures the local ONNX provider. Zero values pick
// all-MiniLM-L6-v2, ~/.cache/lexisum/models, 512 tokens and batches of 256.
type FastEmbedConfig struct {
	Model     string
	CacheDir  string
	MaxLength int
	BatchSize int
	Logger    *zap.Logger
}

func (c FastEmbedConfig) withDefaults() FastEmbedConfig {
	c.Model = cmp.Or(c.Model, config.DefaultEmbeddingModelName)
	c.CacheDir = cmp.Or(c.CacheDir, filepath.Join(userDir(), ".cache", "lexisum", "models"))
	if c.MaxLength <= 0 {
		c.MaxLength = 512
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 256
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// ProviderConfigFrom builds a ProviderConfig from the application settings.
func ProviderConfigFrom(cfg config.EmbeddingsConfig, model string, logger *zap.Logger) ProviderConfig {
	return ProviderConfig{
		Provider: cfg.Provider,
		Model:    model,
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		CacheDir: cfg.CacheDir,
		Logger:   logger,
	}
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "fastembed", "":
		if path := GetONNXLibraryPath(); path != "" {
			if err := setONNXPathEnv(path); err != nil {
				return nil, fmt.Errorf("setting ONNX_PATH: %w", err)
			}
		}
		return newLocalProvider(FastEmbedConfig{
			Model:    cfg.Model,
			CacheDir: cfg.CacheDir,
			Logger:   logger,
		})
	case "tei":
		svc, err := NewService(Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &teiProvider{Service: svc, dimension: detectDimensionFromModel(cfg.Model)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// teiProvider wraps Service to implement Provider interface.
type teiProvider struct {
	*Service
	dimension int
}

// Dimension returns the embedding dimension based on the configured model.
func (t *teiProvider) Dimension() int {
	return t.dimension
}

// Close is a no-op for TEI since it uses HTTP.
func (t *teiProvider) Close() error {
	return nil
}
