package summarizer

import (
	"github.com/fyrsmithlabs/lexisum/internal/embeddings"
	"github.com/fyrsmithlabs/lexisum/internal/signals"
	"go.uber.org/zap"
)

// Option configures a Summarizer.
type Option func(*options)

type options struct {
	logger            *zap.Logger
	provider          embeddings.Provider
	providerConfig    *embeddings.ProviderConfig
	tokenizer         signals.Tokenizer
	centralityEnabled bool
	lexicalEnabled    bool
}

func defaultOptions() options {
	return options{
		logger:            zap.NewNop(),
		centralityEnabled: true,
		lexicalEnabled:    true,
	}
}

// WithLogger sets the logger. Warnings are logged at Warn level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEmbeddingProvider supplies an already-loaded embedding provider used
// when embedding mode is configured. The caller keeps ownership.
func WithEmbeddingProvider(p embeddings.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithEmbeddingProviderConfig sets how New creates a provider when embedding
// mode is configured and none was supplied. The default is FastEmbed with the
// configured model name.
func WithEmbeddingProviderConfig(cfg embeddings.ProviderConfig) Option {
	return func(o *options) {
		o.providerConfig = &cfg
	}
}

// WithTokenizer replaces the tokenizer used by the centrality signal.
func WithTokenizer(t signals.Tokenizer) Option {
	return func(o *options) {
		o.tokenizer = t
	}
}

// WithCentralityBackend enables or disables the graph centrality backend.
// When disabled the textrank signal is uniform.
func WithCentralityBackend(enabled bool) Option {
	return func(o *options) {
		o.centralityEnabled = enabled
	}
}

// WithLexicalBackend enables or disables the TF-IDF backend. When disabled
// the lexical similarity signal is uniform.
func WithLexicalBackend(enabled bool) Option {
	return func(o *options) {
		o.lexicalEnabled = enabled
	}
}
