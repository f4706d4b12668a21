package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"go.uber.org/zap"
)

var (
	ErrEmptyInput      = errors.New("empty or nil input texts")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

const (
	maxErrorBody   = 512
	defaultTimeout = 30 * time.Second
)

// Config points a Service at a Text Embeddings Inference server. Model only
// labels metrics since TEI serves one model per instance.
type Config struct {
	BaseURL string
	Model   string
	APIKey  config.Secret
	Timeout time.Duration
}

// Validate requires an absolute http or https BaseURL.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base URL must be http(s), got %q", ErrInvalidConfig, c.BaseURL)
	}
	return nil
}

type ServiceOption func(*Service)

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHTTPClient overrides the client; its Timeout wins over Config.Timeout.
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// Service embeds sentences through TEI's POST /embed.
type Service struct {
	config  Config
	client  *http.Client
	logger  *zap.Logger
	metrics *Metrics
}

// NewService creates a new embedding service with the given configuration.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	s := &Service{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config.BaseURL = strings.TrimRight(s.config.BaseURL, "/")
	s.metrics = NewMetrics("tei", s.logger)
	return s, nil
}

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate"`
}

// EmbedDocuments returns one vector per text. TEI truncates over-long
// inputs instead of rejecting them.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	start := time.Now()
	defer func() {
		s.metrics.Record(ctx, s.config.Model, time.Since(start), len(texts), err)
	}()

	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors, err = s.embed(ctx, texts)
	if err != nil {
		s.logger.Debug("tei request failed", zap.Error(err), zap.Int("texts", len(texts)))
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vectors), len(texts))
	}
	return vectors, nil
}

func (s *Service) embed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Inputs: texts, Truncate: true})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.config.APIKey.IsSet() {
		httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey.Value())
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrEmbeddingFailed, err)
	}
	return vectors, nil
}
