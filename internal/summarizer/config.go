package summarizer

import (
	"errors"
	"fmt"
	"math"

	"github.com/fyrsmithlabs/lexisum/internal/config"
	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
)

var (
	// ErrInvalidConfig indicates coefficients that cannot be normalized.
	ErrInvalidConfig = errors.New("invalid summarizer configuration")

	// ErrInvalidSelection indicates a request with an unusable count or ratio.
	ErrInvalidSelection = errors.New("invalid selection request")
)

// Config holds the signal coefficients and similarity mode.
type Config struct {
	CNNProbWeight      float64 `json:"cnn_prob_weight"`
	TextRankWeight     float64 `json:"textrank_weight"`
	TFIDFWeight        float64 `json:"tfidf_weight"`
	PositionWeight     float64 `json:"position_weight"`
	UseEmbeddings      bool    `json:"use_embeddings"`
	EmbeddingModelName string  `json:"embedding_model_name"`
}

// DefaultConfig returns the default coefficients 0.25/0.35/0.30/0.10 in
// lexical mode.
func DefaultConfig() Config {
	return FromAppConfig(config.Default().Summarizer)
}

// FromAppConfig converts the loaded application settings.
func FromAppConfig(c config.SummarizerConfig) Config {
	return Config{
		CNNProbWeight:      c.CNNProbWeight,
		TextRankWeight:     c.TextRankWeight,
		TFIDFWeight:        c.TFIDFWeight,
		PositionWeight:     c.PositionWeight,
		UseEmbeddings:      c.UseEmbeddings,
		EmbeddingModelName: c.EmbeddingModelName,
	}
}

// Sum returns the sum of the four coefficients.
func (c Config) Sum() float64 {
	return c.CNNProbWeight + c.TextRankWeight + c.TFIDFWeight + c.PositionWeight
}

// normalize checks the coefficients and rescales them to sum to 1. A
// configuration warning is returned when rescaling was needed.
func (c Config) normalize() (Config, *diagnostics.Warning, error) {
	named := []struct {
		name string
		v    float64
	}{
		{"cnn_prob_weight", c.CNNProbWeight},
		{"textrank_weight", c.TextRankWeight},
		{"tfidf_weight", c.TFIDFWeight},
		{"position_weight", c.PositionWeight},
	}
	for _, w := range named {
		if math.IsNaN(w.v) || math.IsInf(w.v, 0) {
			return c, nil, fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, w.name, w.v)
		}
		if w.v < 0 {
			return c, nil, fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, w.name, w.v)
		}
	}

	total := c.Sum()
	if total == 0 {
		return c, nil, fmt.Errorf("%w: at least one coefficient must be positive", ErrInvalidConfig)
	}
	if math.Abs(total-1) <= weights.Tolerance {
		return c, nil, nil
	}

	c.CNNProbWeight /= total
	c.TextRankWeight /= total
	c.TFIDFWeight /= total
	c.PositionWeight /= total
	return c, &diagnostics.Warning{
		Kind:    diagnostics.KindConfiguration,
		Message: fmt.Sprintf("coefficients sum to %g, normalizing to 1.0", total),
	}, nil
}
