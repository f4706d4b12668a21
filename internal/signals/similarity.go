package signals

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Embedder produces one dense vector per text.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Similarity scores each sentence by cosine similarity to the document
// centroid. With an Embedder it works on dense vectors and falls back to
// TF-IDF when inference fails; otherwise it uses TF-IDF directly.
type Similarity struct {
	Vectorizer *TFIDF
	Embedder   Embedder
	// LexicalDisabled makes the TF-IDF path return uniform scores.
	LexicalDisabled bool
	Logger          *zap.Logger
}

// NewSimilarity returns a similarity signal. embedder may be nil.
func NewSimilarity(embedder Embedder, logger *zap.Logger) *Similarity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Similarity{
		Vectorizer: NewTFIDF(),
		Embedder:   embedder,
		Logger:     logger,
	}
}

// Name returns the component name: "embeddings" with an Embedder, otherwise
// "tfidf".
func (s *Similarity) Name() string {
	if s.Embedder != nil {
		return NameEmbeddings
	}
	return NameTFIDF
}

// Score returns one similarity-to-centroid score per sentence.
func (s *Similarity) Score(ctx context.Context, sentences []string, diag *diagnostics.Collector) []float64 {
	if len(sentences) == 0 {
		return []float64{}
	}

	if s.Embedder != nil {
		scores, err := s.embeddingScores(ctx, sentences)
		if err == nil {
			return scores
		}
		if diag != nil {
			diag.Add(diagnostics.KindBackendFailure, NameEmbeddings,
				"embedding computation failed, falling back to tf-idf: %v", err)
		}
	}
	return s.lexicalScores(sentences, diag)
}

func (s *Similarity) lexicalScores(sentences []string, diag *diagnostics.Collector) []float64 {
	n := len(sentences)
	if s.LexicalDisabled {
		return weights.Uniform(n)
	}

	vec := s.Vectorizer
	if vec == nil {
		vec = NewTFIDF()
	}
	m, vocab, err := vec.FitTransform(sentences)
	if err != nil {
		if diag != nil {
			diag.Add(diagnostics.KindBackendFailure, NameTFIDF, "tf-idf computation failed: %v; using uniform scores", err)
		}
		return weights.Uniform(n)
	}

	s.logger().Debug("tf-idf computed", zap.Int("sentences", n), zap.Int("features", len(vocab)))
	return weights.Normalize(CentroidScores(m))
}

func (s *Similarity) embeddingScores(ctx context.Context, sentences []string) ([]float64, error) {
	vectors, err := s.Embedder.EmbedDocuments(ctx, sentences)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(sentences) {
		return nil, fmt.Errorf("got %d vectors for %d sentences", len(vectors), len(sentences))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding dimension is 0")
	}

	m := mat.NewDense(len(vectors), dim, nil)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
		row := m.RawRowView(i)
		for j, x := range v {
			row[j] = float64(x)
		}
	}

	scores := CentroidScores(m)
	// Dense cosines can be negative; weights must not be.
	for i, sc := range scores {
		if sc < 0 {
			scores[i] = 0
		}
	}
	return weights.Normalize(scores), nil
}

func (s *Similarity) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
