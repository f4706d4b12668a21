package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/embeddings"
	"github.com/fyrsmithlabs/lexisum/internal/logging"
	"github.com/fyrsmithlabs/lexisum/internal/segment"
	"github.com/fyrsmithlabs/lexisum/internal/signals"
	"github.com/fyrsmithlabs/lexisum/internal/tokenize"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Summarizer computes sentence weights and extractive summaries. It is safe
// for concurrent use.
type Summarizer struct {
	cfg    Config
	logger *zap.Logger

	centrality *signals.Centrality
	similarity *signals.Similarity

	provider     embeddings.Provider
	ownsProvider bool

	// construction-time warnings, attached to every result
	warnings []diagnostics.Warning

	tracer  trace.Tracer
	metrics *metrics
}

// New validates and normalizes cfg and builds the signal backends.
//
// When cfg.UseEmbeddings is set and no provider was supplied, one is created
// from the provider config. If that fails the summarizer runs in lexical mode
// and records a single backend_unavailable warning.
func New(cfg Config, opts ...Option) (*Summarizer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	norm, warn, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	diag := diagnostics.NewCollector(o.logger)
	if warn != nil {
		diag.Add(warn.Kind, warn.Signal, "%s", warn.Message)
	}

	tok := o.tokenizer
	if tok == nil {
		tok = tokenize.New(o.logger)
	}

	s := &Summarizer{
		cfg:        norm,
		logger:     o.logger,
		centrality: signals.NewCentrality(tok, o.logger),
		tracer:     otel.Tracer(tracerName),
		metrics:    m,
	}

	s.centrality.Disabled = !o.centralityEnabled
	if !o.centralityEnabled && norm.TextRankWeight > 0 {
		diag.Add(diagnostics.KindBackendUnavailable, signals.NameCentrality,
			"graph backend unavailable; textrank scores will be uniform")
	}

	if norm.UseEmbeddings {
		s.provider = o.provider
		if s.provider == nil {
			pc := embeddings.ProviderConfig{Provider: "fastembed", Model: norm.EmbeddingModelName}
			if o.providerConfig != nil {
				pc = *o.providerConfig
				if pc.Model == "" {
					pc.Model = norm.EmbeddingModelName
				}
			}
			if pc.Logger == nil {
				pc.Logger = o.logger
			}
			p, err := embeddings.NewProvider(pc)
			if err != nil {
				diag.Add(diagnostics.KindBackendUnavailable, signals.NameEmbeddings,
					"embedding model %q unavailable, using tf-idf: %v", pc.Model, err)
			} else {
				s.provider = p
				s.ownsProvider = true
			}
		}
	}

	var embedder signals.Embedder
	if s.provider != nil {
		embedder = s.provider
	}
	s.similarity = signals.NewSimilarity(embedder, o.logger)

	s.similarity.LexicalDisabled = !o.lexicalEnabled
	if !o.lexicalEnabled && norm.TFIDFWeight > 0 {
		diag.Add(diagnostics.KindBackendUnavailable, signals.NameTFIDF,
			"lexical backend unavailable; similarity scores fall back to uniform")
	}

	s.warnings = diag.Warnings()

	o.logger.Debug("summarizer initialized",
		zap.Float64("cnn_prob_weight", norm.CNNProbWeight),
		zap.Float64("textrank_weight", norm.TextRankWeight),
		zap.Float64("tfidf_weight", norm.TFIDFWeight),
		zap.Float64("position_weight", norm.PositionWeight),
		zap.String("similarity", s.similarity.Name()),
		zap.Int("warnings", len(s.warnings)),
	)

	return s, nil
}

// Config returns the normalized configuration.
func (s *Summarizer) Config() Config {
	return s.cfg
}

// Warnings returns the warnings recorded at construction.
func (s *Summarizer) Warnings() []diagnostics.Warning {
	out := make([]diagnostics.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Mode returns the similarity component name, "tfidf" or "embeddings".
func (s *Summarizer) Mode() string {
	return s.similarity.Name()
}

// Close releases an embedding provider created by New. A provider passed via
// WithEmbeddingProvider is left to the caller.
func (s *Summarizer) Close() error {
	if s.ownsProvider && s.provider != nil {
		return s.provider.Close()
	}
	return nil
}

// ComputeSentenceWeights scores each sentence with every signal whose
// coefficient is positive and fuses the results.
//
// originalText is carried for tracing only. The inputs are not modified.
func (s *Summarizer) ComputeSentenceWeights(ctx context.Context, sentences []string, originalText string, boundaryProbs []float64) (*Weights, error) {
	ctx, span := s.tracer.Start(ctx, "summarizer.compute_weights",
		trace.WithAttributes(
			attribute.Int("sentences", len(sentences)),
			attribute.Int("text_length", len(originalText)),
			attribute.Int("boundary_probs", len(boundaryProbs)),
			attribute.String("similarity", s.similarity.Name()),
		),
	)
	defer span.End()

	start := time.Now()
	w, err := s.computeWeights(ctx, sentences, boundaryProbs)
	s.record(ctx, "compute_weights", start, len(sentences), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("warnings", len(w.Warnings)))
	return w, nil
}

func (s *Summarizer) computeWeights(ctx context.Context, sentences []string, boundaryProbs []float64) (*Weights, error) {
	diag := diagnostics.NewCollector(logging.ZapFromContext(ctx, s.logger))
	diag.Extend(s.warnings...)

	n := len(sentences)
	if n == 0 {
		return &Weights{
			Combined:   []float64{},
			Components: map[string][]float64{},
			Warnings:   diag.Warnings(),
		}, nil
	}

	components := make(map[string][]float64, 4)
	var coeffs []float64
	var vectors [][]float64

	add := func(name string, coeff float64, compute func(context.Context) []float64) {
		if coeff <= 0 {
			return
		}
		sctx, span := s.tracer.Start(ctx, "signals."+name)
		before := diag.Len()
		v := compute(sctx)
		if diagnostics.Contains(diag.Warnings()[before:], diagnostics.KindBackendFailure, "") {
			s.metrics.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("signal", name)))
			span.SetAttributes(attribute.Bool("fallback", true))
		}
		span.End()

		components[name] = v
		coeffs = append(coeffs, coeff)
		vectors = append(vectors, v)
	}

	add(signals.NameBoundary, s.cfg.CNNProbWeight, func(context.Context) []float64 {
		return signals.Boundary(n, boundaryProbs, diag)
	})
	add(signals.NameCentrality, s.cfg.TextRankWeight, func(context.Context) []float64 {
		return s.centrality.Score(sentences, diag)
	})
	add(s.similarity.Name(), s.cfg.TFIDFWeight, func(c context.Context) []float64 {
		return s.similarity.Score(c, sentences, diag)
	})
	add(signals.NamePosition, s.cfg.PositionWeight, func(context.Context) []float64 {
		return signals.Position(n)
	})

	combined, err := weights.Combine(coeffs, vectors)
	if err != nil {
		return nil, fmt.Errorf("combining signals: %w", err)
	}

	combined = weights.Normalize(combined)
	logSentenceWeights(logging.ZapFromContext(ctx, s.logger), combined, components)

	return &Weights{
		Combined:   combined,
		Components: components,
		Warnings:   diag.Warnings(),
	}, nil
}

// logSentenceWeights emits one trace entry per sentence.
func logSentenceWeights(zl *zap.Logger, combined []float64, components map[string][]float64) {
	if !zl.Core().Enabled(logging.TraceLevel) {
		return
	}
	for i, w := range combined {
		fields := make([]zap.Field, 0, len(components)+2)
		fields = append(fields, zap.Int("index", i), zap.Float64("weight", w))
		for name, v := range components {
			fields = append(fields, zap.Float64(name, v[i]))
		}
		zl.Log(logging.TraceLevel, "sentence weight", fields...)
	}
}

// Summarize weights the request's sentences and selects the top ones.
//
// Selected indices are ascending in both order modes; Ranking holds the full
// weight-descending order. An invalid count or ratio returns
// ErrInvalidSelection before any signal is computed.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (*Result, error) {
	sentences := req.Sentences
	if len(sentences) == 0 && strings.TrimSpace(req.OriginalText) != "" {
		sentences = segment.Split(req.OriginalText)
	}
	preserveOrder := req.PreserveOrder == nil || *req.PreserveOrder

	ctx, span := s.tracer.Start(ctx, "summarizer.summarize",
		trace.WithAttributes(
			attribute.Int("sentences", len(sentences)),
			attribute.Bool("preserve_order", preserveOrder),
		),
	)
	defer span.End()

	start := time.Now()
	res, err := s.summarize(ctx, sentences, req)
	s.record(ctx, "summarize", start, len(sentences), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("selected", len(res.Indices)),
		attribute.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

func (s *Summarizer) summarize(ctx context.Context, sentences []string, req Request) (*Result, error) {
	count, err := ResolveCount(len(sentences), req.TopK, req.Compression)
	if err != nil {
		return nil, err
	}

	w, err := s.ComputeSentenceWeights(ctx, sentences, req.OriginalText, req.BoundaryProbs)
	if err != nil {
		return nil, err
	}

	ranking := Rank(w.Combined)
	chosen := Select(w.Combined, count)
	selected := make([]string, len(chosen))
	for i, idx := range chosen {
		selected[i] = sentences[idx]
	}

	logging.ZapFromContext(ctx, s.logger).Debug("summary selected",
		zap.Int("sentences", len(sentences)),
		zap.Int("selected", len(chosen)),
	)

	return &Result{
		Sentences:  selected,
		Indices:    chosen,
		Weights:    w.Combined,
		Components: w.Components,
		Ranking:    ranking,
		Warnings:   w.Warnings,
	}, nil
}

func (s *Summarizer) record(ctx context.Context, op string, start time.Time, n int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
		attribute.String("similarity", s.similarity.Name()),
	)
	s.metrics.operations.Add(ctx, 1, attrs)
	s.metrics.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.metrics.sentences.Record(ctx, int64(n), metric.WithAttributes(attribute.String("operation", op)))
}
