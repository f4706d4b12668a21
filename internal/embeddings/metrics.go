package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const embeddingsInstrumentationName = "github.com/fyrsmithlabs/lexisum/internal/embeddings"

// Metrics records sentence-embedding calls for one provider.
type Metrics struct {
	provider string
	duration metric.Float64Histogram
	batch    metric.Int64Histogram
	errors   metric.Int64Counter
}

// NewMetrics creates instruments on the global meter provider. Instruments
// that fail to register are logged and skipped.
func NewMetrics(provider string, logger *zap.Logger) *Metrics {
	return newMetricsFrom(otel.Meter(embeddingsInstrumentationName), provider, logger)
}

func newMetricsFrom(meter metric.Meter, provider string, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{provider: provider}

	var err error
	m.duration, err = meter.Float64Histogram(
		"lexisum.embedding.duration_seconds",
		metric.WithDescription("Time to embed one document's sentences."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		logger.Warn("failed to create embedding duration histogram", zap.Error(err))
	}

	m.batch, err = meter.Int64Histogram(
		"lexisum.embedding.sentences",
		metric.WithDescription("Sentences per embedding call."),
		metric.WithUnit("{sentence}"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000),
	)
	if err != nil {
		logger.Warn("failed to create embedding batch histogram", zap.Error(err))
	}

	m.errors, err = meter.Int64Counter(
		"lexisum.embedding.errors_total",
		metric.WithDescription("Embedding calls that failed."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		logger.Warn("failed to create embedding error counter", zap.Error(err))
	}

	return m
}

// Record captures one EmbedDocuments call.
func (m *Metrics) Record(ctx context.Context, model string, elapsed time.Duration, sentences int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", m.provider),
		attribute.String("model", model),
		attribute.String("status", status),
	)

	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if sentences > 0 && m.batch != nil {
		m.batch.Record(ctx, int64(sentences), attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", m.provider),
			attribute.String("model", model),
		))
	}
}
