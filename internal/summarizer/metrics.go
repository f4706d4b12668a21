package summarizer

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	tracerName = "github.com/fyrsmithlabs/lexisum/internal/summarizer"
	meterName  = "github.com/fyrsmithlabs/lexisum/internal/summarizer"
)

type metrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
	fallbacks  metric.Int64Counter
	sentences  metric.Int64Histogram
}

func newMetrics() (*metrics, error) {
	meter := otel.Meter(meterName)
	m := &metrics{}

	var err error
	m.operations, err = meter.Int64Counter(
		"lexisum.summarize.operations_total",
		metric.WithDescription("Total summarizer operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"lexisum.summarize.duration_seconds",
		metric.WithDescription("Duration of summarizer operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	m.fallbacks, err = meter.Int64Counter(
		"lexisum.signal.fallbacks_total",
		metric.WithDescription("Signals that degraded to a fallback"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback counter: %w", err)
	}

	m.sentences, err = meter.Int64Histogram(
		"lexisum.summarize.sentences",
		metric.WithDescription("Number of input sentences per operation"),
		metric.WithUnit("{sentence}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentences histogram: %w", err)
	}

	return m, nil
}
