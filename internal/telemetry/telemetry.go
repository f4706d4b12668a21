package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// Telemetry owns the tracer and meter providers it installed globally.
//
// A provider that cannot be built is reported through Health and skipped;
// instrumentation then keeps using the global no-op provider.
type Telemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider

	shutdownTimeout time.Duration
	problems        []string
}

// Option configures New.
type Option func(*options)

type options struct {
	logger *zap.Logger
	spans  sdktrace.SpanProcessor
}

// WithLogger reports setup problems to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSpanProcessor replaces the batching OTLP span pipeline.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spans = sp }
}

// New installs global providers and the W3C propagators when cfg is enabled.
// Only an invalid cfg is an error.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Telemetry{shutdownTimeout: cfg.ShutdownTimeout}
	if !cfg.Enabled {
		return t, nil
	}
	res := newResource(cfg)

	sp := o.spans
	if sp == nil {
		exp, err := newSpanExporter(ctx, cfg)
		if err != nil {
			t.problems = append(t.problems, "span exporter: "+err.Error())
		} else {
			sp = sdktrace.NewBatchSpanProcessor(exp)
		}
	}
	if sp != nil {
		t.tp = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sp),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler(cfg.SampleRate)),
		)
		otel.SetTracerProvider(t.tp)
	}

	if cfg.MetricsInterval > 0 {
		exp, err := newMetricExporter(ctx, cfg)
		if err != nil {
			t.problems = append(t.problems, "metric exporter: "+err.Error())
		} else {
			t.mp = sdkmetric.NewMeterProvider(
				sdkmetric.WithResource(res),
				sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.MetricsInterval))),
			)
			otel.SetMeterProvider(t.mp)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	for _, p := range t.problems {
		o.logger.Warn("telemetry degraded", zap.String("reason", p))
	}
	o.logger.Info("telemetry initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("protocol", cfg.Protocol),
		zap.Float64("sample_rate", cfg.SampleRate),
	)
	return t, nil
}

// Health describes whether every configured provider came up.
type Health struct {
	Degraded bool     `json:"degraded"`
	Reasons  []string `json:"reasons,omitempty"`
}

func (t *Telemetry) Health() Health {
	if t == nil {
		return Health{}
	}
	return Health{Degraded: len(t.problems) > 0, Reasons: t.problems}
}

// Shutdown flushes and stops the providers. The configured shutdown timeout
// applies when ctx has no deadline.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok && t.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.shutdownTimeout)
		defer cancel()
	}

	var errs []error
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
