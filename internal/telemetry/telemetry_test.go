package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), NewDefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Health{}, tel.Health())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestNew_InvalidConfig(t *testing.T) {
	tel, err := New(context.Background(), &Config{Enabled: true})
	require.Error(t, err)
	assert.Nil(t, tel)
	assert.Contains(t, err.Error(), "invalid telemetry config")
}

func TestNew_SpanProcessor(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	cfg := NewDefaultConfig()
	cfg.Enabled = true
	cfg.MetricsInterval = 0
	recorder := tracetest.NewSpanRecorder()

	tel, err := New(context.Background(), cfg, WithSpanProcessor(recorder))
	require.NoError(t, err)
	assert.False(t, tel.Health().Degraded)

	_, span := otel.Tracer("test").Start(context.Background(), "summarizer.summarize")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "summarizer.summarize", ended[0].Name())
	assert.Equal(t, "lexisum", serviceName(ended[0]))

	require.NoError(t, tel.Shutdown(context.Background()))
}

func serviceName(s sdktrace.ReadOnlySpan) string {
	v, _ := s.Resource().Set().Value("service.name")
	return v.AsString()
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(0.5).Description(), "ParentBased")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased{0.5}")
	assert.Contains(t, sampler(1).Description(), sdktrace.AlwaysSample().Description())
}

func TestTelemetry_NilSafe(t *testing.T) {
	var tel *Telemetry
	assert.NotPanics(t, func() {
		_ = tel.Shutdown(context.Background())
		_ = tel.Health()
	})
}

func TestHealth_Degraded(t *testing.T) {
	tel := &Telemetry{problems: []string{"metric exporter: connection refused"}}

	h := tel.Health()
	assert.True(t, h.Degraded)
	assert.Equal(t, []string{"metric exporter: connection refused"}, h.Reasons)
}

func TestTestTelemetry(t *testing.T) {
	tt := NewTestTelemetry()
	tt.Install(t)

	_, span := otel.Tracer("test").Start(context.Background(), "signals.textrank")
	span.SetAttributes(
		attribute.String("signal", "textrank"),
		attribute.Int("sentences", 5),
		attribute.Bool("fallback", false),
	)
	span.End()
	_, other := otel.Tracer("test").Start(context.Background(), "signals.position")
	other.End()

	tt.AssertSpan(t, "signals.textrank",
		attribute.String("signal", "textrank"),
		attribute.Int("sentences", 5),
		attribute.Bool("fallback", false),
	)
	assert.Equal(t, []string{"signals.textrank", "signals.position"}, tt.SpanNames())
	assert.Nil(t, tt.SpanByName("missing"))

	counter, err := otel.Meter("test").Int64Counter("lexisum.test.total")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	assert.Equal(t, int64(2), tt.CounterValue(t, "lexisum.test.total"))
	assert.Equal(t, int64(0), tt.CounterValue(t, "lexisum.missing"))
}
