package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry records spans and metrics in memory.
type TestTelemetry struct {
	Spans   *tracetest.SpanRecorder
	Metrics *sdkmetric.ManualReader

	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

func NewTestTelemetry() *TestTelemetry {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	return &TestTelemetry{
		Spans:   spans,
		Metrics: reader,
		tp:      sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		mp:      sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
}

// Install makes the recording providers global for the rest of the test.
// Components resolve their tracer and meter at construction, so build them
// after Install.
func (t *TestTelemetry) Install(tb testing.TB) {
	tb.Helper()
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	otel.SetTracerProvider(t.tp)
	otel.SetMeterProvider(t.mp)
	tb.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})
}

// SpanNames lists ended spans in end order.
func (t *TestTelemetry) SpanNames() []string {
	ended := t.Spans.Ended()
	names := make([]string, len(ended))
	for i, s := range ended {
		names[i] = s.Name()
	}
	return names
}

// SpanByName returns the first ended span called name, or nil.
func (t *TestTelemetry) SpanByName(name string) sdktrace.ReadOnlySpan {
	for _, s := range t.Spans.Ended() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// AssertSpan checks that a span called name ended and carries every attribute
// in attrs.
func (t *TestTelemetry) AssertSpan(tb testing.TB, name string, attrs ...attribute.KeyValue) {
	tb.Helper()
	span := t.SpanByName(name)
	if span == nil {
		tb.Errorf("span %q not recorded; have %v", name, t.SpanNames())
		return
	}
	set := attribute.NewSet(span.Attributes()...)
	for _, want := range attrs {
		got, ok := set.Value(want.Key)
		if !ok {
			tb.Errorf("span %q has no attribute %q", name, want.Key)
			continue
		}
		if got != want.Value {
			tb.Errorf("span %q attribute %q = %v, want %v", name, want.Key, got.Emit(), want.Value.Emit())
		}
	}
}

// CounterValue sums the data points of the int64 counter called name whose
// attributes include all of attrs. An absent metric counts 0.
func (t *TestTelemetry) CounterValue(tb testing.TB, name string, attrs ...attribute.KeyValue) int64 {
	tb.Helper()
	var rm metricdata.ResourceMetrics
	if err := t.Metrics.Collect(context.Background(), &rm); err != nil {
		tb.Fatalf("collect metrics: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				tb.Fatalf("metric %q is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				if includes(dp.Attributes, attrs) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func includes(set attribute.Set, attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		if v, ok := set.Value(kv.Key); !ok || v != kv.Value {
			return false
		}
	}
	return true
}
