// Package telemetry exports lexisum's OpenTelemetry spans and metrics over
// OTLP, gRPC or HTTP/protobuf.
//
// Export is off by default. The summarizer, embedding providers and HTTP
// server always instrument through the otel globals, so with export off they
// record into the no-op providers.
//
//	tel, err := telemetry.New(ctx, telemetry.FromAppConfig(cfg.Telemetry, version),
//		telemetry.WithLogger(zl))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// Plaintext export is refused for endpoints other than loopback.
//
// Tests install a TestTelemetry to record spans and metrics in memory:
//
//	tt := telemetry.NewTestTelemetry()
//	tt.Install(t)
//	// build and exercise components
//	tt.AssertSpan(t, "summarizer.summarize", attribute.Int("selected", 2))
package telemetry
