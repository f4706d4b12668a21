// Package logging builds the zap loggers used by the lexisum CLI and server.
//
// A Logger's Debug/Info/Warn/Error methods take a context and add the trace
// and span IDs, the request ID and the document ID found on it. Library
// packages take a plain *zap.Logger instead; ZapFromContext gives them one
// with the same fields attached.
//
//	cfg, err := logging.FromAppConfig(appCfg.Logging)
//	logger, err := logging.New(cfg, os.Stderr, nil)
//	ctx = logging.WithRequestID(ctx, uuid.NewString())
//	logger.Info(ctx, "summary produced", zap.Int("selected", 3))
//
// Entries below Error are sampled, and fields named like credentials or
// holding bearer tokens are masked before encoding. With Config.OTEL set,
// entries are also bridged to OpenTelemetry through otelzap.
//
// Tests use NewTestLogger, which records entries through zaptest/observer.
package logging
