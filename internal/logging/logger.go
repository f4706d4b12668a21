package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug and carries per-sentence scoring detail.
const TraceLevel = zapcore.DebugLevel - 1

// Logger is a zap logger whose methods attach the correlation fields found on
// the context.
type Logger struct {
	zl *zap.Logger
	// ctxl reports the caller of Logger's methods rather than write.
	ctxl *zap.Logger
}

// New builds a logger from cfg. Encoded entries go to out, os.Stderr when nil.
// When cfg.OTEL is set, entries are also bridged to provider, or to the
// global log provider when provider is nil.
func New(cfg *Config, out io.Writer, provider log.LoggerProvider) (*Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	core, err := buildCore(cfg, out, provider)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller())
	}
	zl := zap.New(core, opts...)
	if cfg.Service != "" {
		zl = zl.With(zap.String("service", cfg.Service))
	}
	return wrap(zl), nil
}

func wrap(zl *zap.Logger) *Logger {
	return &Logger{zl: zl, ctxl: zl.WithOptions(zap.AddCallerSkip(2))}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return wrap(zap.NewNop())
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.write(ctx, zapcore.ErrorLevel, msg, fields)
}

// write skips building context fields when lvl is disabled.
func (l *Logger) write(ctx context.Context, lvl zapcore.Level, msg string, fields []zap.Field) {
	ce := l.ctxl.Check(lvl, msg)
	if ce == nil {
		return
	}
	ce.Write(append(contextFields(ctx), fields...)...)
}

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return wrap(l.zl.With(fields...))
}

// Zap returns the plain zap logger for packages that take a *zap.Logger.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered entries. EINVAL and ENOTTY from syncing a terminal or
// pipe are not errors.
func (l *Logger) Sync() error {
	err := l.zl.Sync()
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}
