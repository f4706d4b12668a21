package logging

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	documentIDKey
	loggerKey
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ValidID reports whether id can tag a request or document: 1 to 128
// characters from [A-Za-z0-9_-].
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// WithRequestID tags ctx with a request ID. Invalid IDs leave ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if !ValidID(id) {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithDocumentID tags ctx with the document being summarized. Invalid IDs
// leave ctx unchanged.
func WithDocumentID(ctx context.Context, id string) context.Context {
	if !ValidID(id) {
		return ctx
	}
	return context.WithValue(ctx, documentIDKey, id)
}

// DocumentIDFromContext returns the document ID, or "".
func DocumentIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(documentIDKey).(string)
	return id
}

func contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.Stringer("trace_id", sc.TraceID()),
			zap.Stringer("span_id", sc.SpanID()),
		)
		if sc.IsSampled() {
			fields = append(fields, zap.Bool("trace_sampled", true))
		}
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}
	if id := DocumentIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("document.id", id))
	}
	return fields
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or a nop logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		return l
	}
	return Nop()
}

// ZapFromContext returns the zap logger stored in ctx, else fallback, else a
// nop logger, with the context's correlation fields attached.
func ZapFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	zl := fallback
	if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
		zl = l.Zap()
	}
	if zl == nil {
		return zap.NewNop()
	}
	if fields := contextFields(ctx); len(fields) > 0 {
		return zl.With(fields...)
	}
	return zl
}
