package logging

import (
	"errors"
	"io"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const instrumentationScope = "github.com/fyrsmithlabs/lexisum"

func buildCore(cfg *Config, out io.Writer, provider log.LoggerProvider) (zapcore.Core, error) {
	var cores []zapcore.Core

	if cfg.Stream {
		enc, err := newRedactingEncoder(newEncoder(cfg.Format), cfg.Redact)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = os.Stderr
		}
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), cfg.Level))
	}

	if cfg.OTEL {
		if provider == nil {
			provider = global.GetLoggerProvider()
		}
		cores = append(cores, otelzap.NewCore(instrumentationScope, otelzap.WithLoggerProvider(provider)))
	}

	if len(cores) == 0 {
		return nil, errors.New("no log output enabled")
	}
	return sample(zapcore.NewTee(cores...), cfg.Sampling), nil
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "ts"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = encodeLevel
	if format == "console" {
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

// sample thins repeated entries below Error. Error and above always pass.
func sample(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}
	errs, err := zapcore.NewIncreaseLevelCore(core, zapcore.ErrorLevel)
	if err != nil {
		// core already drops everything below Error
		return core
	}
	rest := zapcore.NewSamplerWithOptions(belowError{core}, cfg.Tick, cfg.First, cfg.Thereafter)
	return zapcore.NewTee(errs, rest)
}

// belowError passes only entries under Error to the wrapped core.
type belowError struct {
	zapcore.Core
}

func (c belowError) Enabled(lvl zapcore.Level) bool {
	return lvl < zapcore.ErrorLevel && c.Core.Enabled(lvl)
}

func (c belowError) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if ent.Level >= zapcore.ErrorLevel {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c belowError) With(fields []zapcore.Field) zapcore.Core {
	return belowError{c.Core.With(fields)}
}
