package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	redacted      = "[REDACTED]"
	maxPatternLen = 200
)

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if len(p) > maxPatternLen {
			return nil, fmt.Errorf("redaction pattern longer than %d chars: %q", maxPatternLen, p)
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// redactingEncoder masks fields whose key is listed in RedactConfig.Keys and
// string values matching one of its patterns. Only top-level keys are
// checked; a masked object or array is replaced whole.
type redactingEncoder struct {
	zapcore.Encoder
	keys     map[string]struct{}
	patterns []*regexp.Regexp
}

func newRedactingEncoder(base zapcore.Encoder, cfg RedactConfig) (*redactingEncoder, error) {
	patterns, err := compilePatterns(cfg.Patterns)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(cfg.Keys))
	for _, k := range cfg.Keys {
		keys[strings.ToLower(k)] = struct{}{}
	}
	return &redactingEncoder{Encoder: base, keys: keys, patterns: patterns}, nil
}

func (e *redactingEncoder) masked(key string) bool {
	_, ok := e.keys[strings.ToLower(key)]
	return ok
}

func (e *redactingEncoder) sensitive(val string) bool {
	for _, re := range e.patterns {
		if re.MatchString(val) {
			return true
		}
	}
	return false
}

func (e *redactingEncoder) AddString(key, val string) {
	if e.masked(key) || e.sensitive(val) {
		val = redacted
	}
	e.Encoder.AddString(key, val)
}

func (e *redactingEncoder) AddByteString(key string, val []byte) {
	if e.masked(key) || e.sensitive(string(val)) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddByteString(key, val)
}

func (e *redactingEncoder) AddBinary(key string, val []byte) {
	if e.masked(key) {
		e.Encoder.AddString(key, redacted)
		return
	}
	e.Encoder.AddBinary(key, val)
}

func (e *redactingEncoder) AddReflected(key string, val any) error {
	if e.masked(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

func (e *redactingEncoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if e.masked(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddArray(key, arr)
}

func (e *redactingEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if e.masked(key) {
		e.Encoder.AddString(key, redacted)
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

func (e *redactingEncoder) Clone() zapcore.Encoder {
	return &redactingEncoder{Encoder: e.Encoder.Clone(), keys: e.keys, patterns: e.patterns}
}

// EncodeEntry adds the call-site fields through the masking methods first; the
// wrapped encoder would otherwise write them directly.
func (e *redactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := e.Clone().(*redactingEncoder)
	for _, f := range fields {
		f.AddTo(c)
	}
	return c.Encoder.EncodeEntry(ent, nil)
}
