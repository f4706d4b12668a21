package logging

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger is a Logger that records every entry, TraceLevel included, in
// memory.
type TestLogger struct {
	*Logger
	logs *observer.ObservedLogs
}

func NewTestLogger() *TestLogger {
	core, logs := observer.New(TraceLevel)
	return &TestLogger{Logger: wrap(zap.New(core)), logs: logs}
}

// Entries returns everything logged so far.
func (t *TestLogger) Entries() []observer.LoggedEntry {
	return t.logs.All()
}

func (t *TestLogger) CountLevel(level zapcore.Level) int {
	return t.logs.FilterLevelExact(level).Len()
}

// Reset drops the recorded entries.
func (t *TestLogger) Reset() {
	t.logs.TakeAll()
}

func (t *TestLogger) matching(level zapcore.Level, msg string) []observer.LoggedEntry {
	var out []observer.LoggedEntry
	for _, e := range t.logs.All() {
		if e.Level == level && strings.Contains(e.Message, msg) {
			out = append(out, e)
		}
	}
	return out
}

func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msg string) {
	tb.Helper()
	if len(t.matching(level, msg)) == 0 {
		tb.Errorf("no %v entry containing %q in %d entries", level, msg, t.logs.Len())
	}
}

func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, msg string) {
	tb.Helper()
	if n := len(t.matching(level, msg)); n > 0 {
		tb.Errorf("%d unexpected %v entries containing %q", n, level, msg)
	}
}

// AssertField checks that some entry whose message contains msg has key set
// to want.
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, want any) {
	tb.Helper()
	for _, e := range t.logs.FilterMessageSnippet(msg).All() {
		if got, ok := e.ContextMap()[key]; ok && reflect.DeepEqual(got, want) {
			return
		}
	}
	tb.Errorf("no entry containing %q with %s=%v", msg, key, want)
}
