// Package diagnostics carries non-fatal warnings from the summarization
// pipeline back to callers.
//
// Warnings are accumulated per call and returned in results instead of being
// written to a process-wide stream. Each warning is also logged at Warn level
// when a logger is attached.
package diagnostics

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Kind classifies a warning.
type Kind string

const (
	// KindConfiguration reports a corrected configuration value, such as
	// coefficients that did not sum to 1 or negative boundary probabilities.
	KindConfiguration Kind = "configuration"

	// KindBackendUnavailable reports an optional backend that could not be
	// loaded. The affected signal degrades to its fallback.
	KindBackendUnavailable Kind = "backend_unavailable"

	// KindBackendFailure reports a backend that failed at call time.
	KindBackendFailure Kind = "backend_failure"
)

// Warning is a single diagnostic.
type Warning struct {
	Kind    Kind   `json:"kind"`
	Signal  string `json:"signal,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Signal == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Signal, w.Message)
}

// Collector accumulates warnings. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	warnings []Warning
	logger   *zap.Logger
}

// NewCollector returns an empty collector. A nil logger disables logging.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger}
}

// Add records a warning.
func (c *Collector) Add(kind Kind, signal, format string, args ...any) {
	w := Warning{Kind: kind, Signal: signal, Message: fmt.Sprintf(format, args...)}

	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()

	c.logger.Warn(w.Message,
		zap.String("warning.kind", string(kind)),
		zap.String("signal", signal),
	)
}

// Extend appends already-built warnings without logging them again.
func (c *Collector) Extend(ws ...Warning) {
	if len(ws) == 0 {
		return
	}
	c.mu.Lock()
	c.warnings = append(c.warnings, ws...)
	c.mu.Unlock()
}

// Warnings returns a copy of the recorded warnings. Never nil.
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len returns the number of recorded warnings.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warnings)
}

// Has reports whether a warning of kind was recorded for signal. An empty
// signal matches any.
func (c *Collector) Has(kind Kind, signal string) bool {
	return Contains(c.Warnings(), kind, signal)
}

// Contains reports whether ws holds a warning of kind for signal. An empty
// signal matches any.
func Contains(ws []Warning, kind Kind, signal string) bool {
	for _, w := range ws {
		if w.Kind == kind && (signal == "" || w.Signal == signal) {
			return true
		}
	}
	return false
}
