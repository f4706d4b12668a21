// Package segment splits raw text into sentences using UAX #29 sentence
// boundaries.
package segment

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/sentences"
)

// Split returns the trimmed, non-empty sentences of text in order.
func Split(text string) []string {
	out := make([]string, 0, 8)
	iter := sentences.FromString(text)
	for iter.Next() {
		if s := strings.TrimSpace(iter.Value()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Lines splits text on newlines, one sentence per non-blank line. The CLI
// uses it for pre-segmented input.
func Lines(text string) []string {
	out := make([]string, 0, 8)
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
