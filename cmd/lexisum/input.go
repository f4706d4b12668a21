package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fyrsmithlabs/lexisum/internal/segment"
)

// maxInputSize bounds documents read from a file or stdin.
const maxInputSize = 16 * 1024 * 1024

// readInput reads the document named by args, or stdin when args is empty or
// "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	var r io.Reader
	name := "stdin"
	if len(args) == 0 || args[0] == "-" {
		r = stdin
	} else {
		f, err := os.Open(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
		name = args[0]
	}

	content, err := io.ReadAll(io.LimitReader(r, maxInputSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read from %s: %w", name, err)
	}
	if len(content) > maxInputSize {
		return "", fmt.Errorf("%s exceeds %d bytes", name, maxInputSize)
	}
	return string(content), nil
}

// sentencesOf segments text, or takes one sentence per line when lines is set.
func sentencesOf(text string, lines bool) []string {
	if lines {
		return segment.Lines(text)
	}
	return segment.Split(text)
}

// readProbs loads boundary probabilities from path. An empty path yields nil.
func readProbs(path string) ([]float64, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read probabilities %s: %w", path, err)
	}
	return parseProbs(string(content))
}

// parseProbs parses whitespace- or comma-separated floats.
func parseProbs(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("probability %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
