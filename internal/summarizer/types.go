package summarizer

import (
	"strings"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
)

// Weights is the output of ComputeSentenceWeights.
type Weights struct {
	// Combined holds one non-negative weight per sentence, summing to 1.
	Combined []float64 `json:"weights"`

	// Components holds the normalized vector of every signal that
	// contributed, keyed by signal name.
	Components map[string][]float64 `json:"components"`

	Warnings []diagnostics.Warning `json:"warnings"`
}

// Request describes one summarization call.
type Request struct {
	Sentences []string `json:"sentences,omitempty"`

	// OriginalText is segmented into sentences when Sentences is empty.
	OriginalText string `json:"text,omitempty"`

	BoundaryProbs []float64 `json:"boundary_probs,omitempty"`

	// TopK selects an explicit number of sentences. Takes precedence over
	// Compression.
	TopK *int `json:"top_k,omitempty"`

	// Compression selects floor(N*ratio) sentences, at least one.
	Compression *float64 `json:"compression,omitempty"`

	// PreserveOrder keeps the selection in document order. Nil means true.
	PreserveOrder *bool `json:"preserve_order,omitempty"`
}

// Result is the output of Summarize.
type Result struct {
	Sentences  []string              `json:"sentences"`
	Indices    []int                 `json:"indices"`
	Weights    []float64             `json:"weights"`
	Components map[string][]float64  `json:"components"`
	Ranking    []int                 `json:"ranking"`
	Warnings   []diagnostics.Warning `json:"warnings"`
}

// Text joins the selected sentences with single spaces.
func (r *Result) Text() string {
	return strings.Join(r.Sentences, " ")
}
