// Package signals computes the per-sentence importance signals that the
// summarizer combines.
//
// Every signal maps an ordered sentence list to a non-negative vector of the
// same length that sums to 1, or to an empty vector for an empty list. A
// signal that cannot be computed degrades to uniform scores and records a
// diagnostics.Warning; no signal returns an error to its caller.
package signals

import "errors"

// Stable component names used as keys in the component score map.
const (
	NameBoundary   = "cnn_prob"
	NameCentrality = "textrank"
	NameTFIDF      = "tfidf"
	NameEmbeddings = "embeddings"
	NamePosition   = "position"
)

var (
	// ErrEmptyVocabulary is returned by the TF-IDF vectorizer when no
	// document contains a token.
	ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain no terms")

	// ErrNotConverged is returned by PageRank when the power iteration does
	// not reach the tolerance within the iteration cap.
	ErrNotConverged = errors.New("pagerank did not converge")
)

// Tokenizer splits a sentence into tokens. It must not fail.
type Tokenizer interface {
	Tokenize(sentence string) []string
}
