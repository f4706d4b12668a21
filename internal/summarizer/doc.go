// Package summarizer scores sentences with several independent signals,
// fuses the scores into one weight vector and selects the top-weighted
// sentences as an extractive summary.
//
// Four signals contribute, each normalized to sum to 1:
//
//	cnn_prob   externally supplied boundary probabilities
//	textrank   PageRank over a Jaccard sentence-similarity graph
//	tfidf      cosine similarity to the TF-IDF centroid ("embeddings" in
//	           embedding mode)
//	position   exponential decay by sentence index
//
// The combined vector is the coefficient-weighted sum, renormalized. A signal
// whose coefficient is 0 is not computed. Failures inside a signal never
// surface as errors: the signal degrades to uniform scores and the result
// carries a diagnostics.Warning.
//
// Usage:
//
//	s, err := summarizer.New(summarizer.DefaultConfig(), summarizer.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := s.Summarize(ctx, summarizer.Request{Sentences: sentences, TopK: &k})
package summarizer
