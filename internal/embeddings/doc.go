// Package embeddings produces dense sentence vectors for the similarity
// signal's embedding mode.
//
// Two providers exist: FastEmbed runs ONNX models in-process (requires cgo
// and the ONNX runtime, see EnsureONNXRuntime) and TEI calls a Text Embeddings
// Inference server over HTTP. NewProvider selects one from configuration.
package embeddings
