package http

import "github.com/fyrsmithlabs/lexisum/internal/diagnostics"

// WeightsRequest is the request body for POST /api/v1/weights.
type WeightsRequest struct {
	Sentences     []string  `json:"sentences,omitempty"`
	Text          string    `json:"text,omitempty"`
	BoundaryProbs []float64 `json:"boundary_probs,omitempty"`
	// DocumentID is an optional caller reference attached to logs.
	DocumentID string `json:"document_id,omitempty"`
}

// WeightsResponse is the response body for POST /api/v1/weights.
type WeightsResponse struct {
	Sentences  []string              `json:"sentences"`
	Weights    []float64             `json:"weights"`
	Components map[string][]float64  `json:"components"`
	Warnings   []diagnostics.Warning `json:"warnings"`
}

// SummarizeRequest is the request body for POST /api/v1/summarize.
type SummarizeRequest struct {
	WeightsRequest
	TopK          *int     `json:"top_k,omitempty"`
	Compression   *float64 `json:"compression,omitempty"`
	PreserveOrder *bool    `json:"preserve_order,omitempty"`
}

// SummarizeResponse is the response body for POST /api/v1/summarize.
type SummarizeResponse struct {
	Summary    string                `json:"summary"`
	Sentences  []string              `json:"sentences"`
	Indices    []int                 `json:"indices"`
	Weights    []float64             `json:"weights"`
	Components map[string][]float64  `json:"components"`
	Ranking    []int                 `json:"ranking"`
	Warnings   []diagnostics.Warning `json:"warnings"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
