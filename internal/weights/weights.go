// Package weights holds the vector primitives shared by every signal:
// uniform vectors, normalize-or-uniform, and convex combination.
package weights

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Tolerance is the allowed deviation of a weight vector's sum from 1.
const Tolerance = 1e-6

// Uniform returns a vector of n equal entries summing to 1. Empty for n <= 0.
func Uniform(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1 / float64(n)
	}
	return out
}

// Normalize returns a copy of v scaled to sum to 1. When the sum is not
// positive and finite the result is uniform. The input is not modified.
func Normalize(v []float64) []float64 {
	if len(v) == 0 {
		return []float64{}
	}
	sum := floats.Sum(v)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return Uniform(len(v))
	}
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(1/sum, out)
	return out
}

// Combine returns Σ coeffs[k]·vectors[k]. All vectors must have the same
// length; the result is not normalized.
func Combine(coeffs []float64, vectors [][]float64) ([]float64, error) {
	if len(coeffs) != len(vectors) {
		return nil, fmt.Errorf("combine: %d coefficients for %d vectors", len(coeffs), len(vectors))
	}
	if len(vectors) == 0 {
		return []float64{}, nil
	}
	n := len(vectors[0])
	out := make([]float64, n)
	for k, v := range vectors {
		if len(v) != n {
			return nil, fmt.Errorf("combine: vector %d has length %d, want %d", k, len(v), n)
		}
		floats.AddScaled(out, coeffs[k], v)
	}
	return out, nil
}

// Sum returns the sum of v.
func Sum(v []float64) float64 {
	return floats.Sum(v)
}

// IsNormalized reports whether v sums to 1 within Tolerance. An empty vector
// is trivially normalized.
func IsNormalized(v []float64) bool {
	if len(v) == 0 {
		return true
	}
	return math.Abs(floats.Sum(v)-1) <= Tolerance
}

// Cosine returns the cosine similarity of a and b, 0 when either has zero
// norm.
func Cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
