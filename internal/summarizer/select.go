package summarizer

import (
	"fmt"
	"math"
	"sort"
)

// DefaultRatio is the share of sentences kept when neither a count nor a
// compression ratio is requested.
const DefaultRatio = 0.3

// Rank returns sentence indices ordered by weight descending, ties broken by
// index ascending.
func Rank(w []float64) []int {
	idx := make([]int, len(w))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return w[idx[a]] > w[idx[b]]
	})
	return idx
}

// ResolveCount returns how many of n sentences to select.
//
// An explicit topK is clamped to [1, n] and wins over compression. A
// compression ratio r in (0, 1] gives max(1, floor(n*r)). Otherwise the count
// is max(2, floor(n*DefaultRatio)), capped at n. For n == 0 the count is 0.
func ResolveCount(n int, topK *int, compression *float64) (int, error) {
	if topK != nil && *topK < 0 {
		return 0, fmt.Errorf("%w: top_k must be >= 0, got %d", ErrInvalidSelection, *topK)
	}
	if compression != nil {
		r := *compression
		if math.IsNaN(r) || r <= 0 || r > 1 {
			return 0, fmt.Errorf("%w: compression must be in (0, 1], got %v", ErrInvalidSelection, r)
		}
	}
	if n == 0 {
		return 0, nil
	}

	var count int
	switch {
	case topK != nil:
		count = *topK
	case compression != nil:
		count = max(1, int(math.Floor(float64(n)**compression)))
	default:
		count = max(2, int(math.Floor(float64(n)*DefaultRatio)))
	}
	return min(max(count, 1), n), nil
}

// Select picks the count highest-weighted indices and returns them in
// ascending index order.
func Select(w []float64, count int) []int {
	ranking := Rank(w)
	count = min(max(count, 0), len(ranking))
	chosen := make([]int, count)
	copy(chosen, ranking[:count])
	sort.Ints(chosen)
	return chosen
}
