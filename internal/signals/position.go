package signals

import (
	"math"

	"github.com/fyrsmithlabs/lexisum/internal/weights"
)

// PositionDecay is the exponential decay rate applied per sentence index.
const PositionDecay = 0.1

// Position scores sentences by exp(-0.1·i), normalized. Earlier sentences
// always score strictly higher.
func Position(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = math.Exp(-PositionDecay * float64(i))
	}
	return weights.Normalize(scores)
}
