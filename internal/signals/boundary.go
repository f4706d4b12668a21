package signals

import (
	"math"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
)

// NeutralBoundaryProb pads a probability list shorter than the sentence list.
const NeutralBoundaryProb = 0.5

// Boundary turns externally supplied per-sentence probabilities into a
// signal for n sentences.
//
// No probabilities yields uniform scores. Extra values beyond n are ignored
// and missing ones are padded with NeutralBoundaryProb. Negative, NaN or
// infinite values count as 0 and are reported as a configuration warning. diag
// may be nil.
func Boundary(n int, probs []float64, diag *diagnostics.Collector) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if len(probs) == 0 {
		return weights.Uniform(n)
	}

	scores := make([]float64, n)
	var invalid int
	for i := range scores {
		if i >= len(probs) {
			scores[i] = NeutralBoundaryProb
			continue
		}
		p := probs[i]
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			invalid++
			continue
		}
		scores[i] = p
	}

	if invalid > 0 && diag != nil {
		diag.Add(diagnostics.KindConfiguration, NameBoundary,
			"%d boundary probabilities were negative or not finite and were treated as 0", invalid)
	}
	return weights.Normalize(scores)
}
