package signals

import (
	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph/simple"
)

// DefaultEdgeThreshold is the Jaccard similarity an edge must exceed.
const DefaultEdgeThreshold = 0.1

// Centrality is the TextRank signal: PageRank over a sentence graph whose
// edges are token-set Jaccard similarities.
type Centrality struct {
	Tokenizer Tokenizer
	Threshold float64
	PageRank  PageRankConfig
	// Disabled makes Score return uniform scores without building a graph.
	Disabled bool
	Logger   *zap.Logger
}

// NewCentrality returns a centrality signal with default parameters.
func NewCentrality(tok Tokenizer, logger *zap.Logger) *Centrality {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Centrality{
		Tokenizer: tok,
		Threshold: DefaultEdgeThreshold,
		PageRank:  DefaultPageRankConfig(),
		Logger:    logger,
	}
}

// Score returns one centrality score per sentence. Fewer than two sentences,
// a disabled backend, or a PageRank that fails to converge give uniform
// scores; the last is reported on diag.
func (c *Centrality) Score(sentences []string, diag *diagnostics.Collector) []float64 {
	n := len(sentences)
	if n == 0 {
		return []float64{}
	}
	if c.Disabled || n < 2 {
		return weights.Uniform(n)
	}

	g := c.Graph(sentences)
	ranks, err := PageRank(g, c.PageRank)
	if err != nil {
		if diag != nil {
			diag.Add(diagnostics.KindBackendFailure, NameCentrality, "%v; using uniform scores", err)
		}
		return weights.Uniform(n)
	}

	c.logger().Debug("textrank computed",
		zap.Int("sentences", n),
		zap.Int("edges", g.Edges().Len()),
	)
	return weights.Normalize(ranks)
}

// Graph builds the similarity graph. Every sentence is a node, including
// those without edges.
func (c *Centrality) Graph(sentences []string) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	sets := make([]map[string]struct{}, len(sentences))
	for i, s := range sentences {
		g.AddNode(simple.Node(i))
		sets[i] = tokenSet(c.Tokenizer, s)
	}

	for i := 0; i < len(sentences); i++ {
		for j := i + 1; j < len(sentences); j++ {
			sim := Jaccard(sets[i], sets[j])
			if sim > c.Threshold {
				g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(i), simple.Node(j), sim))
			}
		}
	}
	return g
}

func (c *Centrality) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func tokenSet(tok Tokenizer, s string) map[string]struct{} {
	if tok == nil {
		return map[string]struct{}{}
	}
	tokens := tok.Tokenize(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var inter int
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
