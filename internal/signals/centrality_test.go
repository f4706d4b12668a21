package signals

import (
	"errors"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/lexisum/internal/diagnostics"
	"github.com/fyrsmithlabs/lexisum/internal/tokenize"
	"github.com/fyrsmithlabs/lexisum/internal/weights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(s string) []string { return strings.Fields(strings.ToLower(s)) }

func graphOf(n int, edges [][3]float64) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(int64(e[0])), simple.Node(int64(e[1])), e[2]))
	}
	return g
}

func TestPageRank(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][3]float64
		want  []float64
	}{
		{"empty", 0, nil, []float64{}},
		{"no edges is uniform", 3, nil, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}},
		{"star", 4, [][3]float64{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}}, []float64{0.479730, 0.173423, 0.173423, 0.173423}},
		{"pair plus dangling node", 3, [][3]float64{{0, 1, 0.5}}, []float64{0.465116, 0.465116, 0.069768}},
		{"weighted path", 3, [][3]float64{{0, 1, 0.5}, {1, 2, 0.25}}, []float64{0.325676, 0.486486, 0.187838}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageRank(graphOf(tt.n, tt.edges), DefaultPageRankConfig())
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-4)
		})
	}
}

func TestPageRank_NotConverged(t *testing.T) {
	cfg := DefaultPageRankConfig()
	cfg.MaxIter = 1

	_, err := PageRank(graphOf(4, [][3]float64{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}}), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConverged))
}

func TestJaccard(t *testing.T) {
	set := func(ws ...string) map[string]struct{} {
		m := map[string]struct{}{}
		for _, w := range ws {
			m[w] = struct{}{}
		}
		return m
	}

	assert.Equal(t, 0.0, Jaccard(set(), set("a")))
	assert.Equal(t, 1.0, Jaccard(set("a", "b"), set("b", "a")))
	assert.InDelta(t, 1.0/3, Jaccard(set("a", "b"), set("b", "c")), 1e-12)
	assert.Equal(t, 0.0, Jaccard(set("a"), set("b")))
}

func TestCentrality_Graph(t *testing.T) {
	c := NewCentrality(fieldsTokenizer{}, nil)

	g := c.Graph([]string{
		"alpha beta gamma",
		"alpha beta delta",
		"omega",
		"",
	})

	assert.Equal(t, 4, g.Nodes().Len())
	w, ok := g.Weight(0, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.5, w, 1e-12)
	assert.False(t, g.HasEdgeBetween(0, 2))
	assert.False(t, g.HasEdgeBetween(2, 3))
}

func TestCentrality_ThresholdIsStrict(t *testing.T) {
	c := NewCentrality(fieldsTokenizer{}, nil)
	// 1 shared token of 10 distinct: Jaccard exactly 0.1
	g := c.Graph([]string{"a b c d e f", "a g h i j"})
	assert.False(t, g.HasEdgeBetween(0, 1))
}

func TestCentrality_Score(t *testing.T) {
	c := NewCentrality(tokenize.New(nil), nil)
	sentences := []string{
		"Central banks raised interest rates again.",
		"Interest rates affect mortgage costs.",
		"Banks expect rates to stay high.",
		"The weather was sunny.",
	}
	diag := diagnostics.NewCollector(nil)

	scores := c.Score(sentences, diag)

	require.Len(t, scores, 4)
	assert.True(t, weights.IsNormalized(scores))
	assert.Greater(t, scores[0], scores[3])
	assert.Equal(t, 0, diag.Len())
	assert.Equal(t, scores, c.Score(sentences, diag), "deterministic")
}

func TestCentrality_Uniform(t *testing.T) {
	c := NewCentrality(fieldsTokenizer{}, nil)
	assert.Equal(t, []float64{}, c.Score(nil, nil))
	assert.Equal(t, []float64{1}, c.Score([]string{"only one"}, nil))

	c.Disabled = true
	assert.Equal(t, []float64{0.5, 0.5}, c.Score([]string{"a b", "a b"}, nil))
}

func TestCentrality_NotConvergedFallsBack(t *testing.T) {
	c := NewCentrality(fieldsTokenizer{}, nil)
	c.PageRank.MaxIter = 1
	diag := diagnostics.NewCollector(nil)

	scores := c.Score([]string{"hub a b c", "hub a", "hub b", "hub c"}, diag)

	assert.InDeltaSlice(t, []float64{0.25, 0.25, 0.25, 0.25}, scores, 1e-12)
	assert.True(t, diag.Has(diagnostics.KindBackendFailure, NameCentrality))
}
