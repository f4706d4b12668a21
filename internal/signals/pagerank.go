package signals

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// PageRankConfig controls the weighted power iteration.
type PageRankConfig struct {
	Damping   float64
	MaxIter   int
	Tolerance float64 // per node; convergence when the L1 change < N·Tolerance
}

// DefaultPageRankConfig returns damping 0.85, 100 iterations, tolerance 1e-6.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{Damping: 0.85, MaxIter: 100, Tolerance: 1e-6}
}

type neighbor struct {
	id     int
	weight float64
}

// PageRank runs weighted PageRank over g, whose node IDs must be 0..n-1.
//
// The walk starts uniform. From each node it moves to a neighbor in
// proportion to edge weight; mass on nodes without edges is spread uniformly.
// Neighbors are visited in ID order so results are bit-for-bit repeatable.
func PageRank(g *simple.WeightedUndirectedGraph, cfg PageRankConfig) ([]float64, error) {
	n := g.Nodes().Len()
	if n == 0 {
		return []float64{}, nil
	}

	adj := make([][]neighbor, n)
	outWeight := make([]float64, n)
	for i := 0; i < n; i++ {
		nodes := graph.NodesOf(g.From(int64(i)))
		sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID() < nodes[b].ID() })
		for _, to := range nodes {
			w, ok := g.Weight(int64(i), to.ID())
			if !ok || w <= 0 {
				continue
			}
			j := int(to.ID())
			if j < 0 || j >= n {
				return nil, fmt.Errorf("pagerank: node id %d out of range [0,%d)", j, n)
			}
			adj[i] = append(adj[i], neighbor{id: j, weight: w})
			outWeight[i] += w
		}
	}

	uniform := 1 / float64(n)
	x := make([]float64, n)
	for i := range x {
		x[i] = uniform
	}
	next := make([]float64, n)

	for iter := 0; iter < cfg.MaxIter; iter++ {
		var dangling float64
		for i := range x {
			if outWeight[i] == 0 {
				dangling += x[i]
			}
		}
		base := cfg.Damping*dangling*uniform + (1-cfg.Damping)*uniform
		for i := range next {
			next[i] = base
		}
		for i, edges := range adj {
			if outWeight[i] == 0 {
				continue
			}
			share := cfg.Damping * x[i] / outWeight[i]
			for _, e := range edges {
				next[e.id] += share * e.weight
			}
		}

		var change float64
		for i := range x {
			change += math.Abs(next[i] - x[i])
		}
		x, next = next, x
		if change < float64(n)*cfg.Tolerance {
			return x, nil
		}
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, cfg.MaxIter)
}
