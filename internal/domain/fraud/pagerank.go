package fraud

import (
	"context"
	"math"
	"sort"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
)

// PageRankConfig parameterizes the weighted centrality computation.
type PageRankConfig struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
}

// DefaultPageRankConfig returns the production parameters.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{Damping: 0.85, Tolerance: 1e-6, MaxIterations: 20}
}

// weightedPageRank computes PageRank over the ownership bipartite graph,
// directed shareholder → company with edge weight equal to the ownership
// percentage.  Rank flowing out of a node is split proportionally to its
// outgoing weights; nodes with no outgoing edges spread their rank evenly
// across the whole graph.
//
// The iteration loop checks ctx every pass so a cancelled analysis stops
// mid-computation rather than after the full iteration budget.  Returns the
// per-node scores and the number of iterations actually run.
func weightedPageRank(ctx context.Context, edges []graph.OwnershipEdge, cfg PageRankConfig) (map[string]float64, int, error) {
	nodeSet := make(map[string]bool)
	outWeight := make(map[string]float64)
	type inEdge struct {
		from   string
		weight float64
	}
	incoming := make(map[string][]inEdge)
	for _, e := range edges {
		nodeSet[e.ShareholderID] = true
		nodeSet[e.CompanyID] = true
		outWeight[e.ShareholderID] += e.Percentage
		incoming[e.CompanyID] = append(incoming[e.CompanyID], inEdge{from: e.ShareholderID, weight: e.Percentage})
	}
	if len(nodeSet) == 0 {
		return map[string]float64{}, 0, nil
	}

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	n := float64(len(nodes))
	rank := make(map[string]float64, len(nodes))
	for _, v := range nodes {
		rank[v] = 1.0 / n
	}

	iterations := 0
	for iterations < cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, iterations, err
		}
		iterations++

		// Rank trapped in sink nodes is redistributed uniformly.
		dangling := 0.0
		for _, v := range nodes {
			if outWeight[v] == 0 {
				dangling += rank[v]
			}
		}

		next := make(map[string]float64, len(nodes))
		delta := 0.0
		for _, v := range nodes {
			sum := 0.0
			for _, in := range incoming[v] {
				sum += rank[in.from] * in.weight / outWeight[in.from]
			}
			r := (1-cfg.Damping)/n + cfg.Damping*(sum+dangling/n)
			next[v] = r
			delta += math.Abs(r - rank[v])
		}
		rank = next

		if delta < cfg.Tolerance {
			break
		}
	}
	return rank, iterations, nil
}
