package fraud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
)

func own(shareholder, company string, pct float64) graph.OwnershipEdge {
	return graph.OwnershipEdge{ShareholderID: shareholder, CompanyID: company, Percentage: pct}
}

func TestWeightedPageRank_EmptyGraph(t *testing.T) {
	ranks, iterations, err := weightedPageRank(context.Background(), nil, DefaultPageRankConfig())

	require.NoError(t, err)
	assert.Empty(t, ranks)
	assert.Equal(t, 0, iterations)
}

func TestWeightedPageRank_RanksSumToOne(t *testing.T) {
	edges := []graph.OwnershipEdge{
		own("S1", "C1", 60),
		own("S1", "C2", 40),
		own("S2", "C2", 30),
		own("S2", "C3", 70),
	}

	ranks, iterations, err := weightedPageRank(context.Background(), edges, DefaultPageRankConfig())

	require.NoError(t, err)
	assert.Greater(t, iterations, 0)
	assert.LessOrEqual(t, iterations, DefaultPageRankConfig().MaxIterations)

	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestWeightedPageRank_HeavierInflowRanksHigher(t *testing.T) {
	// C1 receives the dominant share of both shareholders' weight.
	edges := []graph.OwnershipEdge{
		own("S1", "C1", 90),
		own("S1", "C2", 10),
		own("S2", "C1", 80),
		own("S2", "C2", 20),
	}

	ranks, _, err := weightedPageRank(context.Background(), edges, DefaultPageRankConfig())

	require.NoError(t, err)
	assert.Greater(t, ranks["C1"], ranks["C2"])
}

func TestWeightedPageRank_SinksRedistribute(t *testing.T) {
	// C1 is a sink; its rank must flow back rather than leak, keeping the
	// distribution normalized.
	edges := []graph.OwnershipEdge{own("S1", "C1", 100)}

	ranks, _, err := weightedPageRank(context.Background(), edges, DefaultPageRankConfig())

	require.NoError(t, err)
	sum := 0.0
	for _, r := range ranks {
		sum += r
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
	assert.Greater(t, ranks["C1"], ranks["S1"])
}

func TestWeightedPageRank_IterationBudgetRespected(t *testing.T) {
	edges := []graph.OwnershipEdge{
		own("S1", "C1", 50),
		own("S2", "C1", 50),
	}
	cfg := PageRankConfig{Damping: 0.85, Tolerance: 0, MaxIterations: 3}

	_, iterations, err := weightedPageRank(context.Background(), edges, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, iterations)
}

func TestWeightedPageRank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := weightedPageRank(ctx, []graph.OwnershipEdge{own("S1", "C1", 50)}, DefaultPageRankConfig())

	assert.Error(t, err)
}
