package fraud

import (
	"context"
	"sort"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// CircularTradeConfig holds the tunable thresholds of the circular trade
// detector.
type CircularTradeConfig struct {
	MinVolume float64 // minimum annual volume for an edge to participate
	MinLength int     // minimum cycle length in members
	MaxLength int     // maximum cycle length in members
}

// DefaultCircularTradeConfig returns the production thresholds.
func DefaultCircularTradeConfig() CircularTradeConfig {
	return CircularTradeConfig{MinVolume: 80, MinLength: 3, MaxLength: 5}
}

// CircularTradeDetector enumerates elementary cycles over high-volume
// SUPPLIES edges.  The search is a length-bounded variant of Johnson's
// algorithm: vertices are visited in a fixed order and each root only
// explores vertices ordered after it, so every cycle is discovered exactly
// once from its smallest member — canonical rotation deduplication falls out
// of the ordering instead of a post-hoc normalization pass.
type CircularTradeDetector struct {
	store  graph.Store
	cfg    CircularTradeConfig
	logger logging.Logger
}

// NewCircularTradeDetector constructs a CircularTradeDetector.
func NewCircularTradeDetector(store graph.Store, cfg CircularTradeConfig, logger logging.Logger) *CircularTradeDetector {
	if logger == nil {
		logger = logging.Default()
	}
	return &CircularTradeDetector{store: store, cfg: cfg, logger: logger.Named("circular_trade")}
}

// Detect enumerates qualifying trade cycles across the whole graph.
func (d *CircularTradeDetector) Detect(ctx context.Context) ([]TradeCycle, error) {
	edges, err := d.store.SupplyEdges(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCircularTradeDetection, "supply edge scan failed")
	}

	// Split the edge list once: high-volume edges drive the cycle search,
	// while every well-formed edge counts toward external connections.
	// Malformed volumes are logged once per edge and skipped.
	volume := make(map[[2]string]float64)
	adj := make(map[string][]string)
	var all []graph.SupplyEdge
	for _, e := range edges {
		if !e.Valid() {
			d.logger.Warn("skipping supply edge with malformed volume",
				logging.String("from", e.From),
				logging.String("to", e.To),
				logging.Float64("annual_volume", e.AnnualVolume))
			continue
		}
		all = append(all, e)
		if e.AnnualVolume >= d.cfg.MinVolume {
			volume[[2]string{e.From, e.To}] = e.AnnualVolume
			adj[e.From] = append(adj[e.From], e.To)
		}
	}

	vertices := make([]string, 0, len(adj))
	for v := range adj {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)
	order := make(map[string]int, len(vertices))
	for i, v := range vertices {
		order[v] = i
	}
	for _, v := range vertices {
		sort.Strings(adj[v])
	}

	var cycles []TradeCycle
	path := make([]string, 0, d.cfg.MaxLength)
	blocked := make(map[string]bool)
	for _, root := range vertices {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCircularTradeDetection, "detection cancelled")
		}
		path = append(path[:0], root)
		blocked[root] = true
		d.search(root, root, path, blocked, adj, order, func(members []string) {
			cycles = append(cycles, d.buildCycle(members, volume, all))
		})
		delete(blocked, root)
	}

	sortTradeCycles(cycles)
	if len(cycles) > MaxTradeCycles {
		cycles = cycles[:MaxTradeCycles]
	}

	d.logger.Debug("circular trade detection complete",
		logging.Int("edges", len(all)),
		logging.Int("cycles", len(cycles)))
	return cycles, nil
}

// search extends the path from cur, closing a cycle whenever an edge returns
// to root within the length bounds.  Only vertices ordered strictly after the
// root are explored, which is what makes each cycle unique to its smallest
// member's search tree.
func (d *CircularTradeDetector) search(root, cur string, path []string, blocked map[string]bool, adj map[string][]string, order map[string]int, emit func([]string)) {
	for _, next := range adj[cur] {
		if next == root {
			if len(path) >= d.cfg.MinLength {
				emit(append([]string(nil), path...))
			}
			continue
		}
		if blocked[next] || order[next] <= order[root] {
			continue
		}
		if len(path) >= d.cfg.MaxLength {
			continue
		}
		blocked[next] = true
		d.search(root, next, append(path, next), blocked, adj, order, emit)
		delete(blocked, next)
	}
}

// buildCycle computes the volume statistics and the isolation-derived risk
// score for one cycle.
func (d *CircularTradeDetector) buildCycle(members []string, volume map[[2]string]float64, all []graph.SupplyEdge) TradeCycle {
	inCycle := make(map[string]bool, len(members))
	for _, m := range members {
		inCycle[m] = true
	}

	total := 0.0
	for i, m := range members {
		next := members[(i+1)%len(members)]
		total += volume[[2]string{m, next}]
	}

	// External connections: supply edges that cross the cycle boundary in
	// either direction, regardless of volume.
	external := 0
	for _, e := range all {
		if inCycle[e.From] != inCycle[e.To] {
			external++
		}
	}

	n := len(members)
	isolation := float64(n) / float64(n+external+1)
	risk := CycleBaseRisk + CycleRiskSpan*isolation
	if risk > CycleMaxRisk {
		risk = CycleMaxRisk
	}
	if risk < CycleBaseRisk {
		risk = CycleBaseRisk
	}

	return TradeCycle{
		Companies:           members,
		Length:              n,
		TotalVolume:         total,
		AvgVolume:           total / float64(n),
		ExternalConnections: external,
		IsolationScore:      isolation,
		RiskScore:           risk,
	}
}

// sortTradeCycles orders cycles by risk score, then isolation, descending.
func sortTradeCycles(cycles []TradeCycle) {
	sort.SliceStable(cycles, func(i, j int) bool {
		if cycles[i].RiskScore != cycles[j].RiskScore {
			return cycles[i].RiskScore > cycles[j].RiskScore
		}
		return cycles[i].IsolationScore > cycles[j].IsolationScore
	})
}
