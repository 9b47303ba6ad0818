package fraud

import (
	"context"
	"sort"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// HiddenInfluenceConfig holds the tunable thresholds of the hidden influence
// detector.
type HiddenInfluenceConfig struct {
	MinOwnershipPct     float64 // minimum shareholder stake in the supplier
	MinConcentrationPct float64 // minimum share of the target's inbound supply
	OpportunityCutoff   float64 // report triples scoring strictly above this
	PageRank            PageRankConfig
}

// DefaultHiddenInfluenceConfig returns the production thresholds.
func DefaultHiddenInfluenceConfig() HiddenInfluenceConfig {
	return HiddenInfluenceConfig{
		MinOwnershipPct:     25,
		MinConcentrationPct: 80,
		OpportunityCutoff:   0.70,
		PageRank:            DefaultPageRankConfig(),
	}
}

// Opportunity score component weights.
const (
	opportunityCentralityWeight    = 0.4
	opportunityOwnershipWeight     = 0.3
	opportunityConcentrationWeight = 0.3
	ownershipSaturationPct         = 50 // stakes at or above this count as full control
)

// OpportunityScore combines a shareholder's network centrality, their stake
// in the supplier and the target's dependence on that supplier into a single
// score in [0, 1].
func OpportunityScore(centrality, ownershipPct, concentrationPct float64) float64 {
	ownership := ownershipPct / ownershipSaturationPct
	if ownership > 1 {
		ownership = 1
	}
	return opportunityCentralityWeight*centrality +
		opportunityOwnershipWeight*ownership +
		opportunityConcentrationWeight*(concentrationPct/100)
}

// HiddenInfluenceDetector finds shareholders positioned to steer trade toward
// companies they control without appearing in the supply chain themselves.
// It combines weighted PageRank centrality over the ownership graph with a
// scan for (shareholder, supplier, target) triples where the supplier
// dominates the target's inbound supply.
type HiddenInfluenceDetector struct {
	store  graph.Store
	cfg    HiddenInfluenceConfig
	logger logging.Logger
}

// NewHiddenInfluenceDetector constructs a HiddenInfluenceDetector.
func NewHiddenInfluenceDetector(store graph.Store, cfg HiddenInfluenceConfig, logger logging.Logger) *HiddenInfluenceDetector {
	if logger == nil {
		logger = logging.Default()
	}
	return &HiddenInfluenceDetector{store: store, cfg: cfg, logger: logger.Named("hidden_influence")}
}

// Detect runs the centrality computation and the triple scan.  The returned
// iteration count feeds the convergence metric.
func (d *HiddenInfluenceDetector) Detect(ctx context.Context) ([]InfluenceTriple, int, error) {
	ownerships, err := d.store.Ownerships(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeHiddenInfluenceDetection, "ownership edge scan failed")
	}
	supplies, err := d.store.SupplyEdges(ctx)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeHiddenInfluenceDetection, "supply edge scan failed")
	}

	// Malformed attributes are logged once per edge and the edge skipped.
	ownerships = d.filterOwnerships(ownerships)
	supplies = d.filterSupplies(supplies)

	centrality, iterations, err := weightedPageRank(ctx, ownerships, d.cfg.PageRank)
	if err != nil {
		return nil, iterations, errors.Wrap(err, errors.ErrCodeHiddenInfluenceDetection, "centrality computation cancelled")
	}

	// Inbound supply totals per target, and direct shareholder→company supply
	// edges that disqualify a triple.
	inbound := make(map[string]float64)
	edgeVolume := make(map[[2]string]float64)
	for _, e := range supplies {
		inbound[e.To] += e.AnnualVolume
		edgeVolume[[2]string{e.From, e.To}] = e.AnnualVolume
	}
	bySupplier := make(map[string][]graph.SupplyEdge)
	for _, e := range supplies {
		bySupplier[e.From] = append(bySupplier[e.From], e)
	}

	var triples []InfluenceTriple
	for _, own := range ownerships {
		if err := ctx.Err(); err != nil {
			return nil, iterations, errors.Wrap(err, errors.ErrCodeHiddenInfluenceDetection, "detection cancelled")
		}
		if own.Percentage < d.cfg.MinOwnershipPct {
			continue
		}
		supplier := own.CompanyID
		for _, sup := range bySupplier[supplier] {
			target := sup.To
			if inbound[target] <= 0 {
				continue
			}
			concentration := sup.AnnualVolume / inbound[target] * 100
			if concentration < d.cfg.MinConcentrationPct {
				continue
			}
			// The influence is hidden only while the shareholder has no
			// visible supply relationship with the target.
			if _, direct := edgeVolume[[2]string{own.ShareholderID, target}]; direct {
				continue
			}
			score := OpportunityScore(centrality[own.ShareholderID], own.Percentage, concentration)
			if score <= d.cfg.OpportunityCutoff {
				continue
			}
			triples = append(triples, InfluenceTriple{
				ShareholderID:    own.ShareholderID,
				ShareholderName:  own.ShareholderName,
				ShareholderType:  string(own.ShareholderType),
				SupplierID:       supplier,
				TargetID:         target,
				OwnershipPct:     own.Percentage,
				ConcentrationPct: concentration,
				InfluenceScore:   centrality[own.ShareholderID],
				OpportunityScore: score,
			})
		}
	}

	d.resolveCompanyNames(ctx, triples)

	sort.SliceStable(triples, func(i, j int) bool {
		return triples[i].OpportunityScore > triples[j].OpportunityScore
	})
	if len(triples) > MaxInfluenceTriples {
		triples = triples[:MaxInfluenceTriples]
	}

	d.logger.Debug("hidden influence detection complete",
		logging.Int("iterations", iterations),
		logging.Int("triples", len(triples)))
	return triples, iterations, nil
}

func (d *HiddenInfluenceDetector) filterOwnerships(edges []graph.OwnershipEdge) []graph.OwnershipEdge {
	out := edges[:0]
	for _, e := range edges {
		if !e.Valid() {
			d.logger.Warn("skipping ownership edge with malformed percentage",
				logging.String("shareholder", e.ShareholderID),
				logging.String("company", e.CompanyID),
				logging.Float64("percentage", e.Percentage))
			continue
		}
		out = append(out, e)
	}
	return out
}

func (d *HiddenInfluenceDetector) filterSupplies(edges []graph.SupplyEdge) []graph.SupplyEdge {
	out := edges[:0]
	for _, e := range edges {
		if !e.Valid() {
			d.logger.Warn("skipping supply edge with malformed volume",
				logging.String("from", e.From),
				logging.String("to", e.To),
				logging.Float64("annual_volume", e.AnnualVolume))
			continue
		}
		out = append(out, e)
	}
	return out
}

// resolveCompanyNames fills supplier and target names with one lookup per
// distinct company.  Name resolution is best-effort; a failed lookup leaves
// the field empty rather than failing the detection.
func (d *HiddenInfluenceDetector) resolveCompanyNames(ctx context.Context, triples []InfluenceTriple) {
	names := make(map[string]string)
	lookup := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		c, err := d.store.Company(ctx, id)
		if err != nil {
			names[id] = ""
			return ""
		}
		names[id] = c.Name
		return c.Name
	}
	for i := range triples {
		triples[i].SupplierName = lookup(triples[i].SupplierID)
		triples[i].TargetName = lookup(triples[i].TargetID)
	}
}
