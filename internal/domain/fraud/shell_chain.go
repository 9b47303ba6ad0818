package fraud

import (
	"context"
	"sort"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// ShellChainConfig holds the tunable thresholds of the shell chain detector.
type ShellChainConfig struct {
	MinLength          int // minimum chain length in edges
	MaxLength          int // maximum chain length in edges, DFS depth bound
	MaxInvoiceActivity int // maximum invoice edges per member company
}

// DefaultShellChainConfig returns the production thresholds.
func DefaultShellChainConfig() ShellChainConfig {
	return ShellChainConfig{MinLength: 3, MaxLength: 10, MaxInvoiceActivity: 2}
}

// ShellChainDetector finds maximal SUBSIDIARY_OF chains whose members all
// share one HIGH-risk auditor and show invoice activity at or below the
// configured ceiling.  The member predicate is evaluated incrementally during
// traversal so that disqualified branches are pruned before expansion, never
// after full path enumeration.
type ShellChainDetector struct {
	store  graph.Store
	cfg    ShellChainConfig
	logger logging.Logger
}

// NewShellChainDetector constructs a ShellChainDetector.
func NewShellChainDetector(store graph.Store, cfg ShellChainConfig, logger logging.Logger) *ShellChainDetector {
	if logger == nil {
		logger = logging.Default()
	}
	return &ShellChainDetector{store: store, cfg: cfg, logger: logger.Named("shell_chain")}
}

// Detect enumerates qualifying chains across the whole graph.  Overlapping
// chains that differ in membership are reported separately; no node-set
// deduplication is applied, because an analyst triaging one chain must see
// every distinct corporate path it participates in.
func (d *ShellChainDetector) Detect(ctx context.Context) ([]ShellChain, error) {
	auditors, err := d.store.HighRiskAuditors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "high-risk auditor scan failed")
	}

	var chains []ShellChain
	for _, auditor := range auditors {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "detection cancelled")
		}
		found, err := d.detectForAuditor(ctx, auditor)
		if err != nil {
			return nil, err
		}
		chains = append(chains, found...)
	}

	sortShellChains(chains)
	if len(chains) > MaxShellChains {
		chains = chains[:MaxShellChains]
	}

	d.logger.Debug("shell chain detection complete",
		logging.Int("auditors", len(auditors)),
		logging.Int("chains", len(chains)))
	return chains, nil
}

// detectForAuditor runs the pruned DFS within the client set of one HIGH-risk
// auditor.
func (d *ShellChainDetector) detectForAuditor(ctx context.Context, auditor graph.Auditor) ([]ShellChain, error) {
	clients, err := d.store.CompaniesAuditedBy(ctx, auditor.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "auditor client scan failed")
	}
	// Chains need MinLength+1 members; smaller client sets cannot qualify.
	if len(clients) <= d.cfg.MinLength {
		return nil, nil
	}

	// Qualifying member set: audited by this auditor AND invoice activity at
	// or below the ceiling.  Invoice counts are fetched once per company.
	invoices := make(map[string]int, len(clients))
	member := make(map[string]bool, len(clients))
	for _, id := range clients {
		n, err := d.store.InvoiceActivityCount(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "invoice activity lookup failed")
		}
		if n <= d.cfg.MaxInvoiceActivity {
			member[id] = true
			invoices[id] = n
		}
	}
	if len(member) <= d.cfg.MinLength {
		return nil, nil
	}

	// Build the SUBSIDIARY_OF adjacency restricted to qualifying members.
	parents := make(map[string][]string, len(member))
	hasChild := make(map[string]bool, len(member))
	for id := range member {
		ps, err := d.store.SubsidiaryParents(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "subsidiary adjacency lookup failed")
		}
		for _, p := range ps {
			if member[p] {
				parents[id] = append(parents[id], p)
				hasChild[p] = true
			}
		}
	}

	// Start the DFS only from chain roots: members with no qualifying child,
	// so every reported path is maximal at its lower end.  Deterministic order.
	starts := make([]string, 0, len(member))
	for id := range member {
		if !hasChild[id] {
			starts = append(starts, id)
		}
	}
	sort.Strings(starts)

	var chains []ShellChain
	for _, start := range starts {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeShellChainDetection, "detection cancelled")
		}
		path := []string{start}
		onPath := map[string]bool{start: true}
		d.extend(start, path, onPath, parents, func(p []string) {
			chains = append(chains, d.buildChain(p, auditor, invoices))
		})
	}
	return chains, nil
}

// extend grows the path upward through qualifying parents, emitting the path
// when it cannot be extended further (maximal at its upper end) and its edge
// count lies within the configured bounds.
func (d *ShellChainDetector) extend(cur string, path []string, onPath map[string]bool, parents map[string][]string, emit func([]string)) {
	edges := len(path) - 1
	extended := false
	if edges < d.cfg.MaxLength {
		next := append([]string(nil), parents[cur]...)
		sort.Strings(next)
		for _, p := range next {
			if onPath[p] {
				continue // ownership loop; legal structures should not have these
			}
			extended = true
			onPath[p] = true
			d.extend(p, append(path, p), onPath, parents, emit)
			delete(onPath, p)
		}
	}
	if !extended && edges >= d.cfg.MinLength {
		emit(append([]string(nil), path...))
	}
}

func (d *ShellChainDetector) buildChain(path []string, auditor graph.Auditor, invoices map[string]int) ShellChain {
	counts := make(map[string]int, len(path))
	total := 0
	for _, id := range path {
		counts[id] = invoices[id]
		total += invoices[id]
	}
	return ShellChain{
		Companies:     path,
		Length:        len(path) - 1,
		AuditorID:     auditor.ID,
		AuditorName:   auditor.Name,
		InvoiceCounts: counts,
		TotalInvoices: total,
		AvgInvoices:   float64(total) / float64(len(path)),
		RiskScore:     ShellChainRisk,
	}
}

// sortShellChains orders chains by length descending, then average invoice
// activity ascending: the longest, quietest structures first.
func sortShellChains(chains []ShellChain) {
	sort.SliceStable(chains, func(i, j int) bool {
		if chains[i].Length != chains[j].Length {
			return chains[i].Length > chains[j].Length
		}
		return chains[i].AvgInvoices < chains[j].AvgInvoices
	})
}
