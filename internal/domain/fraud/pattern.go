// Package fraud implements the pattern detectors of the GraphSentinel
// analysis pipeline: shell company chains, circular trading rings and hidden
// influence networks.  Each detector is a pure read-side algorithm over the
// graph.Store port; none of them mutate the graph.
package fraud

// PatternType identifies a detected fraud pattern category.
type PatternType string

const (
	PatternShellChain      PatternType = "shell_chain"
	PatternCircularTrade   PatternType = "circular_trade"
	PatternHiddenInfluence PatternType = "hidden_influence"
)

// Risk scoring constants shared by the detectors.
const (
	// ShellChainRisk is the fixed risk score assigned to every reported
	// shell chain.  Chain structure alone is the signal; length and invoice
	// statistics are reported for triage, not scored.
	ShellChainRisk = 0.95

	// CycleBaseRisk and CycleRiskSpan parameterize the circular trade score:
	// risk = CycleBaseRisk + CycleRiskSpan * isolation, capped at CycleMaxRisk.
	CycleBaseRisk = 0.80
	CycleRiskSpan = 0.15
	CycleMaxRisk  = 0.95
)

// Result limits applied after sorting, as safety rails against pathological
// graphs.
const (
	MaxShellChains      = 50
	MaxTradeCycles      = 100
	MaxInfluenceTriples = 50
)

// ShellChain is a maximal subsidiary chain whose members share a single
// HIGH-risk auditor and show near-zero invoice activity.
type ShellChain struct {
	Companies     []string       `json:"companies"` // ordered child → ultimate parent
	Length        int            `json:"length"`    // edge count
	AuditorID     string         `json:"auditorId"`
	AuditorName   string         `json:"auditorName,omitempty"`
	InvoiceCounts map[string]int `json:"invoiceCounts"`
	TotalInvoices int            `json:"totalInvoices"`
	AvgInvoices   float64        `json:"avgInvoices"`
	RiskScore     float64        `json:"riskScore"`
}

// Contains reports whether the chain includes the given company.
func (c *ShellChain) Contains(id string) bool {
	for _, m := range c.Companies {
		if m == id {
			return true
		}
	}
	return false
}

// TradeCycle is an elementary cycle of high-volume SUPPLIES edges.
type TradeCycle struct {
	Companies           []string `json:"companies"` // canonical rotation, no repeat of the start
	Length              int      `json:"length"`
	TotalVolume         float64  `json:"totalVolume"`
	AvgVolume           float64  `json:"avgVolume"`
	ExternalConnections int      `json:"externalConnections"`
	IsolationScore      float64  `json:"isolationScore"`
	RiskScore           float64  `json:"riskScore"`
}

// Contains reports whether the cycle includes the given company.
func (c *TradeCycle) Contains(id string) bool {
	for _, m := range c.Companies {
		if m == id {
			return true
		}
	}
	return false
}

// InfluenceTriple names a shareholder positioned to steer trade between a
// supplier they control and a target dependent on that supplier.
type InfluenceTriple struct {
	ShareholderID    string  `json:"shareholderId"`
	ShareholderName  string  `json:"shareholderName,omitempty"`
	ShareholderType  string  `json:"shareholderType,omitempty"`
	SupplierID       string  `json:"supplierId"`
	SupplierName     string  `json:"supplierName,omitempty"`
	TargetID         string  `json:"targetId"`
	TargetName       string  `json:"targetName,omitempty"`
	OwnershipPct     float64 `json:"ownershipPct"`
	ConcentrationPct float64 `json:"concentrationPct"`
	InfluenceScore   float64 `json:"influenceScore"`
	OpportunityScore float64 `json:"opportunityScore"`
}

// Names reports whether the triple involves the given entity as supplier or
// target; the aggregator uses this for opportunity scoring.
func (t *InfluenceTriple) Names(id string) bool {
	return t.SupplierID == id || t.TargetID == id
}
