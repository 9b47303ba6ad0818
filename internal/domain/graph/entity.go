// Package graph defines the corporate property graph domain model and the
// read-only store port the fraud detectors operate against.  The model covers
// companies, shareholders, auditors and invoices connected by ownership,
// subsidiary, audit and supply relationships.
package graph

// RiskLevel classifies an auditor's regulatory risk standing.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// ShareholderType distinguishes natural persons from institutional holders.
type ShareholderType string

const (
	ShareholderIndividual    ShareholderType = "individual"
	ShareholderInstitutional ShareholderType = "institutional"
)

// Company is a corporate entity in the graph.  RiskScore is the intrinsic
// risk attribute assigned by upstream scoring; zero when absent.
type Company struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Industry  string  `json:"industry,omitempty"`
	RiskScore float64 `json:"riskScore,omitempty"`
}

// Shareholder is an owner of company shares.
type Shareholder struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Type ShareholderType `json:"type"`
}

// Auditor is an audit firm attached to companies via AUDITED_BY edges.
type Auditor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RiskLevel RiskLevel `json:"riskLevel"`
}

// Invoice is a billing document linked to companies via ISSUES_TO and PAYS
// edges.  The detectors only consume the per-company activity count.
type Invoice struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date,omitempty"` // ISO 8601 date
}

// EdgeType enumerates the relationship types of the property graph.
type EdgeType string

const (
	EdgeSubsidiaryOf EdgeType = "SUBSIDIARY_OF"
	EdgeOwnsShare    EdgeType = "OWNS_SHARE"
	EdgeAuditedBy    EdgeType = "AUDITED_BY"
	EdgeSupplies     EdgeType = "SUPPLIES"
	EdgeIssuesTo     EdgeType = "ISSUES_TO"
	EdgePays         EdgeType = "PAYS"
)

// SupplyEdge is a SUPPLIES relationship between two companies.
// AnnualVolume is expressed in millions and must be non-negative; edges that
// violate this are data-integrity defects and are skipped by consumers.
type SupplyEdge struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	AnnualVolume float64 `json:"annualVolume"`
}

// OwnershipEdge is an OWNS_SHARE relationship from a shareholder to a company.
// Percentage lies in [0, 100]; out-of-range values are data-integrity defects.
// The shareholder name and type are denormalized onto the edge so that
// consumers do not need a second round-trip per edge.
type OwnershipEdge struct {
	ShareholderID   string          `json:"shareholderId"`
	ShareholderName string          `json:"shareholderName,omitempty"`
	ShareholderType ShareholderType `json:"shareholderType,omitempty"`
	CompanyID       string          `json:"companyId"`
	Percentage      float64         `json:"percentage"`
}

// Valid reports whether the edge carries a well-formed volume.
func (e SupplyEdge) Valid() bool {
	return e.AnnualVolume >= 0
}

// Valid reports whether the edge carries a well-formed percentage.
func (e OwnershipEdge) Valid() bool {
	return e.Percentage >= 0 && e.Percentage <= 100
}
