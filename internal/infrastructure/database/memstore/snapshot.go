package memstore

import (
	"encoding/json"
	"os"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// Snapshot is the JSON file format of an offline graph export.  It feeds the
// CLI's snapshot mode so that analyses can run without a live database.
type Snapshot struct {
	Companies    []graph.Company     `json:"companies"`
	Shareholders []graph.Shareholder `json:"shareholders"`
	Auditors     []graph.Auditor     `json:"auditors"`

	Subsidiaries []SnapshotSubsidiary `json:"subsidiaries,omitempty"`
	Audits       []SnapshotAudit      `json:"audits,omitempty"`
	Supplies     []graph.SupplyEdge   `json:"supplies,omitempty"`
	Ownerships   []SnapshotOwnership  `json:"ownerships,omitempty"`
	Invoices     []SnapshotInvoice    `json:"invoices,omitempty"`
}

// SnapshotSubsidiary records child SUBSIDIARY_OF parent.
type SnapshotSubsidiary struct {
	ChildID  string `json:"childId"`
	ParentID string `json:"parentId"`
}

// SnapshotAudit records company AUDITED_BY auditor.
type SnapshotAudit struct {
	CompanyID string `json:"companyId"`
	AuditorID string `json:"auditorId"`
}

// SnapshotOwnership records shareholder OWNS_SHARE company.
type SnapshotOwnership struct {
	ShareholderID string  `json:"shareholderId"`
	CompanyID     string  `json:"companyId"`
	Percentage    float64 `json:"percentage"`
}

// SnapshotInvoice links an invoice to the companies it touches.
type SnapshotInvoice struct {
	Invoice    graph.Invoice `json:"invoice"`
	IssuedToID string        `json:"issuedToId,omitempty"`
	PaidByID   string        `json:"paidById,omitempty"`
}

// FromSnapshot builds a Store from a decoded snapshot.
func FromSnapshot(snap *Snapshot) *Store {
	s := New()
	for _, c := range snap.Companies {
		s.AddCompany(c)
	}
	for _, sh := range snap.Shareholders {
		s.AddShareholder(sh)
	}
	for _, a := range snap.Auditors {
		s.AddAuditor(a)
	}
	for _, sub := range snap.Subsidiaries {
		s.AddSubsidiary(sub.ChildID, sub.ParentID)
	}
	for _, au := range snap.Audits {
		s.AddAudit(au.CompanyID, au.AuditorID)
	}
	for _, sup := range snap.Supplies {
		s.AddSupply(sup.From, sup.To, sup.AnnualVolume)
	}
	for _, o := range snap.Ownerships {
		s.AddOwnership(o.ShareholderID, o.CompanyID, o.Percentage)
	}
	for _, inv := range snap.Invoices {
		s.AddInvoice(inv.Invoice, inv.IssuedToID, inv.PaidByID)
	}
	return s
}

// LoadSnapshot reads and decodes a snapshot file into a Store.
func LoadSnapshot(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "failed to read snapshot file")
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode snapshot file")
	}
	return FromSnapshot(&snap), nil
}
