package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

func TestStore_Company(t *testing.T) {
	s := New()
	s.AddCompany(graph.Company{ID: "ACME", Name: "Acme Corp", Industry: "manufacturing", RiskScore: 0.3})

	c, err := s.Company(context.Background(), "ACME")

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)
	assert.Equal(t, "manufacturing", c.Industry)
	assert.Equal(t, 0.3, c.RiskScore)
}

func TestStore_Company_NotFound(t *testing.T) {
	_, err := New().Company(context.Background(), "MISSING")

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_HasCompany(t *testing.T) {
	s := New()
	s.AddCompany(graph.Company{ID: "ACME"})

	ok, err := s.HasCompany(context.Background(), "ACME")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasCompany(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SubsidiaryParents(t *testing.T) {
	s := New()
	s.AddSubsidiary("CHILD", "P1")
	s.AddSubsidiary("CHILD", "P2")

	parents, err := s.SubsidiaryParents(context.Background(), "CHILD")

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P1", "P2"}, parents)
}

func TestStore_AuditRelations(t *testing.T) {
	s := New()
	s.AddAuditor(graph.Auditor{ID: "AUD-1", Name: "Audit LLP", RiskLevel: graph.RiskHigh})
	s.AddAudit("C1", "AUD-1")
	s.AddAudit("C2", "AUD-1")

	a, err := s.AuditorOf(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "Audit LLP", a.Name)

	clients, err := s.CompaniesAuditedBy(context.Background(), "AUD-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"C1", "C2"}, clients)

	_, err = s.AuditorOf(context.Background(), "UNAUDITED")
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_HighRiskAuditors_SortedByID(t *testing.T) {
	s := New()
	s.AddAuditor(graph.Auditor{ID: "AUD-3", RiskLevel: graph.RiskHigh})
	s.AddAuditor(graph.Auditor{ID: "AUD-1", RiskLevel: graph.RiskHigh})
	s.AddAuditor(graph.Auditor{ID: "AUD-2", RiskLevel: graph.RiskMedium})

	auditors, err := s.HighRiskAuditors(context.Background())

	require.NoError(t, err)
	require.Len(t, auditors, 2)
	assert.Equal(t, "AUD-1", auditors[0].ID)
	assert.Equal(t, "AUD-3", auditors[1].ID)
}

func TestStore_OwnershipDenormalizesShareholder(t *testing.T) {
	s := New()
	s.AddShareholder(graph.Shareholder{ID: "S1", Name: "J. Doe", Type: graph.ShareholderIndividual})
	s.AddOwnership("S1", "C1", 35)

	edges, err := s.Ownerships(context.Background())

	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "J. Doe", edges[0].ShareholderName)
	assert.Equal(t, graph.ShareholderIndividual, edges[0].ShareholderType)
	assert.Equal(t, 35.0, edges[0].Percentage)
}

func TestStore_InvoiceActivityCount(t *testing.T) {
	s := New()
	s.AddInvoice(graph.Invoice{ID: "INV-1", Amount: 100}, "C1", "C2")
	s.AddInvoice(graph.Invoice{ID: "INV-2", Amount: 200}, "C1", "")

	n, err := s.InvoiceActivityCount(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.InvoiceActivityCount(context.Background(), "C2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.InvoiceActivityCount(context.Background(), "C3")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	s := New()
	s.AddSupply("A", "B", 100)

	edges, err := s.SupplyEdges(context.Background())
	require.NoError(t, err)
	edges[0].AnnualVolume = -1

	again, err := s.SupplyEdges(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, again[0].AnnualVolume)
}

func TestStore_FetchNeighborhood_UnknownRoot(t *testing.T) {
	_, err := New().FetchNeighborhood(context.Background(), "MISSING", 2)

	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_FetchNeighborhood_InvoiceEdgesTraversed(t *testing.T) {
	s := New()
	s.AddCompany(graph.Company{ID: "C1"})
	s.AddCompany(graph.Company{ID: "C2"})
	s.AddInvoice(graph.Invoice{ID: "INV-1", Amount: 100}, "C1", "C2")

	sub, err := s.FetchNeighborhood(context.Background(), "C1", 2)

	require.NoError(t, err)
	assert.True(t, sub.HasNode("INV-1"))
	assert.True(t, sub.HasNode("C2"))
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	s.AddCompany(graph.Company{ID: "ACME"})

	_, err := s.Company(ctx, "ACME")
	assert.Error(t, err)

	_, err = s.SupplyEdges(ctx)
	assert.Error(t, err)
}
