// Package memstore provides an in-memory implementation of the graph.Store
// port.  It backs the CLI's snapshot mode and serves as the canonical test
// double for the detectors: graphs are assembled with the Add* methods and
// then queried exactly like the Neo4j repository.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// Store is a thread-safe in-memory property graph index.
type Store struct {
	mu sync.RWMutex

	companies    map[string]graph.Company
	shareholders map[string]graph.Shareholder
	auditors     map[string]graph.Auditor
	invoices     map[string]graph.Invoice

	subsidiaryParents map[string][]string // company → parent companies
	companyAuditor    map[string]string   // company → auditor
	auditorClients    map[string][]string // auditor → companies
	supplies          []graph.SupplyEdge
	ownerships        []graph.OwnershipEdge
	invoiceDegree     map[string]int // company → ISSUES_TO + PAYS edge count

	nodes     map[string]graph.Node
	edges     []graph.Edge
	adjacency map[string][]int // node → indices into edges
}

var _ graph.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		companies:         make(map[string]graph.Company),
		shareholders:      make(map[string]graph.Shareholder),
		auditors:          make(map[string]graph.Auditor),
		invoices:          make(map[string]graph.Invoice),
		subsidiaryParents: make(map[string][]string),
		companyAuditor:    make(map[string]string),
		auditorClients:    make(map[string][]string),
		invoiceDegree:     make(map[string]int),
		nodes:             make(map[string]graph.Node),
		adjacency:         make(map[string][]int),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Graph assembly
// ─────────────────────────────────────────────────────────────────────────────

// AddCompany registers a company node.
func (s *Store) AddCompany(c graph.Company) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
	props := map[string]interface{}{"name": c.Name}
	if c.Industry != "" {
		props["industry"] = c.Industry
	}
	if c.RiskScore != 0 {
		props["riskScore"] = c.RiskScore
	}
	s.nodes[c.ID] = graph.Node{ID: c.ID, Labels: []string{"Company"}, Properties: props}
	return s
}

// AddShareholder registers a shareholder node.
func (s *Store) AddShareholder(sh graph.Shareholder) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shareholders[sh.ID] = sh
	s.nodes[sh.ID] = graph.Node{
		ID:         sh.ID,
		Labels:     []string{"Shareholder"},
		Properties: map[string]interface{}{"name": sh.Name, "type": string(sh.Type)},
	}
	return s
}

// AddAuditor registers an auditor node.
func (s *Store) AddAuditor(a graph.Auditor) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditors[a.ID] = a
	s.nodes[a.ID] = graph.Node{
		ID:         a.ID,
		Labels:     []string{"Auditor"},
		Properties: map[string]interface{}{"name": a.Name, "riskLevel": string(a.RiskLevel)},
	}
	return s
}

// AddSubsidiary records child SUBSIDIARY_OF parent.
func (s *Store) AddSubsidiary(childID, parentID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsidiaryParents[childID] = append(s.subsidiaryParents[childID], parentID)
	s.addEdge(graph.EdgeSubsidiaryOf, childID, parentID, nil)
	return s
}

// AddAudit records company AUDITED_BY auditor.
func (s *Store) AddAudit(companyID, auditorID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companyAuditor[companyID] = auditorID
	s.auditorClients[auditorID] = append(s.auditorClients[auditorID], companyID)
	s.addEdge(graph.EdgeAuditedBy, companyID, auditorID, nil)
	return s
}

// AddSupply records from SUPPLIES to with an annual volume in millions.
func (s *Store) AddSupply(fromID, toID string, annualVolume float64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supplies = append(s.supplies, graph.SupplyEdge{From: fromID, To: toID, AnnualVolume: annualVolume})
	s.addEdge(graph.EdgeSupplies, fromID, toID, map[string]interface{}{"annual_volume": annualVolume})
	return s
}

// AddOwnership records shareholder OWNS_SHARE company with a percentage.
func (s *Store) AddOwnership(shareholderID, companyID string, percentage float64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	edge := graph.OwnershipEdge{
		ShareholderID: shareholderID,
		CompanyID:     companyID,
		Percentage:    percentage,
	}
	if sh, ok := s.shareholders[shareholderID]; ok {
		edge.ShareholderName = sh.Name
		edge.ShareholderType = sh.Type
	}
	s.ownerships = append(s.ownerships, edge)
	s.addEdge(graph.EdgeOwnsShare, shareholderID, companyID, map[string]interface{}{"percentage": percentage})
	return s
}

// AddInvoice registers an invoice node issued to one company and paid by
// another.  Either company ID may be empty.
func (s *Store) AddInvoice(inv graph.Invoice, issuedToID, paidByID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.ID] = inv
	s.nodes[inv.ID] = graph.Node{
		ID:         inv.ID,
		Labels:     []string{"Invoice"},
		Properties: map[string]interface{}{"amount": inv.Amount, "date": inv.Date},
	}
	if issuedToID != "" {
		s.invoiceDegree[issuedToID]++
		s.addEdge(graph.EdgeIssuesTo, inv.ID, issuedToID, nil)
	}
	if paidByID != "" {
		s.invoiceDegree[paidByID]++
		s.addEdge(graph.EdgePays, paidByID, inv.ID, nil)
	}
	return s
}

// addEdge appends an edge and indexes it from both endpoints.
// Callers must hold s.mu.
func (s *Store) addEdge(t graph.EdgeType, from, to string, props map[string]interface{}) {
	idx := len(s.edges)
	s.edges = append(s.edges, graph.Edge{
		ID:         fmt.Sprintf("%s:%s:%s", t, from, to),
		Type:       t,
		From:       from,
		To:         to,
		Properties: props,
	})
	s.adjacency[from] = append(s.adjacency[from], idx)
	s.adjacency[to] = append(s.adjacency[to], idx)
}

// ─────────────────────────────────────────────────────────────────────────────
// graph.Store implementation
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) HasCompany(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.companies[id]
	return ok, nil
}

func (s *Store) Company(ctx context.Context, id string) (*graph.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, errors.EntityNotFound(id)
	}
	return &c, nil
}

func (s *Store) FetchNeighborhood(ctx context.Context, rootID string, hops int) (*graph.Subgraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.nodes[rootID]; !ok {
		return nil, errors.EntityNotFound(rootID)
	}

	// BFS over every edge type in both directions up to the hop bound.
	depth := map[string]int{rootID: 0}
	frontier := []string{rootID}
	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			if depth[id] >= hops {
				continue
			}
			for _, ei := range s.adjacency[id] {
				e := s.edges[ei]
				for _, other := range []string{e.From, e.To} {
					if _, seen := depth[other]; !seen {
						depth[other] = depth[id] + 1
						next = append(next, other)
					}
				}
			}
		}
		frontier = next
	}

	sub := &graph.Subgraph{RootID: rootID, Hops: hops}
	for id := range depth {
		sub.Nodes = append(sub.Nodes, s.nodes[id])
	}
	for _, e := range s.edges {
		_, fromIn := depth[e.From]
		_, toIn := depth[e.To]
		if fromIn && toIn {
			sub.Edges = append(sub.Edges, e)
		}
	}
	sub.Normalize()
	return sub, nil
}

func (s *Store) SubsidiaryParents(ctx context.Context, companyID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.subsidiaryParents[companyID]...), nil
}

func (s *Store) AuditorOf(ctx context.Context, companyID string) (*graph.Auditor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	auditorID, ok := s.companyAuditor[companyID]
	if !ok {
		return nil, errors.EntityNotFound(companyID)
	}
	a := s.auditors[auditorID]
	return &a, nil
}

func (s *Store) CompaniesAuditedBy(ctx context.Context, auditorID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.auditorClients[auditorID]...), nil
}

func (s *Store) HighRiskAuditors(ctx context.Context) ([]graph.Auditor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []graph.Auditor
	for _, a := range s.auditors {
		if a.RiskLevel == graph.RiskHigh {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SupplyEdges(ctx context.Context) ([]graph.SupplyEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]graph.SupplyEdge(nil), s.supplies...), nil
}

func (s *Store) Ownerships(ctx context.Context) ([]graph.OwnershipEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]graph.OwnershipEdge(nil), s.ownerships...), nil
}

func (s *Store) InvoiceActivityCount(ctx context.Context, companyID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invoiceDegree[companyID], nil
}
