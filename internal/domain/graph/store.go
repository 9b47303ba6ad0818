package graph

import "context"

// Store is the read-only port the detection pipeline uses to query the
// property graph.  Implementations live in internal/infrastructure/database:
// a Cypher-backed Neo4j repository for production and an in-memory index used
// as the materialized read view in tests and the CLI.
//
// All methods honour ctx cancellation.  Lookup methods report a missing
// entity with a pkg/errors CodeEntityNotFound AppError; transport or backend
// failures surface as CodeStoreUnavailable and are never retried here.
type Store interface {
	// HasCompany reports whether a company node with the given ID exists.
	HasCompany(ctx context.Context, id string) (bool, error)

	// Company returns the company with the given ID, or CodeEntityNotFound.
	Company(ctx context.Context, id string) (*Company, error)

	// FetchNeighborhood returns the subgraph within the given number of hops
	// of rootID, traversing every edge type in both directions.  The root node
	// is always first in the node list.
	FetchNeighborhood(ctx context.Context, rootID string, hops int) (*Subgraph, error)

	// SubsidiaryParents returns the IDs of companies the given company is a
	// subsidiary of (outgoing SUBSIDIARY_OF edges).
	SubsidiaryParents(ctx context.Context, companyID string) ([]string, error)

	// AuditorOf returns the auditor attached to the company via AUDITED_BY,
	// or CodeEntityNotFound when the company has no auditor.
	AuditorOf(ctx context.Context, companyID string) (*Auditor, error)

	// CompaniesAuditedBy returns the IDs of all companies audited by the
	// given auditor.
	CompaniesAuditedBy(ctx context.Context, auditorID string) ([]string, error)

	// HighRiskAuditors returns every auditor whose risk level is HIGH.
	HighRiskAuditors(ctx context.Context) ([]Auditor, error)

	// SupplyEdges returns the full SUPPLIES edge list with annual volumes.
	SupplyEdges(ctx context.Context) ([]SupplyEdge, error)

	// Ownerships returns the full OWNS_SHARE edge list with percentages.
	Ownerships(ctx context.Context) ([]OwnershipEdge, error)

	// InvoiceActivityCount returns the number of ISSUES_TO plus PAYS edges
	// incident to the company.
	InvoiceActivityCount(ctx context.Context, companyID string) (int, error)
}
