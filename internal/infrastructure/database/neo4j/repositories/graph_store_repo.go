// Package repositories contains the Cypher-backed implementation of the
// graph.Store port.
package repositories

import (
	"context"
	"fmt"

	neo4jdrv "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/GraphSentinel/internal/domain/graph"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/database/neo4j"
	"github.com/turtacn/GraphSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/GraphSentinel/pkg/errors"
)

// graphStoreRepo implements graph.Store against a live Neo4j database.
type graphStoreRepo struct {
	driver *neo4j.Driver
	logger logging.Logger
}

// NewGraphStore constructs the Cypher-backed graph.Store.
func NewGraphStore(driver *neo4j.Driver, logger logging.Logger) graph.Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &graphStoreRepo{driver: driver, logger: logger.Named("graph_store")}
}

func (r *graphStoreRepo) HasCompany(ctx context.Context, id string) (bool, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Company {id: $id}) RETURN count(c) > 0 AS exists`,
			map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return neo4j.ExtractSingleRecord(ctx, result, func(rec *neo4jdrv.Record) (bool, error) {
			return asBool(rec.Values[0]), nil
		})
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (r *graphStoreRepo) Company(ctx context.Context, id string) (*graph.Company, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Company {id: $id})
			 RETURN c.id AS id, c.name AS name, c.industry AS industry, c.risk_score AS riskScore`,
			map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		return neo4j.ExtractSingleRecord(ctx, result, func(rec *neo4jdrv.Record) (*graph.Company, error) {
			return &graph.Company{
				ID:        asString(rec.Values[0]),
				Name:      asString(rec.Values[1]),
				Industry:  asString(rec.Values[2]),
				RiskScore: asFloat(rec.Values[3]),
			}, nil
		})
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.EntityNotFound(id)
		}
		return nil, err
	}
	return res.(*graph.Company), nil
}

func (r *graphStoreRepo) FetchNeighborhood(ctx context.Context, rootID string, hops int) (*graph.Subgraph, error) {
	// Variable-length bounds cannot be parameterized in Cypher; hops is an
	// internal int, never caller-supplied text.
	query := fmt.Sprintf(`
		MATCH (root {id: $id})
		OPTIONAL MATCH p = (root)-[*1..%d]-()
		WITH root,
		     [n IN collect(DISTINCT p) | n] AS paths
		WITH root,
		     reduce(ns = [root], p IN paths | ns + nodes(p)) AS ns,
		     reduce(rs = [], p IN paths | rs + relationships(p)) AS rs
		RETURN
		  [n IN ns | {id: n.id, labels: labels(n), props: properties(n)}] AS nodes,
		  [r IN rs | {id: elementId(r), type: type(r),
		              from: startNode(r).id, to: endNode(r).id,
		              props: properties(r)}] AS rels`, hops)

	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, map[string]any{"id": rootID})
		if err != nil {
			return nil, err
		}
		return neo4j.ExtractSingleRecord(ctx, result, func(rec *neo4jdrv.Record) (*graph.Subgraph, error) {
			sub := &graph.Subgraph{RootID: rootID, Hops: hops}
			for _, raw := range asList(rec.Values[0]) {
				m, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				sub.Nodes = append(sub.Nodes, graph.Node{
					ID:         asString(m["id"]),
					Labels:     asStrings(m["labels"]),
					Properties: asMap(m["props"]),
				})
			}
			for _, raw := range asList(rec.Values[1]) {
				m, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				sub.Edges = append(sub.Edges, graph.Edge{
					ID:         asString(m["id"]),
					Type:       graph.EdgeType(asString(m["type"])),
					From:       asString(m["from"]),
					To:         asString(m["to"]),
					Properties: asMap(m["props"]),
				})
			}
			sub.Normalize()
			return sub, nil
		})
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.EntityNotFound(rootID)
		}
		return nil, err
	}
	return res.(*graph.Subgraph), nil
}

func (r *graphStoreRepo) SubsidiaryParents(ctx context.Context, companyID string) ([]string, error) {
	return r.collectIDs(ctx,
		`MATCH (c:Company {id: $id})-[:SUBSIDIARY_OF]->(p:Company) RETURN p.id ORDER BY p.id`,
		map[string]any{"id": companyID})
}

func (r *graphStoreRepo) AuditorOf(ctx context.Context, companyID string) (*graph.Auditor, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Company {id: $id})-[:AUDITED_BY]->(a:Auditor)
			 RETURN a.id AS id, a.name AS name, a.risk_level AS riskLevel`,
			map[string]any{"id": companyID})
		if err != nil {
			return nil, err
		}
		return neo4j.ExtractSingleRecord(ctx, result, mapAuditor)
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeNotFound) {
			return nil, errors.EntityNotFound(companyID)
		}
		return nil, err
	}
	return res.(*graph.Auditor), nil
}

func (r *graphStoreRepo) CompaniesAuditedBy(ctx context.Context, auditorID string) ([]string, error) {
	return r.collectIDs(ctx,
		`MATCH (c:Company)-[:AUDITED_BY]->(a:Auditor {id: $id}) RETURN c.id ORDER BY c.id`,
		map[string]any{"id": auditorID})
}

func (r *graphStoreRepo) HighRiskAuditors(ctx context.Context) ([]graph.Auditor, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (a:Auditor {risk_level: 'HIGH'})
			 RETURN a.id AS id, a.name AS name, a.risk_level AS riskLevel
			 ORDER BY a.id`, nil)
		if err != nil {
			return nil, err
		}
		auditors, err := neo4j.CollectRecords(ctx, result, mapAuditor)
		if err != nil {
			return nil, err
		}
		out := make([]graph.Auditor, len(auditors))
		for i, a := range auditors {
			out[i] = *a
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]graph.Auditor), nil
}

func (r *graphStoreRepo) SupplyEdges(ctx context.Context) ([]graph.SupplyEdge, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (f:Company)-[s:SUPPLIES]->(t:Company)
			 RETURN f.id AS from, t.id AS to, s.annual_volume AS volume`, nil)
		if err != nil {
			return nil, err
		}
		return neo4j.CollectRecords(ctx, result, func(rec *neo4jdrv.Record) (graph.SupplyEdge, error) {
			return graph.SupplyEdge{
				From:         asString(rec.Values[0]),
				To:           asString(rec.Values[1]),
				AnnualVolume: asFloat(rec.Values[2]),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]graph.SupplyEdge), nil
}

func (r *graphStoreRepo) Ownerships(ctx context.Context) ([]graph.OwnershipEdge, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (sh:Shareholder)-[o:OWNS_SHARE]->(c:Company)
			 RETURN sh.id AS shareholderId, sh.name AS shareholderName,
			        sh.type AS shareholderType, c.id AS companyId,
			        o.percentage AS percentage`, nil)
		if err != nil {
			return nil, err
		}
		return neo4j.CollectRecords(ctx, result, func(rec *neo4jdrv.Record) (graph.OwnershipEdge, error) {
			return graph.OwnershipEdge{
				ShareholderID:   asString(rec.Values[0]),
				ShareholderName: asString(rec.Values[1]),
				ShareholderType: graph.ShareholderType(asString(rec.Values[2])),
				CompanyID:       asString(rec.Values[3]),
				Percentage:      asFloat(rec.Values[4]),
			}, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]graph.OwnershipEdge), nil
}

func (r *graphStoreRepo) InvoiceActivityCount(ctx context.Context, companyID string) (int, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx,
			`MATCH (c:Company {id: $id})
			 OPTIONAL MATCH (c)-[r:ISSUES_TO|PAYS]-(:Invoice)
			 RETURN count(r) AS activity`,
			map[string]any{"id": companyID})
		if err != nil {
			return nil, err
		}
		return neo4j.ExtractSingleRecord(ctx, result, func(rec *neo4jdrv.Record) (int, error) {
			return asInt(rec.Values[0]), nil
		})
	})
	if err != nil {
		return 0, err
	}
	return res.(int), nil
}

// collectIDs runs a single-column ID query.
func (r *graphStoreRepo) collectIDs(ctx context.Context, query string, params map[string]any) ([]string, error) {
	res, err := r.driver.ExecuteRead(ctx, func(tx neo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return neo4j.CollectRecords(ctx, result, func(rec *neo4jdrv.Record) (string, error) {
			return asString(rec.Values[0]), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// Record value coercion helpers.  Neo4j returns int64 for integers and nil
// for absent properties.

func mapAuditor(rec *neo4jdrv.Record) (*graph.Auditor, error) {
	return &graph.Auditor{
		ID:        asString(rec.Values[0]),
		Name:      asString(rec.Values[1]),
		RiskLevel: graph.RiskLevel(asString(rec.Values[2])),
	}, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func asBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func asStrings(v any) []string {
	var out []string
	for _, item := range asList(v) {
		out = append(out, asString(item))
	}
	return out
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}
