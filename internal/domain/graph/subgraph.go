package graph

import "sort"

// Node is a typed graph node inside an extracted subgraph.  Labels carries the
// node kind ("Company", "Shareholder", "Auditor", "Invoice"); Properties holds
// the raw attribute map as returned by the store.
type Node struct {
	ID         string                 `json:"id"`
	Labels     []string               `json:"labels"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Edge is a typed relationship inside an extracted subgraph.
type Edge struct {
	ID         string                 `json:"id"`
	Type       EdgeType               `json:"type"`
	From       string                 `json:"from"`
	To         string                 `json:"to"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Subgraph is the neighborhood of a root entity: the node set within a hop
// bound plus every edge whose endpoints are both inside the set.  The root
// node is always first in Nodes; the remaining nodes and all edges are held
// in a deterministic sorted order so that repeated extractions over an
// unchanged snapshot compare equal.
type Subgraph struct {
	RootID string `json:"rootId"`
	Hops   int    `json:"hops"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// HasNode reports whether the subgraph contains a node with the given ID.
func (s *Subgraph) HasNode(id string) bool {
	for _, n := range s.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// NodeIDs returns the IDs of all nodes in order.
func (s *Subgraph) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Normalize deduplicates nodes and edges, drops edges with an endpoint
// outside the node set, and sorts everything into the canonical order:
// root first, remaining nodes by ID, edges by (From, To, Type, ID).
func (s *Subgraph) Normalize() {
	seen := make(map[string]bool, len(s.Nodes))
	nodes := s.Nodes[:0]
	for _, n := range s.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].ID == s.RootID {
			return true
		}
		if nodes[j].ID == s.RootID {
			return false
		}
		return nodes[i].ID < nodes[j].ID
	})
	s.Nodes = nodes

	edgeSeen := make(map[string]bool, len(s.Edges))
	edges := s.Edges[:0]
	for _, e := range s.Edges {
		if !seen[e.From] || !seen[e.To] {
			continue
		}
		key := e.From + "|" + e.To + "|" + string(e.Type) + "|" + e.ID
		if edgeSeen[key] {
			continue
		}
		edgeSeen[key] = true
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		if edges[i].To != edges[j].To {
			return edges[i].To < edges[j].To
		}
		if edges[i].Type != edges[j].Type {
			return edges[i].Type < edges[j].Type
		}
		return edges[i].ID < edges[j].ID
	})
	s.Edges = edges
}
