package analysis

import (
	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
	"github.com/turtacn/GraphSentinel/internal/domain/graph"
)

// Node color palette by risk bucket.
const (
	ColorQuery  = "#3b82f6" // the analyzed entity itself
	ColorHigh   = "#ef4444" // risk ≥ 0.7
	ColorMedium = "#f59e0b" // 0.4 ≤ risk < 0.7
	ColorLow    = "#10b981" // risk < 0.4
)

// Risk bucket boundaries and node sizing parameters.
const (
	highRiskFloor   = 0.7
	mediumRiskFloor = 0.4

	minNodeSize   = 10.0
	baseNodeSize  = 25.0
	sizeRiskSlope = 15.0

	// edgeWidthScale divides the raw edge weight (annual volume in millions
	// or ownership percentage) to obtain the rendered width.
	edgeWidthScale = 20.0
	minEdgeWidth   = 1.0
)

// VizNode is a renderable node of the visualization model.
type VizNode struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Kinds     []string `json:"kinds,omitempty"`
	RiskScore float64  `json:"riskScore"`
	Bucket    string   `json:"bucket"` // "query" | "high" | "medium" | "low"
	Color     string   `json:"color"`
	Size      float64  `json:"size"`
}

// VizEdge is a renderable edge of the visualization model.
type VizEdge struct {
	ID    string         `json:"id"`
	From  string         `json:"from"`
	To    string         `json:"to"`
	Type  graph.EdgeType `json:"type"`
	Width float64        `json:"width"`
}

// Highlight is the set of node and edge IDs belonging to one pattern type.
// Highlights are derived sets over the base model; consumers toggle them
// without the base nodes or edges ever changing.
type Highlight struct {
	NodeIDs []string `json:"nodeIds"`
	EdgeIDs []string `json:"edgeIds"`
}

// VizModel is the complete render-ready model of an analyzed neighborhood.
type VizModel struct {
	Nodes      []VizNode            `json:"nodes"`
	Edges      []VizEdge            `json:"edges"`
	Highlights map[string]Highlight `json:"highlights"`
}

// ColorForRisk returns the bucket name and color for a risk score.
func ColorForRisk(risk float64) (bucket, color string) {
	switch {
	case risk >= highRiskFloor:
		return "high", ColorHigh
	case risk >= mediumRiskFloor:
		return "medium", ColorMedium
	default:
		return "low", ColorLow
	}
}

// NodeSize maps a risk score to a node size.  Riskier nodes render smaller;
// bounded below by minNodeSize.
func NodeSize(risk float64) float64 {
	size := baseNodeSize - risk*sizeRiskSlope
	if size < minNodeSize {
		return minNodeSize
	}
	return size
}

// EdgeWidth maps a raw edge weight to a rendered width with a floor of 1.0.
func EdgeWidth(weight float64) float64 {
	w := weight / edgeWidthScale
	if w < minEdgeWidth {
		return minEdgeWidth
	}
	return w
}

// BuildVizModel turns an extracted subgraph plus the detected patterns into a
// renderable model.  Per-node risk follows the same reduction as the entity
// score: maximum over patterns containing the node, falling back to the
// node's intrinsic risk attribute.
func BuildVizModel(sub *graph.Subgraph, patterns Patterns) *VizModel {
	model := &VizModel{
		Nodes:      make([]VizNode, 0, len(sub.Nodes)),
		Edges:      make([]VizEdge, 0, len(sub.Edges)),
		Highlights: make(map[string]Highlight, 3),
	}

	for _, n := range sub.Nodes {
		risk := AggregateRisk(n.ID, patterns.ShellChains, patterns.CircularTrade, intrinsicRisk(n))
		bucket, color := ColorForRisk(risk)
		if n.ID == sub.RootID {
			bucket, color = "query", ColorQuery
		}
		model.Nodes = append(model.Nodes, VizNode{
			ID:        n.ID,
			Label:     nodeLabel(n),
			Kinds:     n.Labels,
			RiskScore: risk,
			Bucket:    bucket,
			Color:     color,
			Size:      NodeSize(risk),
		})
	}

	edgeIndex := make(map[[3]string]string, len(sub.Edges))
	for _, e := range sub.Edges {
		model.Edges = append(model.Edges, VizEdge{
			ID:    e.ID,
			From:  e.From,
			To:    e.To,
			Type:  e.Type,
			Width: EdgeWidth(edgeWeight(e)),
		})
		edgeIndex[[3]string{e.From, e.To, string(e.Type)}] = e.ID
	}

	model.Highlights[string(fraud.PatternShellChain)] = chainHighlight(sub, patterns.ShellChains, edgeIndex)
	model.Highlights[string(fraud.PatternCircularTrade)] = cycleHighlight(sub, patterns.CircularTrade, edgeIndex)
	model.Highlights[string(fraud.PatternHiddenInfluence)] = influenceHighlight(sub, patterns.HiddenInfluence, edgeIndex)

	return model
}

func intrinsicRisk(n graph.Node) float64 {
	if v, ok := n.Properties["riskScore"]; ok {
		switch r := v.(type) {
		case float64:
			return r
		case int:
			return float64(r)
		}
	}
	return 0
}

func nodeLabel(n graph.Node) string {
	if v, ok := n.Properties["name"].(string); ok && v != "" {
		return v
	}
	return n.ID
}

func edgeWeight(e graph.Edge) float64 {
	var key string
	switch e.Type {
	case graph.EdgeSupplies:
		key = "annual_volume"
	case graph.EdgeOwnsShare:
		key = "percentage"
	default:
		return 0
	}
	switch v := e.Properties[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func chainHighlight(sub *graph.Subgraph, chains []fraud.ShellChain, edgeIndex map[[3]string]string) Highlight {
	h := Highlight{NodeIDs: []string{}, EdgeIDs: []string{}}
	nodeSeen := make(map[string]bool)
	edgeSeen := make(map[string]bool)
	for _, chain := range chains {
		for i, id := range chain.Companies {
			if sub.HasNode(id) && !nodeSeen[id] {
				nodeSeen[id] = true
				h.NodeIDs = append(h.NodeIDs, id)
			}
			if i == 0 {
				continue
			}
			key := [3]string{chain.Companies[i-1], id, string(graph.EdgeSubsidiaryOf)}
			if eid, ok := edgeIndex[key]; ok && !edgeSeen[eid] {
				edgeSeen[eid] = true
				h.EdgeIDs = append(h.EdgeIDs, eid)
			}
		}
	}
	return h
}

func cycleHighlight(sub *graph.Subgraph, cycles []fraud.TradeCycle, edgeIndex map[[3]string]string) Highlight {
	h := Highlight{NodeIDs: []string{}, EdgeIDs: []string{}}
	nodeSeen := make(map[string]bool)
	edgeSeen := make(map[string]bool)
	for _, cycle := range cycles {
		for i, id := range cycle.Companies {
			if sub.HasNode(id) && !nodeSeen[id] {
				nodeSeen[id] = true
				h.NodeIDs = append(h.NodeIDs, id)
			}
			next := cycle.Companies[(i+1)%len(cycle.Companies)]
			key := [3]string{id, next, string(graph.EdgeSupplies)}
			if eid, ok := edgeIndex[key]; ok && !edgeSeen[eid] {
				edgeSeen[eid] = true
				h.EdgeIDs = append(h.EdgeIDs, eid)
			}
		}
	}
	return h
}

func influenceHighlight(sub *graph.Subgraph, triples []fraud.InfluenceTriple, edgeIndex map[[3]string]string) Highlight {
	h := Highlight{NodeIDs: []string{}, EdgeIDs: []string{}}
	nodeSeen := make(map[string]bool)
	edgeSeen := make(map[string]bool)
	addNode := func(id string) {
		if sub.HasNode(id) && !nodeSeen[id] {
			nodeSeen[id] = true
			h.NodeIDs = append(h.NodeIDs, id)
		}
	}
	addEdge := func(from, to string, t graph.EdgeType) {
		if eid, ok := edgeIndex[[3]string{from, to, string(t)}]; ok && !edgeSeen[eid] {
			edgeSeen[eid] = true
			h.EdgeIDs = append(h.EdgeIDs, eid)
		}
	}
	for _, t := range triples {
		addNode(t.ShareholderID)
		addNode(t.SupplierID)
		addNode(t.TargetID)
		addEdge(t.ShareholderID, t.SupplierID, graph.EdgeOwnsShare)
		addEdge(t.SupplierID, t.TargetID, graph.EdgeSupplies)
	}
	return h
}
