// Package analysis provides the application-level service orchestrating the
// fraud detection pipeline: neighborhood extraction, the three pattern
// detectors, risk aggregation and visualization model construction.  This
// package serves as the interface between HTTP/CLI handlers and domain logic.
package analysis

import (
	"time"

	"github.com/turtacn/GraphSentinel/internal/domain/fraud"
)

// Patterns groups the detector outputs of one analysis.
type Patterns struct {
	ShellChains     []fraud.ShellChain      `json:"shellChains"`
	CircularTrade   []fraud.TradeCycle      `json:"circularTrade"`
	HiddenInfluence []fraud.InfluenceTriple `json:"hiddenInfluence"`
}

// Result is the complete outcome of one entity analysis.
//
// Diagnostics maps a detector name to the error it failed with; a detector
// absent from the map completed normally.  A failed detector contributes an
// empty pattern list, never a partial one.
type Result struct {
	AnalysisID       string            `json:"analysisId"`
	EntityID         string            `json:"entityId"`
	EntityName       string            `json:"entityName,omitempty"`
	RiskScore        float64           `json:"riskScore"`
	OpportunityScore float64           `json:"opportunityScore"`
	Patterns         Patterns          `json:"patterns"`
	Visualization    *VizModel         `json:"visualization,omitempty"`
	Diagnostics      map[string]string `json:"diagnostics,omitempty"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// Detector names used as diagnostics keys and metric labels.
const (
	DetectorExtractor       = "neighborhood_extractor"
	DetectorShellChain      = "shell_chain"
	DetectorCircularTrade   = "circular_trade"
	DetectorHiddenInfluence = "hidden_influence"
)
