package analysis

import "github.com/turtacn/GraphSentinel/internal/domain/fraud"

// AggregateRisk reduces the pattern sets to a single entity risk score: the
// maximum score over every chain and cycle containing the entity.  When no
// pattern involves the entity the intrinsic company risk attribute applies,
// and zero when that is absent too.
func AggregateRisk(entityID string, chains []fraud.ShellChain, cycles []fraud.TradeCycle, intrinsic float64) float64 {
	risk := 0.0
	involved := false
	for i := range chains {
		if chains[i].Contains(entityID) {
			involved = true
			if chains[i].RiskScore > risk {
				risk = chains[i].RiskScore
			}
		}
	}
	for i := range cycles {
		if cycles[i].Contains(entityID) {
			involved = true
			if cycles[i].RiskScore > risk {
				risk = cycles[i].RiskScore
			}
		}
	}
	if !involved {
		return intrinsic
	}
	return risk
}

// AggregateOpportunity returns the maximum opportunity score over the
// influence triples naming the entity as supplier or target, zero when none
// do.
func AggregateOpportunity(entityID string, triples []fraud.InfluenceTriple) float64 {
	score := 0.0
	for i := range triples {
		if triples[i].Names(entityID) && triples[i].OpportunityScore > score {
			score = triples[i].OpportunityScore
		}
	}
	return score
}
