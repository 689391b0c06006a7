package models

import "time"

// RiskHistoryPoint places one dated close within its fitted channel.
// RiskLevel is continuous in [0,1]: 0 = deepest discount, 1 = most overextended.
type RiskHistoryPoint struct {
	Date      time.Time
	Price     float64
	RiskLevel float64
}

// RiskComponent is one named, weighted input of a composite risk score.
type RiskComponent struct {
	Name   string
	Value  float64
	Weight float64 // normalized over present components; sums to 1
}

// MultiFactorRiskPoint is the weighted composite of the regression risk and
// whichever external factors were present at computation time.
type MultiFactorRiskPoint struct {
	Date           time.Time
	Price          float64
	Components     []RiskComponent
	CompositeScore float64 // in [0,1]
}

// RiskFactorWeights carries the nominal weight per factor name. Weights need
// not sum to 1; the engine normalizes by the sum over present factors only.
type RiskFactorWeights struct {
	Regression      float64
	Funding         float64
	Volatility      float64
	AppStore        float64
	Search          float64
	AltcoinSeason   float64
	CapitalRotation float64
}

// CurrentRisk is the cached regression-risk reading for an asset.
type CurrentRisk struct {
	Symbol     string
	ComputedAt time.Time
	Price      float64
	RiskLevel  float64 // in [0,1]
	Zone       Zone
	RSquared   float64 // fit quality, confidence side channel
	SampleSize int
}

// ConfidenceRecord is one append-only observation of a risk computation,
// consumed elsewhere for prediction-accuracy analysis.
type ConfidenceRecord struct {
	ID         string
	Symbol     string
	Date       time.Time
	RSquared   float64
	SampleSize int
	RiskLevel  float64
	Price      float64
}
