package models

import "time"

// Zone describes where a close sits relative to its fitted regression channel.
type Zone string

const (
	ZoneDeepValue    Zone = "deep_value"
	ZoneValue        Zone = "value"
	ZoneFair         Zone = "fair"
	ZoneElevated     Zone = "elevated"
	ZoneOverextended Zone = "overextended"
)

// RegressionPoint is one dated point of the fitted log-regression channel.
// Band levels are in price space (already exponentiated back from log space).
type RegressionPoint struct {
	Date        time.Time
	Close       float64
	FittedPrice float64
	UpperBand   float64 // exp(fit + 2σ)
	LowerBand   float64 // exp(fit - 2σ)
	UpperMid    float64 // exp(fit + σ)
	LowerMid    float64 // exp(fit - σ)
	Zone        Zone
}

// RegressionChannel is the full least-squares fit of log(close) vs bar index.
type RegressionChannel struct {
	Points               []RegressionPoint
	Slope                float64
	Intercept            float64
	RSquared             float64 // in [0,1]; 0 when total variance is zero
	StandardDeviation    float64 // σ of residuals, log space
	CurrentZone          Zone
	AnnualizedGrowthRate float64 // exp(slope·barsPerYear) - 1
}
