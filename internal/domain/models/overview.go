package models

import "time"

// MarketOverview is a consolidated view of the analytics signals for one
// asset. Note: no transport (json/http) concerns here.
type MarketOverview struct {
	Symbol         string
	Timestamp      time.Time
	Channel        *RegressionChannel
	Risk           *CurrentRisk
	Divergences    []Divergence
	Consolidations []ConsolidationRange
	Regime         *RegimeNow
	Errors         map[string]string
}
