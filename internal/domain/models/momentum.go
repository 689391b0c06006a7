package models

import "time"

// RSIPoint is one dated RSI value in [0,100].
type RSIPoint struct {
	Date  time.Time
	Value float64
}

// DivergenceType labels the direction of a price/RSI divergence.
type DivergenceType string

const (
	DivergenceBullish DivergenceType = "bullish"
	DivergenceBearish DivergenceType = "bearish"
)

// Divergence is a matched pair of swings where price and RSI disagree.
// For bearish: PriceEnd > PriceStart and RSIEnd < RSIStart.
// For bullish: PriceEnd < PriceStart and RSIEnd > RSIStart.
type Divergence struct {
	Type       DivergenceType
	StartDate  time.Time
	EndDate    time.Time
	PriceStart float64
	PriceEnd   float64
	RSIStart   float64
	RSIEnd     float64
}

// ConsolidationRange is a flat ATR-bounded stretch of daily bars.
type ConsolidationRange struct {
	StartDate time.Time
	EndDate   time.Time
	HighPrice float64
	LowPrice  float64
}
