package models

import "time"

// Bar represents a single OHLCV candle supplied by collaborators.
// Ordering is caller-supplied; analytics re-sort ascending by date before use.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Trade is a raw tick from the exchange stream before bar aggregation.
type Trade struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
