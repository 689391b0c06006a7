package models

// Factor models an optional external input explicitly: a factor is either
// present with a value or absent. Absent factors are dropped from composites
// and their nominal weight redistributes over the rest; absence is never an
// error.
type Factor struct {
	value   float64
	present bool
}

// Present wraps a known factor value.
func Present(v float64) Factor { return Factor{value: v, present: true} }

// Absent is the missing-factor marker.
func Absent() Factor { return Factor{} }

// Value returns the factor value and whether it is present.
func (f Factor) Value() (float64, bool) { return f.value, f.present }

// IsPresent reports whether the factor carries a value.
func (f Factor) IsPresent() bool { return f.present }

// Or returns the factor value, or def when absent.
func (f Factor) Or(def float64) float64 {
	if f.present {
		return f.value
	}
	return def
}

// FactorSnapshot is a point-in-time bundle of external factor readings.
// Every field is optional; collaborators fill what they have.
type FactorSnapshot struct {
	FundingRate   Factor // exchange funding rate, zero-centered
	AltseasonIdx  Factor // altcoin-season index, 0-100
	CycleRisk     Factor // BTC cycle risk, 0-1
	AppStoreScore Factor // app-store rank derived score, 0-100
	SearchIdx     Factor // search interest index, 0-100
	Dominance     *DominanceSnapshot
}

// DominanceSnapshot is an immutable point-in-time dominance record. A single
// prior snapshot is retained (one slot, overwritten) to compute the
// rate-of-change leg of the capital-rotation sub-signal.
type DominanceSnapshot struct {
	BTCDominance   float64 // percent of total market cap
	USDTDominance  float64
	AltMarketCap   float64
	TotalMarketCap float64
}
