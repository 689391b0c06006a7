package regime

import (
	"sync"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/quant"
)

// Capital-rotation leg weights and typical dominance operating ranges.
const (
	usdtLegWeight = 0.35
	btcLegWeight  = 0.35
	altLegWeight  = 0.30

	usdtDomLow, usdtDomHigh = 3.0, 8.0
	btcDomLow, btcDomHigh   = 40.0, 70.0
	altShareLow, altShareHi = 30.0, 60.0

	btcDeltaGain = 25.0
)

// RotationTracker derives the capital-rotation sub-signal from dominance
// snapshots. Exactly one prior snapshot is retained (one slot, overwritten)
// to compute the BTC-dominance rate-of-change leg; the slot is the tracker's
// only mutable state and is mutex-guarded.
type RotationTracker struct {
	mu   sync.Mutex
	prev *models.DominanceSnapshot
}

func NewRotationTracker() *RotationTracker {
	return &RotationTracker{}
}

// Score combines three legs 35/35/30: USDT dominance inverted over its
// typical 3-8% range, BTC dominance direction (rate-of-change when a prior
// snapshot exists, level inverse over 40-70% otherwise), and alt market
// share over 30-60%. The snapshot replaces the retained prior wholesale.
func (t *RotationTracker) Score(snap models.DominanceSnapshot) float64 {
	t.mu.Lock()
	prev := t.prev
	s := snap
	t.prev = &s
	t.mu.Unlock()

	usdt := inverseRange(snap.USDTDominance, usdtDomLow, usdtDomHigh)

	var btc float64
	if prev != nil {
		delta := prev.BTCDominance - snap.BTCDominance
		btc = quant.Clamp(50+delta*btcDeltaGain, 0, 100)
	} else {
		btc = inverseRange(snap.BTCDominance, btcDomLow, btcDomHigh)
	}

	alt := quant.NeutralScore
	if snap.TotalMarketCap > 0 {
		share := snap.AltMarketCap / snap.TotalMarketCap * 100
		alt = forwardRange(share, altShareLow, altShareHi)
	}

	return usdtLegWeight*usdt + btcLegWeight*btc + altLegWeight*alt
}

// Prev returns the retained prior snapshot, if any.
func (t *RotationTracker) Prev() *models.DominanceSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prev == nil {
		return nil
	}
	s := *t.prev
	return &s
}

// forwardRange maps v linearly over [lo,hi] to 0-100, clamped.
func forwardRange(v, lo, hi float64) float64 {
	return quant.Clamp((v-lo)/(hi-lo)*100, 0, 100)
}

// inverseRange maps v over [lo,hi] to 100-0, clamped.
func inverseRange(v, lo, hi float64) float64 {
	return quant.Clamp((hi-v)/(hi-lo)*100, 0, 100)
}
