package quant

import (
	"math"

	"CoinPulse/internal/domain/models"
)

const (
	// DefaultATRWindow is the trailing true-range window sizing the threshold.
	DefaultATRWindow = 20
	// DefaultATRMultiplier scales ATR into the flat-range threshold.
	DefaultATRMultiplier = 1.5
	// DefaultMinConsolidationBars is the minimum span worth reporting.
	DefaultMinConsolidationBars = 10
)

// ConsolidationConfig tunes the flat-range detector. Zero values fall back to
// the defaults.
type ConsolidationConfig struct {
	ATRWindow  int
	Multiplier float64
	MinBars    int
}

func (c ConsolidationConfig) withDefaults() ConsolidationConfig {
	if c.ATRWindow <= 0 {
		c.ATRWindow = DefaultATRWindow
	}
	if c.Multiplier <= 0 {
		c.Multiplier = DefaultATRMultiplier
	}
	if c.MinBars <= 0 {
		c.MinBars = DefaultMinConsolidationBars
	}
	return c
}

// TrueRanges computes the per-bar true range
// max(high-low, |high-prevClose|, |low-prevClose|); the first bar has no
// previous close and uses high-low.
func TrueRanges(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		out[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}
	return out
}

// DetectConsolidations finds non-overlapping flat ranges in a daily series.
// Bars are deduped to one per calendar day; more than the ATR window of bars
// is required. A range starts where the running high/low envelope stays
// within ATR×multiplier; the envelope is emitted once it breaks (or the
// series ends) with at least minBars inside, otherwise scanning advances one
// bar and the ATR threshold is recomputed at the new start.
func DetectConsolidations(bars []models.Bar, cfg ConsolidationConfig) []models.ConsolidationRange {
	cfg = cfg.withDefaults()
	daily := DedupeDaily(bars)
	if len(daily) <= cfg.ATRWindow {
		return nil
	}
	tr := TrueRanges(daily)

	var out []models.ConsolidationRange
	start := cfg.ATRWindow
	for start < len(daily) {
		var sum float64
		for _, v := range tr[start-cfg.ATRWindow : start] {
			sum += v
		}
		threshold := (sum / float64(cfg.ATRWindow)) * cfg.Multiplier

		hi := daily[start].High
		lo := daily[start].Low
		if hi-lo > threshold {
			start++
			continue
		}
		end := start
		for j := start + 1; j < len(daily); j++ {
			nh := math.Max(hi, daily[j].High)
			nl := math.Min(lo, daily[j].Low)
			if nh-nl > threshold {
				break
			}
			hi, lo = nh, nl
			end = j
		}

		if end-start+1 >= cfg.MinBars {
			out = append(out, models.ConsolidationRange{
				StartDate: daily[start].Date,
				EndDate:   daily[end].Date,
				HighPrice: hi,
				LowPrice:  lo,
			})
			start = end + 1
			continue
		}
		start++
	}
	return out
}
