package quant

import (
	"math"

	"CoinPulse/internal/domain/models"
)

const (
	volShortWindow = 7
	volLongWindow  = 30
	// MinVolatilityBars is the distinct daily closes needed for the regime
	// score: the 30-observation window plus one to form the first return.
	MinVolatilityBars = 31

	daysPerYear = 365.0

	// volNoiseFloor is the annualized-σ floor below which the long window is
	// treated as flat. A constant-growth series leaves ~1e-16 of float noise
	// in the returns, so an exact zero check misses it.
	volNoiseFloor = 1e-9
)

// LogReturns computes r_t = ln(C_t / C_{t-1}) over consecutive closes.
// Non-positive closes contribute a zero return rather than NaN.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev, cur := closes[i-1], closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// RollingStd is the Bessel-corrected sample standard deviation of the last
// window observations. Too little data yields zero.
func RollingStd(values []float64, window int) float64 {
	if window <= 1 || len(values) < window {
		return 0
	}
	tail := values[len(values)-window:]
	var sum float64
	for _, v := range tail {
		sum += v
	}
	mean := sum / float64(window)
	var variance float64
	for _, v := range tail {
		d := v - mean
		variance += d * d
	}
	variance /= float64(window - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// VolatilityRegime derives the realized-volatility regime score from daily
// (deduplicated) prices: annualized 7-day over 30-day rolling stddev of log
// returns, sigmoid-normalized around 1.0. It needs at least
// MinVolatilityBars distinct daily closes; fewer yields an absent factor.
// Scores above ~80 read as expansion/crash, below ~20 as compression.
func VolatilityRegime(bars []models.Bar) models.Factor {
	daily := DedupeDaily(bars)
	if len(daily) < MinVolatilityBars {
		return models.Absent()
	}
	returns := LogReturns(Closes(daily))

	vol7 := RollingStd(returns, volShortWindow) * math.Sqrt(daysPerYear)
	vol30 := RollingStd(returns, volLongWindow) * math.Sqrt(daysPerYear)
	if vol30 < volNoiseFloor {
		return models.Present(NeutralScore)
	}
	return models.Present(SigmoidNormalize(vol7/vol30, 1.0, DefaultSigmoidK))
}
