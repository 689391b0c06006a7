package quant

import (
	"CoinPulse/internal/domain/models"
)

// DefaultRSIPeriod is the standard Wilder RSI period.
const DefaultRSIPeriod = 14

// SMA returns the arithmetic mean of the last period values. With
// insufficient history it degrades to the last value rather than failing.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		return values[len(values)-1]
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA seeds with the first value and applies the standard recurrence
// ema += (v - ema) * 2/(period+1) over the rest, returning the final value.
func EMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 {
		return values[len(values)-1]
	}
	k := 2.0 / (float64(period) + 1.0)
	ema := values[0]
	for _, v := range values[1:] {
		ema = (v-ema)*k + ema
	}
	return ema
}

// RSISeries computes Wilder-smoothed RSI over the bars' closes. The seed
// average gain/loss is the simple mean of the first period changes; after
// that avg = (avg*(period-1) + new) / period. More than period bars are
// required; otherwise the series is nil. RSI is 100 when the average loss is
// zero. Bars are re-sorted ascending before use.
func RSISeries(bars []models.Bar, period int) []models.RSIPoint {
	if period <= 0 || len(bars) <= period {
		return nil
	}
	sorted := SortedBars(bars)
	closes := Closes(sorted)

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	var sumGain, sumLoss float64
	for i := 0; i < period; i++ {
		sumGain += gains[i]
		sumLoss += losses[i]
	}
	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)

	out := make([]models.RSIPoint, 0, len(closes)-period)
	out = append(out, models.RSIPoint{Date: sorted[period].Date, Value: rsiValue(avgGain, avgLoss)})

	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i-1]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i-1]) / float64(period)
		out = append(out, models.RSIPoint{Date: sorted[i].Date, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// LatestRSI returns the most recent RSI value, or the neutral 50 when the
// series is too short to compute one.
func LatestRSI(bars []models.Bar, period int) float64 {
	series := RSISeries(bars, period)
	if len(series) == 0 {
		return NeutralScore
	}
	return series[len(series)-1].Value
}
