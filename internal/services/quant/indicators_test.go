package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func dailyBars(start time.Time, closes []float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return out
}

var testStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSMA(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5}
	require.InDelta(t, 4.0, SMA(vals, 3), 1e-9)
	// Insufficient history degrades to the last value.
	require.InDelta(t, 5.0, SMA(vals, 10), 1e-9)
	require.Equal(t, 0.0, SMA(nil, 3))
}

func TestEMASeedAndRecurrence(t *testing.T) {
	// Constant series stays at the seed.
	require.InDelta(t, 7.0, EMA([]float64{7, 7, 7, 7}, 3), 1e-9)

	// Hand-rolled recurrence: seed 10, k = 2/(3+1) = 0.5.
	got := EMA([]float64{10, 20}, 3)
	require.InDelta(t, 15.0, got, 1e-9)
}

func TestRSISeriesRequiresWarmup(t *testing.T) {
	bars := dailyBars(testStart, []float64{1, 2, 3})
	require.Nil(t, RSISeries(bars, 14))
	require.Equal(t, NeutralScore, LatestRSI(bars, 14))
}

func TestRSIAllIncreasing(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	series := RSISeries(dailyBars(testStart, closes), DefaultRSIPeriod)
	require.NotEmpty(t, series)
	// No losses anywhere: RSI pegs at 100 after warm-up.
	for _, p := range series {
		require.InDelta(t, 100.0, p.Value, 1e-9)
	}
}

func TestRSIAllDecreasing(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	series := RSISeries(dailyBars(testStart, closes), DefaultRSIPeriod)
	require.NotEmpty(t, series)
	for _, p := range series {
		require.InDelta(t, 0.0, p.Value, 1e-9)
	}
}

func TestRSIBounds(t *testing.T) {
	closes := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41,
		46.22, 45.64, 46.21, 46.25, 45.71, 46.45, 45.78, 45.35, 44.03, 44.18,
		44.22, 44.57, 43.42, 42.66, 43.13}
	series := RSISeries(dailyBars(testStart, closes), DefaultRSIPeriod)
	require.Len(t, series, len(closes)-DefaultRSIPeriod)
	for _, p := range series {
		require.GreaterOrEqual(t, p.Value, 0.0)
		require.LessOrEqual(t, p.Value, 100.0)
	}
}

func TestRSIUnsortedInput(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := dailyBars(testStart, closes)
	// Shuffle by reversing; the series must re-sort before computing.
	rev := make([]models.Bar, len(bars))
	for i, b := range bars {
		rev[len(bars)-1-i] = b
	}
	sorted := RSISeries(bars, DefaultRSIPeriod)
	shuffled := RSISeries(rev, DefaultRSIPeriod)
	require.Equal(t, sorted, shuffled)
}
