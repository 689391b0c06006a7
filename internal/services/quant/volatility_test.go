package quant

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func TestLogReturns(t *testing.T) {
	rets := LogReturns([]float64{100, 110, 99})
	require.Len(t, rets, 2)
	require.InDelta(t, math.Log(1.1), rets[0], 1e-12)
	require.InDelta(t, math.Log(0.9), rets[1], 1e-12)

	require.Nil(t, LogReturns([]float64{100}))
	// Non-positive closes yield zero returns, not NaN.
	rets = LogReturns([]float64{100, 0, 50})
	require.Equal(t, []float64{0, 0}, rets)
}

func TestRollingStdBesselCorrected(t *testing.T) {
	// Sample stddev of {2,4,4,4,5,5,7,9} with n-1 is ~2.138.
	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	require.InDelta(t, 2.13809, RollingStd(vals, 8), 1e-4)
	require.Equal(t, 0.0, RollingStd(vals, 1))
	require.Equal(t, 0.0, RollingStd(vals[:3], 8))
}

func TestVolatilityRegimeRequiresHistory(t *testing.T) {
	closes := make([]float64, MinVolatilityBars-1)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	require.False(t, VolatilityRegime(dailyBars(testStart, closes)).IsPresent())
}

func TestVolatilityRegimeSteadySeries(t *testing.T) {
	// Constant relative growth leaves only float noise in both windows,
	// which reads neutral.
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 * math.Exp(0.01*float64(i))
	}
	f := VolatilityRegime(dailyBars(testStart, closes))
	v, ok := f.Value()
	require.True(t, ok)
	require.InDelta(t, NeutralScore, v, 1e-9)
}

func TestVolatilityRegimeExpansion(t *testing.T) {
	// Calm history with a violent last week pushes vol7/vol30 over 1.
	closes := make([]float64, 45)
	for i := range closes {
		closes[i] = 100
	}
	for i := 38; i < 45; i++ {
		if i%2 == 0 {
			closes[i] = 130
		} else {
			closes[i] = 80
		}
	}
	f := VolatilityRegime(dailyBars(testStart, closes))
	v, ok := f.Value()
	require.True(t, ok)
	require.Greater(t, v, 80.0)
}

func TestVolatilityRegimeDedupesIntraday(t *testing.T) {
	// Hourly bars within the same day collapse to one observation.
	bars := make([]models.Bar, 0, 35*4)
	for d := 0; d < 35; d++ {
		for h := 0; h < 4; h++ {
			c := 100 + float64(d)
			bars = append(bars, models.Bar{
				Date:  testStart.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour),
				Close: c + float64(h), // intraday noise, last bar wins
			})
		}
	}
	deduped := DedupeDaily(bars)
	require.Len(t, deduped, 35)
	require.InDelta(t, 103.0, deduped[0].Close, 1e-9)
	require.True(t, VolatilityRegime(bars).IsPresent())
}
