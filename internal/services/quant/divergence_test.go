package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

// twoPeakBars builds a daily series with swing highs at the given day offsets
// and peak prices; everything else sits at base.
func twoPeakBars(days int, base float64, peaks map[int]float64) []models.Bar {
	out := make([]models.Bar, days)
	for i := 0; i < days; i++ {
		price := base
		if p, ok := peaks[i]; ok {
			price = p
		}
		out[i] = models.Bar{
			Date:  testStart.AddDate(0, 0, i),
			Open:  price,
			High:  price,
			Low:   price - 1,
			Close: price,
		}
	}
	return out
}

func rsiAt(days []int, values []float64) []models.RSIPoint {
	out := make([]models.RSIPoint, len(days))
	for i, d := range days {
		out[i] = models.RSIPoint{Date: testStart.AddDate(0, 0, d), Value: values[i]}
	}
	return out
}

func TestSwingHighsStrictDominance(t *testing.T) {
	bars := twoPeakBars(40, 100, map[int]float64{10: 120, 30: 130})
	highs := SwingHighs(bars, DefaultSwingLookback)
	require.Len(t, highs, 2)
	require.Equal(t, 10, highs[0].Index)
	require.Equal(t, 30, highs[1].Index)

	// Too short a series for the symmetric lookback yields nothing.
	require.Nil(t, SwingHighs(bars[:2*DefaultSwingLookback], DefaultSwingLookback))
}

func TestSwingLows(t *testing.T) {
	bars := twoPeakBars(40, 100, map[int]float64{15: 80})
	lows := SwingLows(bars, DefaultSwingLookback)
	require.Len(t, lows, 1)
	require.Equal(t, 15, lows[0].Index)
	require.InDelta(t, 79.0, lows[0].Price, 1e-9) // Low = price-1
}

func TestBearishDivergenceFlagged(t *testing.T) {
	// Swing highs ~day 10 (price 100, RSI 70) and ~day 40 (price 110, RSI 60):
	// price up, RSI down, later RSI > 55, gap in [3,365]: bearish.
	bars := twoPeakBars(50, 90, map[int]float64{10: 100, 40: 110})
	rsi := rsiAt([]int{10, 40}, []float64{70, 60})

	divs := DetectDivergences(bars, rsi, DefaultSwingLookback)
	require.Len(t, divs, 1)
	d := divs[0]
	require.Equal(t, models.DivergenceBearish, d.Type)
	require.True(t, d.EndDate.After(d.StartDate))
	require.Greater(t, d.PriceEnd, d.PriceStart)
	require.Less(t, d.RSIEnd, d.RSIStart)
}

func TestBearishDivergenceRSIFloor(t *testing.T) {
	// Same geometry but the later RSI is 30: fails the >55 requirement.
	bars := twoPeakBars(50, 90, map[int]float64{10: 100, 40: 110})
	rsi := rsiAt([]int{10, 40}, []float64{60, 30})
	require.Empty(t, DetectDivergences(bars, rsi, DefaultSwingLookback))
}

func TestBullishDivergenceFlagged(t *testing.T) {
	// Swing lows: later price lower, later RSI higher and below 45.
	bars := twoPeakBars(50, 100, map[int]float64{10: 80, 40: 70})
	rsi := rsiAt([]int{10, 40}, []float64{25, 40})

	divs := DetectDivergences(bars, rsi, DefaultSwingLookback)
	require.Len(t, divs, 1)
	require.Equal(t, models.DivergenceBullish, divs[0].Type)
}

func TestDivergenceGapBounds(t *testing.T) {
	// Swings two days apart: below the 3-day minimum gap.
	bars := make([]models.Bar, 0, 30)
	for i := 0; i < 30; i++ {
		price := 90.0
		switch i {
		case 12:
			price = 100
		case 14:
			price = 110
		}
		bars = append(bars, models.Bar{
			Date: testStart.AddDate(0, 0, i), High: price, Low: price - 1, Close: price,
		})
	}
	rsi := rsiAt([]int{12, 14}, []float64{70, 60})
	require.Empty(t, DetectDivergences(bars, rsi, 1))
}

func TestDivergenceDayFallbackLookup(t *testing.T) {
	// RSI stamped at a different intraday time than the bar still resolves
	// through the calendar-day fallback.
	bars := twoPeakBars(50, 90, map[int]float64{10: 100, 40: 110})
	rsi := []models.RSIPoint{
		{Date: testStart.AddDate(0, 0, 10).Add(7 * time.Hour), Value: 70},
		{Date: testStart.AddDate(0, 0, 40).Add(7 * time.Hour), Value: 60},
	}
	divs := DetectDivergences(bars, rsi, DefaultSwingLookback)
	require.Len(t, divs, 1)
	require.Equal(t, models.DivergenceBearish, divs[0].Type)
}

func TestDivergenceOutputCap(t *testing.T) {
	// Alternating peaks with falling RSI on rising prices produce a stream of
	// bearish signals; only the most recent five survive, chronological.
	days := 400
	bars := make([]models.Bar, days)
	peakRSI := make([]models.RSIPoint, 0)
	rsiVal := 95.0
	price := 100.0
	for i := 0; i < days; i++ {
		p := 50.0
		if i%10 == 5 {
			price += 5
			rsiVal -= 1
			p = price
			peakRSI = append(peakRSI, models.RSIPoint{Date: testStart.AddDate(0, 0, i), Value: rsiVal})
		}
		bars[i] = models.Bar{Date: testStart.AddDate(0, 0, i), High: p, Low: p - 1, Close: p}
	}
	divs := DetectDivergences(bars, peakRSI, 4)
	require.Len(t, divs, MaxDivergences)
	for i := 1; i < len(divs); i++ {
		require.True(t, divs[i].EndDate.After(divs[i-1].EndDate))
	}
}
