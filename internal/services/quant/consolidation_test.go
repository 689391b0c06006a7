package quant

import (
	"testing"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func ohlcBars(prices []float64, spread float64) []models.Bar {
	out := make([]models.Bar, len(prices))
	for i, p := range prices {
		out[i] = models.Bar{
			Date:  testStart.AddDate(0, 0, i),
			Open:  p,
			High:  p + spread,
			Low:   p - spread,
			Close: p,
		}
	}
	return out
}

func TestTrueRanges(t *testing.T) {
	bars := []models.Bar{
		{Date: testStart, High: 105, Low: 95, Close: 100},
		{Date: testStart.AddDate(0, 0, 1), High: 106, Low: 101, Close: 104},
		{Date: testStart.AddDate(0, 0, 2), High: 103, Low: 90, Close: 92},
	}
	tr := TrueRanges(bars)
	require.InDelta(t, 10.0, tr[0], 1e-9) // first bar: high-low
	require.InDelta(t, 6.0, tr[1], 1e-9)  // max(5, |106-100|, |101-100|)
	require.InDelta(t, 14.0, tr[2], 1e-9) // max(13, |103-104|, |90-104|)
}

func TestFlatSeriesDetectedAsOneRange(t *testing.T) {
	// A perfectly flat series has zero true range everywhere; the envelope
	// never breaks and the trailing stretch is emitted at end of data.
	prices := make([]float64, 35)
	for i := range prices {
		prices[i] = 100
	}
	ranges := DetectConsolidations(ohlcBars(prices, 0), ConsolidationConfig{})
	require.Len(t, ranges, 1)
	r := ranges[0]
	require.InDelta(t, 100.0, r.HighPrice, 1e-9)
	require.InDelta(t, 100.0, r.LowPrice, 1e-9)
	require.True(t, !r.EndDate.Before(r.StartDate))
	require.GreaterOrEqual(t, r.HighPrice, r.LowPrice)
	// 35 bars minus the 20-bar ATR warm-up leaves a 15-bar flat span.
	days := int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
	require.GreaterOrEqual(t, days, DefaultMinConsolidationBars)
}

func TestTrendingSeriesProducesNoRanges(t *testing.T) {
	// A steady trend moves the envelope past the ATR threshold long before
	// minBars accumulate (each bar steps 10 with spread 1).
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 10*float64(i)
	}
	ranges := DetectConsolidations(ohlcBars(prices, 1), ConsolidationConfig{})
	require.Empty(t, ranges)
}

func TestConsolidationAfterTrend(t *testing.T) {
	// 30 trending bars then 20 flat bars: exactly one range over the flat tail.
	prices := make([]float64, 0, 50)
	for i := 0; i < 30; i++ {
		prices = append(prices, 100+5*float64(i))
	}
	for i := 0; i < 20; i++ {
		prices = append(prices, 245)
	}
	ranges := DetectConsolidations(ohlcBars(prices, 0.5), ConsolidationConfig{})
	require.Len(t, ranges, 1)
	require.Equal(t, testStart.AddDate(0, 0, 49), ranges[0].EndDate)
}

func TestConsolidationNonOverlapping(t *testing.T) {
	// Two flat shelves separated by a jump produce disjoint ranges.
	prices := make([]float64, 0, 80)
	for i := 0; i < 25; i++ {
		prices = append(prices, 100+2*float64(i)) // warm-up trend
	}
	for i := 0; i < 15; i++ {
		prices = append(prices, 150)
	}
	prices = append(prices, 400) // break bar
	for i := 0; i < 15; i++ {
		prices = append(prices, 400)
	}
	ranges := DetectConsolidations(ohlcBars(prices, 0.5), ConsolidationConfig{})
	require.GreaterOrEqual(t, len(ranges), 1)
	for i := 1; i < len(ranges); i++ {
		require.True(t, ranges[i].StartDate.After(ranges[i-1].EndDate))
	}
}

func TestConsolidationRequiresWarmup(t *testing.T) {
	prices := make([]float64, DefaultATRWindow)
	for i := range prices {
		prices[i] = 100
	}
	require.Nil(t, DetectConsolidations(ohlcBars(prices, 0), ConsolidationConfig{}))
}
