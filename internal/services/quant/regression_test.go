package quant

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func exponentialBars(n int, c, r float64) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = c * math.Exp(r*float64(i))
	}
	return dailyBars(testStart, closes)
}

func TestFitLogChannelPerfectExponential(t *testing.T) {
	ch, err := FitLogChannel(exponentialBars(60, 100, 0.01), DefaultBarsPerYear)
	require.NoError(t, err)

	require.InDelta(t, 1.0, ch.RSquared, 1e-9)
	require.InDelta(t, 0.0, ch.StandardDeviation, 1e-9)
	require.InDelta(t, 0.01, ch.Slope, 1e-9)
	require.InDelta(t, math.Exp(0.01*DefaultBarsPerYear)-1, ch.AnnualizedGrowthRate, 1e-9)

	// A zero-residual fit puts every point exactly on the line: all fair.
	for _, p := range ch.Points {
		require.Equal(t, models.ZoneFair, p.Zone)
	}
	require.Equal(t, models.ZoneFair, ch.CurrentZone)
}

func TestFitLogChannelInsufficientData(t *testing.T) {
	_, err := FitLogChannel(exponentialBars(MinRegressionBars-1, 100, 0.01), 0)
	require.Error(t, err)
}

func TestFitLogChannelBandOrdering(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		// Exponential drift plus deterministic oscillation for spread.
		closes[i] = 100 * math.Exp(0.005*float64(i)+0.08*math.Sin(float64(i)))
	}
	ch, err := FitLogChannel(dailyBars(testStart, closes), DefaultBarsPerYear)
	require.NoError(t, err)
	require.Greater(t, ch.StandardDeviation, 0.0)
	require.GreaterOrEqual(t, ch.RSquared, 0.0)
	require.LessOrEqual(t, ch.RSquared, 1.0)

	for _, p := range ch.Points {
		require.Less(t, p.LowerBand, p.LowerMid)
		require.Less(t, p.LowerMid, p.FittedPrice)
		require.Less(t, p.FittedPrice, p.UpperMid)
		require.Less(t, p.UpperMid, p.UpperBand)
	}
}

func TestZoneBoundaryLadder(t *testing.T) {
	p := models.RegressionPoint{
		FittedPrice: 100,
		LowerBand:   80,
		LowerMid:    90,
		UpperMid:    110,
		UpperBand:   120,
	}
	// Exactly on the lower band classifies deepValue; one unit above is value.
	require.Equal(t, models.ZoneDeepValue, classifyZone(80, p))
	require.Equal(t, models.ZoneValue, classifyZone(81, p))
	require.Equal(t, models.ZoneValue, classifyZone(90, p))
	require.Equal(t, models.ZoneFair, classifyZone(100, p))
	require.Equal(t, models.ZoneElevated, classifyZone(115, p))
	require.Equal(t, models.ZoneOverextended, classifyZone(121, p))
}

func TestRiskPlacement(t *testing.T) {
	sigma := 0.1
	point := models.RegressionPoint{FittedPrice: 100}

	require.InDelta(t, 0.5, RiskPlacement(100, point, sigma), 1e-9)
	require.InDelta(t, 0.0, RiskPlacement(100*math.Exp(-2*sigma), point, sigma), 1e-9)
	require.InDelta(t, 1.0, RiskPlacement(100*math.Exp(2*sigma), point, sigma), 1e-9)
	// Beyond the band clamps.
	require.Equal(t, 1.0, RiskPlacement(100*math.Exp(3*sigma), point, sigma))
	// Flat channel reads mid-band, including float-noise residuals from an
	// exact fit.
	require.Equal(t, 0.5, RiskPlacement(123, point, 0))
	require.Equal(t, 0.5, RiskPlacement(123, point, 1e-15))
}

func TestFitLogChannelDeterministic(t *testing.T) {
	bars := exponentialBars(45, 250, 0.004)
	a, err := FitLogChannel(bars, DefaultBarsPerYear)
	require.NoError(t, err)
	b, err := FitLogChannel(bars, DefaultBarsPerYear)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
