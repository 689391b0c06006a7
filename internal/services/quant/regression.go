package quant

import (
	"errors"
	"math"

	"CoinPulse/internal/domain/models"
)

const (
	// MinRegressionBars is the minimum history for a log-channel fit.
	MinRegressionBars = 20
	// DefaultBarsPerYear annualizes the slope at daily-equivalent cadence.
	// Per-asset configuration overrides this for 24/7 markets.
	DefaultBarsPerYear = 252.0
	// DegenerateSigma is the residual-σ floor below which a fit is treated as
	// exact. A perfect exponential still carries ~1e-15 of float noise, so an
	// exact zero check never fires.
	DegenerateSigma = 1e-9
)

// ErrDegenerateFit signals a zero OLS denominator (no spread in x).
var ErrDegenerateFit = errors.New("degenerate regression fit")

// FitLogChannel fits ordinary least squares of ln(close) against the integer
// bar index and derives ±1σ/±2σ bands in log space, exponentiated back to
// price space. Bars are re-sorted ascending; at least MinRegressionBars are
// required. barsPerYear <= 0 falls back to DefaultBarsPerYear.
func FitLogChannel(bars []models.Bar, barsPerYear float64) (*models.RegressionChannel, error) {
	if len(bars) < MinRegressionBars {
		return nil, errors.New("not enough bars for regression")
	}
	if barsPerYear <= 0 {
		barsPerYear = DefaultBarsPerYear
	}
	sorted := SortedBars(bars)

	n := float64(len(sorted))
	var sumX, sumY, sumXY, sumX2 float64
	logs := make([]float64, len(sorted))
	for i, b := range sorted {
		x := float64(i)
		y := math.Log(b.Close)
		logs[i] = y
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil, ErrDegenerateFit
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	// Residual moments: population variance in log space.
	meanY := sumY / n
	var ssRes, ssTot, resSum float64
	residuals := make([]float64, len(sorted))
	for i, y := range logs {
		fit := intercept + slope*float64(i)
		r := y - fit
		residuals[i] = r
		resSum += r
		ssTot += (y - meanY) * (y - meanY)
	}
	resMean := resSum / n
	var resVar float64
	for _, r := range residuals {
		d := r - resMean
		resVar += d * d
		ssRes += r * r
	}
	resVar /= n
	sigma := math.Sqrt(resVar)

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = Clamp(1-ssRes/ssTot, 0, 1)
	}

	flat := sigma < DegenerateSigma
	points := make([]models.RegressionPoint, len(sorted))
	for i, b := range sorted {
		fit := intercept + slope*float64(i)
		p := models.RegressionPoint{
			Date:        b.Date,
			Close:       b.Close,
			FittedPrice: math.Exp(fit),
			UpperBand:   math.Exp(fit + 2*sigma),
			LowerBand:   math.Exp(fit - 2*sigma),
			UpperMid:    math.Exp(fit + sigma),
			LowerMid:    math.Exp(fit - sigma),
		}
		if flat {
			p.Zone = models.ZoneFair
		} else {
			p.Zone = classifyZone(b.Close, p)
		}
		points[i] = p
	}

	return &models.RegressionChannel{
		Points:               points,
		Slope:                slope,
		Intercept:            intercept,
		RSquared:             rSquared,
		StandardDeviation:    sigma,
		CurrentZone:          points[len(points)-1].Zone,
		AnnualizedGrowthRate: math.Exp(slope*barsPerYear) - 1,
	}, nil
}

// classifyZone walks the five-way threshold ladder bottom-up.
func classifyZone(price float64, p models.RegressionPoint) models.Zone {
	switch {
	case price <= p.LowerBand:
		return models.ZoneDeepValue
	case price <= p.LowerMid:
		return models.ZoneValue
	case price <= p.UpperMid:
		return models.ZoneFair
	case price <= p.UpperBand:
		return models.ZoneElevated
	default:
		return models.ZoneOverextended
	}
}

// RiskPlacement maps a price onto [0,1] by its log-space position inside the
// channel's ±2σ band at the given point: 0 at the lower band, 1 at the upper.
// A flat channel (σ below DegenerateSigma) reads as mid-band.
func RiskPlacement(price float64, point models.RegressionPoint, sigma float64) float64 {
	if sigma < DegenerateSigma || price <= 0 {
		return 0.5
	}
	logFit := math.Log(point.FittedPrice)
	pos := (math.Log(price) - (logFit - 2*sigma)) / (4 * sigma)
	return Clamp(pos, 0, 1)
}
