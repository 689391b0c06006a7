package risk

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

var engineStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func growthBars(n int, c, r float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		price := c * math.Exp(r*float64(i))
		out[i] = models.Bar{
			Date: engineStart.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price,
		}
	}
	return out
}

func newTestEngine(opts ...Option) *Engine {
	cfgs := []AssetConfig{{Symbol: "BTC", DisplayName: "Bitcoin"}}
	return NewEngine(cfgs, opts...)
}

type memoryLog struct {
	records []models.ConfidenceRecord
}

func (m *memoryLog) Record(_ context.Context, rec models.ConfidenceRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func TestEngineUnsupportedAsset(t *testing.T) {
	e := newTestEngine()
	err := e.SetHistory("DOGE", growthBars(30, 100, 0.01))
	require.ErrorIs(t, err, ErrUnsupportedAsset)

	_, err = e.RiskHistory("DOGE")
	require.ErrorIs(t, err, ErrUnsupportedAsset)

	_, err = e.CurrentRisk(context.Background(), "DOGE")
	require.ErrorIs(t, err, ErrUnsupportedAsset)
}

func TestEngineNoData(t *testing.T) {
	e := newTestEngine()
	_, err := e.RiskHistory("BTC")
	require.ErrorIs(t, err, ErrNoData)
}

func TestEngineInsufficientData(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetHistory("BTC", growthBars(10, 100, 0.01)))
	_, err := e.CurrentRisk(context.Background(), "BTC")
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRiskHistoryPlacement(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetHistory("BTC", growthBars(60, 100, 0.01)))

	hist, err := e.RiskHistory("BTC")
	require.NoError(t, err)
	require.Len(t, hist, 60)
	for _, p := range hist {
		require.GreaterOrEqual(t, p.RiskLevel, 0.0)
		require.LessOrEqual(t, p.RiskLevel, 1.0)
	}
	// A perfect exponential is flat in log space: every point mid-band.
	require.InDelta(t, 0.5, hist[len(hist)-1].RiskLevel, 1e-9)
}

func TestCurrentRiskCachedWithinWindow(t *testing.T) {
	now := refTime(10, 8, 0)
	clock := func() time.Time { return now }
	log := &memoryLog{}
	e := newTestEngine(WithClock(clock), WithConfidenceLog(log))
	require.NoError(t, e.SetHistory("BTC", growthBars(60, 100, 0.01)))

	first, err := e.CurrentRisk(context.Background(), "BTC")
	require.NoError(t, err)
	require.Len(t, log.records, 1)

	// Later the same window: cached verbatim, no new confidence record.
	now = refTime(10, 16, 59)
	second, err := e.CurrentRisk(context.Background(), "BTC")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, log.records, 1)

	// Past the evening boundary: recomputed.
	now = refTime(10, 17, 1)
	third, err := e.CurrentRisk(context.Background(), "BTC")
	require.NoError(t, err)
	require.True(t, third.ComputedAt.After(first.ComputedAt))
	require.Len(t, log.records, 2)
}

func TestConfidenceRecordContents(t *testing.T) {
	log := &memoryLog{}
	e := newTestEngine(WithConfidenceLog(log))
	require.NoError(t, e.SetHistory("BTC", growthBars(60, 100, 0.01)))

	cur, err := e.CurrentRisk(context.Background(), "BTC")
	require.NoError(t, err)
	require.Len(t, log.records, 1)

	rec := log.records[0]
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "BTC", rec.Symbol)
	require.Equal(t, cur.RSquared, rec.RSquared)
	require.Equal(t, 60, rec.SampleSize)
	require.Equal(t, cur.RiskLevel, rec.RiskLevel)
	require.Equal(t, cur.Price, rec.Price)
}

func TestMultiFactorWeightRedistribution(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetHistory("BTC", growthBars(60, 100, 0.01)))

	// Only the regression factor present: it takes the full weight.
	point, err := e.MultiFactorRisk(context.Background(), "BTC", models.FactorSnapshot{}, models.Absent(), models.Absent())
	require.NoError(t, err)
	require.Len(t, point.Components, 1)
	require.Equal(t, "regression", point.Components[0].Name)
	require.InDelta(t, 1.0, point.Components[0].Weight, 1e-9)
	require.InDelta(t, point.Components[0].Value, point.CompositeScore, 1e-9)
}

func TestMultiFactorAllPresent(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetHistory("BTC", growthBars(60, 100, 0.01)))

	snap := models.FactorSnapshot{
		FundingRate:   models.Present(0.01),
		AltseasonIdx:  models.Present(60),
		AppStoreScore: models.Present(40),
		SearchIdx:     models.Present(55),
	}
	point, err := e.MultiFactorRisk(context.Background(), "BTC", snap, models.Present(70), models.Present(45))
	require.NoError(t, err)
	require.Len(t, point.Components, 7)

	var weightSum float64
	for _, c := range point.Components {
		require.GreaterOrEqual(t, c.Value, 0.0)
		require.LessOrEqual(t, c.Value, 1.0)
		weightSum += c.Weight
	}
	require.InDelta(t, 1.0, weightSum, 1e-9)
	require.GreaterOrEqual(t, point.CompositeScore, 0.0)
	require.LessOrEqual(t, point.CompositeScore, 1.0)
}

func TestEngineDeterministicOutput(t *testing.T) {
	bars := growthBars(80, 200, 0.005)
	run := func() []models.RiskHistoryPoint {
		e := newTestEngine()
		require.NoError(t, e.SetHistory("BTC", bars))
		hist, err := e.RiskHistory("BTC")
		require.NoError(t, err)
		return hist
	}
	require.Equal(t, run(), run())
}

func TestAppendBarsKeepsOrder(t *testing.T) {
	e := newTestEngine()
	bars := growthBars(40, 100, 0.01)
	require.NoError(t, e.SetHistory("BTC", bars[20:]))
	require.NoError(t, e.AppendBars("BTC", bars[:20]...))

	hist, err := e.RiskHistory("BTC")
	require.NoError(t, err)
	require.Len(t, hist, 40)
	for i := 1; i < len(hist); i++ {
		require.True(t, hist[i].Date.After(hist[i-1].Date))
	}
}
