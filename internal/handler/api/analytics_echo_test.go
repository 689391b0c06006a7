package api

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/factors"
	"CoinPulse/internal/services/regime"
	"CoinPulse/internal/services/risk"
	"CoinPulse/internal/usecase"
	xlogger "CoinPulse/pkg/logger"
)

type fixedBarStore struct {
	bars   map[string][]models.Bar
	lastTF domrepo.Timeframe
}

func (s *fixedBarStore) GetBars(_ context.Context, symbol string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Bar, error) {
	return s.bars[symbol], nil
}

func (s *fixedBarStore) GetLatestNBars(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Bar, error) {
	s.lastTF = tf
	bars := s.bars[symbol]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (s *fixedBarStore) GetSentiment(_ context.Context, _, _ time.Time) ([]models.SentimentPoint, error) {
	return nil, nil
}

func (s *fixedBarStore) StoreSentiment(_ context.Context, _ models.SentimentPoint) error {
	return nil
}

func dailyGrowthBars(n int, c, r float64) []models.Bar {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Bar, n)
	for i := range out {
		price := c * math.Exp(r*float64(i))
		out[i] = models.Bar{
			Date: start.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price,
		}
	}
	return out
}

func newTestHandler(t *testing.T, bars map[string][]models.Bar) (*echo.Echo, *fixedBarStore) {
	t.Helper()
	lgr, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	store := &fixedBarStore{bars: bars}
	engine := risk.NewEngine([]risk.AssetConfig{{Symbol: "BTC", DisplayName: "Bitcoin"}})
	uc := usecase.NewAnalyticsUseCase(store, store, engine, regime.NewScorer(), factors.NewCache())

	h := NewAnalyticsEchoHandler(lgr, uc, usecase.NewBarsUseCase(store))
	e := echo.New()
	h.RegisterRoutes(e)
	return e, store
}

func getRisk(e *echo.Echo, symbol string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/risk/current?symbol="+symbol, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCurrentRiskUnknownSymbolNotFound(t *testing.T) {
	e, _ := newTestHandler(t, map[string][]models.Bar{})
	rec := getRisk(e, "DOGE")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentRiskNoHistoryUnprocessable(t *testing.T) {
	e, _ := newTestHandler(t, map[string][]models.Bar{})
	rec := getRisk(e, "BTC")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCurrentRiskShortHistoryUnprocessable(t *testing.T) {
	e, _ := newTestHandler(t, map[string][]models.Bar{
		"BTC": dailyGrowthBars(10, 100, 0.01),
	})
	rec := getRisk(e, "BTC")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRSIQueriesRequestedTimeframe(t *testing.T) {
	e, store := newTestHandler(t, map[string][]models.Bar{
		"BTC": dailyGrowthBars(60, 100, 0.01),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/rsi?symbol=BTC&tf=1h", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domrepo.TF1h, store.lastTF)
}

func TestRSIDefaultsToDailyTimeframe(t *testing.T) {
	e, store := newTestHandler(t, map[string][]models.Bar{
		"BTC": dailyGrowthBars(60, 100, 0.01),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/rsi?symbol=BTC", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domrepo.TF1d, store.lastTF)
}

func TestCurrentRiskFullHistoryOK(t *testing.T) {
	e, _ := newTestHandler(t, map[string][]models.Bar{
		"BTC": dailyGrowthBars(60, 100, 0.01),
	})
	rec := getRisk(e, "BTC")
	require.Equal(t, http.StatusOK, rec.Code)
}
