package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
)

type stubBarStore struct {
	bars []models.Bar
	err  error

	gotSymbol string
	gotTF     domrepo.Timeframe
	gotN      int
}

func (s *stubBarStore) GetBars(_ context.Context, symbol string, _, _ time.Time, tf domrepo.Timeframe) ([]models.Bar, error) {
	s.gotSymbol = symbol
	s.gotTF = tf
	return s.bars, s.err
}

func (s *stubBarStore) GetLatestNBars(_ context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Bar, error) {
	s.gotSymbol = symbol
	s.gotN = n
	s.gotTF = tf
	return s.bars, s.err
}

func dailyTestBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = models.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

func TestGetBarsRequiresSymbol(t *testing.T) {
	uc := NewBarsUseCase(&stubBarStore{})
	_, err := uc.GetBars(context.Background(), GetBarsParams{
		To: time.Now(),
	})
	require.Error(t, err)
}

func TestGetBarsRejectsInvertedRange(t *testing.T) {
	uc := NewBarsUseCase(&stubBarStore{})
	now := time.Now()
	_, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol: "BTCUSDT",
		From:   now,
		To:     now.Add(-time.Hour),
	})
	require.Error(t, err)
}

func TestGetBarsTruncatesToLimit(t *testing.T) {
	store := &stubBarStore{bars: dailyTestBars(30)}
	uc := NewBarsUseCase(store)

	res, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "BTCUSDT",
		From:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Timeframe: domrepo.TF1d,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, res.Count)
	require.Len(t, res.Bars, 10)
	require.Equal(t, "BTCUSDT", store.gotSymbol)
	require.Equal(t, domrepo.TF1d, store.gotTF)
}

func TestGetBarsDefaultsLimit(t *testing.T) {
	store := &stubBarStore{bars: dailyTestBars(5)}
	uc := NewBarsUseCase(store)

	res, err := uc.GetBars(context.Background(), GetBarsParams{
		Symbol:    "ETHUSDT",
		From:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Timeframe: domrepo.TF1h,
	})
	require.NoError(t, err)
	require.Equal(t, 5, res.Count)
	require.Equal(t, "1h", res.Timeframe)
}
