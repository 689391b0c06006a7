package factors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func TestCacheStartsEmpty(t *testing.T) {
	c := NewCache()

	snap := c.Snapshot()
	require.False(t, snap.FundingRate.IsPresent())
	require.False(t, snap.AltseasonIdx.IsPresent())
	require.Nil(t, snap.Dominance)
	require.False(t, c.Rotation().IsPresent())

	_, ok := c.Sentiment()
	require.False(t, ok)
}

func TestCacheUpdateMergesOverExisting(t *testing.T) {
	c := NewCache()
	c.Update(models.FactorSnapshot{
		FundingRate:  models.Present(0.01),
		AltseasonIdx: models.Present(40),
	})

	// A later payload carrying only cycle risk must not erase the
	// funding or altseason readings.
	c.Update(models.FactorSnapshot{CycleRisk: models.Present(0.7)})

	snap := c.Snapshot()
	v, ok := snap.FundingRate.Value()
	require.True(t, ok)
	require.InDelta(t, 0.01, v, 1e-12)
	v, ok = snap.AltseasonIdx.Value()
	require.True(t, ok)
	require.InDelta(t, 40.0, v, 1e-12)
	v, ok = snap.CycleRisk.Value()
	require.True(t, ok)
	require.InDelta(t, 0.7, v, 1e-12)
}

func TestCacheUpdateOverwritesPresentFactor(t *testing.T) {
	c := NewCache()
	c.Update(models.FactorSnapshot{FundingRate: models.Present(0.01)})
	c.Update(models.FactorSnapshot{FundingRate: models.Present(-0.02)})

	v, ok := c.Snapshot().FundingRate.Value()
	require.True(t, ok)
	require.InDelta(t, -0.02, v, 1e-12)
}

func TestCacheDominanceIsCopied(t *testing.T) {
	c := NewCache()
	d := &models.DominanceSnapshot{BTCDominance: 55, USDTDominance: 5}
	c.Update(models.FactorSnapshot{Dominance: d})

	// Mutating the caller's struct must not leak into the cache.
	d.BTCDominance = 99
	require.InDelta(t, 55.0, c.Snapshot().Dominance.BTCDominance, 1e-12)
}

func TestCacheSentimentAndRotation(t *testing.T) {
	c := NewCache()

	c.SetSentiment(models.SentimentPoint{
		Date:  time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		Value: 72,
	})
	p, ok := c.Sentiment()
	require.True(t, ok)
	require.InDelta(t, 72.0, p.Value, 1e-12)

	c.SetRotation(61.5)
	v, ok := c.Rotation().Value()
	require.True(t, ok)
	require.InDelta(t, 61.5, v, 1e-12)

	require.False(t, c.UpdatedAt().IsZero())
}
