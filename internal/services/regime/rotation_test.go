package regime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

func TestRotationFirstSnapshotUsesLevelFallback(t *testing.T) {
	tr := NewRotationTracker()
	// USDT 5.5% is mid-range (50), BTC 55% level inverse is 50,
	// alt share 45% of total is mid-range (50).
	score := tr.Score(models.DominanceSnapshot{
		BTCDominance:   55,
		USDTDominance:  5.5,
		AltMarketCap:   450,
		TotalMarketCap: 1000,
	})
	require.InDelta(t, 50.0, score, 1e-9)
}

func TestRotationBTCRateOfChangeLeg(t *testing.T) {
	tr := NewRotationTracker()
	tr.Score(models.DominanceSnapshot{BTCDominance: 56, USDTDominance: 5.5, AltMarketCap: 450, TotalMarketCap: 1000})

	// BTC dominance fell a full point: the ROC leg reads 50+1*25=75 while
	// the other legs stay neutral.
	score := tr.Score(models.DominanceSnapshot{BTCDominance: 55, USDTDominance: 5.5, AltMarketCap: 450, TotalMarketCap: 1000})
	require.InDelta(t, 0.35*50+0.35*75+0.30*50, score, 1e-9)
}

func TestRotationBTCRateOfChangeClamped(t *testing.T) {
	tr := NewRotationTracker()
	tr.Score(models.DominanceSnapshot{BTCDominance: 60, USDTDominance: 5.5, AltMarketCap: 450, TotalMarketCap: 1000})

	// A 10-point drop saturates the ROC leg at 100.
	score := tr.Score(models.DominanceSnapshot{BTCDominance: 50, USDTDominance: 5.5, AltMarketCap: 450, TotalMarketCap: 1000})
	require.InDelta(t, 0.35*50+0.35*100+0.30*50, score, 1e-9)
}

func TestRotationUSDTLegInverted(t *testing.T) {
	tr := NewRotationTracker()
	// USDT dominance at the low edge reads risk-on (100), alt and BTC neutral.
	score := tr.Score(models.DominanceSnapshot{BTCDominance: 55, USDTDominance: 3, AltMarketCap: 450, TotalMarketCap: 1000})
	require.InDelta(t, 0.35*100+0.35*50+0.30*50, score, 1e-9)

	// Above the high edge clamps to 0.
	tr2 := NewRotationTracker()
	score2 := tr2.Score(models.DominanceSnapshot{BTCDominance: 55, USDTDominance: 9, AltMarketCap: 450, TotalMarketCap: 1000})
	require.InDelta(t, 0.35*0+0.35*50+0.30*50, score2, 1e-9)
}

func TestRotationAltLegNeutralWithoutTotalCap(t *testing.T) {
	tr := NewRotationTracker()
	score := tr.Score(models.DominanceSnapshot{BTCDominance: 55, USDTDominance: 5.5})
	require.InDelta(t, 50.0, score, 1e-9)
}

func TestRotationSlotOverwrite(t *testing.T) {
	tr := NewRotationTracker()
	require.Nil(t, tr.Prev())

	tr.Score(models.DominanceSnapshot{BTCDominance: 60, USDTDominance: 5, AltMarketCap: 400, TotalMarketCap: 1000})
	tr.Score(models.DominanceSnapshot{BTCDominance: 58, USDTDominance: 5, AltMarketCap: 400, TotalMarketCap: 1000})

	prev := tr.Prev()
	require.NotNil(t, prev)
	require.Equal(t, 58.0, prev.BTCDominance)

	// The slot holds the latest snapshot only; the 60% reading is gone and a
	// third score compares against 58.
	score := tr.Score(models.DominanceSnapshot{BTCDominance: 58, USDTDominance: 5, AltMarketCap: 400, TotalMarketCap: 1000})
	usdt := inverseRange(5, 3, 8)
	alt := forwardRange(40, 30, 60)
	require.InDelta(t, 0.35*usdt+0.35*50+0.30*alt, score, 1e-9)
}
