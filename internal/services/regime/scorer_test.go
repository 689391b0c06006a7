package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"CoinPulse/internal/domain/models"
)

var scorerDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func TestEmotionGatingCapsGreedDuringExpansion(t *testing.T) {
	// Raw composite 90 with volatility score 85 is gated down to 55.
	require.Equal(t, 55.0, GateEmotion(90, models.Present(85)))
}

func TestEmotionGatingFloorsFearDuringCalm(t *testing.T) {
	require.Equal(t, 45.0, GateEmotion(10, models.Present(10)))
}

func TestEmotionGatingPassThrough(t *testing.T) {
	require.Equal(t, 54.0, GateEmotion(54, models.Present(85))) // already below the cap
	require.Equal(t, 90.0, GateEmotion(90, models.Present(50))) // mid regime, untouched
	require.Equal(t, 90.0, GateEmotion(90, models.Absent()))    // no reading, raw passes
	require.Equal(t, 48.0, GateEmotion(48, models.Present(10))) // above the floor already
}

func TestNowAllFactorsPresent(t *testing.T) {
	s := NewScorer()
	in := Inputs{
		Sentiment:   70,
		VolumeScore: 60,
		Snapshot: models.FactorSnapshot{
			FundingRate:   models.Present(0.0001),
			AltseasonIdx:  models.Present(55),
			CycleRisk:     models.Present(0.6),
			AppStoreScore: models.Present(40),
			SearchIdx:     models.Present(50),
		},
		VolRegime: models.Present(50),
		Rotation:  models.Present(45),
	}
	now := s.Now(scorerDate, in)
	require.Equal(t, scorerDate, now.Point.Date)
	require.ElementsMatch(t, []string{"sentiment", "cycle_risk", "funding", "altseason", "rotation"}, now.EmotionSources)
	require.ElementsMatch(t, []string{"volume", "funding", "app_store", "search", "volatility"}, now.EngagementSources)
	require.GreaterOrEqual(t, now.Point.EmotionScore, 0.0)
	require.LessOrEqual(t, now.Point.EmotionScore, 100.0)
	require.Equal(t, now.Point.Quadrant(), now.Quadrant)
}

func TestNowSparseFactorsRedistribute(t *testing.T) {
	s := NewScorer()
	// Only the always-present signals: each axis collapses to its base input.
	now := s.Now(scorerDate, Inputs{Sentiment: 80, VolumeScore: 30})
	require.InDelta(t, 80.0, now.Point.EmotionScore, 1e-9)
	require.InDelta(t, 30.0, now.Point.EngagementScore, 1e-9)
	require.Equal(t, []string{"sentiment"}, now.EmotionSources)
	require.Equal(t, []string{"volume"}, now.EngagementSources)
	require.Equal(t, models.QuadrantComplacency, now.Quadrant)
}

func TestNowAppliesGating(t *testing.T) {
	s := NewScorer()
	now := s.Now(scorerDate, Inputs{
		Sentiment:   95,
		VolumeScore: 50,
		VolRegime:   models.Present(90),
	})
	require.LessOrEqual(t, now.Point.EmotionScore, 55.0)
}

func TestQuadrants(t *testing.T) {
	tests := []struct {
		emotion, engagement float64
		want                models.RegimeQuadrant
	}{
		{80, 80, models.QuadrantEuphoria},
		{80, 20, models.QuadrantComplacency},
		{20, 80, models.QuadrantAnxiety},
		{20, 20, models.QuadrantApathy},
	}
	for _, tt := range tests {
		p := models.RegimePoint{EmotionScore: tt.emotion, EngagementScore: tt.engagement}
		require.Equal(t, tt.want, p.Quadrant())
	}
}

func TestVolumeScoreNeutralOnFlatVolume(t *testing.T) {
	bars := make([]models.Bar, 40)
	for i := range bars {
		bars[i] = models.Bar{Date: scorerDate.AddDate(0, 0, i), Close: 100, Volume: 5000}
	}
	require.InDelta(t, 50.0, VolumeScore(bars), 1e-9)
	require.InDelta(t, 50.0, VolumeScore(nil), 1e-9)
}

func TestVolumeScoreSpikeReadsHigh(t *testing.T) {
	bars := make([]models.Bar, 40)
	for i := range bars {
		bars[i] = models.Bar{Date: scorerDate.AddDate(0, 0, i), Close: 100, Volume: 1000}
	}
	bars[39].Volume = 5000
	require.Greater(t, VolumeScore(bars), 90.0)
}

func TestTrajectoryUsesBaseSignalsOnly(t *testing.T) {
	bars := make([]models.Bar, 45)
	for i := range bars {
		bars[i] = models.Bar{Date: scorerDate.AddDate(0, 0, i), Close: 100, Volume: 2000}
	}
	sentiments := []models.SentimentPoint{
		{Date: scorerDate.AddDate(0, 0, 35), Value: 95}, // extreme greed stays ungated
		{Date: scorerDate.AddDate(0, 0, 44), Value: 12},
	}
	s := NewScorer()
	points := s.Trajectory(sentiments, bars)
	require.Len(t, points, 2)
	require.InDelta(t, 95.0, points[0].EmotionScore, 1e-9)
	require.InDelta(t, 12.0, points[1].EmotionScore, 1e-9)
	// Flat volume history reads neutral engagement throughout.
	require.InDelta(t, 50.0, points[0].EngagementScore, 1e-9)
}
