package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// Timeframe represents bar resolution buckets.
type Timeframe string

const (
	TF1m Timeframe = "1m"
	TF1h Timeframe = "1h"
	TF1d Timeframe = "1d"
)

// BarStore provides read-only access to OHLCV bars for analytics.
type BarStore interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Bar, error)
}

// SentimentStore provides access to the ingested base sentiment series.
type SentimentStore interface {
	GetSentiment(ctx context.Context, from, to time.Time) ([]models.SentimentPoint, error)
	StoreSentiment(ctx context.Context, p models.SentimentPoint) error
}
