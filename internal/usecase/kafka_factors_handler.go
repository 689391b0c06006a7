package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/factors"
	"CoinPulse/internal/services/regime"
	pkgkafka "CoinPulse/pkg/kafka"
)

// KafkaFactorsHandler consumes external factor updates and folds them into
// the factor cache. Every field is optional; whatever a message carries is
// merged over the cached snapshot.
type KafkaFactorsHandler struct {
	topic     string
	cache     *factors.Cache
	rotation  *regime.RotationTracker
	sentiment domrepo.SentimentStore
	metrics   domrepo.Metrics
}

func NewKafkaFactorsHandler(topic string, cache *factors.Cache, rotation *regime.RotationTracker, sentiment domrepo.SentimentStore, metrics domrepo.Metrics) *KafkaFactorsHandler {
	return &KafkaFactorsHandler{topic: topic, cache: cache, rotation: rotation, sentiment: sentiment, metrics: metrics}
}

func (h *KafkaFactorsHandler) Topic() string { return h.topic }

type factorMessage struct {
	FundingRate *float64 `json:"funding_rate,omitempty"`
	Altseason   *float64 `json:"altseason,omitempty"`
	CycleRisk   *float64 `json:"cycle_risk,omitempty"`
	AppStore    *float64 `json:"app_store,omitempty"`
	Search      *float64 `json:"search,omitempty"`
	Sentiment   *float64 `json:"sentiment,omitempty"`
	T           int64    `json:"t,omitempty"`
	Dominance   *struct {
		BTC      float64 `json:"btc"`
		USDT     float64 `json:"usdt"`
		AltCap   float64 `json:"alt_cap"`
		TotalCap float64 `json:"total_cap"`
	} `json:"dominance,omitempty"`
}

func (h *KafkaFactorsHandler) Handle(ctx context.Context, b []byte) error {
	var m factorMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("factors_unmarshal")
		return err
	}

	var snap models.FactorSnapshot
	if m.FundingRate != nil {
		snap.FundingRate = models.Present(*m.FundingRate)
	}
	if m.Altseason != nil {
		snap.AltseasonIdx = models.Present(*m.Altseason)
	}
	if m.CycleRisk != nil {
		snap.CycleRisk = models.Present(*m.CycleRisk)
	}
	if m.AppStore != nil {
		snap.AppStoreScore = models.Present(*m.AppStore)
	}
	if m.Search != nil {
		snap.SearchIdx = models.Present(*m.Search)
	}
	if m.Dominance != nil {
		d := models.DominanceSnapshot{
			BTCDominance:   m.Dominance.BTC,
			USDTDominance:  m.Dominance.USDT,
			AltMarketCap:   m.Dominance.AltCap,
			TotalMarketCap: m.Dominance.TotalCap,
		}
		snap.Dominance = &d
		h.cache.SetRotation(h.rotation.Score(d))
	}
	h.cache.Update(snap)

	if m.Sentiment != nil {
		ts := time.Now().UTC()
		if m.T > 0 {
			if m.T > 1e11 { // ms
				m.T = m.T / 1000
			}
			ts = time.Unix(m.T, 0).UTC()
		}
		point := models.SentimentPoint{Date: ts.Truncate(24 * time.Hour), Value: *m.Sentiment}
		h.cache.SetSentiment(point)
		if h.sentiment != nil {
			if err := h.sentiment.StoreSentiment(ctx, point); err != nil {
				h.metrics.RecordError("sentiment_store")
				return err
			}
		}
	}

	h.metrics.RecordMessageSent("factors", "")
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaFactorsHandler)(nil)
