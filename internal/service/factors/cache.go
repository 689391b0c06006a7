package factors

import (
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
)

// Cache holds the latest external factor readings. Factors arrive on their
// own cadence (Kafka updates, HTTP polls) and are read on every risk and
// regime computation, so reads must be cheap and never block on upstreams.
type Cache struct {
	mu        sync.RWMutex
	snap      models.FactorSnapshot
	sentiment models.SentimentPoint
	rotation  models.Factor
	updatedAt time.Time
}

func NewCache() *Cache {
	return &Cache{rotation: models.Absent()}
}

// Snapshot returns the latest factor snapshot. Factors never observed are
// absent and drop out of downstream composites.
func (c *Cache) Snapshot() models.FactorSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Update merges non-absent fields of in over the cached snapshot. A factor
// missing from one upstream payload must not erase a reading delivered by
// another.
func (c *Cache) Update(in models.FactorSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	merge(&c.snap.FundingRate, in.FundingRate)
	merge(&c.snap.AltseasonIdx, in.AltseasonIdx)
	merge(&c.snap.CycleRisk, in.CycleRisk)
	merge(&c.snap.AppStoreScore, in.AppStoreScore)
	merge(&c.snap.SearchIdx, in.SearchIdx)
	if in.Dominance != nil {
		d := *in.Dominance
		c.snap.Dominance = &d
	}
	c.updatedAt = time.Now()
}

func merge(dst *models.Factor, in models.Factor) {
	if in.IsPresent() {
		*dst = in
	}
}

// SetSentiment records the latest base sentiment reading.
func (c *Cache) SetSentiment(p models.SentimentPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sentiment = p
	c.updatedAt = time.Now()
}

// Sentiment returns the latest base sentiment reading and whether one has
// been observed.
func (c *Cache) Sentiment() (models.SentimentPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sentiment, !c.sentiment.Date.IsZero()
}

// SetRotation records the latest capital-rotation sub-signal score.
func (c *Cache) SetRotation(score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotation = models.Present(score)
	c.updatedAt = time.Now()
}

// Rotation returns the latest capital-rotation score.
func (c *Cache) Rotation() models.Factor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rotation
}

// UpdatedAt returns the time of the last write.
func (c *Cache) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}
