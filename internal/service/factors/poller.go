package factors

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/services/regime"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// PollerConfig carries the upstream endpoints. Empty URLs disable the
// corresponding source; its factor simply stays absent.
type PollerConfig struct {
	FundingURL   string
	DominanceURL string
	SentimentURL string
	AltseasonURL string
	AttentionURL string
	Interval     time.Duration
	Timeout      time.Duration
}

// Poller periodically fetches external factor readings over HTTP and folds
// them into the factor cache. Each source fails independently.
type Poller struct {
	cfg      PollerConfig
	client   *xhttp.Client
	cache    *Cache
	rotation *regime.RotationTracker
	sink     domrepo.SentimentStore
	l        *applogger.Logger
}

func NewPoller(cfg PollerConfig, cache *Cache, rotation *regime.RotationTracker, sink domrepo.SentimentStore, l *applogger.Logger) *Poller {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Poller{
		cfg:      cfg,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cache:    cache,
		rotation: rotation,
		sink:     sink,
		l:        l,
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	p.PollOnce(ctx)
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce fetches every configured source once.
func (p *Poller) PollOnce(ctx context.Context) {
	var snap models.FactorSnapshot

	if p.cfg.FundingURL != "" {
		var body struct {
			Rate float64 `json:"rate"`
		}
		if err := p.getJSON(ctx, p.cfg.FundingURL, &body); err != nil {
			p.warn("funding", err)
		} else {
			snap.FundingRate = models.Present(body.Rate)
		}
	}

	if p.cfg.DominanceURL != "" {
		var body struct {
			BTCDominance   float64 `json:"btc_dominance"`
			USDTDominance  float64 `json:"usdt_dominance"`
			AltMarketCap   float64 `json:"alt_market_cap"`
			TotalMarketCap float64 `json:"total_market_cap"`
		}
		if err := p.getJSON(ctx, p.cfg.DominanceURL, &body); err != nil {
			p.warn("dominance", err)
		} else {
			d := models.DominanceSnapshot{
				BTCDominance:   body.BTCDominance,
				USDTDominance:  body.USDTDominance,
				AltMarketCap:   body.AltMarketCap,
				TotalMarketCap: body.TotalMarketCap,
			}
			snap.Dominance = &d
			p.cache.SetRotation(p.rotation.Score(d))
		}
	}

	if p.cfg.AltseasonURL != "" {
		var body struct {
			Index float64 `json:"index"`
		}
		if err := p.getJSON(ctx, p.cfg.AltseasonURL, &body); err != nil {
			p.warn("altseason", err)
		} else {
			snap.AltseasonIdx = models.Present(body.Index)
		}
	}

	if p.cfg.AttentionURL != "" {
		var body struct {
			AppStore float64 `json:"app_store"`
			Search   float64 `json:"search"`
		}
		if err := p.getJSON(ctx, p.cfg.AttentionURL, &body); err != nil {
			p.warn("attention", err)
		} else {
			snap.AppStoreScore = models.Present(body.AppStore)
			snap.SearchIdx = models.Present(body.Search)
		}
	}

	p.cache.Update(snap)

	if p.cfg.SentimentURL != "" {
		var body struct {
			Value     float64 `json:"value"`
			Timestamp int64   `json:"timestamp"`
		}
		if err := p.getJSON(ctx, p.cfg.SentimentURL, &body); err != nil {
			p.warn("sentiment", err)
		} else {
			ts := time.Now().UTC()
			if body.Timestamp > 0 {
				ts = time.Unix(body.Timestamp, 0).UTC()
			}
			point := models.SentimentPoint{Date: ts.Truncate(24 * time.Hour), Value: body.Value}
			p.cache.SetSentiment(point)
			if p.sink != nil {
				if err := p.sink.StoreSentiment(ctx, point); err != nil {
					p.warn("sentiment_store", err)
				}
			}
		}
	}
}

func (p *Poller) getJSON(ctx context.Context, url string, dest interface{}) error {
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    url,
	}, dest)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	return nil
}

func (p *Poller) warn(source string, err error) {
	if p.l != nil {
		p.l.Warn("factor poll failed", applogger.String("source", source), applogger.Error(err))
	}
}
