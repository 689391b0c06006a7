package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/factors"
	"CoinPulse/internal/services/quant"
	"CoinPulse/internal/services/regime"
	"CoinPulse/internal/services/risk"
)

// AnalyticsUseCase drives the quantitative pipeline: it hydrates the risk
// engine from the bar store and exposes the channel, momentum, risk and
// regime operations behind the HTTP API.
type AnalyticsUseCase struct {
	store     domrepo.BarStore
	sentiment domrepo.SentimentStore
	engine    *risk.Engine
	scorer    *regime.Scorer
	factors   *factors.Cache
}

func NewAnalyticsUseCase(
	store domrepo.BarStore,
	sentiment domrepo.SentimentStore,
	engine *risk.Engine,
	scorer *regime.Scorer,
	fc *factors.Cache,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		store:     store,
		sentiment: sentiment,
		engine:    engine,
		scorer:    scorer,
		factors:   fc,
	}
}

func (uc *AnalyticsUseCase) bars(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) ([]models.Bar, error) {
	bars, err := uc.store.GetLatestNBars(ctx, symbol, n, tf)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return bars, nil
}

// dailyBars loads and pins history into the risk engine so its cache and
// confidence log see the same series the caller computes from.
func (uc *AnalyticsUseCase) dailyBars(ctx context.Context, symbol string, n int) ([]models.Bar, error) {
	if n <= 0 {
		n = defaultBarDepth
	}
	bars, err := uc.bars(ctx, symbol, n, domrepo.TF1d)
	if err != nil {
		return nil, err
	}
	if err := uc.engine.SetHistory(symbol, bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// Channel fits the logarithmic regression channel over the latest n bars.
func (uc *AnalyticsUseCase) Channel(ctx context.Context, symbol string, n int, tf domrepo.Timeframe) (*models.RegressionChannel, error) {
	bars, err := uc.bars(ctx, symbol, n, tf)
	if err != nil {
		return nil, err
	}
	ch, err := quant.FitLogChannel(bars, barsPerYearForTF(tf))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	return ch, nil
}

// RSI returns the Wilder RSI series over the latest n bars of the requested
// timeframe.
func (uc *AnalyticsUseCase) RSI(ctx context.Context, symbol string, n, period int, tf domrepo.Timeframe) ([]models.RSIPoint, error) {
	bars, err := uc.bars(ctx, symbol, n, tf)
	if err != nil {
		return nil, err
	}
	return quant.RSISeries(bars, period), nil
}

// Divergences detects price/RSI divergences over the latest n daily bars.
func (uc *AnalyticsUseCase) Divergences(ctx context.Context, symbol string, n, lookback int) ([]models.Divergence, error) {
	bars, err := uc.bars(ctx, symbol, n, domrepo.TF1d)
	if err != nil {
		return nil, err
	}
	rsi := quant.RSISeries(bars, quant.DefaultRSIPeriod)
	return quant.DetectDivergences(bars, rsi, lookback), nil
}

// Consolidations detects low-range consolidation windows over the latest n
// daily bars.
func (uc *AnalyticsUseCase) Consolidations(ctx context.Context, symbol string, n int) ([]models.ConsolidationRange, error) {
	bars, err := uc.bars(ctx, symbol, n, domrepo.TF1d)
	if err != nil {
		return nil, err
	}
	return quant.DetectConsolidations(bars, quant.ConsolidationConfig{}), nil
}

// RiskHistory returns the per-bar channel placement series.
func (uc *AnalyticsUseCase) RiskHistory(ctx context.Context, symbol string, n int) ([]models.RiskHistoryPoint, error) {
	if _, err := uc.dailyBars(ctx, symbol, n); err != nil {
		return nil, err
	}
	return uc.engine.RiskHistory(symbol)
}

// CurrentRisk returns the cached or freshly computed headline risk level.
func (uc *AnalyticsUseCase) CurrentRisk(ctx context.Context, symbol string, n int) (models.CurrentRisk, error) {
	if _, err := uc.dailyBars(ctx, symbol, n); err != nil {
		return models.CurrentRisk{}, err
	}
	return uc.engine.CurrentRisk(ctx, symbol)
}

// RiskFactors returns the multi-factor composite built from the regression
// risk plus whichever external factors are currently cached.
func (uc *AnalyticsUseCase) RiskFactors(ctx context.Context, symbol string, n int) (models.MultiFactorRiskPoint, error) {
	bars, err := uc.dailyBars(ctx, symbol, n)
	if err != nil {
		return models.MultiFactorRiskPoint{}, err
	}
	snap := uc.factors.Snapshot()
	return uc.engine.MultiFactorRisk(ctx, symbol, snap, quant.VolatilityRegime(bars), uc.factors.Rotation())
}

// RegimeNow computes the live emotion/engagement point.
func (uc *AnalyticsUseCase) RegimeNow(ctx context.Context, symbol string) (models.RegimeNow, error) {
	bars, err := uc.bars(ctx, symbol, regimeHistoryBars, domrepo.TF1d)
	if err != nil {
		return models.RegimeNow{}, err
	}

	in := regime.Inputs{
		Sentiment:   quant.NeutralScore,
		VolumeScore: regime.VolumeScore(bars),
		Snapshot:    uc.factors.Snapshot(),
		VolRegime:   quant.VolatilityRegime(bars),
		Rotation:    uc.factors.Rotation(),
	}
	if sp, ok := uc.factors.Sentiment(); ok {
		in.Sentiment = sp.Value
	}
	return uc.scorer.Now(time.Now().UTC(), in), nil
}

// RegimeTrajectory rebuilds the historical regime path over the last days.
func (uc *AnalyticsUseCase) RegimeTrajectory(ctx context.Context, symbol string, days int) ([]models.RegimePoint, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	sentiments, err := uc.sentiment.GetSentiment(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load sentiment: %w", err)
	}
	// Extra leading bars so the first point has a full volume SMA window.
	bars, err := uc.store.GetBars(ctx, symbol, from.AddDate(0, 0, -45), to, domrepo.TF1d)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	return uc.scorer.Trajectory(sentiments, bars), nil
}

// Overview gathers the headline signals for one asset concurrently. Each
// section fails independently and reports into Errors.
func (uc *AnalyticsUseCase) Overview(ctx context.Context, symbol string, n int) (*models.MarketOverview, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res := &models.MarketOverview{
		Symbol:    symbol,
		Timestamp: time.Now().UTC(),
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 5)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.Channel(ctx, symbol, n, domrepo.TF1d)
		ch <- item{"channel", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.CurrentRisk(ctx, symbol, n)
		ch <- item{"risk", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.Divergences(ctx, symbol, n, quant.DefaultSwingLookback)
		ch <- item{"divergences", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.Consolidations(ctx, symbol, n)
		ch <- item{"consolidations", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.RegimeNow(ctx, symbol)
		ch <- item{"regime", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "channel":
			res.Channel = it.val.(*models.RegressionChannel)
		case "risk":
			v := it.val.(models.CurrentRisk)
			res.Risk = &v
		case "divergences":
			res.Divergences = it.val.([]models.Divergence)
		case "consolidations":
			res.Consolidations = it.val.([]models.ConsolidationRange)
		case "regime":
			v := it.val.(models.RegimeNow)
			res.Regime = &v
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

const (
	// regimeHistoryBars covers the volatility and volume windows with slack.
	regimeHistoryBars = 90
	// defaultBarDepth is the daily history loaded when a caller does not
	// bound it.
	defaultBarDepth = 2000
)

func barsPerYearForTF(tf domrepo.Timeframe) float64 {
	switch tf {
	case domrepo.TF1m:
		return 365 * 24 * 60
	case domrepo.TF1h:
		return 365 * 24
	default:
		return quant.DefaultBarsPerYear
	}
}
