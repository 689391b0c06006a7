package risk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/quant"
	applogger "CoinPulse/pkg/logger"
)

// Data-availability failures are typed and distinct; callers match with
// errors.Is. Numeric degenerate cases never surface here.
var (
	ErrUnsupportedAsset = errors.New("unsupported asset")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNoData           = errors.New("no data available")
)

// AssetConfig is the per-asset model configuration.
type AssetConfig struct {
	Symbol      string
	DisplayName string
	BarsPerYear float64 // 0 falls back to quant.DefaultBarsPerYear
	MinBars     int     // 0 falls back to quant.MinRegressionBars
}

func (c AssetConfig) minBars() int {
	if c.MinBars > 0 {
		return c.MinBars
	}
	return quant.MinRegressionBars
}

// ConfidenceLog receives one record per risk recomputation. Implementations
// persist them for offline prediction-accuracy analysis; recording never
// feeds back into the computation.
type ConfidenceLog interface {
	Record(ctx context.Context, rec models.ConfidenceRecord) error
}

// DefaultFactorWeights are the calibrated composite weights. They are
// configuration, not an algorithmic invariant; the engine normalizes over
// present factors regardless.
var DefaultFactorWeights = models.RiskFactorWeights{
	Regression:      30,
	Funding:         15,
	Volatility:      15,
	AppStore:        10,
	Search:          10,
	AltcoinSeason:   10,
	CapitalRotation: 10,
}

// Engine computes regression-based and multi-factor risk per supported
// asset. History is supplied by collaborators and replaced or appended
// wholesale. The refresh cache is the engine's only time-dependent state;
// all access runs under one mutex so concurrent callers cannot duplicate a
// refit or race a stale overwrite.
type Engine struct {
	mu      sync.Mutex
	cfgs    map[string]AssetConfig
	history map[string][]models.Bar
	cache   map[string]cachedRisk

	weights models.RiskFactorWeights
	log     ConfidenceLog
	l       *applogger.Logger
	now     func() time.Time
}

type cachedRisk struct {
	value      models.CurrentRisk
	computedAt time.Time
}

// Option customizes engine construction.
type Option func(*Engine)

// WithConfidenceLog attaches an append-only confidence sink.
func WithConfidenceLog(log ConfidenceLog) Option { return func(e *Engine) { e.log = log } }

// WithLogger attaches a structured logger for non-fatal recording errors.
func WithLogger(l *applogger.Logger) Option { return func(e *Engine) { e.l = l } }

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithFactorWeights overrides the composite weight configuration.
func WithFactorWeights(w models.RiskFactorWeights) Option {
	return func(e *Engine) { e.weights = w }
}

// NewEngine builds an engine for the configured assets.
func NewEngine(cfgs []AssetConfig, opts ...Option) *Engine {
	e := &Engine{
		cfgs:    make(map[string]AssetConfig, len(cfgs)),
		history: make(map[string][]models.Bar),
		cache:   make(map[string]cachedRisk),
		weights: DefaultFactorWeights,
		now:     time.Now,
	}
	for _, c := range cfgs {
		e.cfgs[c.Symbol] = c
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetHistory replaces the asset's price series wholesale.
func (e *Engine) SetHistory(symbol string, bars []models.Bar) error {
	if _, ok := e.cfgs[symbol]; !ok {
		return fmt.Errorf("%s: %w", symbol, ErrUnsupportedAsset)
	}
	sorted := quant.SortedBars(bars)
	e.mu.Lock()
	e.history[symbol] = sorted
	e.mu.Unlock()
	return nil
}

// AppendBars extends the asset's series.
func (e *Engine) AppendBars(symbol string, bars ...models.Bar) error {
	if _, ok := e.cfgs[symbol]; !ok {
		return fmt.Errorf("%s: %w", symbol, ErrUnsupportedAsset)
	}
	e.mu.Lock()
	merged := append(e.history[symbol], bars...)
	e.history[symbol] = quant.SortedBars(merged)
	e.mu.Unlock()
	return nil
}

// Supported lists the configured asset symbols.
func (e *Engine) Supported() []string {
	out := make([]string, 0, len(e.cfgs))
	for s := range e.cfgs {
		out = append(out, s)
	}
	return out
}

func (e *Engine) fitLocked(symbol string) (AssetConfig, []models.Bar, *models.RegressionChannel, error) {
	cfg, ok := e.cfgs[symbol]
	if !ok {
		return cfg, nil, nil, fmt.Errorf("%s: %w", symbol, ErrUnsupportedAsset)
	}
	bars := e.history[symbol]
	if len(bars) == 0 {
		return cfg, nil, nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	if len(bars) < cfg.minBars() {
		return cfg, nil, nil, fmt.Errorf("%s: %d bars: %w", symbol, len(bars), ErrInsufficientData)
	}
	ch, err := quant.FitLogChannel(bars, cfg.BarsPerYear)
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("%s: %w", symbol, ErrInsufficientData)
	}
	return cfg, bars, ch, nil
}

// RiskHistory places every historical close within the full-history channel.
func (e *Engine) RiskHistory(symbol string) ([]models.RiskHistoryPoint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _, ch, err := e.fitLocked(symbol)
	if err != nil {
		return nil, err
	}
	out := make([]models.RiskHistoryPoint, len(ch.Points))
	for i, p := range ch.Points {
		out[i] = models.RiskHistoryPoint{
			Date:      p.Date,
			Price:     p.Close,
			RiskLevel: quant.RiskPlacement(p.Close, p, ch.StandardDeviation),
		}
	}
	return out, nil
}

// CurrentRisk returns the asset's live regression risk. The expensive refit
// only happens when a refresh boundary has passed since the cached
// computation; between boundaries the cached value is returned verbatim.
func (e *Engine) CurrentRisk(ctx context.Context, symbol string) (models.CurrentRisk, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if entry, ok := e.cache[symbol]; ok && !ShouldRefresh(entry.computedAt, now) {
		return entry.value, nil
	}

	_, bars, ch, err := e.fitLocked(symbol)
	if err != nil {
		return models.CurrentRisk{}, err
	}
	last := ch.Points[len(ch.Points)-1]
	cur := models.CurrentRisk{
		Symbol:     symbol,
		ComputedAt: now,
		Price:      last.Close,
		RiskLevel:  quant.RiskPlacement(last.Close, last, ch.StandardDeviation),
		Zone:       last.Zone,
		RSquared:   ch.RSquared,
		SampleSize: len(bars),
	}
	e.cache[symbol] = cachedRisk{value: cur, computedAt: now}
	e.record(ctx, cur)
	return cur, nil
}

// record appends a confidence observation; failures are logged, never fatal.
func (e *Engine) record(ctx context.Context, cur models.CurrentRisk) {
	if e.log == nil {
		return
	}
	rec := models.ConfidenceRecord{
		ID:         uuid.NewString(),
		Symbol:     cur.Symbol,
		Date:       cur.ComputedAt,
		RSquared:   cur.RSquared,
		SampleSize: cur.SampleSize,
		RiskLevel:  cur.RiskLevel,
		Price:      cur.Price,
	}
	if err := e.log.Record(ctx, rec); err != nil && e.l != nil {
		e.l.Warn("confidence record failed",
			applogger.String("symbol", cur.Symbol),
			applogger.Error(err),
		)
	}
}

// MultiFactorRisk composes the regression risk with whichever factors are
// present in the snapshot. Absent factors are omitted and their weight
// redistributes; rotation and volatility-regime sub-scores arrive
// pre-computed (0-100) from the regime layer.
func (e *Engine) MultiFactorRisk(ctx context.Context, symbol string, snap models.FactorSnapshot, volRegime, rotation models.Factor) (models.MultiFactorRiskPoint, error) {
	cur, err := e.CurrentRisk(ctx, symbol)
	if err != nil {
		return models.MultiFactorRiskPoint{}, err
	}

	// Scores live in 0-100 space for the shared weighted average; the
	// composite is scaled back to [0,1].
	comps := []quant.Component{
		{Score: cur.RiskLevel * 100, Weight: e.weights.Regression, Label: "regression"},
	}
	if v, ok := snap.FundingRate.Value(); ok {
		comps = append(comps, quant.Component{
			Score:  quant.FundingScore(v),
			Weight: e.weights.Funding,
			Label:  "funding",
		})
	}
	if v, ok := volRegime.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: e.weights.Volatility, Label: "volatility"})
	}
	if v, ok := snap.AppStoreScore.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: e.weights.AppStore, Label: "app_store"})
	}
	if v, ok := snap.SearchIdx.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: e.weights.Search, Label: "search"})
	}
	if v, ok := snap.AltseasonIdx.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: e.weights.AltcoinSeason, Label: "altseason"})
	}
	if v, ok := rotation.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: e.weights.CapitalRotation, Label: "rotation"})
	}

	composite, _ := quant.WeightedAverage(comps)

	var totalWeight float64
	for _, c := range comps {
		totalWeight += c.Weight
	}
	out := models.MultiFactorRiskPoint{
		Date:           cur.ComputedAt,
		Price:          cur.Price,
		CompositeScore: composite / 100,
		Components:     make([]models.RiskComponent, len(comps)),
	}
	for i, c := range comps {
		normalized := 0.0
		if totalWeight > 0 {
			normalized = c.Weight / totalWeight
		}
		out.Components[i] = models.RiskComponent{
			Name:   c.Label,
			Value:  c.Score / 100,
			Weight: normalized,
		}
	}
	return out, nil
}
