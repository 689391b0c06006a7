package regime

import (
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/quant"
)

// Regime-gating thresholds: extreme volatility expansion suppresses false
// greed, extreme compression suppresses false fear. Applied to the live
// point only, never to trajectory history.
const (
	volExpansionThreshold   = 80.0
	volCompressionThreshold = 20.0
	emotionCapOnExpansion   = 55.0
	emotionFloorOnCalm      = 45.0
)

const volumeSMAWindow = 30

// EmotionWeights are the nominal fear/greed axis weights (40/20/15/15/10
// when all factors are present). Calibrated constants, treated as config.
type EmotionWeights struct {
	Sentiment float64
	CycleRisk float64
	Funding   float64
	Altseason float64
	Rotation  float64
}

// EngagementWeights are the activity axis weights (35/15/15/20/15).
type EngagementWeights struct {
	Volume     float64
	Funding    float64
	AppStore   float64
	Search     float64
	Volatility float64
}

var (
	DefaultEmotionWeights = EmotionWeights{
		Sentiment: 40, CycleRisk: 20, Funding: 15, Altseason: 15, Rotation: 10,
	}
	DefaultEngagementWeights = EngagementWeights{
		Volume: 35, Funding: 15, AppStore: 15, Search: 20, Volatility: 15,
	}
)

// Scorer builds the emotion/engagement composite axes from whichever
// sub-signals are available. Stateless; safe for concurrent use.
type Scorer struct {
	emotion    EmotionWeights
	engagement EngagementWeights
}

// ScorerOption customizes the axis weights.
type ScorerOption func(*Scorer)

func WithEmotionWeights(w EmotionWeights) ScorerOption {
	return func(s *Scorer) { s.emotion = w }
}

func WithEngagementWeights(w EngagementWeights) ScorerOption {
	return func(s *Scorer) { s.engagement = w }
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{emotion: DefaultEmotionWeights, engagement: DefaultEngagementWeights}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inputs carries everything the live composite can draw on. Sentiment and
// VolumeScore are always present; the rest are optional factors whose weight
// redistributes when absent.
type Inputs struct {
	Sentiment   float64 // base fear/greed index, 0-100
	VolumeScore float64 // volume-vs-30d-SMA sigmoid, 0-100
	Snapshot    models.FactorSnapshot
	VolRegime   models.Factor // realized-volatility regime score, 0-100
	Rotation    models.Factor // capital-rotation sub-signal, 0-100
}

// Now computes the live composite point with component attribution. The
// emotion axis is gated by the volatility regime after composition.
func (s *Scorer) Now(date time.Time, in Inputs) models.RegimeNow {
	emotion, emotionLabels := s.emotionComposite(in)
	engagement, engagementLabels := s.engagementComposite(in)
	emotion = GateEmotion(emotion, in.VolRegime)

	point := models.RegimePoint{
		Date:            date,
		EmotionScore:    quant.Clamp(emotion, 0, 100),
		EngagementScore: quant.Clamp(engagement, 0, 100),
	}
	return models.RegimeNow{
		Point:             point,
		Quadrant:          point.Quadrant(),
		EmotionSources:    emotionLabels,
		EngagementSources: engagementLabels,
	}
}

func (s *Scorer) emotionComposite(in Inputs) (float64, []string) {
	comps := []quant.Component{
		{Score: in.Sentiment, Weight: s.emotion.Sentiment, Label: "sentiment"},
	}
	if v, ok := in.Snapshot.CycleRisk.Value(); ok {
		comps = append(comps, quant.Component{Score: v * 100, Weight: s.emotion.CycleRisk, Label: "cycle_risk"})
	}
	if v, ok := in.Snapshot.FundingRate.Value(); ok {
		comps = append(comps, quant.Component{Score: quant.FundingScore(v), Weight: s.emotion.Funding, Label: "funding"})
	}
	if v, ok := in.Snapshot.AltseasonIdx.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: s.emotion.Altseason, Label: "altseason"})
	}
	if v, ok := in.Rotation.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: s.emotion.Rotation, Label: "rotation"})
	}
	return quant.WeightedAverage(comps)
}

func (s *Scorer) engagementComposite(in Inputs) (float64, []string) {
	comps := []quant.Component{
		{Score: in.VolumeScore, Weight: s.engagement.Volume, Label: "volume"},
	}
	if v, ok := in.Snapshot.FundingRate.Value(); ok {
		magnitude := quant.SigmoidNormalize(abs(v)*100, 0, quant.DefaultSigmoidK)
		comps = append(comps, quant.Component{Score: magnitude, Weight: s.engagement.Funding, Label: "funding"})
	}
	if v, ok := in.Snapshot.AppStoreScore.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: s.engagement.AppStore, Label: "app_store"})
	}
	if v, ok := in.Snapshot.SearchIdx.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: s.engagement.Search, Label: "search"})
	}
	if v, ok := in.VolRegime.Value(); ok {
		comps = append(comps, quant.Component{Score: v, Weight: s.engagement.Volatility, Label: "volatility"})
	}
	return quant.WeightedAverage(comps)
}

// GateEmotion clamps the raw emotion composite against the volatility
// regime: expansion caps it at 55, compression floors it at 45. Without a
// regime reading the raw value passes through.
func GateEmotion(raw float64, volRegime models.Factor) float64 {
	v, ok := volRegime.Value()
	if !ok {
		return raw
	}
	if v > volExpansionThreshold && raw > emotionCapOnExpansion {
		return emotionCapOnExpansion
	}
	if v < volCompressionThreshold && raw < emotionFloorOnCalm {
		return emotionFloorOnCalm
	}
	return raw
}

// VolumeScore compares the latest daily volume to its trailing 30-day SMA
// through the sigmoid. With a short history SMA degrades to the last value
// and the score reads neutral.
func VolumeScore(bars []models.Bar) float64 {
	daily := quant.DedupeDaily(bars)
	if len(daily) == 0 {
		return quant.NeutralScore
	}
	volumes := quant.Volumes(daily)
	last := volumes[len(volumes)-1]
	return quant.SigmoidNormalize(last, quant.SMA(volumes, volumeSMAWindow), quant.DefaultSigmoidK)
}

// Trajectory rebuilds historical regime points from the base sentiment
// series and volume history alone. Live multi-factor inputs do not exist
// retroactively, so no gating and no optional factors apply here.
func (s *Scorer) Trajectory(sentiments []models.SentimentPoint, bars []models.Bar) []models.RegimePoint {
	daily := quant.DedupeDaily(bars)
	volumes := quant.Volumes(daily)

	out := make([]models.RegimePoint, 0, len(sentiments))
	for _, sp := range sentiments {
		// Trailing volume window as of the sentiment date.
		idx := len(daily)
		for idx > 0 && daily[idx-1].Date.After(sp.Date) {
			idx--
		}
		engagement := quant.NeutralScore
		if idx > 0 {
			window := volumes[:idx]
			engagement = quant.SigmoidNormalize(window[idx-1], quant.SMA(window, volumeSMAWindow), quant.DefaultSigmoidK)
		}
		out = append(out, models.RegimePoint{
			Date:            sp.Date,
			EmotionScore:    quant.Clamp(sp.Value, 0, 100),
			EngagementScore: engagement,
		})
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
