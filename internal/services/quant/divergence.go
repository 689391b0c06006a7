package quant

import (
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
)

const (
	// DefaultSwingLookback is the symmetric window a swing must dominate.
	DefaultSwingLookback = 5
	// MaxDivergences caps the output at the most recent signals.
	MaxDivergences = 5

	bearishRSIFloor = 55.0 // later swing RSI must exceed this for bearish
	bullishRSICeil  = 45.0 // later swing RSI must be below this for bullish
	minSwingGapDays = 3
	maxSwingGapDays = 365
)

// Swing is a local price extremum.
type Swing struct {
	Index int
	Date  time.Time
	Price float64
}

// SwingHighs finds bars whose high strictly exceeds every high within
// lookback bars on both sides. The series must be longer than 2·lookback.
func SwingHighs(bars []models.Bar, lookback int) []Swing {
	return swings(bars, lookback, func(candidate, other models.Bar) bool {
		return candidate.High > other.High
	}, func(b models.Bar) float64 { return b.High })
}

// SwingLows is the strict less-than analogue over lows.
func SwingLows(bars []models.Bar, lookback int) []Swing {
	return swings(bars, lookback, func(candidate, other models.Bar) bool {
		return candidate.Low < other.Low
	}, func(b models.Bar) float64 { return b.Low })
}

func swings(bars []models.Bar, lookback int, dominates func(candidate, other models.Bar) bool, price func(models.Bar) float64) []Swing {
	if lookback <= 0 || len(bars) <= 2*lookback {
		return nil
	}
	sorted := SortedBars(bars)
	var out []Swing
	for i := lookback; i < len(sorted)-lookback; i++ {
		ok := true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if !dominates(sorted[i], sorted[j]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, Swing{Index: i, Date: sorted[i].Date, Price: price(sorted[i])})
		}
	}
	return out
}

// rsiLookup resolves an RSI value for a bar date. Exact timestamps are
// authoritative; a calendar-day key is kept as a fallback for daily and
// slower timeframes where bar and indicator stamps drift within the day.
type rsiLookup struct {
	exact map[int64]float64
	daily map[string]float64
}

func newRSILookup(series []models.RSIPoint) rsiLookup {
	l := rsiLookup{
		exact: make(map[int64]float64, len(series)),
		daily: make(map[string]float64, len(series)),
	}
	for _, p := range series {
		l.exact[p.Date.UnixNano()] = p.Value
		l.daily[dayKey(p.Date)] = p.Value
	}
	return l
}

func (l rsiLookup) at(t time.Time) (float64, bool) {
	if v, ok := l.exact[t.UnixNano()]; ok {
		return v, true
	}
	v, ok := l.daily[dayKey(t)]
	return v, ok
}

// DetectDivergences scans consecutive swing pairs for price/RSI disagreement.
// Bearish: consecutive swing highs with a higher price, a lower RSI, later
// RSI above 55, and a 3-365 day gap. Bullish is symmetric on swing lows with
// later RSI below 45. The most recent MaxDivergences across both types are
// returned in chronological order.
func DetectDivergences(bars []models.Bar, rsi []models.RSIPoint, lookback int) []models.Divergence {
	if lookback <= 0 {
		lookback = DefaultSwingLookback
	}
	lookup := newRSILookup(rsi)
	var out []models.Divergence

	highs := SwingHighs(bars, lookback)
	for i := 1; i < len(highs); i++ {
		prev, cur := highs[i-1], highs[i]
		prevRSI, ok1 := lookup.at(prev.Date)
		curRSI, ok2 := lookup.at(cur.Date)
		if !ok1 || !ok2 {
			continue
		}
		if cur.Price > prev.Price && curRSI < prevRSI && curRSI > bearishRSIFloor && gapOK(prev.Date, cur.Date) {
			out = append(out, models.Divergence{
				Type:       models.DivergenceBearish,
				StartDate:  prev.Date,
				EndDate:    cur.Date,
				PriceStart: prev.Price,
				PriceEnd:   cur.Price,
				RSIStart:   prevRSI,
				RSIEnd:     curRSI,
			})
		}
	}

	lows := SwingLows(bars, lookback)
	for i := 1; i < len(lows); i++ {
		prev, cur := lows[i-1], lows[i]
		prevRSI, ok1 := lookup.at(prev.Date)
		curRSI, ok2 := lookup.at(cur.Date)
		if !ok1 || !ok2 {
			continue
		}
		if cur.Price < prev.Price && curRSI > prevRSI && curRSI < bullishRSICeil && gapOK(prev.Date, cur.Date) {
			out = append(out, models.Divergence{
				Type:       models.DivergenceBullish,
				StartDate:  prev.Date,
				EndDate:    cur.Date,
				PriceStart: prev.Price,
				PriceEnd:   cur.Price,
				RSIStart:   prevRSI,
				RSIEnd:     curRSI,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	if len(out) > MaxDivergences {
		out = out[len(out)-MaxDivergences:]
	}
	return out
}

func gapOK(start, end time.Time) bool {
	days := int(end.Sub(start).Hours() / 24)
	return days >= minSwingGapDays && days <= maxSwingGapDays
}
