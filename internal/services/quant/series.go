package quant

import (
	"sort"
	"time"

	"CoinPulse/internal/domain/models"
)

// SortedBars returns a copy of bars sorted ascending by date. Input order is
// caller-supplied and never trusted.
func SortedBars(bars []models.Bar) []models.Bar {
	out := make([]models.Bar, len(bars))
	copy(out, bars)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DedupeDaily collapses bars to one per calendar day (UTC), keeping the last
// bar seen for each day, sorted ascending. The volatility and consolidation
// paths operate on daily series regardless of the input cadence.
func DedupeDaily(bars []models.Bar) []models.Bar {
	sorted := SortedBars(bars)
	byDay := make(map[string]models.Bar, len(sorted))
	for _, b := range sorted {
		byDay[dayKey(b.Date)] = b
	}
	out := make([]models.Bar, 0, len(byDay))
	for _, b := range byDay {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Closes extracts the close series in bar order.
func Closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series in bar order.
func Volumes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
