package models

import "time"

// RegimePoint is one dated pair of composite axis scores, both in [0,100].
// The quadrant label is derived on read, never stored.
type RegimePoint struct {
	Date            time.Time
	EmotionScore    float64
	EngagementScore float64
}

// RegimeQuadrant labels the quadrant of a RegimePoint against the 50/50 midpoint.
type RegimeQuadrant string

const (
	QuadrantEuphoria    RegimeQuadrant = "euphoria"    // high emotion, high engagement
	QuadrantComplacency RegimeQuadrant = "complacency" // high emotion, low engagement
	QuadrantAnxiety     RegimeQuadrant = "anxiety"     // low emotion, high engagement
	QuadrantApathy      RegimeQuadrant = "apathy"      // low emotion, low engagement
)

// Quadrant classifies the point against the fixed 50/50 midpoint.
func (p RegimePoint) Quadrant() RegimeQuadrant {
	switch {
	case p.EmotionScore >= 50 && p.EngagementScore >= 50:
		return QuadrantEuphoria
	case p.EmotionScore >= 50:
		return QuadrantComplacency
	case p.EngagementScore >= 50:
		return QuadrantAnxiety
	default:
		return QuadrantApathy
	}
}

// SentimentPoint is one reading of the base fear/greed sentiment index.
type SentimentPoint struct {
	Date  time.Time
	Value float64 // 0-100
}

// RegimeNow is the live composite point with component attribution for display.
type RegimeNow struct {
	Point             RegimePoint
	Quadrant          RegimeQuadrant
	EmotionSources    []string
	EngagementSources []string
}
