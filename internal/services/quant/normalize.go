package quant

import "math"

// DefaultSigmoidK is the steepness used across the composite scorers.
const DefaultSigmoidK = 3.0

// NeutralScore is the midpoint of every 0-100 composite axis.
const NeutralScore = 50.0

// SigmoidNormalize rescales a raw value onto 0-100 around a reference
// average. value == average maps to 50; the result is monotonically
// increasing in value and clamped to [0,100]. When average is zero the input
// is treated as zero-centered (e.g. funding rate) and fed to the sigmoid
// directly.
func SigmoidNormalize(value, average, k float64) float64 {
	var x float64
	if average == 0 {
		x = value
	} else {
		x = value/average - 1
	}
	s := 100 / (1 + math.Exp(-k*x))
	return Clamp(s, 0, 100)
}

// FundingScore maps a decimal funding rate (0.0001 = 1bp) onto 0-100 through
// the zero-centered sigmoid. Rates are expressed in percentage points first
// so typical readings move the curve meaningfully.
func FundingScore(rate float64) float64 {
	return SigmoidNormalize(rate*100, 0, DefaultSigmoidK)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Component is one present input of a weighted composite.
type Component struct {
	Score  float64
	Weight float64
	Label  string
}

// WeightedAverage combines the supplied components, normalizing by the sum of
// their weights. Absent inputs simply do not appear in the slice, so their
// nominal weight redistributes over the rest. A zero weight sum yields the
// neutral score with no labels.
func WeightedAverage(components []Component) (float64, []string) {
	var totalWeight float64
	for _, c := range components {
		totalWeight += c.Weight
	}
	if totalWeight == 0 {
		return NeutralScore, nil
	}

	var sum float64
	labels := make([]string, 0, len(components))
	for _, c := range components {
		sum += c.Score * c.Weight
		labels = append(labels, c.Label)
	}
	return sum / totalWeight, labels
}
