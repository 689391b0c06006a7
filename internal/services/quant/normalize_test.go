package quant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSigmoidNormalizeMidpoint(t *testing.T) {
	for _, v := range []float64{0.5, 1, 42, 90000} {
		require.InDelta(t, 50.0, SigmoidNormalize(v, v, DefaultSigmoidK), 1e-9)
	}
}

func TestSigmoidNormalizeMonotonic(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 200; v += 5 {
		got := SigmoidNormalize(v, 100, DefaultSigmoidK)
		require.GreaterOrEqual(t, got, prev)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, 100.0)
		prev = got
	}
}

func TestSigmoidNormalizeZeroCentered(t *testing.T) {
	// average == 0 treats the input as already zero-centered (funding rate).
	require.InDelta(t, 50.0, SigmoidNormalize(0, 0, DefaultSigmoidK), 1e-9)
	require.Greater(t, SigmoidNormalize(0.5, 0, DefaultSigmoidK), 50.0)
	require.Less(t, SigmoidNormalize(-0.5, 0, DefaultSigmoidK), 50.0)
}

func TestWeightedAverageEqualWeights(t *testing.T) {
	score, labels := WeightedAverage([]Component{
		{Score: 80, Weight: 1, Label: "a"},
		{Score: 20, Weight: 1, Label: "b"},
	})
	require.InDelta(t, 50.0, score, 1e-9)
	require.Equal(t, []string{"a", "b"}, labels)
}

func TestWeightedAverageRedistribution(t *testing.T) {
	// With "b" absent its weight redistributes fully onto "a".
	score, labels := WeightedAverage([]Component{{Score: 80, Weight: 1, Label: "a"}})
	require.InDelta(t, 80.0, score, 1e-9)
	require.Equal(t, []string{"a"}, labels)
}

func TestWeightedAverageZeroWeightSum(t *testing.T) {
	score, labels := WeightedAverage(nil)
	require.Equal(t, NeutralScore, score)
	require.Empty(t, labels)

	score, labels = WeightedAverage([]Component{{Score: 99, Weight: 0, Label: "x"}})
	require.Equal(t, NeutralScore, score)
	require.Empty(t, labels)
}

func TestWeightedAverageUnnormalizedWeights(t *testing.T) {
	// Weights need not pre-sum to 1.
	score, _ := WeightedAverage([]Component{
		{Score: 100, Weight: 30, Label: "a"},
		{Score: 0, Weight: 10, Label: "b"},
	})
	require.InDelta(t, 75.0, score, 1e-9)
}
