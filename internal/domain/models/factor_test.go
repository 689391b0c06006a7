package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFactorPresent(t *testing.T) {
	f := Present(42.5)
	require.True(t, f.IsPresent())

	v, ok := f.Value()
	require.True(t, ok)
	require.InDelta(t, 42.5, v, 1e-12)
	require.InDelta(t, 42.5, f.Or(0), 1e-12)
}

func TestFactorAbsent(t *testing.T) {
	f := Absent()
	require.False(t, f.IsPresent())

	_, ok := f.Value()
	require.False(t, ok)
	require.InDelta(t, 50.0, f.Or(50), 1e-12)
}

func TestFactorZeroValueIsAbsent(t *testing.T) {
	var f Factor
	require.False(t, f.IsPresent())
}
