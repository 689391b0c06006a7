package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func refTime(day, hour, min int) time.Time {
	return time.Date(2025, 6, day, hour, min, 0, 0, RefreshZone)
}

func TestLastBoundary(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"before morning", refTime(10, 6, 59), refTime(9, 17, 0)},
		{"at morning", refTime(10, 7, 0), refTime(10, 7, 0)},
		{"midday", refTime(10, 12, 30), refTime(10, 7, 0)},
		{"at evening", refTime(10, 17, 0), refTime(10, 17, 0)},
		{"late night", refTime(10, 23, 45), refTime(10, 17, 0)},
		{"just past midnight", refTime(11, 0, 5), refTime(10, 17, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, LastBoundary(tt.now).Equal(tt.want),
				"LastBoundary(%v) = %v, want %v", tt.now, LastBoundary(tt.now), tt.want)
		})
	}
}

func TestShouldRefresh(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
		want bool
	}{
		{"same window", refTime(10, 7, 5), refTime(10, 16, 59), false},
		{"crossed evening", refTime(10, 7, 5), refTime(10, 17, 1), true},
		{"crossed morning", refTime(9, 22, 0), refTime(10, 7, 1), true},
		{"overnight same window", refTime(10, 18, 0), refTime(11, 6, 59), false},
		{"never computed", time.Time{}, refTime(10, 12, 0), true},
		{"computed right at boundary", refTime(10, 17, 0), refTime(10, 23, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ShouldRefresh(tt.last, tt.now))
		})
	}
}

func TestShouldRefreshOtherZoneInputs(t *testing.T) {
	// The predicate is evaluated in the reference zone regardless of the
	// zone the inputs carry.
	lastUTC := refTime(10, 7, 5).UTC()
	nowUTC := refTime(10, 16, 59).UTC()
	require.False(t, ShouldRefresh(lastUTC, nowUTC))
	require.True(t, ShouldRefresh(lastUTC, refTime(10, 17, 1).UTC()))
}
