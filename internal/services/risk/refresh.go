package risk

import "time"

// RefreshZone is the fixed reference time zone for the twice-daily refresh
// boundaries. All cache staleness decisions are made in this zone regardless
// of server locale.
var RefreshZone = time.FixedZone("Asia/Ho_Chi_Minh", 7*3600)

const (
	morningBoundaryHour = 7
	eveningBoundaryHour = 17
)

// LastBoundary returns the most recent of {today 07:00, today 17:00,
// yesterday 17:00} in the reference zone that is not after now.
func LastBoundary(now time.Time) time.Time {
	local := now.In(RefreshZone)
	y, m, d := local.Date()
	morning := time.Date(y, m, d, morningBoundaryHour, 0, 0, 0, RefreshZone)
	evening := time.Date(y, m, d, eveningBoundaryHour, 0, 0, 0, RefreshZone)

	switch {
	case !local.Before(evening):
		return evening
	case !local.Before(morning):
		return morning
	default:
		return evening.AddDate(0, 0, -1)
	}
}

// ShouldRefresh reports whether a value computed at lastComputedAt is stale
// at now: stale iff a refresh boundary has passed since it was computed.
// A pure function of the two timestamps.
func ShouldRefresh(lastComputedAt, now time.Time) bool {
	if lastComputedAt.IsZero() {
		return true
	}
	return lastComputedAt.Before(LastBoundary(now))
}
