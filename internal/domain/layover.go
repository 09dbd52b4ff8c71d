package domain

import (
	"fmt"
	"time"
)

type LayoverFlag string

const (
	LayoverTight  LayoverFlag = "tight"
	LayoverNormal LayoverFlag = "normal"
	LayoverLong   LayoverFlag = "long"
)

// LayoverPolicy holds the connection-classification thresholds. They are
// carried as fields rather than literals so deployments can tune them.
type LayoverPolicy struct {
	// TightUnder flags connections shorter than this as tight.
	TightUnder time.Duration
	// LongOver flags connections longer than this as long.
	LongOver time.Duration

	// RedEyeFromHour..RedEyeUntilHour is the local-departure window (inclusive
	// start, exclusive end, wrapping midnight) that marks a leg as a red-eye.
	RedEyeFromHour  int
	RedEyeUntilHour int
}

// DefaultLayoverPolicy returns the documented defaults: tight under 60
// minutes, long over 4 hours, red-eye departures from 22:00 to 05:59 local.
func DefaultLayoverPolicy() LayoverPolicy {
	return LayoverPolicy{
		TightUnder:      60 * time.Minute,
		LongOver:        4 * time.Hour,
		RedEyeFromHour:  22,
		RedEyeUntilHour: 6,
	}
}

// Connection describes the layover between two adjacent flight legs.
type Connection struct {
	Duration time.Duration
	// Label is the human-readable duration, e.g. "1h 20m".
	Label string
	Flag  LayoverFlag
	// AirportChange is true when leg A arrives at a different airport than
	// leg B departs from.
	AirportChange bool
}

// AnalyzeConnection computes the connection descriptor between temporally
// adjacent legs a and b. The second return is false when either leg lacks the
// timestamps needed to compute a duration; callers fall back to a plain
// "Connection" label rather than failing.
func (p LayoverPolicy) AnalyzeConnection(a, b Segment) (Connection, bool) {
	if a.EndTime == nil || b.StartTime == nil {
		return Connection{}, false
	}
	d := b.StartTime.Sub(*a.EndTime)

	flag := LayoverNormal
	switch {
	case d < p.TightUnder:
		flag = LayoverTight
	case d > p.LongOver:
		flag = LayoverLong
	}

	change := false
	if arr, dep := a.ArrivalAirport(), b.DepartureAirport(); arr != "" && dep != "" {
		change = arr != dep
	}

	return Connection{
		Duration:      d,
		Label:         FormatDuration(d),
		Flag:          flag,
		AirportChange: change,
	}, true
}

// JourneyElapsed returns the total elapsed time from the first leg's
// departure to the last leg's arrival. The second return is false when either
// endpoint timestamp is missing.
func JourneyElapsed(legs []Segment) (time.Duration, bool) {
	if len(legs) == 0 {
		return 0, false
	}
	first, last := legs[0], legs[len(legs)-1]
	if first.StartTime == nil || last.EndTime == nil {
		return 0, false
	}
	return last.EndTime.Sub(*first.StartTime), true
}

// IsRedEye reports whether a leg's local departure time falls in the
// late-night window of the policy.
func (p LayoverPolicy) IsRedEye(leg Segment) bool {
	if leg.StartTime == nil {
		return false
	}
	h := leg.StartTime.Hour()
	if p.RedEyeFromHour <= p.RedEyeUntilHour {
		return h >= p.RedEyeFromHour && h < p.RedEyeUntilHour
	}
	// Window wraps midnight, e.g. 22:00-05:59.
	return h >= p.RedEyeFromHour || h < p.RedEyeUntilHour
}

// FormatDuration renders a duration as "2h 15m", "45m", or "3h".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d.Minutes())
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
