package domain

import "time"

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "scheduled"
	FlightStatusOnTime    FlightStatus = "on_time"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusDeparted  FlightStatus = "departed"
	FlightStatusLanded    FlightStatus = "landed"
	FlightStatusUnknown   FlightStatus = "unknown"
)

// ValidFlightStatus reports whether s is a known flight status.
func ValidFlightStatus(s FlightStatus) bool {
	switch s {
	case FlightStatusScheduled, FlightStatusOnTime, FlightStatusDelayed,
		FlightStatusCancelled, FlightStatusDeparted, FlightStatusLanded,
		FlightStatusUnknown:
		return true
	}
	return false
}

// FlightStatusSnapshot is the collaborator-provided status of a flight
// segment. This service stores and serves snapshots; it never computes them.
type FlightStatusSnapshot struct {
	SegmentID SegmentID
	Status    FlightStatus

	DelayMinutes *int
	Gate         *string
	Terminal     *string

	LastCheckedAt time.Time
}
