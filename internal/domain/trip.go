package domain

import (
	"strings"
	"time"
)

// NormalizeTitle trims and collapses interior whitespace in user-supplied
// names (trip names, version names, segment titles).
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type TripStatus string

const (
	TripStatusDraft      TripStatus = "draft"
	TripStatusPlanning   TripStatus = "planning"
	TripStatusConfirmed  TripStatus = "confirmed"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
	TripStatusArchived   TripStatus = "archived"
)

// ValidTripStatus reports whether s is one of the known trip statuses.
func ValidTripStatus(s TripStatus) bool {
	switch s {
	case TripStatusDraft, TripStatusPlanning, TripStatusConfirmed,
		TripStatusInProgress, TripStatusCompleted, TripStatusCancelled,
		TripStatusArchived:
		return true
	}
	return false
}

// TripSummary is the list-view read model for a trip.
type TripSummary struct {
	ID           TripID
	Name         string
	Destinations []string
	StartDate    *time.Time // date-only semantics at the edges
	EndDate      *time.Time // date-only semantics at the edges
	Status       TripStatus

	Budget   *float64
	Currency string

	ApprovedVersionID *VersionID
	SharingEnabled    bool
}

// TripDetails is the full advisor-facing read model for a trip.
type TripDetails struct {
	TripSummary

	Notes *string

	Versions []VersionSummary

	CreatedAt time.Time
	UpdatedAt time.Time
}
