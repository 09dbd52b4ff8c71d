package clientshare

import (
	"time"

	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// SelectionView is the client-visible choice state for one segment that
// offers variants.
type SelectionView struct {
	SegmentID domain.SegmentID

	// SelectedVariantID is nil when the primary option is chosen.
	SelectedVariantID *domain.VariantID

	Submitted   bool
	SubmittedAt *time.Time
}

// TripView is everything a client sees through a share link: the trip
// header, the active version's composed itinerary and the selection state.
type TripView struct {
	TripID       domain.TripID
	TripName     string
	Destinations []string
	StartDate    *time.Time
	EndDate      *time.Time
	Status       domain.TripStatus
	Currency     string

	// Version is the approved version when one exists, otherwise the
	// primary. Pricing fields are zeroed when the advisor hides pricing.
	Version itinerary.VersionView

	Selections []SelectionView

	Approved   bool
	ApprovedAt *time.Time
}

// SubmitResult reports which segments were locked by a submission round.
type SubmitResult struct {
	LockedSegmentIDs []domain.SegmentID
	SubmittedAt      time.Time
}

// ApprovalResult reports the outcome of a client approval.
type ApprovalResult struct {
	TripID     domain.TripID
	VersionID  domain.VersionID
	ApprovedAt time.Time
}
