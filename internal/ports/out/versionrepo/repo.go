package versionrepo

import (
	"context"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// Version is the persistence shape for one itinerary proposal of a trip.
type Version struct {
	ID     domain.VersionID
	TripID domain.TripID

	Name string

	// IsPrimary: exactly one version per trip holds this flag. The atomic
	// flip lives in the service layer (load siblings, clear, set, save).
	IsPrimary bool

	ShowPricing bool

	Discount      float64
	DiscountType  domain.DiscountType
	DiscountLabel *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted versions.
//
// ListByTrip returns versions ordered by CreatedAt ascending, then ID.
type Repository interface {
	Create(ctx context.Context, v Version) error
	Save(ctx context.Context, v Version) error

	GetByID(ctx context.Context, id domain.VersionID) (Version, error)
	ListByTrip(ctx context.Context, tripID domain.TripID) ([]Version, error)

	Delete(ctx context.Context, id domain.VersionID) error
	DeleteByTrip(ctx context.Context, tripID domain.TripID) error
}
