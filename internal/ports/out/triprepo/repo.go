package triprepo

import (
	"context"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// Trip is the persistence shape used by the trip repository.
// It is not an HTTP DTO.
type Trip struct {
	ID domain.TripID

	AdvisorID domain.AdvisorID

	Name         string
	Destinations []string
	Notes        *string

	// StartDate/EndDate carry date-only semantics at the edges; nil means "unknown".
	StartDate *time.Time
	EndDate   *time.Time

	Status domain.TripStatus

	Budget   *float64
	Currency string

	// ApprovedVersionID is set by client approval through the share channel;
	// at most one version is approved at a time.
	ApprovedVersionID *domain.VersionID
	ApprovedAt        *time.Time

	// ShareToken grants a client read/limited-write access without an account.
	// Empty means sharing was never enabled.
	ShareToken     string
	SharingEnabled bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted trips.
//
// Result ordering expectations:
// - ListByAdvisor returns trips ordered by StartDate ascending, undated trips
//   after dated ones, then CreatedAt, then ID (deterministic).
type Repository interface {
	Create(ctx context.Context, t Trip) error
	Save(ctx context.Context, t Trip) error

	GetByID(ctx context.Context, id domain.TripID) (Trip, error)

	// GetByShareToken resolves the trip a share token grants access to.
	// Tokens on trips with sharing disabled do not resolve.
	GetByShareToken(ctx context.Context, token string) (Trip, error)

	ListByAdvisor(ctx context.Context, advisor domain.AdvisorID) ([]Trip, error)

	// Delete removes the trip record. Owned versions/segments/selections are
	// cascaded by the caller through their own repositories.
	Delete(ctx context.Context, id domain.TripID) error
}
