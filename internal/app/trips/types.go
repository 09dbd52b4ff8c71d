package trips

import (
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreateTripInput struct {
	Name         string
	Destinations []string
	StartDate    *time.Time
	EndDate      *time.Time
	Budget       *float64
	Currency     string
	Notes        *string
}

// TripCreated is the minimal response returned when a trip is created.
// Every trip starts with a primary "Version 1".
type TripCreated struct {
	ID               domain.TripID
	Status           domain.TripStatus
	PrimaryVersionID domain.VersionID
}

type UpdateTripInput struct {
	// Name is optional and cannot be null.
	Name Optional[string]

	Destinations Optional[[]string]
	StartDate    Optional[time.Time]
	EndDate      Optional[time.Time]
	Budget       Optional[float64]
	Currency     Optional[string]
	Notes        Optional[string]
}

// ShareState reports the trip's client-sharing configuration.
type ShareState struct {
	Enabled bool
	// Token is the unguessable credential a client presents on the share
	// channel. Empty when sharing has never been enabled.
	Token string
}
