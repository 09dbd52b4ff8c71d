package itinerary

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

type CreateVersionInput struct {
	// Name is optional; when empty, "Version N" is assigned.
	Name string

	// DuplicateOf copies all segments and variants of an existing version
	// of the same trip into the new one.
	DuplicateOf *domain.VersionID
}

type SetDiscountInput struct {
	Discount     float64
	DiscountType domain.DiscountType
	Label        *string
}

type AddSegmentInput struct {
	Type      domain.SegmentType
	DayNumber int

	Title    string
	Subtitle *string

	StartTime *time.Time
	EndTime   *time.Time

	ConfirmationNumber *string

	Cost         *float64
	Currency     string
	Quantity     int
	PricePerUnit *float64

	Notes *string

	Refundability  domain.Refundability
	RefundDeadline *time.Time

	Metadata map[string]any

	JourneyID       *string
	PropertyGroupID *string
}

type UpdateSegmentInput struct {
	// Type is optional and cannot be null.
	Type Optional[domain.SegmentType]

	DayNumber Optional[int]

	Title    Optional[string]
	Subtitle Optional[string]

	StartTime Optional[time.Time]
	EndTime   Optional[time.Time]

	ConfirmationNumber Optional[string]

	Cost         Optional[float64]
	Currency     Optional[string]
	Quantity     Optional[int]
	PricePerUnit Optional[float64]

	Notes Optional[string]

	Refundability  Optional[domain.Refundability]
	RefundDeadline Optional[time.Time]

	// Metadata replaces the whole map when specified; null clears it.
	Metadata Optional[map[string]any]

	JourneyID       Optional[string]
	PropertyGroupID Optional[string]
}

type AddVariantInput struct {
	Label       string
	VariantType domain.VariantType

	Cost         *float64
	Currency     string
	Quantity     int
	PricePerUnit *float64

	Refundability  domain.Refundability
	RefundDeadline *time.Time
}

type UpdateVariantInput struct {
	Label       Optional[string]
	VariantType Optional[domain.VariantType]

	Cost         Optional[float64]
	Currency     Optional[string]
	Quantity     Optional[int]
	PricePerUnit Optional[float64]

	Refundability  Optional[domain.Refundability]
	RefundDeadline Optional[time.Time]
}

type RecordFlightStatusInput struct {
	Status       domain.FlightStatus
	DelayMinutes *int
	Gate         *string
	Terminal     *string
}

// SegmentView is one segment enriched with its variants, computed unit price
// and, for flight-like segments, the latest status snapshot.
type SegmentView struct {
	domain.Segment

	Variants []domain.Variant

	// UnitPrice is set when the segment is sold per unit (explicit
	// price-per-unit or quantity > 1).
	UnitPrice *float64

	RedEye bool

	FlightStatus *domain.FlightStatusSnapshot
}

// ConnectionView describes the gap between two adjacent journey legs.
// Known is false when timestamps are missing; Label then reads "Connection".
type ConnectionView struct {
	domain.Connection
	Known bool
}

type JourneyView struct {
	ID   string
	Legs []SegmentView

	// Connections has len(Legs)-1 entries.
	Connections []ConnectionView

	// Elapsed is the door-to-door duration label; empty when the first
	// departure or last arrival is unknown.
	Elapsed string

	Subtotal float64
}

type PropertyGroupView struct {
	ID    string
	Rooms []SegmentView

	Subtotal float64
}

// ItemView is one render unit of a day. Exactly one of the three pointers is
// set, matching Kind.
type ItemView struct {
	Kind domain.DayItemKind

	Segment       *SegmentView
	Journey       *JourneyView
	PropertyGroup *PropertyGroupView
}

type DayView struct {
	DayNumber int
	Items     []ItemView

	Subtotal float64
}

// VersionView is the fully composed itinerary for one version: day grouping,
// journey/property-group promotion, connection analysis and pricing.
type VersionView struct {
	ID          domain.VersionID
	TripID      domain.TripID
	Name        string
	IsPrimary   bool
	ShowPricing bool

	Days []DayView

	Discount      float64
	DiscountType  domain.DiscountType
	DiscountLabel *string

	Pricing domain.VersionPricing
	Budget  domain.BudgetReport

	Currency string
}
