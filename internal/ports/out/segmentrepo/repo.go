package segmentrepo

import (
	"context"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// Segment is the persistence shape for one bookable unit.
// It is not an HTTP DTO.
type Segment struct {
	ID        domain.SegmentID
	TripID    domain.TripID
	VersionID domain.VersionID

	Type domain.SegmentType

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

	HasVariants bool

	JourneyID       *string
	PropertyGroupID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Variant is the persistence shape for an alternate option on a segment.
// Selection state is not stored here; it lives in the selection ledger.
type Variant struct {
	ID        domain.VariantID
	SegmentID domain.SegmentID

	Label       string
	VariantType domain.VariantType

	Cost         *float64
	Currency     string
	Quantity     int
	PricePerUnit *float64

	Refundability  domain.Refundability
	RefundDeadline *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides access to persisted segments and their variants.
//
// Ordering: a version's segments form one explicit ordered sequence spanning
// all days. ListByVersion returns that sequence; Create appends to its end.
type Repository interface {
	Create(ctx context.Context, s Segment) error
	Save(ctx context.Context, s Segment) error

	GetByID(ctx context.Context, id domain.SegmentID) (Segment, error)
	ListByVersion(ctx context.Context, versionID domain.VersionID) ([]Segment, error)

	Delete(ctx context.Context, id domain.SegmentID) error
	DeleteByVersion(ctx context.Context, versionID domain.VersionID) error

	// Reorder atomically replaces the version's segment-order sequence.
	// orderedIDs must contain exactly the version's segment ids; otherwise
	// ErrInvalidOrder is returned and the stored order is unchanged.
	Reorder(ctx context.Context, versionID domain.VersionID, orderedIDs []domain.SegmentID) error

	AddVariant(ctx context.Context, v Variant) error
	SaveVariant(ctx context.Context, v Variant) error
	GetVariant(ctx context.Context, id domain.VariantID) (Variant, error)
	ListVariants(ctx context.Context, segmentID domain.SegmentID) ([]Variant, error)
	DeleteVariant(ctx context.Context, id domain.VariantID) error
}
