package domain

import (
	"strconv"
	"time"
)

type SegmentType string

const (
	SegmentTypeFlight        SegmentType = "flight"
	SegmentTypeCharterFlight SegmentType = "charter_flight"
	SegmentTypeHotel         SegmentType = "hotel"
	SegmentTypeTransport     SegmentType = "transport"
	SegmentTypeRestaurant    SegmentType = "restaurant"
	SegmentTypeActivity      SegmentType = "activity"
	SegmentTypeNote          SegmentType = "note"
)

// ValidSegmentType reports whether t is a known segment type.
func ValidSegmentType(t SegmentType) bool {
	switch t {
	case SegmentTypeFlight, SegmentTypeCharterFlight, SegmentTypeHotel,
		SegmentTypeTransport, SegmentTypeRestaurant, SegmentTypeActivity,
		SegmentTypeNote:
		return true
	}
	return false
}

// IsFlight reports whether t is a flight-like segment type (scheduled or charter).
func (t SegmentType) IsFlight() bool {
	return t == SegmentTypeFlight || t == SegmentTypeCharterFlight
}

type Refundability string

const (
	RefundabilityUnknown Refundability = "unknown"
	RefundabilityNone    Refundability = "non_refundable"
	RefundabilityPartial Refundability = "partially_refundable"
	RefundabilityFull    Refundability = "fully_refundable"
)

// ValidRefundability reports whether r is a known refundability value.
func ValidRefundability(r Refundability) bool {
	switch r {
	case RefundabilityUnknown, RefundabilityNone, RefundabilityPartial, RefundabilityFull:
		return true
	}
	return false
}

// Segment is one bookable itinerary line item. It is the shape the grouping,
// layover, and pricing engines compute over.
type Segment struct {
	ID   SegmentID
	Type SegmentType

	// DayNumber is 1-based, relative to the trip start.
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

	Refundability  Refundability
	RefundDeadline *time.Time

	// Metadata holds type-specific fields (airline/flightNumber for flights,
	// hotelName/roomType for hotels, legNumber for journey legs, ...).
	Metadata map[string]any

	HasVariants bool

	// JourneyID groups ordered flight legs into one connecting journey.
	JourneyID *string
	// PropertyGroupID groups hotel room bookings for the same stay.
	PropertyGroupID *string
}

// CostValue returns the segment cost, defaulting a missing cost to 0.
func (s Segment) CostValue() float64 {
	if s.Cost == nil {
		return 0
	}
	return *s.Cost
}

// LegNumber returns the journey leg ordering stored in metadata, or 0 when
// absent or malformed. JSON decoding yields float64 for numbers; numeric
// strings are tolerated because imported records carry them.
func (s Segment) LegNumber() int {
	v, ok := s.Metadata["legNumber"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return 0
}

// MetadataString returns a string metadata field, or "" when absent or not a string.
func (s Segment) MetadataString(key string) string {
	if v, ok := s.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// DepartureAirport returns the departure airport code for flight legs.
func (s Segment) DepartureAirport() string { return s.MetadataString("departureAirport") }

// ArrivalAirport returns the arrival airport code for flight legs.
func (s Segment) ArrivalAirport() string { return s.MetadataString("arrivalAirport") }
