package domain

// AdvisorID is the authenticated advisor extracted from JWT claims (typically "sub").
// We model it as an opaque identifier: its format is controlled by the auth issuer.
type AdvisorID string

// TripID is an internal identifier for a trip record.
type TripID string

// VersionID is an internal identifier for one itinerary proposal of a trip.
type VersionID string

// SegmentID is an internal identifier for one bookable unit within a version.
type SegmentID string

// VariantID is an internal identifier for an alternate priced option on a segment.
type VariantID string
