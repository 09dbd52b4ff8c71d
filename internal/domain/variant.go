package domain

import "time"

type VariantType string

const (
	VariantTypeUpgrade     VariantType = "upgrade"
	VariantTypeDowngrade   VariantType = "downgrade"
	VariantTypeAlternative VariantType = "alternative"
)

// ValidVariantType reports whether t is a known variant type.
func ValidVariantType(t VariantType) bool {
	switch t {
	case VariantTypeUpgrade, VariantTypeDowngrade, VariantTypeAlternative:
		return true
	}
	return false
}

// Variant is an alternate priced option attached to a specific segment
// (e.g. a cabin upgrade). Selection state is not stored here; it is derived
// from the version's SelectionRecord.
type Variant struct {
	ID        VariantID
	SegmentID SegmentID

	Label       string
	VariantType VariantType

	Cost         *float64
	Currency     string
	Quantity     int
	PricePerUnit *float64

	Refundability  Refundability
	RefundDeadline *time.Time
}

// CostValue returns the variant cost, defaulting a missing cost to 0.
func (v Variant) CostValue() float64 {
	if v.Cost == nil {
		return 0
	}
	return *v.Cost
}
