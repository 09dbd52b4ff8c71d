package domain

type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "fixed"
	DiscountTypePercent DiscountType = "percent"
)

// ValidDiscountType reports whether t is a known discount type.
func ValidDiscountType(t DiscountType) bool {
	return t == DiscountTypeFixed || t == DiscountTypePercent
}

// VersionSummary is the read model for one itinerary proposal.
type VersionSummary struct {
	ID        VersionID
	Name      string
	IsPrimary bool

	// ShowPricing controls whether the client-facing view includes costs.
	ShowPricing bool

	Discount      float64
	DiscountType  DiscountType
	DiscountLabel *string

	SegmentCount int
}
