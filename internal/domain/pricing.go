package domain

import "math"

// VersionPricing is the priced total for one itinerary proposal.
type VersionPricing struct {
	Subtotal      float64
	DiscountValue float64
	Total         float64
}

// PriceVersion computes a version's pricing from its segments and discount.
// Missing segment costs count as 0. A fixed discount applies directly; a
// percent discount is round(subtotal * discount / 100). The total never goes
// below zero.
func PriceVersion(segs []Segment, discount float64, discountType DiscountType) VersionPricing {
	subtotal := 0.0
	for _, s := range segs {
		subtotal += s.CostValue()
	}

	var value float64
	if discount > 0 {
		switch discountType {
		case DiscountTypePercent:
			value = math.Round(subtotal * discount / 100)
		default:
			value = discount
		}
	}

	return VersionPricing{
		Subtotal:      subtotal,
		DiscountValue: value,
		Total:         math.Max(0, subtotal-value),
	}
}

// GroupSubtotal sums the member costs of a journey or property group.
func GroupSubtotal(segs []Segment) float64 {
	sum := 0.0
	for _, s := range segs {
		sum += s.CostValue()
	}
	return sum
}

// UnitPrice derives a per-unit price for a segment: the explicit pricePerUnit
// when present, else cost/quantity when quantity > 1. The second return is
// false when neither applies.
func UnitPrice(s Segment) (float64, bool) {
	if s.PricePerUnit != nil {
		return *s.PricePerUnit, true
	}
	if s.Quantity > 1 && s.Cost != nil {
		return *s.Cost / float64(s.Quantity), true
	}
	return 0, false
}

type BudgetStatus string

const (
	BudgetNormal  BudgetStatus = "normal"
	BudgetWarning BudgetStatus = "warning"
	BudgetOver    BudgetStatus = "over"
)

// budgetWarningThreshold is the percentage of budget at which a version is
// flagged as approaching the limit.
const budgetWarningThreshold = 80

// BudgetReport compares a version total against the trip budget.
type BudgetReport struct {
	// Enabled is false when the trip has no usable budget (nil or <= 0);
	// the remaining fields are zero values in that case.
	Enabled bool

	Budget     float64
	Total      float64
	Percentage float64
	Remaining  float64
	Status     BudgetStatus
}

// CompareBudget classifies a version total against a trip budget. A nil or
// non-positive budget disables comparison entirely.
func CompareBudget(total float64, budget *float64) BudgetReport {
	if budget == nil || *budget <= 0 {
		return BudgetReport{}
	}
	b := *budget
	pct := total / b * 100

	status := BudgetNormal
	switch {
	case total > b:
		status = BudgetOver
	case pct >= budgetWarningThreshold:
		status = BudgetWarning
	}

	return BudgetReport{
		Enabled:    true,
		Budget:     b,
		Total:      total,
		Percentage: pct,
		Remaining:  b - total,
		Status:     status,
	}
}
