package domain_test

import (
	"testing"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

func costp(v float64) *float64 { return &v }

func costed(id string, cost float64) domain.Segment {
	return domain.Segment{ID: domain.SegmentID(id), Type: domain.SegmentTypeActivity, DayNumber: 1, Cost: costp(cost)}
}

func TestPriceVersion_FixedDiscount(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{costed("s1", 500), costed("s2", 1500)}
	p := domain.PriceVersion(segs, 200, domain.DiscountTypeFixed)
	if p.Subtotal != 2000 || p.DiscountValue != 200 || p.Total != 1800 {
		t.Fatalf("pricing=%+v", p)
	}
}

func TestPriceVersion_PercentDiscountRounds(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{costed("s1", 10000)}
	p := domain.PriceVersion(segs, 10, domain.DiscountTypePercent)
	if p.DiscountValue != 1000 || p.Total != 9000 {
		t.Fatalf("pricing=%+v", p)
	}

	// 333 * 15% = 49.95 -> rounds to 50.
	p = domain.PriceVersion([]domain.Segment{costed("s1", 333)}, 15, domain.DiscountTypePercent)
	if p.DiscountValue != 50 || p.Total != 283 {
		t.Fatalf("pricing=%+v", p)
	}
}

func TestPriceVersion_ZeroDiscountAndMissingCosts(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{
		costed("s1", 750),
		{ID: "s2", Type: domain.SegmentTypeNote, DayNumber: 1}, // nil cost counts as 0
	}
	p := domain.PriceVersion(segs, 0, domain.DiscountTypeFixed)
	if p.Subtotal != 750 || p.DiscountValue != 0 || p.Total != 750 {
		t.Fatalf("pricing=%+v", p)
	}
}

func TestPriceVersion_TotalFloorsAtZero(t *testing.T) {
	t.Parallel()

	p := domain.PriceVersion([]domain.Segment{costed("s1", 100)}, 500, domain.DiscountTypeFixed)
	if p.Total != 0 {
		t.Fatalf("total=%v", p.Total)
	}
	if p.DiscountValue != 500 {
		t.Fatalf("discountValue=%v", p.DiscountValue)
	}
}

func TestGroupSubtotalAndUnitPrice(t *testing.T) {
	t.Parallel()

	rooms := []domain.Segment{costed("h1", 400), costed("h2", 600)}
	if got := domain.GroupSubtotal(rooms); got != 1000 {
		t.Fatalf("subtotal=%v", got)
	}

	explicit := domain.Segment{Cost: costp(900), Quantity: 3, PricePerUnit: costp(290)}
	if up, ok := domain.UnitPrice(explicit); !ok || up != 290 {
		t.Fatalf("unitPrice=%v ok=%v", up, ok)
	}

	derived := domain.Segment{Cost: costp(900), Quantity: 3}
	if up, ok := domain.UnitPrice(derived); !ok || up != 300 {
		t.Fatalf("unitPrice=%v ok=%v", up, ok)
	}

	single := domain.Segment{Cost: costp(900), Quantity: 1}
	if _, ok := domain.UnitPrice(single); ok {
		t.Fatalf("expected no unit price for quantity 1")
	}
}

func TestCompareBudget(t *testing.T) {
	t.Parallel()

	b := 10000.0

	normal := domain.CompareBudget(5000, &b)
	if !normal.Enabled || normal.Status != domain.BudgetNormal || normal.Remaining != 5000 || normal.Percentage != 50 {
		t.Fatalf("normal=%+v", normal)
	}

	warning := domain.CompareBudget(8000, &b)
	if warning.Status != domain.BudgetWarning {
		t.Fatalf("warning=%+v", warning)
	}

	over := domain.CompareBudget(12000, &b)
	if over.Status != domain.BudgetOver || over.Remaining != -2000 {
		t.Fatalf("over=%+v", over)
	}

	// Total equal to budget is 100%: warning, not over.
	atLimit := domain.CompareBudget(10000, &b)
	if atLimit.Status != domain.BudgetWarning {
		t.Fatalf("atLimit=%+v", atLimit)
	}
}

func TestCompareBudget_DisabledWithoutBudget(t *testing.T) {
	t.Parallel()

	if r := domain.CompareBudget(5000, nil); r.Enabled {
		t.Fatalf("enabled with nil budget: %+v", r)
	}
	zero := 0.0
	if r := domain.CompareBudget(5000, &zero); r.Enabled {
		t.Fatalf("enabled with zero budget: %+v", r)
	}
}
