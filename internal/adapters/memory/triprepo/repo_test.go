package triprepo

import (
	"context"
	"testing"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
)

func TestRepo_ListByAdvisor_FiltersAndSorts(t *testing.T) {
	t.Parallel()

	r := NewRepo()

	start1 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	start2 := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	// Undated trip created later than the first dated one: sorts after all dated.
	tUndated := triprepo.Trip{ID: "t3", AdvisorID: "adv-1", Status: domain.TripStatusDraft, CreatedAt: time.Unix(20, 0).UTC()}
	tDated1 := triprepo.Trip{ID: "t1", AdvisorID: "adv-1", Status: domain.TripStatusPlanning, StartDate: &start1, CreatedAt: time.Unix(10, 0).UTC()}
	tDated2 := triprepo.Trip{ID: "t2", AdvisorID: "adv-1", Status: domain.TripStatusPlanning, StartDate: &start2, CreatedAt: time.Unix(30, 0).UTC()}
	tOther := triprepo.Trip{ID: "t4", AdvisorID: "adv-2", Status: domain.TripStatusDraft, CreatedAt: time.Unix(40, 0).UTC()}

	_ = r.Create(context.Background(), tUndated)
	_ = r.Create(context.Background(), tDated2)
	_ = r.Create(context.Background(), tDated1)
	_ = r.Create(context.Background(), tOther)

	got, err := r.ListByAdvisor(context.Background(), "adv-1")
	if err != nil {
		t.Fatalf("ListByAdvisor() err=%v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len=%d, want 3", len(got))
	}
	if got[0].ID != "t1" || got[1].ID != "t2" || got[2].ID != "t3" {
		t.Fatalf("order=%v, want [t1 t2 t3]", []domain.TripID{got[0].ID, got[1].ID, got[2].ID})
	}
}

func TestRepo_CloneIsolation(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	budget := 10000.0
	in := triprepo.Trip{
		ID:           "t1",
		AdvisorID:    "adv-1",
		Name:         "Kyoto Spring",
		Destinations: []string{"Kyoto"},
		Budget:       &budget,
		Status:       domain.TripStatusDraft,
		CreatedAt:    time.Unix(10, 0).UTC(),
		UpdatedAt:    time.Unix(10, 0).UTC(),
	}
	_ = r.Create(context.Background(), in)

	// Mutating the caller's copy must not affect the stored record.
	in.Destinations[0] = "Osaka"
	*in.Budget = 1

	got, err := r.GetByID(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Destinations[0] != "Kyoto" || *got.Budget != 10000 {
		t.Fatalf("stored record mutated: %+v", got)
	}
}
