package itinerary_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	memstatus "github.com/meridian-travel/itinerary-api/internal/adapters/memory/flightstatus"
	memsegments "github.com/meridian-travel/itinerary-api/internal/adapters/memory/segmentrepo"
	memselections "github.com/meridian-travel/itinerary-api/internal/adapters/memory/selectionrepo"
	memtrips "github.com/meridian-travel/itinerary-api/internal/adapters/memory/triprepo"
	memversions "github.com/meridian-travel/itinerary-api/internal/adapters/memory/versionrepo"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

const advisor = domain.AdvisorID("adv-1")

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixture struct {
	svc        *itinerary.Service
	trips      *memtrips.Repo
	versions   *memversions.Repo
	segments   *memsegments.Repo
	selections *memselections.Repo
	statuses   *memstatus.Store
	now        time.Time

	tripID    domain.TripID
	primaryID domain.VersionID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		trips:      memtrips.NewRepo(),
		versions:   memversions.NewRepo(),
		segments:   memsegments.NewRepo(),
		selections: memselections.NewRepo(),
		statuses:   memstatus.NewStore(),
		now:        now,
		tripID:     domain.TripID("trip-1"),
		primaryID:  domain.VersionID("ver-1"),
	}
	f.svc = itinerary.NewService(f.trips, f.versions, f.segments, f.selections, f.statuses, fixedClock{t: now})

	verSeq, segSeq, varSeq := 1, 0, 0
	f.svc.SetNewIDsForTest(
		func() domain.VersionID {
			verSeq++
			return domain.VersionID(fmt.Sprintf("ver-%d", verSeq))
		},
		func() domain.SegmentID {
			segSeq++
			return domain.SegmentID(fmt.Sprintf("seg-gen-%d", segSeq))
		},
		func() domain.VariantID {
			varSeq++
			return domain.VariantID(fmt.Sprintf("var-gen-%d", varSeq))
		},
	)

	ctx := context.Background()
	if err := f.trips.Create(ctx, triprepo.Trip{
		ID:        f.tripID,
		AdvisorID: advisor,
		Name:      "Japan 2025",
		Status:    domain.TripStatusPlanning,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	if err := f.versions.Create(ctx, versionrepo.Version{
		ID:           f.primaryID,
		TripID:       f.tripID,
		Name:         "Version 1",
		IsPrimary:    true,
		ShowPricing:  true,
		DiscountType: domain.DiscountTypeFixed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("seed version: %v", err)
	}
	return f
}

func (f *fixture) addSegment(t *testing.T, in itinerary.AddSegmentInput) domain.Segment {
	t.Helper()
	seg, err := f.svc.AddSegment(context.Background(), advisor, f.tripID, f.primaryID, in)
	if err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	return seg
}

func isAppError(err error, status int, code string) bool {
	var appErr *itinerary.Error
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Status == status && appErr.Code == code
}

func TestCreateVersionNamingAndDuplicate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cost := 400.0
	seg := f.addSegment(t, itinerary.AddSegmentInput{
		Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "Park Hyatt", Cost: &cost,
	})
	if _, err := f.svc.AddVariant(ctx, advisor, f.tripID, seg.ID, itinerary.AddVariantInput{
		Label: "Suite upgrade", VariantType: domain.VariantTypeUpgrade,
	}); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}

	// Default name continues the sequence.
	blank, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if blank.Name != "Version 2" {
		t.Fatalf("name = %q, want Version 2", blank.Name)
	}
	if blank.IsPrimary {
		t.Fatalf("second version must not be primary")
	}
	if blank.SegmentCount != 0 {
		t.Fatalf("blank version should be empty, got %d segments", blank.SegmentCount)
	}

	// Duplicating copies segments and variants with fresh identities.
	dup, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{
		Name:        "Client revision",
		DuplicateOf: &f.primaryID,
	})
	if err != nil {
		t.Fatalf("CreateVersion duplicate: %v", err)
	}
	if dup.SegmentCount != 1 {
		t.Fatalf("duplicate should carry 1 segment, got %d", dup.SegmentCount)
	}
	copied, err := f.segments.ListByVersion(ctx, dup.ID)
	if err != nil {
		t.Fatalf("ListByVersion: %v", err)
	}
	if copied[0].ID == seg.ID {
		t.Fatalf("copied segment must get a new id")
	}
	if !copied[0].HasVariants {
		t.Fatalf("copied segment should keep its variants")
	}
	vars, err := f.segments.ListVariants(ctx, copied[0].ID)
	if err != nil || len(vars) != 1 {
		t.Fatalf("copied variants = %v, %v", vars, err)
	}

	// Duplicating a foreign version 404s.
	other := domain.VersionID("ver-elsewhere")
	if _, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{DuplicateOf: &other}); !isAppError(err, 404, "VERSION_NOT_FOUND") {
		t.Fatalf("foreign duplicate: got %v", err)
	}
}

func TestSetPrimaryFlipsExactlyOne(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{Name: "B"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	got, err := f.svc.SetPrimary(ctx, advisor, f.tripID, second.ID)
	if err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	if !got.IsPrimary {
		t.Fatalf("target should be primary")
	}

	all, err := f.versions.ListByTrip(ctx, f.tripID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	primaries := 0
	for _, v := range all {
		if v.IsPrimary {
			primaries++
			if v.ID != second.ID {
				t.Fatalf("wrong version is primary: %s", v.ID)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("primaries = %d, want 1", primaries)
	}

	// Idempotent.
	if _, err := f.svc.SetPrimary(ctx, advisor, f.tripID, second.ID); err != nil {
		t.Fatalf("idempotent SetPrimary: %v", err)
	}
}

func TestDeleteVersionGuards(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	// Sole version: primary guard fires first.
	if err := f.svc.DeleteVersion(ctx, advisor, f.tripID, f.primaryID); !isAppError(err, 409, "PRIMARY_VERSION_UNDELETABLE") {
		t.Fatalf("delete primary: got %v", err)
	}

	second, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{Name: "B"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}

	// Approve the second version, then delete it: approval must clear.
	tr, err := f.trips.GetByID(ctx, f.tripID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	vID := second.ID
	tr.ApprovedVersionID = &vID
	tr.ApprovedAt = &f.now
	if err := f.trips.Save(ctx, tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := f.svc.DeleteVersion(ctx, advisor, f.tripID, second.ID); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}
	tr, err = f.trips.GetByID(ctx, f.tripID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if tr.ApprovedVersionID != nil {
		t.Fatalf("approval should have been cleared with the version")
	}
	if _, err := f.versions.GetByID(ctx, second.ID); !errors.Is(err, versionrepo.ErrNotFound) {
		t.Fatalf("version should be gone, got %v", err)
	}
}

func TestDeleteVersionSweepsFlightStatuses(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{Name: "B"})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	seg, err := f.svc.AddSegment(ctx, advisor, f.tripID, second.ID, itinerary.AddSegmentInput{
		Type: domain.SegmentTypeFlight, DayNumber: 1, Title: "NH 7 ORD-HND",
	})
	if err != nil {
		t.Fatalf("AddSegment: %v", err)
	}
	if _, err := f.svc.RecordFlightStatus(ctx, advisor, f.tripID, seg.ID, itinerary.RecordFlightStatusInput{
		Status: domain.FlightStatusOnTime,
	}); err != nil {
		t.Fatalf("RecordFlightStatus: %v", err)
	}

	if err := f.svc.DeleteVersion(ctx, advisor, f.tripID, second.ID); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}
	if _, err := f.statuses.Get(ctx, seg.ID); !errors.Is(err, flightstatus.ErrNotFound) {
		t.Fatalf("snapshot should be gone with its version, got %v", err)
	}
}

func TestCreateVersionNamingSkipsDeletedNumbers(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	second, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	third, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if second.Name != "Version 2" || third.Name != "Version 3" {
		t.Fatalf("names = %q, %q", second.Name, third.Name)
	}

	// Deleting a middle version must not make the next default name collide
	// with "Version 3".
	if err := f.svc.DeleteVersion(ctx, advisor, f.tripID, second.ID); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}
	fourth, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{})
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	if fourth.Name != "Version 4" {
		t.Fatalf("name = %q, want Version 4", fourth.Name)
	}
}

func TestAddSegmentValidatesAndAppends(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddSegment(ctx, advisor, f.tripID, f.primaryID, itinerary.AddSegmentInput{
		Type: "submarine", DayNumber: 1, Title: "x",
	}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("bad type: got %v", err)
	}
	if _, err := f.svc.AddSegment(ctx, advisor, f.tripID, f.primaryID, itinerary.AddSegmentInput{
		Type: domain.SegmentTypeHotel, DayNumber: 0, Title: "x",
	}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("day 0: got %v", err)
	}

	a := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "First"})
	b := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeActivity, DayNumber: 1, Title: "Second"})

	segs, err := f.segments.ListByVersion(ctx, f.primaryID)
	if err != nil {
		t.Fatalf("ListByVersion: %v", err)
	}
	if len(segs) != 2 || segs[0].ID != a.ID || segs[1].ID != b.ID {
		t.Fatalf("unexpected order: %+v", segs)
	}
	// Segment currency defaults to the trip currency.
	if segs[0].Currency != "USD" {
		t.Fatalf("currency = %q", segs[0].Currency)
	}
	if segs[0].Quantity != 1 {
		t.Fatalf("quantity should default to 1, got %d", segs[0].Quantity)
	}
}

func TestUpdateSegmentPatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	cost := 250.0
	seg := f.addSegment(t, itinerary.AddSegmentInput{
		Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "Hotel", Cost: &cost,
	})

	got, err := f.svc.UpdateSegment(ctx, advisor, f.tripID, seg.ID, itinerary.UpdateSegmentInput{
		Title:     itinerary.Some("  Renamed   Hotel "),
		Cost:      itinerary.Null[float64](),
		DayNumber: itinerary.Some(3),
	})
	if err != nil {
		t.Fatalf("UpdateSegment: %v", err)
	}
	if got.Title != "Renamed Hotel" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Cost != nil {
		t.Fatalf("cost should be cleared")
	}
	if got.DayNumber != 3 {
		t.Fatalf("dayNumber = %d", got.DayNumber)
	}

	if _, err := f.svc.UpdateSegment(ctx, advisor, f.tripID, seg.ID, itinerary.UpdateSegmentInput{
		DayNumber: itinerary.Some(0),
	}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("day 0: got %v", err)
	}
}

func TestReorderDaySplicesWithinGlobalOrder(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	d1a := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeActivity, DayNumber: 1, Title: "d1a"})
	d2a := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeActivity, DayNumber: 2, Title: "d2a"})
	d1b := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeActivity, DayNumber: 1, Title: "d1b"})

	if err := f.svc.ReorderDay(ctx, advisor, f.tripID, f.primaryID, 1, []domain.SegmentID{d1b.ID, d1a.ID}); err != nil {
		t.Fatalf("ReorderDay: %v", err)
	}

	segs, err := f.segments.ListByVersion(ctx, f.primaryID)
	if err != nil {
		t.Fatalf("ListByVersion: %v", err)
	}
	want := []domain.SegmentID{d1b.ID, d2a.ID, d1a.ID}
	for i, w := range want {
		if segs[i].ID != w {
			t.Fatalf("order[%d] = %s, want %s", i, segs[i].ID, w)
		}
	}

	// Wrong day membership is rejected.
	if err := f.svc.ReorderDay(ctx, advisor, f.tripID, f.primaryID, 1, []domain.SegmentID{d1a.ID, d2a.ID}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("cross-day reorder: got %v", err)
	}
	// Incomplete list is rejected.
	if err := f.svc.ReorderDay(ctx, advisor, f.tripID, f.primaryID, 1, []domain.SegmentID{d1a.ID}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("incomplete reorder: got %v", err)
	}
}

func TestVariantLifecycleMaintainsHasVariants(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	seg := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "Hotel"})

	va, err := f.svc.AddVariant(ctx, advisor, f.tripID, seg.ID, itinerary.AddVariantInput{
		Label: "Ocean view", VariantType: domain.VariantTypeUpgrade,
	})
	if err != nil {
		t.Fatalf("AddVariant: %v", err)
	}
	stored, err := f.segments.GetByID(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.HasVariants {
		t.Fatalf("HasVariants should be set after first variant")
	}

	renamed, err := f.svc.UpdateVariant(ctx, advisor, f.tripID, va.ID, itinerary.UpdateVariantInput{
		Label: itinerary.Some("Ocean view suite"),
	})
	if err != nil {
		t.Fatalf("UpdateVariant: %v", err)
	}
	if renamed.Label != "Ocean view suite" {
		t.Fatalf("label = %q", renamed.Label)
	}

	// A client choice for this variant reverts to primary on deletion.
	rec := domain.NewSelectionRecord(f.tripID, f.primaryID)
	vID := va.ID
	rec.Select(seg.ID, &vID, f.now)
	if err := f.selections.Save(ctx, rec); err != nil {
		t.Fatalf("seed selection: %v", err)
	}

	if err := f.svc.DeleteVariant(ctx, advisor, f.tripID, va.ID); err != nil {
		t.Fatalf("DeleteVariant: %v", err)
	}
	stored, err = f.segments.GetByID(ctx, seg.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.HasVariants {
		t.Fatalf("HasVariants should clear after last variant removed")
	}
	rec, err = f.selections.Get(ctx, f.tripID, f.primaryID)
	if err != nil {
		t.Fatalf("selections.Get: %v", err)
	}
	if _, ok := rec.ChoiceFor(seg.ID); ok {
		t.Fatalf("choice for deleted variant should be scrubbed")
	}
}

func TestFlightStatusRoundTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	hotel := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "Hotel"})
	flight := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeFlight, DayNumber: 1, Title: "NH 9"})

	if _, err := f.svc.RecordFlightStatus(ctx, advisor, f.tripID, hotel.ID, itinerary.RecordFlightStatusInput{
		Status: domain.FlightStatusOnTime,
	}); !isAppError(err, 422, "VALIDATION_ERROR") {
		t.Fatalf("status on hotel: got %v", err)
	}

	delay := 25
	gate := "54A"
	if _, err := f.svc.RecordFlightStatus(ctx, advisor, f.tripID, flight.ID, itinerary.RecordFlightStatusInput{
		Status: domain.FlightStatusDelayed, DelayMinutes: &delay, Gate: &gate,
	}); err != nil {
		t.Fatalf("RecordFlightStatus: %v", err)
	}

	snap, err := f.svc.FlightStatus(ctx, advisor, f.tripID, flight.ID)
	if err != nil {
		t.Fatalf("FlightStatus: %v", err)
	}
	if snap.Status != domain.FlightStatusDelayed || snap.DelayMinutes == nil || *snap.DelayMinutes != 25 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !snap.LastCheckedAt.Equal(f.now) {
		t.Fatalf("LastCheckedAt = %v", snap.LastCheckedAt)
	}

	if _, err := f.svc.FlightStatus(ctx, advisor, f.tripID, hotel.ID); !isAppError(err, 404, "FLIGHT_STATUS_NOT_FOUND") {
		t.Fatalf("missing snapshot: got %v", err)
	}
}

func TestMutationsRejectedOnArchivedTrip(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	seg := f.addSegment(t, itinerary.AddSegmentInput{Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "Hotel"})

	tr, err := f.trips.GetByID(ctx, f.tripID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	tr.Status = domain.TripStatusArchived
	if err := f.trips.Save(ctx, tr); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := f.svc.CreateVersion(ctx, advisor, f.tripID, itinerary.CreateVersionInput{}); !isAppError(err, 409, "TRIP_ARCHIVED") {
		t.Fatalf("CreateVersion on archived: got %v", err)
	}
	if _, err := f.svc.AddSegment(ctx, advisor, f.tripID, f.primaryID, itinerary.AddSegmentInput{
		Type: domain.SegmentTypeHotel, DayNumber: 1, Title: "x",
	}); !isAppError(err, 409, "TRIP_ARCHIVED") {
		t.Fatalf("AddSegment on archived: got %v", err)
	}
	if _, err := f.svc.UpdateSegment(ctx, advisor, f.tripID, seg.ID, itinerary.UpdateSegmentInput{
		Title: itinerary.Some("y"),
	}); !isAppError(err, 409, "TRIP_ARCHIVED") {
		t.Fatalf("UpdateSegment on archived: got %v", err)
	}

	// Reads still work.
	if _, err := f.svc.VersionDays(ctx, advisor, f.tripID, f.primaryID); err != nil {
		t.Fatalf("VersionDays on archived: %v", err)
	}
}

func TestOwnershipHidesForeignTrips(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.VersionDays(ctx, domain.AdvisorID("adv-2"), f.tripID, f.primaryID); !isAppError(err, 404, "TRIP_NOT_FOUND") {
		t.Fatalf("foreign advisor: got %v", err)
	}
}
