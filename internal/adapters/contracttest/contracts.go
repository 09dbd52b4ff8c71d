package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	idempotencyport "github.com/meridian-travel/itinerary-api/internal/ports/out/idempotency"
	segmentrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	selectionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	triprepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	versionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

type CleanupFunc = func()

type TripRepoFactory func(t *testing.T) (triprepoport.Repository, CleanupFunc)
type VersionRepoFactory func(t *testing.T) (versionrepoport.Repository, CleanupFunc)
type SegmentRepoFactory func(t *testing.T) (segmentrepoport.Repository, CleanupFunc)
type SelectionRepoFactory func(t *testing.T) (selectionrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunTripRepo(t *testing.T, newRepo TripRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	tripID := domain.TripID(uuid.NewString())
	if err := repo.Create(ctx, triprepoport.Trip{
		ID:        tripID,
		AdvisorID: "adv-1",
		Name:      "Amalfi Honeymoon",
		Status:    domain.TripStatusDraft,
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// ID uniqueness.
	if err := repo.Create(ctx, triprepoport.Trip{ID: tripID, AdvisorID: "adv-1", Name: "Dup", Status: domain.TripStatusDraft, CreatedAt: now, UpdatedAt: now}); !errors.Is(err, triprepoport.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := repo.GetByID(ctx, tripID)
	if err != nil || got.Name != "Amalfi Honeymoon" {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}

	// Share token resolution requires sharing to be enabled.
	got.ShareToken = "tok-contract"
	got.SharingEnabled = false
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.GetByShareToken(ctx, "tok-contract"); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for disabled sharing, got %v", err)
	}
	got.SharingEnabled = true
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	byToken, err := repo.GetByShareToken(ctx, "tok-contract")
	if err != nil || byToken.ID != tripID {
		t.Fatalf("GetByShareToken: %+v err=%v", byToken, err)
	}

	// Deterministic advisor list ordering: dated before undated.
	dated := time.Unix(5000, 0).UTC()
	datedID := domain.TripID(uuid.NewString())
	if err := repo.Create(ctx, triprepoport.Trip{
		ID:        datedID,
		AdvisorID: "adv-1",
		Name:      "Dated",
		Status:    domain.TripStatusPlanning,
		StartDate: &dated,
		CreatedAt: now.Add(time.Hour),
		UpdatedAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create dated: %v", err)
	}
	ts, err := repo.ListByAdvisor(ctx, "adv-1")
	if err != nil {
		t.Fatalf("ListByAdvisor: %v", err)
	}
	if len(ts) != 2 || ts[0].ID != datedID {
		t.Fatalf("unexpected ordering: %#v", ts)
	}

	if err := repo.Delete(ctx, tripID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, tripID); !errors.Is(err, triprepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func RunVersionRepo(t *testing.T, newRepo VersionRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(2000, 0).UTC()
	tripID := domain.TripID(uuid.NewString())

	v1 := versionrepoport.Version{ID: domain.VersionID(uuid.NewString()), TripID: tripID, Name: "Version 1", IsPrimary: true, DiscountType: domain.DiscountTypeFixed, CreatedAt: now, UpdatedAt: now}
	v2 := versionrepoport.Version{ID: domain.VersionID(uuid.NewString()), TripID: tripID, Name: "Version 2", DiscountType: domain.DiscountTypeFixed, CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)}
	if err := repo.Create(ctx, v1); err != nil {
		t.Fatalf("Create v1: %v", err)
	}
	if err := repo.Create(ctx, v2); err != nil {
		t.Fatalf("Create v2: %v", err)
	}

	vs, err := repo.ListByTrip(ctx, tripID)
	if err != nil {
		t.Fatalf("ListByTrip: %v", err)
	}
	if len(vs) != 2 || vs[0].ID != v1.ID || vs[1].ID != v2.ID {
		t.Fatalf("unexpected ordering: %#v", vs)
	}

	v2.Name = "Plan B"
	if err := repo.Save(ctx, v2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.GetByID(ctx, v2.ID)
	if err != nil || got.Name != "Plan B" {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}

	if err := repo.Delete(ctx, v2.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, v2.ID); !errors.Is(err, versionrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.DeleteByTrip(ctx, tripID); err != nil {
		t.Fatalf("DeleteByTrip: %v", err)
	}
	vs, err = repo.ListByTrip(ctx, tripID)
	if err != nil || len(vs) != 0 {
		t.Fatalf("expected empty list, got %#v err=%v", vs, err)
	}
}

func RunSegmentRepo(t *testing.T, newRepo SegmentRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(3000, 0).UTC()
	tripID := domain.TripID(uuid.NewString())
	versionID := domain.VersionID(uuid.NewString())

	mkSeg := func(title string, day int) segmentrepoport.Segment {
		return segmentrepoport.Segment{
			ID:            domain.SegmentID(uuid.NewString()),
			TripID:        tripID,
			VersionID:     versionID,
			Type:          domain.SegmentTypeActivity,
			DayNumber:     day,
			Title:         title,
			Quantity:      1,
			Refundability: domain.RefundabilityUnknown,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}

	a, b, c := mkSeg("A", 1), mkSeg("B", 1), mkSeg("C", 2)
	for _, s := range []segmentrepoport.Segment{a, b, c} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.Title, err)
		}
	}

	// Insertion order is the version order.
	segs, err := repo.ListByVersion(ctx, versionID)
	if err != nil {
		t.Fatalf("ListByVersion: %v", err)
	}
	if len(segs) != 3 || segs[0].ID != a.ID || segs[1].ID != b.ID || segs[2].ID != c.ID {
		t.Fatalf("unexpected order: %#v", segs)
	}

	// Reorder atomically replaces the sequence.
	if err := repo.Reorder(ctx, versionID, []domain.SegmentID{b.ID, a.ID, c.ID}); err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	segs, _ = repo.ListByVersion(ctx, versionID)
	if segs[0].ID != b.ID || segs[1].ID != a.ID {
		t.Fatalf("order after reorder: %#v", segs)
	}

	// Incomplete or foreign sequences are rejected without changing state.
	if err := repo.Reorder(ctx, versionID, []domain.SegmentID{a.ID, b.ID}); !errors.Is(err, segmentrepoport.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
	if err := repo.Reorder(ctx, versionID, []domain.SegmentID{a.ID, b.ID, domain.SegmentID(uuid.NewString())}); !errors.Is(err, segmentrepoport.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for unknown id, got %v", err)
	}
	segs, _ = repo.ListByVersion(ctx, versionID)
	if segs[0].ID != b.ID {
		t.Fatalf("order changed by failed reorder: %#v", segs)
	}

	// Variants.
	variant := segmentrepoport.Variant{
		ID:            domain.VariantID(uuid.NewString()),
		SegmentID:     a.ID,
		Label:         "Business class",
		VariantType:   domain.VariantTypeUpgrade,
		Quantity:      1,
		Refundability: domain.RefundabilityUnknown,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.AddVariant(ctx, variant); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}
	vars, err := repo.ListVariants(ctx, a.ID)
	if err != nil || len(vars) != 1 || vars[0].Label != "Business class" {
		t.Fatalf("ListVariants: %#v err=%v", vars, err)
	}

	// Deleting a segment removes it from the order and drops its variants.
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetVariant(ctx, variant.ID); !errors.Is(err, segmentrepoport.ErrVariantNotFound) {
		t.Fatalf("expected variant gone, got %v", err)
	}
	segs, _ = repo.ListByVersion(ctx, versionID)
	if len(segs) != 2 || segs[0].ID != b.ID || segs[1].ID != c.ID {
		t.Fatalf("order after delete: %#v", segs)
	}

	if err := repo.DeleteByVersion(ctx, versionID); err != nil {
		t.Fatalf("DeleteByVersion: %v", err)
	}
	segs, _ = repo.ListByVersion(ctx, versionID)
	if len(segs) != 0 {
		t.Fatalf("expected empty version, got %#v", segs)
	}
}

func RunSelectionRepo(t *testing.T, newRepo SelectionRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	tripID := domain.TripID(uuid.NewString())
	versionID := domain.VersionID(uuid.NewString())

	if _, err := repo.Get(ctx, tripID, versionID); !errors.Is(err, selectionrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rec := domain.NewSelectionRecord(tripID, versionID)
	now := time.Unix(4000, 0).UTC()
	vid := domain.VariantID(uuid.NewString())
	rec.Select("seg-1", &vid, now)
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Get(ctx, tripID, versionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	c, ok := got.ChoiceFor("seg-1")
	if !ok || c.VariantID == nil || *c.VariantID != vid {
		t.Fatalf("choice=%+v ok=%v", c, ok)
	}

	// Upsert semantics.
	got.SubmitAll(now.Add(time.Minute))
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save upsert: %v", err)
	}
	again, _ := repo.Get(ctx, tripID, versionID)
	if !again.IsLocked("seg-1") {
		t.Fatalf("expected locked choice after save")
	}

	if err := repo.DeleteByTrip(ctx, tripID); err != nil {
		t.Fatalf("DeleteByTrip: %v", err)
	}
	if _, err := repo.Get(ctx, tripID, versionID); !errors.Is(err, selectionrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Token:    "tok-1",
		Method:   "POST",
		Route:    "/share/{tripId}/submit",
		BodyHash: "",
	}
	rec := idempotencyport.Record{
		StatusCode:  200,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != `{"ok":true}` || got.StatusCode != 200 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte(`{"ok":false}`)
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != `{"ok":false}` {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}
}
