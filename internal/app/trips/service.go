package trips

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/clock"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// Service implements the advisor-facing trip lifecycle: creation, patching,
// status transitions, sharing, approval invalidation, and hard deletion.
type Service struct {
	trips      triprepo.Repository
	versions   versionrepo.Repository
	segments   segmentrepo.Repository
	selections selectionrepo.Repository
	statuses   flightstatus.Store
	clk        clock.Clock

	newTripID    func() domain.TripID
	newVersionID func() domain.VersionID
	newToken     func() (string, error)
}

func NewService(
	tripsRepo triprepo.Repository,
	versionsRepo versionrepo.Repository,
	segmentsRepo segmentrepo.Repository,
	selectionsRepo selectionrepo.Repository,
	statuses flightstatus.Store,
	clk clock.Clock,
	newToken func() (string, error),
) *Service {
	return &Service{
		trips:      tripsRepo,
		versions:   versionsRepo,
		segments:   segmentsRepo,
		selections: selectionsRepo,
		statuses:   statuses,
		clk:        clk,
		newTripID: func() domain.TripID {
			return domain.TripID(uuid.NewString())
		},
		newVersionID: func() domain.VersionID {
			return domain.VersionID(uuid.NewString())
		},
		newToken: newToken,
	}
}

// SetNewIDsForTest overrides ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewIDsForTest(tripID func() domain.TripID, versionID func() domain.VersionID) {
	if tripID != nil {
		s.newTripID = tripID
	}
	if versionID != nil {
		s.newVersionID = versionID
	}
}

func (s *Service) CreateTrip(ctx context.Context, advisor domain.AdvisorID, in CreateTripInput) (TripCreated, error) {
	name := domain.NormalizeTitle(in.Name)
	if name == "" {
		return TripCreated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return TripCreated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be on or after startDate"}}
	}
	if in.Budget != nil && *in.Budget < 0 {
		return TripCreated{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid budget", Details: map[string]any{"budget": "must be >= 0"}}
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := s.clk.Now()
	id := s.newTripID()
	t := triprepo.Trip{
		ID:           id,
		AdvisorID:    advisor,
		Name:         name,
		Destinations: append([]string(nil), in.Destinations...),
		Notes:        in.Notes,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Status:       domain.TripStatusDraft,
		Budget:       in.Budget,
		Currency:     currency,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.trips.Create(ctx, t); err != nil {
		if errors.Is(err, triprepo.ErrAlreadyExists) {
			// Extremely unlikely (UUID collision); treat as conflict.
			return TripCreated{}, &Error{Status: 409, Code: "TRIP_ID_CONFLICT", Message: "trip id conflict"}
		}
		return TripCreated{}, err
	}

	// Every trip starts with a primary version so segments always have a home.
	vID := s.newVersionID()
	v := versionrepo.Version{
		ID:           vID,
		TripID:       id,
		Name:         "Version 1",
		IsPrimary:    true,
		ShowPricing:  true,
		DiscountType: domain.DiscountTypeFixed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.versions.Create(ctx, v); err != nil {
		return TripCreated{}, err
	}

	return TripCreated{
		ID:               id,
		Status:           domain.TripStatusDraft,
		PrimaryVersionID: vID,
	}, nil
}

func (s *Service) ListTrips(ctx context.Context, advisor domain.AdvisorID) ([]domain.TripSummary, error) {
	ts, err := s.trips.ListByAdvisor(ctx, advisor)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TripSummary, 0, len(ts))
	for _, t := range ts {
		out = append(out, toDomainSummary(t))
	}
	return out, nil
}

func (s *Service) GetTrip(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (domain.TripDetails, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	return s.tripDetailsForTrip(ctx, t)
}

func (s *Service) UpdateTrip(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, in UpdateTripInput) (domain.TripDetails, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	if t.Status == domain.TripStatusArchived {
		return domain.TripDetails{}, &Error{Status: 409, Code: "TRIP_ARCHIVED", Message: "trip is archived and cannot be modified"}
	}

	if in.Name.IsSpecified() {
		if in.Name.IsNull() {
			return domain.TripDetails{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "cannot be null"}}
		}
		name := domain.NormalizeTitle(in.Name.Value())
		if name == "" {
			return domain.TripDetails{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
		}
		t.Name = name
	}

	if in.Destinations.IsSpecified() {
		if in.Destinations.IsNull() {
			t.Destinations = []string{}
		} else {
			t.Destinations = append([]string(nil), in.Destinations.Value()...)
		}
	}

	if in.StartDate.IsSpecified() {
		if in.StartDate.IsNull() {
			t.StartDate = nil
		} else {
			v := in.StartDate.Value().UTC()
			t.StartDate = &v
		}
	}
	if in.EndDate.IsSpecified() {
		if in.EndDate.IsNull() {
			t.EndDate = nil
		} else {
			v := in.EndDate.Value().UTC()
			t.EndDate = &v
		}
	}

	if in.Budget.IsSpecified() {
		if in.Budget.IsNull() {
			t.Budget = nil
		} else {
			v := in.Budget.Value()
			if v < 0 {
				return domain.TripDetails{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid budget", Details: map[string]any{"budget": "must be >= 0"}}
			}
			t.Budget = &v
		}
	}

	if in.Currency.IsSpecified() && !in.Currency.IsNull() {
		cur := strings.ToUpper(strings.TrimSpace(in.Currency.Value()))
		if cur != "" {
			t.Currency = cur
		}
	}

	applyNullableString(&t.Notes, in.Notes)

	// Basic date sanity (if both set).
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return domain.TripDetails{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid date range", Details: map[string]any{"endDate": "must be on or after startDate"}}
	}

	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return domain.TripDetails{}, err
	}
	return s.tripDetailsForTrip(ctx, t)
}

func (s *Service) SetStatus(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, status domain.TripStatus) (domain.TripDetails, error) {
	if !domain.ValidTripStatus(status) {
		return domain.TripDetails{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid status", Details: map[string]any{"status": "unknown trip status"}}
	}
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	if t.Status == status {
		// Idempotent no-op.
		return s.tripDetailsForTrip(ctx, t)
	}
	t.Status = status
	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return domain.TripDetails{}, err
	}
	return s.tripDetailsForTrip(ctx, t)
}

// Archive soft-deletes the trip. Archived trips stay readable but reject
// advisor mutations until unarchived.
func (s *Service) Archive(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (domain.TripDetails, error) {
	return s.SetStatus(ctx, advisor, tripID, domain.TripStatusArchived)
}

func (s *Service) Unarchive(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (domain.TripDetails, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	if t.Status != domain.TripStatusArchived {
		return s.tripDetailsForTrip(ctx, t)
	}
	t.Status = domain.TripStatusPlanning
	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return domain.TripDetails{}, err
	}
	return s.tripDetailsForTrip(ctx, t)
}

// DeleteTrip removes the trip and everything it owns: versions, their
// segments and variants, and selection ledgers.
func (s *Service) DeleteTrip(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) error {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return err
	}

	vs, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return err
	}
	for _, v := range vs {
		segs, err := s.segments.ListByVersion(ctx, v.ID)
		if err != nil {
			return err
		}
		for _, seg := range segs {
			if !seg.Type.IsFlight() {
				continue
			}
			if err := s.statuses.DeleteBySegment(ctx, seg.ID); err != nil && !errors.Is(err, flightstatus.ErrNotFound) {
				return err
			}
		}
		if err := s.segments.DeleteByVersion(ctx, v.ID); err != nil {
			return err
		}
	}
	if err := s.versions.DeleteByTrip(ctx, t.ID); err != nil {
		return err
	}
	if err := s.selections.DeleteByTrip(ctx, t.ID); err != nil {
		return err
	}
	return s.trips.Delete(ctx, t.ID)
}

// EnableSharing issues the trip's share token, generating one on first use.
// Re-enabling returns the existing token (idempotent).
func (s *Service) EnableSharing(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (ShareState, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return ShareState{}, err
	}
	if t.SharingEnabled && t.ShareToken != "" {
		return ShareState{Enabled: true, Token: t.ShareToken}, nil
	}
	if t.ShareToken == "" {
		tok, err := s.newToken()
		if err != nil {
			return ShareState{}, err
		}
		t.ShareToken = tok
	}
	t.SharingEnabled = true
	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return ShareState{}, err
	}
	return ShareState{Enabled: true, Token: t.ShareToken}, nil
}

// DisableSharing revokes client access. The token is kept so a later
// re-enable restores existing client links.
func (s *Service) DisableSharing(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (ShareState, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return ShareState{}, err
	}
	if !t.SharingEnabled {
		return ShareState{Enabled: false, Token: t.ShareToken}, nil
	}
	t.SharingEnabled = false
	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return ShareState{}, err
	}
	return ShareState{Enabled: false, Token: t.ShareToken}, nil
}

// InvalidateApproval clears the trip's approved version. It is an explicit
// advisor action: editing segments never invalidates approval implicitly.
func (s *Service) InvalidateApproval(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (domain.TripDetails, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	if t.ApprovedVersionID == nil {
		// Idempotent no-op.
		return s.tripDetailsForTrip(ctx, t)
	}
	t.ApprovedVersionID = nil
	t.ApprovedAt = nil
	t.UpdatedAt = s.clk.Now()
	if err := s.trips.Save(ctx, t); err != nil {
		return domain.TripDetails{}, err
	}
	return s.tripDetailsForTrip(ctx, t)
}

func (s *Service) ownedTrip(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (triprepo.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			return triprepo.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
		}
		return triprepo.Trip{}, err
	}
	if t.AdvisorID != advisor {
		// Do not reveal existence of other advisors' trips.
		return triprepo.Trip{}, &Error{Status: 404, Code: "TRIP_NOT_FOUND", Message: "trip not found"}
	}
	return t, nil
}

func (s *Service) tripDetailsForTrip(ctx context.Context, t triprepo.Trip) (domain.TripDetails, error) {
	vs, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return domain.TripDetails{}, err
	}
	summaries := make([]domain.VersionSummary, 0, len(vs))
	for _, v := range vs {
		segs, err := s.segments.ListByVersion(ctx, v.ID)
		if err != nil {
			return domain.TripDetails{}, err
		}
		summaries = append(summaries, domain.VersionSummary{
			ID:            v.ID,
			Name:          v.Name,
			IsPrimary:     v.IsPrimary,
			ShowPricing:   v.ShowPricing,
			Discount:      v.Discount,
			DiscountType:  v.DiscountType,
			DiscountLabel: cloneStringPtr(v.DiscountLabel),
			SegmentCount:  len(segs),
		})
	}

	d := domain.TripDetails{
		TripSummary: toDomainSummary(t),
		Notes:       cloneStringPtr(t.Notes),
		Versions:    summaries,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	return d, nil
}

func toDomainSummary(t triprepo.Trip) domain.TripSummary {
	out := domain.TripSummary{
		ID:             t.ID,
		Name:           t.Name,
		Destinations:   append([]string(nil), t.Destinations...),
		StartDate:      cloneTimePtrTrip(t.StartDate),
		EndDate:        cloneTimePtrTrip(t.EndDate),
		Status:         t.Status,
		Currency:       t.Currency,
		SharingEnabled: t.SharingEnabled,
	}
	if t.Budget != nil {
		v := *t.Budget
		out.Budget = &v
	}
	if t.ApprovedVersionID != nil {
		v := *t.ApprovedVersionID
		out.ApprovedVersionID = &v
	}
	return out
}

func applyNullableString(dst **string, o Optional[string]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value()
	*dst = &v
}

func cloneTimePtrTrip(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
