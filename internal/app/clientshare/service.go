package clientshare

import (
	"context"
	"errors"

	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/clock"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// Service implements the token-gated client channel: viewing the shared
// itinerary, choosing variants, submitting a round of choices and approving
// a version. Clients have no accounts; the share token is the credential.
type Service struct {
	trips      triprepo.Repository
	versions   versionrepo.Repository
	segments   segmentrepo.Repository
	selections selectionrepo.Repository
	views      *itinerary.Service
	clk        clock.Clock
}

func NewService(
	tripsRepo triprepo.Repository,
	versionsRepo versionrepo.Repository,
	segmentsRepo segmentrepo.Repository,
	selectionsRepo selectionrepo.Repository,
	views *itinerary.Service,
	clk clock.Clock,
) *Service {
	return &Service{
		trips:      tripsRepo,
		versions:   versionsRepo,
		segments:   segmentsRepo,
		selections: selectionsRepo,
		views:      views,
		clk:        clk,
	}
}

// View returns the shared trip as the client sees it: the approved version
// when one exists, otherwise the primary, with pricing stripped when the
// advisor hides it.
func (s *Service) View(ctx context.Context, token string) (TripView, error) {
	t, err := s.resolveTrip(ctx, token)
	if err != nil {
		return TripView{}, err
	}
	v, err := s.activeVersion(ctx, t)
	if err != nil {
		return TripView{}, err
	}

	view, err := s.views.ComposeVersionView(ctx, t, v)
	if err != nil {
		return TripView{}, err
	}
	if !v.ShowPricing {
		scrubPricing(&view)
	}

	rec, err := s.selectionRecord(ctx, t.ID, v.ID)
	if err != nil {
		return TripView{}, err
	}

	out := TripView{
		TripID:       t.ID,
		TripName:     t.Name,
		Destinations: append([]string(nil), t.Destinations...),
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Status:       t.Status,
		Currency:     t.Currency,
		Version:      view,
		Selections:   selectionViews(view, rec),
		Approved:     t.ApprovedVersionID != nil && *t.ApprovedVersionID == v.ID,
		ApprovedAt:   t.ApprovedAt,
	}
	return out, nil
}

// SelectVariant records the client's choice for a segment. A nil variantID
// chooses the primary option. Selecting on a submitted (locked) segment is a
// silent no-op; re-selecting the same option is idempotent.
func (s *Service) SelectVariant(ctx context.Context, token string, segmentID domain.SegmentID, variantID *domain.VariantID) (SelectionView, error) {
	t, err := s.resolveTrip(ctx, token)
	if err != nil {
		return SelectionView{}, err
	}
	v, err := s.activeVersion(ctx, t)
	if err != nil {
		return SelectionView{}, err
	}

	seg, err := s.segments.GetByID(ctx, segmentID)
	if err != nil {
		if errors.Is(err, segmentrepo.ErrNotFound) {
			return SelectionView{}, &Error{Status: 404, Code: "SEGMENT_NOT_FOUND", Message: "segment not found"}
		}
		return SelectionView{}, err
	}
	if seg.TripID != t.ID || seg.VersionID != v.ID {
		return SelectionView{}, &Error{Status: 404, Code: "SEGMENT_NOT_FOUND", Message: "segment not found"}
	}
	if !seg.HasVariants {
		return SelectionView{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "segment has no variants to choose from", Details: map[string]any{"segmentId": "no variants"}}
	}
	if variantID != nil {
		va, err := s.segments.GetVariant(ctx, *variantID)
		if err != nil {
			if errors.Is(err, segmentrepo.ErrVariantNotFound) {
				return SelectionView{}, &Error{Status: 404, Code: "VARIANT_NOT_FOUND", Message: "variant not found"}
			}
			return SelectionView{}, err
		}
		if va.SegmentID != seg.ID {
			return SelectionView{}, &Error{Status: 404, Code: "VARIANT_NOT_FOUND", Message: "variant not found"}
		}
	}

	rec, err := s.selectionRecord(ctx, t.ID, v.ID)
	if err != nil {
		return SelectionView{}, err
	}
	rec.Select(seg.ID, variantID, s.clk.Now())
	if err := s.selections.Save(ctx, rec); err != nil {
		return SelectionView{}, err
	}

	c, _ := rec.ChoiceFor(seg.ID)
	return SelectionView{
		SegmentID:         seg.ID,
		SelectedVariantID: c.VariantID,
		Submitted:         c.Submitted,
		SubmittedAt:       c.SubmittedAt,
	}, nil
}

// SubmitSelections locks every currently chosen segment. Segments without a
// choice stay open, so submission can happen in rounds.
func (s *Service) SubmitSelections(ctx context.Context, token string) (SubmitResult, error) {
	t, err := s.resolveTrip(ctx, token)
	if err != nil {
		return SubmitResult{}, err
	}
	v, err := s.activeVersion(ctx, t)
	if err != nil {
		return SubmitResult{}, err
	}

	rec, err := s.selectionRecord(ctx, t.ID, v.ID)
	if err != nil {
		return SubmitResult{}, err
	}
	now := s.clk.Now()
	locked := rec.SubmitAll(now)
	if err := s.selections.Save(ctx, rec); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{LockedSegmentIDs: locked, SubmittedAt: now}, nil
}

// ApproveVersion marks the active version as the client-approved itinerary.
// Approving again, or approving after another version was approved,
// overwrites the previous approval.
func (s *Service) ApproveVersion(ctx context.Context, token string) (ApprovalResult, error) {
	t, err := s.resolveTrip(ctx, token)
	if err != nil {
		return ApprovalResult{}, err
	}
	v, err := s.activeVersion(ctx, t)
	if err != nil {
		return ApprovalResult{}, err
	}

	now := s.clk.Now()
	vID := v.ID
	t.ApprovedVersionID = &vID
	t.ApprovedAt = &now
	t.UpdatedAt = now
	if err := s.trips.Save(ctx, t); err != nil {
		return ApprovalResult{}, err
	}

	rec, err := s.selectionRecord(ctx, t.ID, v.ID)
	if err != nil {
		return ApprovalResult{}, err
	}
	rec.ApprovedAt = &now
	if err := s.selections.Save(ctx, rec); err != nil {
		return ApprovalResult{}, err
	}

	return ApprovalResult{TripID: t.ID, VersionID: v.ID, ApprovedAt: now}, nil
}

func (s *Service) resolveTrip(ctx context.Context, token string) (triprepo.Trip, error) {
	if token == "" {
		return triprepo.Trip{}, &Error{
			Status:  403,
			Code:    "SHARE_TOKEN_REQUIRED",
			Message: "a share token is required",
			Details: map[string]any{"requiresToken": true},
		}
	}
	t, err := s.trips.GetByShareToken(ctx, token)
	if err != nil {
		if errors.Is(err, triprepo.ErrNotFound) {
			// Unknown and revoked tokens are indistinguishable; either way the
			// caller holds a credential that no longer opens anything, which is
			// an access problem rather than a missing resource.
			return triprepo.Trip{}, &Error{
				Status:  403,
				Code:    "SHARE_TOKEN_INVALID",
				Message: "the share token is invalid or has been revoked",
				Details: map[string]any{"requiresToken": true},
			}
		}
		return triprepo.Trip{}, err
	}
	return t, nil
}

// activeVersion returns the approved version when it still exists, otherwise
// the primary.
func (s *Service) activeVersion(ctx context.Context, t triprepo.Trip) (versionrepo.Version, error) {
	if t.ApprovedVersionID != nil {
		v, err := s.versions.GetByID(ctx, *t.ApprovedVersionID)
		if err == nil && v.TripID == t.ID {
			return v, nil
		}
		if err != nil && !errors.Is(err, versionrepo.ErrNotFound) {
			return versionrepo.Version{}, err
		}
	}
	vs, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return versionrepo.Version{}, err
	}
	for _, v := range vs {
		if v.IsPrimary {
			return v, nil
		}
	}
	return versionrepo.Version{}, &Error{Status: 404, Code: "VERSION_NOT_FOUND", Message: "trip has no shareable version"}
}

func (s *Service) selectionRecord(ctx context.Context, tripID domain.TripID, versionID domain.VersionID) (domain.SelectionRecord, error) {
	rec, err := s.selections.Get(ctx, tripID, versionID)
	if err != nil {
		if errors.Is(err, selectionrepo.ErrNotFound) {
			return domain.NewSelectionRecord(tripID, versionID), nil
		}
		return domain.SelectionRecord{}, err
	}
	return rec, nil
}

// selectionViews derives the per-segment choice state for every segment that
// offers variants. Absence of a choice means the primary option.
func selectionViews(view itinerary.VersionView, rec domain.SelectionRecord) []SelectionView {
	var out []SelectionView
	for _, day := range view.Days {
		for _, item := range day.Items {
			for _, sv := range itemSegments(item) {
				if !sv.HasVariants {
					continue
				}
				sel := SelectionView{SegmentID: sv.ID}
				if c, ok := rec.ChoiceFor(sv.ID); ok {
					sel.SelectedVariantID = c.VariantID
					sel.Submitted = c.Submitted
					sel.SubmittedAt = c.SubmittedAt
				}
				out = append(out, sel)
			}
		}
	}
	return out
}

func itemSegments(item itinerary.ItemView) []itinerary.SegmentView {
	switch item.Kind {
	case domain.DayItemJourney:
		return item.Journey.Legs
	case domain.DayItemPropertyGroup:
		return item.PropertyGroup.Rooms
	default:
		return []itinerary.SegmentView{*item.Segment}
	}
}

// scrubPricing removes every money field from a view whose version hides
// pricing from clients.
func scrubPricing(view *itinerary.VersionView) {
	view.Pricing = domain.VersionPricing{}
	view.Budget = domain.BudgetReport{}
	view.Discount = 0
	view.DiscountLabel = nil
	for di := range view.Days {
		day := &view.Days[di]
		day.Subtotal = 0
		for ii := range day.Items {
			item := &day.Items[ii]
			switch item.Kind {
			case domain.DayItemJourney:
				item.Journey.Subtotal = 0
				for li := range item.Journey.Legs {
					scrubSegmentPricing(&item.Journey.Legs[li])
				}
			case domain.DayItemPropertyGroup:
				item.PropertyGroup.Subtotal = 0
				for ri := range item.PropertyGroup.Rooms {
					scrubSegmentPricing(&item.PropertyGroup.Rooms[ri])
				}
			default:
				scrubSegmentPricing(item.Segment)
			}
		}
	}
}

func scrubSegmentPricing(sv *itinerary.SegmentView) {
	sv.Cost = nil
	sv.PricePerUnit = nil
	sv.UnitPrice = nil
	for i := range sv.Variants {
		sv.Variants[i].Cost = nil
		sv.Variants[i].PricePerUnit = nil
	}
}
