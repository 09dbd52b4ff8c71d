package itinerary

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// VersionDays returns the fully composed itinerary for one version:
// segments grouped into days, journeys and property groups promoted,
// connections analyzed and pricing computed against the trip budget.
func (s *Service) VersionDays(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) (VersionView, error) {
	t, v, err := s.ownedVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return VersionView{}, err
	}
	return s.ComposeVersionView(ctx, t, v)
}

// ComposeVersionView builds the composed view for a version the caller has
// already authorized. The share-channel service reuses it.
func (s *Service) ComposeVersionView(ctx context.Context, t triprepo.Trip, v versionrepo.Version) (VersionView, error) {
	stored, err := s.segments.ListByVersion(ctx, v.ID)
	if err != nil {
		return VersionView{}, err
	}

	segs := make([]domain.Segment, 0, len(stored))
	for _, seg := range stored {
		segs = append(segs, toDomainSegment(seg))
	}

	variantsBySeg := make(map[domain.SegmentID][]domain.Variant)
	for _, seg := range stored {
		if !seg.HasVariants {
			continue
		}
		vas, err := s.segments.ListVariants(ctx, seg.ID)
		if err != nil {
			return VersionView{}, err
		}
		out := make([]domain.Variant, 0, len(vas))
		for _, va := range vas {
			out = append(out, toDomainVariant(va))
		}
		variantsBySeg[seg.ID] = out
	}

	statusBySeg := make(map[domain.SegmentID]domain.FlightStatusSnapshot)
	for _, seg := range segs {
		if !seg.Type.IsFlight() {
			continue
		}
		snap, err := s.statuses.Get(ctx, seg.ID)
		if err != nil {
			if errors.Is(err, flightstatus.ErrNotFound) {
				continue
			}
			return VersionView{}, err
		}
		statusBySeg[seg.ID] = snap
	}

	byDay := domain.SegmentsByDay(segs)
	dayNumbers := make([]int, 0, len(byDay))
	for day := range byDay {
		dayNumbers = append(dayNumbers, day)
	}
	sort.Ints(dayNumbers)

	days := make([]DayView, 0, len(dayNumbers))
	for _, day := range dayNumbers {
		daySegs := byDay[day]
		items := domain.GroupDaySegments(daySegs)

		views := make([]ItemView, 0, len(items))
		for _, item := range items {
			views = append(views, s.itemView(item, variantsBySeg, statusBySeg))
		}
		days = append(days, DayView{
			DayNumber: day,
			Items:     views,
			Subtotal:  domain.GroupSubtotal(daySegs),
		})
	}

	pricing := domain.PriceVersion(segs, v.Discount, v.DiscountType)
	return VersionView{
		ID:            v.ID,
		TripID:        t.ID,
		Name:          v.Name,
		IsPrimary:     v.IsPrimary,
		ShowPricing:   v.ShowPricing,
		Days:          days,
		Discount:      v.Discount,
		DiscountType:  v.DiscountType,
		DiscountLabel: cloneStrPtr(v.DiscountLabel),
		Pricing:       pricing,
		Budget:        domain.CompareBudget(pricing.Total, t.Budget),
		Currency:      t.Currency,
	}, nil
}

func (s *Service) itemView(
	item domain.DayItem,
	variantsBySeg map[domain.SegmentID][]domain.Variant,
	statusBySeg map[domain.SegmentID]domain.FlightStatusSnapshot,
) ItemView {
	switch item.Kind {
	case domain.DayItemJourney:
		j := item.Journey
		legs := make([]SegmentView, 0, len(j.Legs))
		for _, leg := range j.Legs {
			legs = append(legs, s.segmentView(leg, variantsBySeg, statusBySeg))
		}
		conns := make([]ConnectionView, 0, len(j.Legs)-1)
		for i := 0; i+1 < len(j.Legs); i++ {
			conn, ok := s.layovers.AnalyzeConnection(j.Legs[i], j.Legs[i+1])
			if !ok {
				conn = domain.Connection{Label: "Connection"}
			}
			conns = append(conns, ConnectionView{Connection: conn, Known: ok})
		}
		elapsed := ""
		if d, ok := domain.JourneyElapsed(j.Legs); ok {
			elapsed = domain.FormatDuration(d)
		}
		return ItemView{
			Kind: domain.DayItemJourney,
			Journey: &JourneyView{
				ID:          j.ID,
				Legs:        legs,
				Connections: conns,
				Elapsed:     elapsed,
				Subtotal:    domain.GroupSubtotal(j.Legs),
			},
		}

	case domain.DayItemPropertyGroup:
		g := item.PropertyGroup
		rooms := make([]SegmentView, 0, len(g.Rooms))
		for _, room := range g.Rooms {
			rooms = append(rooms, s.segmentView(room, variantsBySeg, statusBySeg))
		}
		return ItemView{
			Kind: domain.DayItemPropertyGroup,
			PropertyGroup: &PropertyGroupView{
				ID:       g.ID,
				Rooms:    rooms,
				Subtotal: domain.GroupSubtotal(g.Rooms),
			},
		}

	default:
		sv := s.segmentView(*item.Segment, variantsBySeg, statusBySeg)
		return ItemView{Kind: domain.DayItemSegment, Segment: &sv}
	}
}

func (s *Service) segmentView(
	seg domain.Segment,
	variantsBySeg map[domain.SegmentID][]domain.Variant,
	statusBySeg map[domain.SegmentID]domain.FlightStatusSnapshot,
) SegmentView {
	sv := SegmentView{Segment: seg}
	sv.Variants = variantsBySeg[seg.ID]
	if up, ok := domain.UnitPrice(seg); ok {
		sv.UnitPrice = &up
	}
	if seg.Type.IsFlight() {
		sv.RedEye = s.layovers.IsRedEye(seg)
		if snap, ok := statusBySeg[seg.ID]; ok {
			c := snap
			sv.FlightStatus = &c
		}
	}
	return sv
}

// --- mapping helpers ---

func toDomainSegment(seg segmentrepo.Segment) domain.Segment {
	return domain.Segment{
		ID:                 seg.ID,
		Type:               seg.Type,
		DayNumber:          seg.DayNumber,
		Title:              seg.Title,
		Subtitle:           cloneStrPtr(seg.Subtitle),
		StartTime:          cloneTime(seg.StartTime),
		EndTime:            cloneTime(seg.EndTime),
		ConfirmationNumber: cloneStrPtr(seg.ConfirmationNumber),
		Cost:               cloneFloatPtr(seg.Cost),
		Currency:           seg.Currency,
		Quantity:           seg.Quantity,
		PricePerUnit:       cloneFloatPtr(seg.PricePerUnit),
		Notes:              cloneStrPtr(seg.Notes),
		Refundability:      seg.Refundability,
		RefundDeadline:     cloneTime(seg.RefundDeadline),
		Metadata:           cloneMetadata(seg.Metadata),
		HasVariants:        seg.HasVariants,
		JourneyID:          cloneStrPtr(seg.JourneyID),
		PropertyGroupID:    cloneStrPtr(seg.PropertyGroupID),
	}
}

func toDomainVariant(va segmentrepo.Variant) domain.Variant {
	return domain.Variant{
		ID:             va.ID,
		SegmentID:      va.SegmentID,
		Label:          va.Label,
		VariantType:    va.VariantType,
		Cost:           cloneFloatPtr(va.Cost),
		Currency:       va.Currency,
		Quantity:       va.Quantity,
		PricePerUnit:   cloneFloatPtr(va.PricePerUnit),
		Refundability:  va.Refundability,
		RefundDeadline: cloneTime(va.RefundDeadline),
	}
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func applyOptString(dst **string, o Optional[string]) {
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

func applyOptTime(dst **time.Time, o Optional[time.Time]) {
	if !o.IsSpecified() {
		return
	}
	if o.IsNull() {
		*dst = nil
		return
	}
	v := o.Value().UTC()
	*dst = &v
}
