package itinerary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/clock"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// Service implements advisor-side itinerary composition: versions, segments,
// variants, day views and flight status snapshots.
type Service struct {
	trips      triprepo.Repository
	versions   versionrepo.Repository
	segments   segmentrepo.Repository
	selections selectionrepo.Repository
	statuses   flightstatus.Store
	clk        clock.Clock
	layovers   domain.LayoverPolicy

	newVersionID func() domain.VersionID
	newSegmentID func() domain.SegmentID
	newVariantID func() domain.VariantID
}

func NewService(
	tripsRepo triprepo.Repository,
	versionsRepo versionrepo.Repository,
	segmentsRepo segmentrepo.Repository,
	selectionsRepo selectionrepo.Repository,
	statuses flightstatus.Store,
	clk clock.Clock,
) *Service {
	return &Service{
		trips:      tripsRepo,
		versions:   versionsRepo,
		segments:   segmentsRepo,
		selections: selectionsRepo,
		statuses:   statuses,
		clk:        clk,
		layovers:   domain.DefaultLayoverPolicy(),
		newVersionID: func() domain.VersionID {
			return domain.VersionID(uuid.NewString())
		},
		newSegmentID: func() domain.SegmentID {
			return domain.SegmentID(uuid.NewString())
		},
		newVariantID: func() domain.VariantID {
			return domain.VariantID(uuid.NewString())
		},
	}
}

// SetNewIDsForTest overrides ID generation for deterministic tests.
func (s *Service) SetNewIDsForTest(
	versionID func() domain.VersionID,
	segmentID func() domain.SegmentID,
	variantID func() domain.VariantID,
) {
	if versionID != nil {
		s.newVersionID = versionID
	}
	if segmentID != nil {
		s.newSegmentID = segmentID
	}
	if variantID != nil {
		s.newVariantID = variantID
	}
}

// --- versions ---

func (s *Service) CreateVersion(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, in CreateVersionInput) (domain.VersionSummary, error) {
	t, err := s.ownedMutableTrip(ctx, advisor, tripID)
	if err != nil {
		return domain.VersionSummary{}, err
	}

	siblings, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return domain.VersionSummary{}, err
	}

	name := domain.NormalizeTitle(in.Name)
	if name == "" {
		name = fmt.Sprintf("Version %d", nextVersionNumber(siblings))
	}

	var source *versionrepo.Version
	if in.DuplicateOf != nil {
		for i := range siblings {
			if siblings[i].ID == *in.DuplicateOf {
				source = &siblings[i]
				break
			}
		}
		if source == nil {
			return domain.VersionSummary{}, &Error{Status: 404, Code: "VERSION_NOT_FOUND", Message: "version to duplicate not found"}
		}
	}

	now := s.clk.Now()
	v := versionrepo.Version{
		ID:           s.newVersionID(),
		TripID:       t.ID,
		Name:         name,
		IsPrimary:    len(siblings) == 0,
		ShowPricing:  true,
		DiscountType: domain.DiscountTypeFixed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if source != nil {
		v.ShowPricing = source.ShowPricing
		v.Discount = source.Discount
		v.DiscountType = source.DiscountType
		v.DiscountLabel = cloneStrPtr(source.DiscountLabel)
	}
	if err := s.versions.Create(ctx, v); err != nil {
		return domain.VersionSummary{}, err
	}

	segmentCount := 0
	if source != nil {
		segmentCount, err = s.copySegments(ctx, source.ID, v.ID, t.ID)
		if err != nil {
			return domain.VersionSummary{}, err
		}
	}

	return versionSummary(v, segmentCount), nil
}

// nextVersionNumber picks the default-name sequence number. Counting siblings
// alone would reuse a number after a middle version is deleted, so the highest
// existing "Version N" suffix wins when it is larger.
func nextVersionNumber(siblings []versionrepo.Version) int {
	next := len(siblings) + 1
	for _, v := range siblings {
		var n int
		if _, err := fmt.Sscanf(v.Name, "Version %d", &n); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// copySegments duplicates the segments (and their variants) of one version
// into another, preserving order. Selections are not copied.
func (s *Service) copySegments(ctx context.Context, from, to domain.VersionID, tripID domain.TripID) (int, error) {
	segs, err := s.segments.ListByVersion(ctx, from)
	if err != nil {
		return 0, err
	}
	now := s.clk.Now()
	for _, seg := range segs {
		variants, err := s.segments.ListVariants(ctx, seg.ID)
		if err != nil {
			return 0, err
		}

		cp := seg
		cp.ID = s.newSegmentID()
		cp.TripID = tripID
		cp.VersionID = to
		cp.Metadata = cloneMetadata(seg.Metadata)
		cp.CreatedAt = now
		cp.UpdatedAt = now
		if err := s.segments.Create(ctx, cp); err != nil {
			return 0, err
		}

		for _, va := range variants {
			vc := va
			vc.ID = s.newVariantID()
			vc.SegmentID = cp.ID
			vc.CreatedAt = now
			vc.UpdatedAt = now
			if err := s.segments.AddVariant(ctx, vc); err != nil {
				return 0, err
			}
		}
	}
	return len(segs), nil
}

func (s *Service) RenameVersion(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID, name string) (domain.VersionSummary, error) {
	_, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	name = domain.NormalizeTitle(name)
	if name == "" {
		return domain.VersionSummary{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid name", Details: map[string]any{"name": "must be non-empty"}}
	}
	v.Name = name
	v.UpdatedAt = s.clk.Now()
	if err := s.versions.Save(ctx, v); err != nil {
		return domain.VersionSummary{}, err
	}
	return s.summaryFor(ctx, v)
}

func (s *Service) SetShowPricing(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID, show bool) (domain.VersionSummary, error) {
	_, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	v.ShowPricing = show
	v.UpdatedAt = s.clk.Now()
	if err := s.versions.Save(ctx, v); err != nil {
		return domain.VersionSummary{}, err
	}
	return s.summaryFor(ctx, v)
}

func (s *Service) SetDiscount(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID, in SetDiscountInput) (domain.VersionSummary, error) {
	_, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	if in.Discount < 0 {
		return domain.VersionSummary{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid discount", Details: map[string]any{"discount": "must be >= 0"}}
	}
	if !domain.ValidDiscountType(in.DiscountType) {
		return domain.VersionSummary{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid discount type", Details: map[string]any{"discountType": "must be fixed or percent"}}
	}
	if in.DiscountType == domain.DiscountTypePercent && in.Discount > 100 {
		return domain.VersionSummary{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid discount", Details: map[string]any{"discount": "percent discount cannot exceed 100"}}
	}
	v.Discount = in.Discount
	v.DiscountType = in.DiscountType
	v.DiscountLabel = cloneStrPtr(in.Label)
	v.UpdatedAt = s.clk.Now()
	if err := s.versions.Save(ctx, v); err != nil {
		return domain.VersionSummary{}, err
	}
	return s.summaryFor(ctx, v)
}

// SetPrimary flips the primary flag to the given version. Exactly one version
// per trip is primary at all times.
func (s *Service) SetPrimary(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) (domain.VersionSummary, error) {
	t, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	if v.IsPrimary {
		return s.summaryFor(ctx, v)
	}
	siblings, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	now := s.clk.Now()
	for _, sib := range siblings {
		if sib.IsPrimary && sib.ID != v.ID {
			sib.IsPrimary = false
			sib.UpdatedAt = now
			if err := s.versions.Save(ctx, sib); err != nil {
				return domain.VersionSummary{}, err
			}
		}
	}
	v.IsPrimary = true
	v.UpdatedAt = now
	if err := s.versions.Save(ctx, v); err != nil {
		return domain.VersionSummary{}, err
	}
	return s.summaryFor(ctx, v)
}

func (s *Service) DeleteVersion(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) error {
	t, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return err
	}
	if v.IsPrimary {
		return &Error{Status: 409, Code: "PRIMARY_VERSION_UNDELETABLE", Message: "the primary version cannot be deleted; make another version primary first"}
	}
	siblings, err := s.versions.ListByTrip(ctx, t.ID)
	if err != nil {
		return err
	}
	if len(siblings) <= 1 {
		return &Error{Status: 409, Code: "LAST_VERSION_UNDELETABLE", Message: "a trip's last version cannot be deleted"}
	}

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
	if err := s.selections.DeleteByVersion(ctx, v.ID); err != nil {
		return err
	}
	if t.ApprovedVersionID != nil && *t.ApprovedVersionID == v.ID {
		t.ApprovedVersionID = nil
		t.ApprovedAt = nil
		t.UpdatedAt = s.clk.Now()
		if err := s.trips.Save(ctx, t); err != nil {
			return err
		}
	}
	return s.versions.Delete(ctx, v.ID)
}

// --- segments ---

func (s *Service) AddSegment(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID, in AddSegmentInput) (domain.Segment, error) {
	t, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return domain.Segment{}, err
	}

	if !domain.ValidSegmentType(in.Type) {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid segment type", Details: map[string]any{"type": "unknown segment type"}}
	}
	if in.DayNumber < 1 {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid day number", Details: map[string]any{"dayNumber": "must be >= 1"}}
	}
	title := domain.NormalizeTitle(in.Title)
	if title == "" {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
	}
	if in.StartTime != nil && in.EndTime != nil && in.EndTime.Before(*in.StartTime) {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid time range", Details: map[string]any{"endTime": "must be on or after startTime"}}
	}
	if in.Cost != nil && *in.Cost < 0 {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid cost", Details: map[string]any{"cost": "must be >= 0"}}
	}
	refundability := in.Refundability
	if refundability == "" {
		refundability = domain.RefundabilityUnknown
	}
	if !domain.ValidRefundability(refundability) {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid refundability", Details: map[string]any{"refundability": "unknown refundability"}}
	}
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = t.Currency
	}

	now := s.clk.Now()
	seg := segmentrepo.Segment{
		ID:                 s.newSegmentID(),
		TripID:             t.ID,
		VersionID:          v.ID,
		Type:               in.Type,
		DayNumber:          in.DayNumber,
		Title:              title,
		Subtitle:           cloneStrPtr(in.Subtitle),
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		ConfirmationNumber: cloneStrPtr(in.ConfirmationNumber),
		Cost:               cloneFloatPtr(in.Cost),
		Currency:           currency,
		Quantity:           quantity,
		PricePerUnit:       cloneFloatPtr(in.PricePerUnit),
		Notes:              cloneStrPtr(in.Notes),
		Refundability:      refundability,
		RefundDeadline:     in.RefundDeadline,
		Metadata:           cloneMetadata(in.Metadata),
		JourneyID:          cloneStrPtr(in.JourneyID),
		PropertyGroupID:    cloneStrPtr(in.PropertyGroupID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.segments.Create(ctx, seg); err != nil {
		return domain.Segment{}, err
	}
	return toDomainSegment(seg), nil
}

func (s *Service) UpdateSegment(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID, in UpdateSegmentInput) (domain.Segment, error) {
	_, seg, err := s.ownedMutableSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return domain.Segment{}, err
	}

	if in.Type.IsSpecified() {
		if in.Type.IsNull() || !domain.ValidSegmentType(in.Type.Value()) {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid segment type", Details: map[string]any{"type": "unknown segment type"}}
		}
		seg.Type = in.Type.Value()
	}
	if in.DayNumber.IsSpecified() {
		if in.DayNumber.IsNull() || in.DayNumber.Value() < 1 {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid day number", Details: map[string]any{"dayNumber": "must be >= 1"}}
		}
		seg.DayNumber = in.DayNumber.Value()
	}
	if in.Title.IsSpecified() {
		if in.Title.IsNull() {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "cannot be null"}}
		}
		title := domain.NormalizeTitle(in.Title.Value())
		if title == "" {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid title", Details: map[string]any{"title": "must be non-empty"}}
		}
		seg.Title = title
	}

	applyOptString(&seg.Subtitle, in.Subtitle)
	applyOptTime(&seg.StartTime, in.StartTime)
	applyOptTime(&seg.EndTime, in.EndTime)
	applyOptString(&seg.ConfirmationNumber, in.ConfirmationNumber)
	applyOptString(&seg.Notes, in.Notes)
	applyOptTime(&seg.RefundDeadline, in.RefundDeadline)
	applyOptString(&seg.JourneyID, in.JourneyID)
	applyOptString(&seg.PropertyGroupID, in.PropertyGroupID)

	if in.Cost.IsSpecified() {
		if in.Cost.IsNull() {
			seg.Cost = nil
		} else {
			v := in.Cost.Value()
			if v < 0 {
				return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid cost", Details: map[string]any{"cost": "must be >= 0"}}
			}
			seg.Cost = &v
		}
	}
	if in.PricePerUnit.IsSpecified() {
		if in.PricePerUnit.IsNull() {
			seg.PricePerUnit = nil
		} else {
			v := in.PricePerUnit.Value()
			seg.PricePerUnit = &v
		}
	}
	if in.Quantity.IsSpecified() && !in.Quantity.IsNull() {
		q := in.Quantity.Value()
		if q < 1 {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid quantity", Details: map[string]any{"quantity": "must be >= 1"}}
		}
		seg.Quantity = q
	}
	if in.Currency.IsSpecified() && !in.Currency.IsNull() {
		cur := strings.ToUpper(strings.TrimSpace(in.Currency.Value()))
		if cur != "" {
			seg.Currency = cur
		}
	}
	if in.Refundability.IsSpecified() {
		r := domain.RefundabilityUnknown
		if !in.Refundability.IsNull() {
			r = in.Refundability.Value()
		}
		if !domain.ValidRefundability(r) {
			return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid refundability", Details: map[string]any{"refundability": "unknown refundability"}}
		}
		seg.Refundability = r
	}
	if in.Metadata.IsSpecified() {
		if in.Metadata.IsNull() {
			seg.Metadata = nil
		} else {
			seg.Metadata = cloneMetadata(in.Metadata.Value())
		}
	}

	if seg.StartTime != nil && seg.EndTime != nil && seg.EndTime.Before(*seg.StartTime) {
		return domain.Segment{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid time range", Details: map[string]any{"endTime": "must be on or after startTime"}}
	}

	seg.UpdatedAt = s.clk.Now()
	if err := s.segments.Save(ctx, seg); err != nil {
		return domain.Segment{}, err
	}
	return toDomainSegment(seg), nil
}

func (s *Service) DeleteSegment(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID) error {
	t, seg, err := s.ownedMutableSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return err
	}

	if err := s.segments.Delete(ctx, seg.ID); err != nil {
		return err
	}
	if err := s.statuses.DeleteBySegment(ctx, seg.ID); err != nil && !errors.Is(err, flightstatus.ErrNotFound) {
		return err
	}

	// Scrub the client's choice for the removed segment, if any.
	rec, err := s.selections.Get(ctx, t.ID, seg.VersionID)
	if err != nil {
		if errors.Is(err, selectionrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if _, ok := rec.ChoiceFor(seg.ID); ok {
		delete(rec.Choices, seg.ID)
		return s.selections.Save(ctx, rec)
	}
	return nil
}

// ReorderDay rearranges one day's segments. orderedIDs must be exactly the
// ids of that day's segments; other days keep their relative order.
func (s *Service) ReorderDay(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID, dayNumber int, orderedIDs []domain.SegmentID) error {
	_, v, err := s.ownedMutableVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return err
	}

	segs, err := s.segments.ListByVersion(ctx, v.ID)
	if err != nil {
		return err
	}

	daySet := make(map[domain.SegmentID]bool)
	dayCount := 0
	for _, seg := range segs {
		if seg.DayNumber == dayNumber {
			daySet[seg.ID] = true
			dayCount++
		}
	}
	if len(orderedIDs) != dayCount {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid order", Details: map[string]any{"segmentIds": "must list every segment of the day exactly once"}}
	}
	seen := make(map[domain.SegmentID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !daySet[id] || seen[id] {
			return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid order", Details: map[string]any{"segmentIds": "must list every segment of the day exactly once"}}
		}
		seen[id] = true
	}

	// Splice the new day order into the global sequence at the day's slots.
	next := 0
	full := make([]domain.SegmentID, 0, len(segs))
	for _, seg := range segs {
		if seg.DayNumber == dayNumber {
			full = append(full, orderedIDs[next])
			next++
		} else {
			full = append(full, seg.ID)
		}
	}
	if err := s.segments.Reorder(ctx, v.ID, full); err != nil {
		if errors.Is(err, segmentrepo.ErrInvalidOrder) {
			return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid order"}
		}
		return err
	}
	return nil
}

// --- variants ---

func (s *Service) AddVariant(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID, in AddVariantInput) (domain.Variant, error) {
	_, seg, err := s.ownedMutableSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return domain.Variant{}, err
	}

	label := domain.NormalizeTitle(in.Label)
	if label == "" {
		return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid label", Details: map[string]any{"label": "must be non-empty"}}
	}
	if !domain.ValidVariantType(in.VariantType) {
		return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid variant type", Details: map[string]any{"variantType": "must be upgrade, downgrade or alternative"}}
	}
	refundability := in.Refundability
	if refundability == "" {
		refundability = domain.RefundabilityUnknown
	}
	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = seg.Currency
	}

	now := s.clk.Now()
	va := segmentrepo.Variant{
		ID:             s.newVariantID(),
		SegmentID:      seg.ID,
		Label:          label,
		VariantType:    in.VariantType,
		Cost:           cloneFloatPtr(in.Cost),
		Currency:       currency,
		Quantity:       quantity,
		PricePerUnit:   cloneFloatPtr(in.PricePerUnit),
		Refundability:  refundability,
		RefundDeadline: in.RefundDeadline,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.segments.AddVariant(ctx, va); err != nil {
		return domain.Variant{}, err
	}

	if !seg.HasVariants {
		seg.HasVariants = true
		seg.UpdatedAt = now
		if err := s.segments.Save(ctx, seg); err != nil {
			return domain.Variant{}, err
		}
	}
	return toDomainVariant(va), nil
}

func (s *Service) UpdateVariant(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, variantID domain.VariantID, in UpdateVariantInput) (domain.Variant, error) {
	va, err := s.segments.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, segmentrepo.ErrVariantNotFound) {
			return domain.Variant{}, &Error{Status: 404, Code: "VARIANT_NOT_FOUND", Message: "variant not found"}
		}
		return domain.Variant{}, err
	}
	if _, _, err := s.ownedMutableSegment(ctx, advisor, tripID, va.SegmentID); err != nil {
		return domain.Variant{}, err
	}

	if in.Label.IsSpecified() {
		if in.Label.IsNull() {
			return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid label", Details: map[string]any{"label": "cannot be null"}}
		}
		label := domain.NormalizeTitle(in.Label.Value())
		if label == "" {
			return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid label", Details: map[string]any{"label": "must be non-empty"}}
		}
		va.Label = label
	}
	if in.VariantType.IsSpecified() {
		if in.VariantType.IsNull() || !domain.ValidVariantType(in.VariantType.Value()) {
			return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid variant type", Details: map[string]any{"variantType": "must be upgrade, downgrade or alternative"}}
		}
		va.VariantType = in.VariantType.Value()
	}
	if in.Cost.IsSpecified() {
		if in.Cost.IsNull() {
			va.Cost = nil
		} else {
			v := in.Cost.Value()
			if v < 0 {
				return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid cost", Details: map[string]any{"cost": "must be >= 0"}}
			}
			va.Cost = &v
		}
	}
	if in.PricePerUnit.IsSpecified() {
		if in.PricePerUnit.IsNull() {
			va.PricePerUnit = nil
		} else {
			v := in.PricePerUnit.Value()
			va.PricePerUnit = &v
		}
	}
	if in.Quantity.IsSpecified() && !in.Quantity.IsNull() {
		q := in.Quantity.Value()
		if q < 1 {
			return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid quantity", Details: map[string]any{"quantity": "must be >= 1"}}
		}
		va.Quantity = q
	}
	if in.Currency.IsSpecified() && !in.Currency.IsNull() {
		cur := strings.ToUpper(strings.TrimSpace(in.Currency.Value()))
		if cur != "" {
			va.Currency = cur
		}
	}
	if in.Refundability.IsSpecified() {
		r := domain.RefundabilityUnknown
		if !in.Refundability.IsNull() {
			r = in.Refundability.Value()
		}
		if !domain.ValidRefundability(r) {
			return domain.Variant{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid refundability", Details: map[string]any{"refundability": "unknown refundability"}}
		}
		va.Refundability = r
	}
	applyOptTime(&va.RefundDeadline, in.RefundDeadline)

	va.UpdatedAt = s.clk.Now()
	if err := s.segments.SaveVariant(ctx, va); err != nil {
		return domain.Variant{}, err
	}
	return toDomainVariant(va), nil
}

func (s *Service) DeleteVariant(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, variantID domain.VariantID) error {
	va, err := s.segments.GetVariant(ctx, variantID)
	if err != nil {
		if errors.Is(err, segmentrepo.ErrVariantNotFound) {
			return &Error{Status: 404, Code: "VARIANT_NOT_FOUND", Message: "variant not found"}
		}
		return err
	}
	t, seg, err := s.ownedMutableSegment(ctx, advisor, tripID, va.SegmentID)
	if err != nil {
		return err
	}

	if err := s.segments.DeleteVariant(ctx, va.ID); err != nil {
		return err
	}

	remaining, err := s.segments.ListVariants(ctx, seg.ID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 && seg.HasVariants {
		seg.HasVariants = false
		seg.UpdatedAt = s.clk.Now()
		if err := s.segments.Save(ctx, seg); err != nil {
			return err
		}
	}

	// A choice pointing at the removed variant falls back to primary.
	rec, err := s.selections.Get(ctx, t.ID, seg.VersionID)
	if err != nil {
		if errors.Is(err, selectionrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	if c, ok := rec.ChoiceFor(seg.ID); ok && c.VariantID != nil && *c.VariantID == va.ID {
		delete(rec.Choices, seg.ID)
		return s.selections.Save(ctx, rec)
	}
	return nil
}

// ReopenSelections unlocks all submitted choices of a version so the client
// can revise them.
func (s *Service) ReopenSelections(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) error {
	t, v, err := s.ownedVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return err
	}
	rec, err := s.selections.Get(ctx, t.ID, v.ID)
	if err != nil {
		if errors.Is(err, selectionrepo.ErrNotFound) {
			return nil
		}
		return err
	}
	rec.Reopen()
	return s.selections.Save(ctx, rec)
}

// --- flight status ---

func (s *Service) RecordFlightStatus(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID, in RecordFlightStatusInput) (domain.FlightStatusSnapshot, error) {
	_, seg, err := s.ownedSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return domain.FlightStatusSnapshot{}, err
	}
	if !seg.Type.IsFlight() {
		return domain.FlightStatusSnapshot{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "flight status applies to flight segments only", Details: map[string]any{"segmentId": "not a flight segment"}}
	}
	if !domain.ValidFlightStatus(in.Status) {
		return domain.FlightStatusSnapshot{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid flight status", Details: map[string]any{"status": "unknown flight status"}}
	}

	snap := domain.FlightStatusSnapshot{
		SegmentID:     seg.ID,
		Status:        in.Status,
		DelayMinutes:  in.DelayMinutes,
		Gate:          cloneStrPtr(in.Gate),
		Terminal:      cloneStrPtr(in.Terminal),
		LastCheckedAt: s.clk.Now(),
	}
	if err := s.statuses.Put(ctx, snap); err != nil {
		return domain.FlightStatusSnapshot{}, err
	}
	return snap, nil
}

func (s *Service) FlightStatus(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID) (domain.FlightStatusSnapshot, error) {
	_, seg, err := s.ownedSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return domain.FlightStatusSnapshot{}, err
	}
	snap, err := s.statuses.Get(ctx, seg.ID)
	if err != nil {
		if errors.Is(err, flightstatus.ErrNotFound) {
			return domain.FlightStatusSnapshot{}, &Error{Status: 404, Code: "FLIGHT_STATUS_NOT_FOUND", Message: "no flight status recorded for segment"}
		}
		return domain.FlightStatusSnapshot{}, err
	}
	return snap, nil
}

// --- authorization helpers ---

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

func (s *Service) ownedMutableTrip(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID) (triprepo.Trip, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return triprepo.Trip{}, err
	}
	if t.Status == domain.TripStatusArchived {
		return triprepo.Trip{}, &Error{Status: 409, Code: "TRIP_ARCHIVED", Message: "trip is archived and cannot be modified"}
	}
	return t, nil
}

func (s *Service) ownedVersion(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) (triprepo.Trip, versionrepo.Version, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return triprepo.Trip{}, versionrepo.Version{}, err
	}
	v, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		if errors.Is(err, versionrepo.ErrNotFound) {
			return triprepo.Trip{}, versionrepo.Version{}, &Error{Status: 404, Code: "VERSION_NOT_FOUND", Message: "version not found"}
		}
		return triprepo.Trip{}, versionrepo.Version{}, err
	}
	if v.TripID != t.ID {
		return triprepo.Trip{}, versionrepo.Version{}, &Error{Status: 404, Code: "VERSION_NOT_FOUND", Message: "version not found"}
	}
	return t, v, nil
}

func (s *Service) ownedMutableVersion(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, versionID domain.VersionID) (triprepo.Trip, versionrepo.Version, error) {
	t, v, err := s.ownedVersion(ctx, advisor, tripID, versionID)
	if err != nil {
		return triprepo.Trip{}, versionrepo.Version{}, err
	}
	if t.Status == domain.TripStatusArchived {
		return triprepo.Trip{}, versionrepo.Version{}, &Error{Status: 409, Code: "TRIP_ARCHIVED", Message: "trip is archived and cannot be modified"}
	}
	return t, v, nil
}

func (s *Service) ownedSegment(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID) (triprepo.Trip, segmentrepo.Segment, error) {
	t, err := s.ownedTrip(ctx, advisor, tripID)
	if err != nil {
		return triprepo.Trip{}, segmentrepo.Segment{}, err
	}
	seg, err := s.segments.GetByID(ctx, segmentID)
	if err != nil {
		if errors.Is(err, segmentrepo.ErrNotFound) {
			return triprepo.Trip{}, segmentrepo.Segment{}, &Error{Status: 404, Code: "SEGMENT_NOT_FOUND", Message: "segment not found"}
		}
		return triprepo.Trip{}, segmentrepo.Segment{}, err
	}
	if seg.TripID != t.ID {
		return triprepo.Trip{}, segmentrepo.Segment{}, &Error{Status: 404, Code: "SEGMENT_NOT_FOUND", Message: "segment not found"}
	}
	return t, seg, nil
}

func (s *Service) ownedMutableSegment(ctx context.Context, advisor domain.AdvisorID, tripID domain.TripID, segmentID domain.SegmentID) (triprepo.Trip, segmentrepo.Segment, error) {
	t, seg, err := s.ownedSegment(ctx, advisor, tripID, segmentID)
	if err != nil {
		return triprepo.Trip{}, segmentrepo.Segment{}, err
	}
	if t.Status == domain.TripStatusArchived {
		return triprepo.Trip{}, segmentrepo.Segment{}, &Error{Status: 409, Code: "TRIP_ARCHIVED", Message: "trip is archived and cannot be modified"}
	}
	return t, seg, nil
}

func (s *Service) summaryFor(ctx context.Context, v versionrepo.Version) (domain.VersionSummary, error) {
	segs, err := s.segments.ListByVersion(ctx, v.ID)
	if err != nil {
		return domain.VersionSummary{}, err
	}
	return versionSummary(v, len(segs)), nil
}

func versionSummary(v versionrepo.Version, segmentCount int) domain.VersionSummary {
	return domain.VersionSummary{
		ID:            v.ID,
		Name:          v.Name,
		IsPrimary:     v.IsPrimary,
		ShowPricing:   v.ShowPricing,
		Discount:      v.Discount,
		DiscountType:  v.DiscountType,
		DiscountLabel: cloneStrPtr(v.DiscountLabel),
		SegmentCount:  segmentCount,
	}
}
