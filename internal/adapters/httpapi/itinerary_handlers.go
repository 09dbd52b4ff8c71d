package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/domain"
)

func versionIDParam(r *http.Request) domain.VersionID {
	return domain.VersionID(chi.URLParam(r, "versionID"))
}

func segmentIDParam(r *http.Request) domain.SegmentID {
	return domain.SegmentID(chi.URLParam(r, "segmentID"))
}

func variantIDParam(r *http.Request) domain.VariantID {
	return domain.VariantID(chi.URLParam(r, "variantID"))
}

func (s *Server) handleCreateVersion(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req createVersionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := itinerary.CreateVersionInput{Name: req.Name}
	if req.DuplicateOf != nil {
		id := domain.VersionID(*req.DuplicateOf)
		in.DuplicateOf = &id
	}
	v, err := s.Itinerary.CreateVersion(r.Context(), advisor, tripIDParam(r), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"version": versionSummaryDTOFromDomain(v)})
}

func (s *Server) handleUpdateVersion(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req updateVersionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ctx := r.Context()
	tripID := tripIDParam(r)
	versionID := versionIDParam(r)

	// Discount fields travel together.
	if (req.Discount == nil) != (req.DiscountType == nil) {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "discount and discountType must be set together", nil)
		return
	}

	var (
		v       domain.VersionSummary
		err     error
		touched bool
	)
	if req.Name != nil {
		touched = true
		if v, err = s.Itinerary.RenameVersion(ctx, advisor, tripID, versionID, *req.Name); err != nil {
			s.serviceError(w, r, err)
			return
		}
	}
	if req.ShowPricing != nil {
		touched = true
		if v, err = s.Itinerary.SetShowPricing(ctx, advisor, tripID, versionID, *req.ShowPricing); err != nil {
			s.serviceError(w, r, err)
			return
		}
	}
	if req.Discount != nil {
		touched = true
		in := itinerary.SetDiscountInput{
			Discount:     *req.Discount,
			DiscountType: domain.DiscountType(*req.DiscountType),
		}
		if req.DiscountLabel.IsSpecified() && !req.DiscountLabel.IsNull() {
			label := req.DiscountLabel.MustGet()
			in.Label = &label
		}
		if v, err = s.Itinerary.SetDiscount(ctx, advisor, tripID, versionID, in); err != nil {
			s.serviceError(w, r, err)
			return
		}
	}
	if !touched {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "empty patch", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"version": versionSummaryDTOFromDomain(v)})
}

func (s *Server) handleSetPrimary(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	v, err := s.Itinerary.SetPrimary(r.Context(), advisor, tripIDParam(r), versionIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"version": versionSummaryDTOFromDomain(v)})
}

func (s *Server) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	if err := s.Itinerary.DeleteVersion(r.Context(), advisor, tripIDParam(r), versionIDParam(r)); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVersionDays(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	view, err := s.Itinerary.VersionDays(r.Context(), advisor, tripIDParam(r), versionIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"version": versionViewDTOFromApp(view)})
}

func (s *Server) handleAddSegment(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req addSegmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	seg, err := s.Itinerary.AddSegment(r.Context(), advisor, tripIDParam(r), versionIDParam(r), itinerary.AddSegmentInput{
		Type:               domain.SegmentType(req.Type),
		DayNumber:          req.DayNumber,
		Title:              req.Title,
		Subtitle:           req.Subtitle,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		ConfirmationNumber: req.ConfirmationNumber,
		Cost:               req.Cost,
		Currency:           req.Currency,
		Quantity:           req.Quantity,
		PricePerUnit:       req.PricePerUnit,
		Notes:              req.Notes,
		Refundability:      domain.Refundability(req.Refundability),
		RefundDeadline:     req.RefundDeadline,
		Metadata:           req.Metadata,
		JourneyID:          req.JourneyID,
		PropertyGroupID:    req.PropertyGroupID,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"segment": segmentDTOFromDomain(seg)})
}

func (s *Server) handleUpdateSegment(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req updateSegmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := itinerary.UpdateSegmentInput{
		Subtitle:           itinOptFromNullable(req.Subtitle),
		StartTime:          itinOptFromNullable(req.StartTime),
		EndTime:            itinOptFromNullable(req.EndTime),
		ConfirmationNumber: itinOptFromNullable(req.ConfirmationNumber),
		Cost:               itinOptFromNullable(req.Cost),
		PricePerUnit:       itinOptFromNullable(req.PricePerUnit),
		Notes:              itinOptFromNullable(req.Notes),
		RefundDeadline:     itinOptFromNullable(req.RefundDeadline),
		Metadata:           itinOptFromNullable(req.Metadata),
		JourneyID:          itinOptFromNullable(req.JourneyID),
		PropertyGroupID:    itinOptFromNullable(req.PropertyGroupID),
	}
	if req.Type != nil {
		in.Type = itinerary.Some(domain.SegmentType(*req.Type))
	}
	if req.DayNumber != nil {
		in.DayNumber = itinerary.Some(*req.DayNumber)
	}
	if req.Title != nil {
		in.Title = itinerary.Some(*req.Title)
	}
	if req.Currency != nil {
		in.Currency = itinerary.Some(*req.Currency)
	}
	if req.Quantity != nil {
		in.Quantity = itinerary.Some(*req.Quantity)
	}
	if req.Refundability != nil {
		in.Refundability = itinerary.Some(domain.Refundability(*req.Refundability))
	}

	seg, err := s.Itinerary.UpdateSegment(r.Context(), advisor, tripIDParam(r), segmentIDParam(r), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"segment": segmentDTOFromDomain(seg)})
}

func (s *Server) handleDeleteSegment(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	if err := s.Itinerary.DeleteSegment(r.Context(), advisor, tripIDParam(r), segmentIDParam(r)); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderDay(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	day, err := strconv.Atoi(chi.URLParam(r, "dayNumber"))
	if err != nil || day < 1 {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid day number", map[string]any{"dayNumber": "must be a positive integer"})
		return
	}
	var req reorderDayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ids := make([]domain.SegmentID, 0, len(req.SegmentIDs))
	for _, id := range req.SegmentIDs {
		ids = append(ids, domain.SegmentID(id))
	}
	if err := s.Itinerary.ReorderDay(r.Context(), advisor, tripIDParam(r), versionIDParam(r), day, ids); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReopenSelections(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	if err := s.Itinerary.ReopenSelections(r.Context(), advisor, tripIDParam(r), versionIDParam(r)); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddVariant(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req addVariantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.Itinerary.AddVariant(r.Context(), advisor, tripIDParam(r), segmentIDParam(r), itinerary.AddVariantInput{
		Label:          req.Label,
		VariantType:    domain.VariantType(req.VariantType),
		Cost:           req.Cost,
		Currency:       req.Currency,
		Quantity:       req.Quantity,
		PricePerUnit:   req.PricePerUnit,
		Refundability:  domain.Refundability(req.Refundability),
		RefundDeadline: req.RefundDeadline,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"variant": variantDTOFromDomain(v)})
}

func (s *Server) handleUpdateVariant(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req updateVariantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := itinerary.UpdateVariantInput{
		Cost:           itinOptFromNullable(req.Cost),
		PricePerUnit:   itinOptFromNullable(req.PricePerUnit),
		RefundDeadline: itinOptFromNullable(req.RefundDeadline),
	}
	if req.Label != nil {
		in.Label = itinerary.Some(*req.Label)
	}
	if req.VariantType != nil {
		in.VariantType = itinerary.Some(domain.VariantType(*req.VariantType))
	}
	if req.Currency != nil {
		in.Currency = itinerary.Some(*req.Currency)
	}
	if req.Quantity != nil {
		in.Quantity = itinerary.Some(*req.Quantity)
	}
	if req.Refundability != nil {
		in.Refundability = itinerary.Some(domain.Refundability(*req.Refundability))
	}

	v, err := s.Itinerary.UpdateVariant(r.Context(), advisor, tripIDParam(r), variantIDParam(r), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"variant": variantDTOFromDomain(v)})
}

func (s *Server) handleDeleteVariant(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	if err := s.Itinerary.DeleteVariant(r.Context(), advisor, tripIDParam(r), variantIDParam(r)); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordFlightStatus(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req flightStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := s.Itinerary.RecordFlightStatus(r.Context(), advisor, tripIDParam(r), segmentIDParam(r), itinerary.RecordFlightStatusInput{
		Status:       domain.FlightStatus(req.Status),
		DelayMinutes: req.DelayMinutes,
		Gate:         req.Gate,
		Terminal:     req.Terminal,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"flightStatus": flightStatusDTOFromDomain(snap)})
}

func (s *Server) handleGetFlightStatus(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	snap, err := s.Itinerary.FlightStatus(r.Context(), advisor, tripIDParam(r), segmentIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"flightStatus": flightStatusDTOFromDomain(snap)})
}
