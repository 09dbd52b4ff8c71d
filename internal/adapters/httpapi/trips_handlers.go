package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-travel/itinerary-api/internal/app/trips"
	"github.com/meridian-travel/itinerary-api/internal/domain"
)

func (s *Server) advisor(w http.ResponseWriter, r *http.Request) (domain.AdvisorID, bool) {
	sub, ok := AdvisorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing advisor", nil)
		return "", false
	}
	return domain.AdvisorID(sub), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing request body", nil)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "malformed request body", nil)
		return false
	}
	return true
}

func tripIDParam(r *http.Request) domain.TripID {
	return domain.TripID(chi.URLParam(r, "tripID"))
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req createTripRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.Trips.CreateTrip(r.Context(), advisor, trips.CreateTripInput{
		Name:         req.Name,
		Destinations: req.Destinations,
		StartDate:    timeFromDate(req.StartDate),
		EndDate:      timeFromDate(req.EndDate),
		Budget:       req.Budget,
		Currency:     req.Currency,
		Notes:        req.Notes,
	})
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, tripCreatedDTO{
		ID:               string(created.ID),
		Status:           string(created.Status),
		PrimaryVersionID: string(created.PrimaryVersionID),
	})
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	ts, err := s.Trips.ListTrips(r.Context(), advisor)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	out := make([]tripSummaryDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, tripSummaryDTOFromDomain(t))
	}
	respondJSON(w, http.StatusOK, map[string]any{"trips": out})
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.GetTrip(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req updateTripRequest
	if !decodeBody(w, r, &req) {
		return
	}

	in := trips.UpdateTripInput{
		Destinations: optFromNullable(req.Destinations),
		StartDate:    optTimeFromNullableDate(req.StartDate),
		EndDate:      optTimeFromNullableDate(req.EndDate),
		Budget:       optFromNullable(req.Budget),
		Notes:        optFromNullable(req.Notes),
	}
	if req.Name != nil {
		in.Name = trips.Some(*req.Name)
	}
	if req.Currency != nil {
		in.Currency = trips.Some(*req.Currency)
	}

	t, err := s.Trips.UpdateTrip(r.Context(), advisor, tripIDParam(r), in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	if err := s.Trips.DeleteTrip(r.Context(), advisor, tripIDParam(r)); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	var req setStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := s.Trips.SetStatus(r.Context(), advisor, tripIDParam(r), domain.TripStatus(req.Status))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}

func (s *Server) handleArchiveTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.Archive(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}

func (s *Server) handleUnarchiveTrip(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.Unarchive(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}

func (s *Server) handleEnableSharing(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	st, err := s.Trips.EnableSharing(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shareStateDTO{Enabled: st.Enabled, Token: st.Token})
}

func (s *Server) handleDisableSharing(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	st, err := s.Trips.DisableSharing(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, shareStateDTO{Enabled: st.Enabled})
}

func (s *Server) handleInvalidateApproval(w http.ResponseWriter, r *http.Request) {
	advisor, ok := s.advisor(w, r)
	if !ok {
		return
	}
	t, err := s.Trips.InvalidateApproval(r.Context(), advisor, tripIDParam(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": tripDetailsDTOFromDomain(t)})
}
