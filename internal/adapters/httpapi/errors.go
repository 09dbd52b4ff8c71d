package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/meridian-travel/itinerary-api/internal/app/clientshare"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/app/trips"
)

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// ErrorResponse is the error envelope shared by all endpoints.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	er := ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		er.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(er)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// serviceError maps an application error to its HTTP response; anything else
// becomes a logged 500.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		tripsErr *trips.Error
		itinErr  *itinerary.Error
		shareErr *clientshare.Error
	)
	switch {
	case errors.As(err, &tripsErr):
		writeError(w, r, tripsErr.Status, tripsErr.Code, tripsErr.Message, tripsErr.Details)
	case errors.As(err, &itinErr):
		writeError(w, r, itinErr.Status, itinErr.Code, itinErr.Message, itinErr.Details)
	case errors.As(err, &shareErr):
		writeError(w, r, shareErr.Status, shareErr.Code, shareErr.Message, shareErr.Details)
	default:
		s.log().Error("unhandled service error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
	}
}
