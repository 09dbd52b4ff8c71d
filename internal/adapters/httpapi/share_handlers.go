package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/idempotency"
)

// shareToken extracts the client share token from the request. The header is
// preferred; the query parameter exists for links opened straight from email.
func shareToken(r *http.Request) string {
	if tok := r.Header.Get("X-Share-Token"); tok != "" {
		return tok
	}
	return r.URL.Query().Get("token")
}

func (s *Server) handleShareView(w http.ResponseWriter, r *http.Request) {
	view, err := s.Share.View(r.Context(), shareToken(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"trip": shareViewDTOFromApp(view)})
}

func (s *Server) handleShareSelect(w http.ResponseWriter, r *http.Request) {
	var req selectVariantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var variantID *domain.VariantID
	if req.VariantID.IsSpecified() && !req.VariantID.IsNull() {
		id := domain.VariantID(req.VariantID.MustGet())
		variantID = &id
	}

	sel, err := s.Share.SelectVariant(r.Context(), shareToken(r), segmentIDParam(r), variantID)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"selection": selectionDTOFromApp(sel)})
}

func (s *Server) handleShareSubmit(w http.ResponseWriter, r *http.Request) {
	res, err := s.Share.SubmitSelections(r.Context(), shareToken(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	locked := make([]string, 0, len(res.LockedSegmentIDs))
	for _, id := range res.LockedSegmentIDs {
		locked = append(locked, string(id))
	}
	respondJSON(w, http.StatusOK, map[string]any{"submission": submitResultDTO{
		LockedSegmentIDs: locked,
		SubmittedAt:      res.SubmittedAt,
	}})
}

func (s *Server) handleShareApprove(w http.ResponseWriter, r *http.Request) {
	res, err := s.Share.ApproveVersion(r.Context(), shareToken(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"approval": approvalDTO{
		TripID:     string(res.TripID),
		VersionID:  string(res.VersionID),
		ApprovedAt: res.ApprovedAt,
	}})
}

// replayRecorder buffers a handler's response so it can be stored for replay.
type replayRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *replayRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *replayRecorder) Write(p []byte) (int, error) {
	rec.body.Write(p)
	return rec.ResponseWriter.Write(p)
}

// withShareReplay makes share-channel mutations safe to retry: a repeated
// request with the same token, path and body gets the stored response of the
// first attempt instead of re-running the operation. Store failures degrade to
// running the handler normally.
func (s *Server) withShareReplay(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := shareToken(r)
		if s.Idem == nil || token == "" {
			next(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "could not read request body", nil)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		fp := idempotency.Fingerprint{
			Token:    token,
			Method:   r.Method,
			Route:    r.URL.Path,
			BodyHash: hex.EncodeToString(sum[:]),
		}

		stored, ok, err := s.Idem.Get(r.Context(), fp)
		if err != nil {
			s.log().Warn("idempotency lookup failed", zap.String("path", r.URL.Path), zap.Error(err))
		} else if ok {
			if stored.ContentType != "" {
				w.Header().Set("Content-Type", stored.ContentType)
			}
			w.WriteHeader(stored.StatusCode)
			_, _ = w.Write(stored.Body)
			return
		}

		rec := &replayRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		// Only successful responses are replayable; errors should be retried
		// for real.
		if rec.status < 200 || rec.status >= 300 {
			return
		}
		putErr := s.Idem.Put(r.Context(), fp, idempotency.Record{
			StatusCode:  rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
			CreatedAt:   time.Now().UTC(),
		})
		if putErr != nil {
			s.log().Warn("idempotency store failed", zap.String("path", r.URL.Path), zap.Error(putErr))
		}
	}
}
