package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/meridian-travel/itinerary-api/internal/app/clientshare"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/app/trips"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/idempotency"
)

// Server is the HTTP adapter. It decodes requests, delegates to the
// application services and encodes their results.
type Server struct {
	Trips     *trips.Service
	Itinerary *itinerary.Service
	Share     *clientshare.Service
	Idem      idempotency.Store
	Logger    *zap.Logger
}

func NewServer(tripsSvc *trips.Service, itinSvc *itinerary.Service, shareSvc *clientshare.Service, idem idempotency.Store, logger *zap.Logger) *Server {
	return &Server{
		Trips:     tripsSvc,
		Itinerary: itinSvc,
		Share:     shareSvc,
		Idem:      idem,
		Logger:    logger,
	}
}

func (s *Server) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

// RouterOptions carries deployment-selected middleware.
type RouterOptions struct {
	// AuthMiddleware guards the advisor routes. The share channel is token
	// authenticated and never passes through it.
	AuthMiddleware func(http.Handler) http.Handler
}

// NewRouter constructs the API HTTP router.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint is deliberately unauthenticated (used for infra checks).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Advisor API.
	r.Group(func(r chi.Router) {
		if opts.AuthMiddleware != nil {
			r.Use(opts.AuthMiddleware)
		}

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.handleCreateTrip)
			r.Get("/", s.handleListTrips)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.handleGetTrip)
				r.Patch("/", s.handleUpdateTrip)
				r.Delete("/", s.handleDeleteTrip)

				r.Put("/status", s.handleSetStatus)
				r.Post("/archive", s.handleArchiveTrip)
				r.Post("/unarchive", s.handleUnarchiveTrip)

				r.Post("/share", s.handleEnableSharing)
				r.Delete("/share", s.handleDisableSharing)

				r.Post("/approval/invalidate", s.handleInvalidateApproval)

				r.Route("/versions", func(r chi.Router) {
					r.Post("/", s.handleCreateVersion)

					r.Route("/{versionID}", func(r chi.Router) {
						r.Patch("/", s.handleUpdateVersion)
						r.Delete("/", s.handleDeleteVersion)
						r.Post("/primary", s.handleSetPrimary)

						r.Get("/days", s.handleVersionDays)
						r.Post("/segments", s.handleAddSegment)
						r.Put("/days/{dayNumber}/order", s.handleReorderDay)
						r.Post("/selections/reopen", s.handleReopenSelections)
					})
				})

				r.Route("/segments/{segmentID}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateSegment)
					r.Delete("/", s.handleDeleteSegment)
					r.Post("/variants", s.handleAddVariant)
					r.Put("/flight-status", s.handleRecordFlightStatus)
					r.Get("/flight-status", s.handleGetFlightStatus)
				})

				r.Route("/variants/{variantID}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateVariant)
					r.Delete("/", s.handleDeleteVariant)
				})
			})
		})
	})

	// Client share channel, authenticated by share token only.
	r.Route("/share", func(r chi.Router) {
		r.Get("/trip", s.handleShareView)
		r.Put("/segments/{segmentID}/selection", s.withShareReplay(s.handleShareSelect))
		r.Post("/selections/submit", s.withShareReplay(s.handleShareSubmit))
		r.Post("/approval", s.withShareReplay(s.handleShareApprove))
	})

	return r
}
