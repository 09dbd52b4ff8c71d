package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/meridian-travel/itinerary-api/internal/adapters/httpapi"
	memflightstatus "github.com/meridian-travel/itinerary-api/internal/adapters/memory/flightstatus"
	memidempotency "github.com/meridian-travel/itinerary-api/internal/adapters/memory/idempotency"
	memsegmentrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/segmentrepo"
	memselectionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/selectionrepo"
	memtriprepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/triprepo"
	memversionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/versionrepo"
	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	pgflightstatus "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/flightstatus"
	pgidempotency "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/idempotency"
	pgsegmentrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/segmentrepo"
	pgselectionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/selectionrepo"
	pgtriprepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/triprepo"
	pgversionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/versionrepo"
	"github.com/meridian-travel/itinerary-api/internal/app/clientshare"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/app/trips"
	"github.com/meridian-travel/itinerary-api/internal/platform/auth"
	platformclock "github.com/meridian-travel/itinerary-api/internal/platform/clock"
	"github.com/meridian-travel/itinerary-api/internal/platform/config"
	"github.com/meridian-travel/itinerary-api/internal/platform/token"
	flightstatusport "github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	idempotencyport "github.com/meridian-travel/itinerary-api/internal/ports/out/idempotency"
	segmentrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	selectionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	triprepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	versionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	clk := platformclock.NewSystemClock()

	// Auth configuration:
	// - Production: HS256 bearer tokens minted for advisors (cmd/advisorjwt)
	// - Local dev: AUTH_MODE=dev trusts the X-Debug-Advisor header
	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case "dev":
		logger.Warn("running with dev auth; do not expose this instance")
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevAdvisor)
	default:
		authn := auth.New(auth.Config{
			Issuer:    cfg.JWTIssuer,
			Audience:  cfg.JWTAudience,
			Secret:    []byte(cfg.JWTSecret),
			TokenTTL:  cfg.JWTTokenTTL,
			ClockSkew: cfg.JWTClockSkew,
		}, clk)
		authMW = httpapi.NewAuthMiddleware(authn)
	}

	var (
		tripRepo      triprepoport.Repository
		versionRepo   versionrepoport.Repository
		segmentRepo   segmentrepoport.Repository
		selectionRepo selectionrepoport.Repository
		statusStore   flightstatusport.Store
		idemStore     idempotencyport.Store
		cleanup       func()
	)

	switch cfg.StorageBackend {
	case "postgres":
		ctx := context.Background()
		if err := postgres.MigrateUp(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		cleanup = pool.Close

		tripRepo = pgtriprepo.NewRepo(pool)
		versionRepo = pgversionrepo.NewRepo(pool)
		segmentRepo = pgsegmentrepo.NewRepo(pool)
		selectionRepo = pgselectionrepo.NewRepo(pool)
		statusStore = pgflightstatus.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool)
	default:
		tripRepo = memtriprepo.NewRepo()
		versionRepo = memversionrepo.NewRepo()
		segmentRepo = memsegmentrepo.NewRepo()
		selectionRepo = memselectionrepo.NewRepo()
		statusStore = memflightstatus.NewStore()
		idemStore = memidempotency.NewStore()
	}

	if cleanup != nil {
		defer cleanup()
	}

	tripSvc := trips.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, statusStore, clk, token.NewShareToken)
	itinSvc := itinerary.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, statusStore, clk)
	shareSvc := clientshare.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, itinSvc, clk)

	api := httpapi.NewServer(tripSvc, itinSvc, shareSvc, idemStore, logger)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{AuthMiddleware: authMW})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
