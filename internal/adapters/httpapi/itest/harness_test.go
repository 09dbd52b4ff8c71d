package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/adapters/httpapi"
	memflightstatus "github.com/meridian-travel/itinerary-api/internal/adapters/memory/flightstatus"
	memidempotency "github.com/meridian-travel/itinerary-api/internal/adapters/memory/idempotency"
	memsegmentrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/segmentrepo"
	memselectionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/selectionrepo"
	memtriprepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/triprepo"
	memversionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/memory/versionrepo"
	pgflightstatus "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/flightstatus"
	pgidempotency "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/idempotency"
	pgsegmentrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/segmentrepo"
	pgselectionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/selectionrepo"
	postgres_testutil "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/testutil"
	pgtriprepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/triprepo"
	pgversionrepo "github.com/meridian-travel/itinerary-api/internal/adapters/postgres/versionrepo"
	"github.com/meridian-travel/itinerary-api/internal/app/clientshare"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/app/trips"
	"github.com/meridian-travel/itinerary-api/internal/platform/token"
	flightstatusport "github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
	idempotencyport "github.com/meridian-travel/itinerary-api/internal/ports/out/idempotency"
	segmentrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
	selectionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
	triprepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
	versionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type testServer struct {
	baseURL string
	client  *http.Client
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	var (
		tripRepo      triprepoport.Repository
		versionRepo   versionrepoport.Repository
		segmentRepo   segmentrepoport.Repository
		selectionRepo selectionrepoport.Repository
		statusStore   flightstatusport.Store
		idemStore     idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		tripRepo = pgtriprepo.NewRepo(pool)
		versionRepo = pgversionrepo.NewRepo(pool)
		segmentRepo = pgsegmentrepo.NewRepo(pool)
		selectionRepo = pgselectionrepo.NewRepo(pool)
		statusStore = pgflightstatus.NewStore(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendMemory:
		tripRepo = memtriprepo.NewRepo()
		versionRepo = memversionrepo.NewRepo()
		segmentRepo = memsegmentrepo.NewRepo()
		selectionRepo = memselectionrepo.NewRepo()
		statusStore = memflightstatus.NewStore()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	clk := systemClock{}
	tripSvc := trips.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, statusStore, clk, token.NewShareToken)
	itinSvc := itinerary.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, statusStore, clk)
	shareSvc := clientshare.NewService(tripRepo, versionRepo, segmentRepo, selectionRepo, itinSvc, clk)

	api := httpapi.NewServer(tripSvc, itinSvc, shareSvc, idemStore, nil)

	// Integration tests use the dev auth middleware to stay fully local and
	// deterministic. The empty default forces each request to name its
	// advisor explicitly, which also covers the auth-failure path.
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{
		AuthMiddleware: httpapi.NewDevAuthMiddleware(""),
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{baseURL: srv.URL, client: srv.Client()}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

// doJSON performs a request as the given advisor (dev auth header). An empty
// advisor sends no auth at all.
func (s *testServer) doJSON(t *testing.T, method, path, advisor string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if advisor != "" {
		req.Header.Set("X-Debug-Advisor", advisor)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

// doShareJSON performs a client share-channel request with the given token.
func (s *testServer) doShareJSON(t *testing.T, method, path, shareToken string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if shareToken != "" {
		req.Header.Set("X-Share-Token", shareToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}
