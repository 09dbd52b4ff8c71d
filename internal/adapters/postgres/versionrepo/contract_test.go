package versionrepo

import (
	"testing"

	"github.com/meridian-travel/itinerary-api/internal/adapters/contracttest"
	"github.com/meridian-travel/itinerary-api/internal/adapters/postgres/testutil"
	versionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

func TestContract_PostgresVersionRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunVersionRepo(t, func(t *testing.T) (versionrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
