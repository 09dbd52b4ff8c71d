package selectionrepo

import (
	"testing"

	"github.com/meridian-travel/itinerary-api/internal/adapters/contracttest"
	"github.com/meridian-travel/itinerary-api/internal/adapters/postgres/testutil"
	selectionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
)

func TestContract_PostgresSelectionRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunSelectionRepo(t, func(t *testing.T) (selectionrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
