package versionrepo

import (
	"testing"

	"github.com/meridian-travel/itinerary-api/internal/adapters/contracttest"
	versionrepoport "github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

func TestContract_VersionRepo(t *testing.T) {
	contracttest.RunVersionRepo(t, func(t *testing.T) (versionrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
