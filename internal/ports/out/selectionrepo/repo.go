package selectionrepo

import (
	"context"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// Repository persists the per-version client selection ledger.
//
// Records are written with last-write-wins semantics: a single client acting
// through the share channel is the only writer (see the concurrency model).
type Repository interface {
	// Get returns the ledger for (trip, version). If none exists yet,
	// ErrNotFound is returned; callers typically start from
	// domain.NewSelectionRecord.
	Get(ctx context.Context, tripID domain.TripID, versionID domain.VersionID) (domain.SelectionRecord, error)

	// Save upserts the ledger for its (trip, version) key.
	Save(ctx context.Context, r domain.SelectionRecord) error

	DeleteByVersion(ctx context.Context, versionID domain.VersionID) error
	DeleteByTrip(ctx context.Context, tripID domain.TripID) error
}
