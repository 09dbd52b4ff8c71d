package flightstatus

import (
	"context"
	"errors"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// ErrNotFound indicates no status snapshot has been recorded for the segment.
var ErrNotFound = errors.New("flight status not found")

// Store holds collaborator-provided flight status snapshots.
//
// An external refresher (out of scope) computes status and writes snapshots
// here; this service only reads them back for display.
type Store interface {
	Get(ctx context.Context, segmentID domain.SegmentID) (domain.FlightStatusSnapshot, error)
	Put(ctx context.Context, snap domain.FlightStatusSnapshot) error
	DeleteBySegment(ctx context.Context, segmentID domain.SegmentID) error
}
