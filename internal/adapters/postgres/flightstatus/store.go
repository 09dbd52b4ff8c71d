package flightstatus

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
)

// Store is a Postgres implementation of flightstatus.Store.
type Store struct {
	db postgres.PgxPool
}

func NewStore(db postgres.PgxPool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, segmentID domain.SegmentID) (domain.FlightStatusSnapshot, error) {
	var (
		snap       domain.FlightStatusSnapshot
		id, status string
	)
	err := s.db.QueryRow(ctx, `
		SELECT segment_id, status, delay_minutes, gate, terminal, last_checked_at
		FROM flight_statuses
		WHERE segment_id = $1
	`, string(segmentID)).Scan(
		&id, &status, &snap.DelayMinutes, &snap.Gate, &snap.Terminal, &snap.LastCheckedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FlightStatusSnapshot{}, flightstatus.ErrNotFound
		}
		return domain.FlightStatusSnapshot{}, err
	}
	snap.SegmentID = domain.SegmentID(id)
	snap.Status = domain.FlightStatus(status)
	snap.LastCheckedAt = snap.LastCheckedAt.UTC()
	return snap, nil
}

func (s *Store) Put(ctx context.Context, snap domain.FlightStatusSnapshot) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO flight_statuses (segment_id, status, delay_minutes, gate, terminal, last_checked_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (segment_id) DO UPDATE SET
			status = EXCLUDED.status,
			delay_minutes = EXCLUDED.delay_minutes,
			gate = EXCLUDED.gate,
			terminal = EXCLUDED.terminal,
			last_checked_at = EXCLUDED.last_checked_at
	`,
		string(snap.SegmentID),
		string(snap.Status),
		snap.DelayMinutes,
		snap.Gate,
		snap.Terminal,
		snap.LastCheckedAt.UTC(),
	)
	return err
}

func (s *Store) DeleteBySegment(ctx context.Context, segmentID domain.SegmentID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM flight_statuses WHERE segment_id = $1`, string(segmentID))
	return err
}
