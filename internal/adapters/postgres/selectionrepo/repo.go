package selectionrepo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
)

// Repo is a Postgres implementation of selectionrepo.Repository.
//
// The whole ledger is stored as one JSONB document per (trip, version): the
// share channel has a single writer, so last-write-wins on the record is the
// intended concurrency model and a row per choice would buy nothing.
type Repo struct {
	db postgres.PgxPool
}

func NewRepo(db postgres.PgxPool) *Repo {
	return &Repo{db: db}
}

type choiceDoc struct {
	VariantID   *string    `json:"variantId,omitempty"`
	SelectedAt  time.Time  `json:"selectedAt"`
	Submitted   bool       `json:"submitted"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, versionID domain.VersionID) (domain.SelectionRecord, error) {
	var (
		raw        []byte
		approvedAt *time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT choices, approved_at
		FROM selections
		WHERE trip_id = $1 AND version_id = $2
	`, string(tripID), string(versionID)).Scan(&raw, &approvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SelectionRecord{}, selectionrepo.ErrNotFound
		}
		return domain.SelectionRecord{}, err
	}

	var docs map[string]choiceDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.SelectionRecord{}, err
	}

	rec := domain.NewSelectionRecord(tripID, versionID)
	rec.ApprovedAt = approvedAt
	for segID, d := range docs {
		c := domain.Choice{
			SegmentID:   domain.SegmentID(segID),
			SelectedAt:  d.SelectedAt,
			Submitted:   d.Submitted,
			SubmittedAt: d.SubmittedAt,
		}
		if d.VariantID != nil {
			v := domain.VariantID(*d.VariantID)
			c.VariantID = &v
		}
		rec.Choices[c.SegmentID] = c
	}
	return rec, nil
}

func (r *Repo) Save(ctx context.Context, rec domain.SelectionRecord) error {
	docs := make(map[string]choiceDoc, len(rec.Choices))
	for segID, c := range rec.Choices {
		d := choiceDoc{
			SelectedAt:  c.SelectedAt,
			Submitted:   c.Submitted,
			SubmittedAt: c.SubmittedAt,
		}
		if c.VariantID != nil {
			v := string(*c.VariantID)
			d.VariantID = &v
		}
		docs[string(segID)] = d
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO selections (trip_id, version_id, choices, approved_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (trip_id, version_id) DO UPDATE SET
			choices = EXCLUDED.choices,
			approved_at = EXCLUDED.approved_at
	`, string(rec.TripID), string(rec.VersionID), raw, rec.ApprovedAt)
	return err
}

func (r *Repo) DeleteByVersion(ctx context.Context, versionID domain.VersionID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM selections WHERE version_id = $1`, string(versionID))
	return err
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM selections WHERE trip_id = $1`, string(tripID))
	return err
}
