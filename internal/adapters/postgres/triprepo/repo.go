package triprepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
)

// Repo is a Postgres implementation of triprepo.Repository.
type Repo struct {
	db postgres.PgxPool
}

func NewRepo(db postgres.PgxPool) *Repo {
	return &Repo{db: db}
}

const tripColumns = `
	id, advisor_id, name, destinations, notes,
	start_date, end_date, status, budget, currency,
	approved_version_id, approved_at,
	share_token, sharing_enabled,
	created_at, updated_at`

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO trips (
			id, advisor_id, name, destinations, notes,
			start_date, end_date, status, budget, currency,
			approved_version_id, approved_at,
			share_token, sharing_enabled,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, tripArgs(t)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE trips SET
			advisor_id = $2,
			name = $3,
			destinations = $4,
			notes = $5,
			start_date = $6,
			end_date = $7,
			status = $8,
			budget = $9,
			currency = $10,
			approved_version_id = $11,
			approved_at = $12,
			share_token = $13,
			sharing_enabled = $14,
			created_at = $15,
			updated_at = $16
		WHERE id = $1
	`, tripArgs(t)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	row := r.db.QueryRow(ctx, `SELECT`+tripColumns+` FROM trips WHERE id = $1`, string(id))
	return scanTrip(row)
}

func (r *Repo) GetByShareToken(ctx context.Context, token string) (triprepo.Trip, error) {
	row := r.db.QueryRow(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE share_token = $1 AND sharing_enabled
	`, token)
	return scanTrip(row)
}

func (r *Repo) ListByAdvisor(ctx context.Context, advisor domain.AdvisorID) ([]triprepo.Trip, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+tripColumns+`
		FROM trips
		WHERE advisor_id = $1
		ORDER BY start_date ASC NULLS LAST, created_at ASC, id ASC
	`, string(advisor))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []triprepo.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return triprepo.ErrNotFound
	}
	return nil
}

func tripArgs(t triprepo.Trip) []any {
	dests := t.Destinations
	if dests == nil {
		dests = []string{}
	}
	var approved *string
	if t.ApprovedVersionID != nil {
		v := string(*t.ApprovedVersionID)
		approved = &v
	}
	return []any{
		string(t.ID),
		string(t.AdvisorID),
		t.Name,
		dests,
		t.Notes,
		t.StartDate,
		t.EndDate,
		string(t.Status),
		t.Budget,
		t.Currency,
		approved,
		t.ApprovedAt,
		t.ShareToken,
		t.SharingEnabled,
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	}
}

func scanTrip(row pgx.Row) (triprepo.Trip, error) {
	var (
		t        triprepo.Trip
		id       string
		advisor  string
		status   string
		approved *string
	)
	err := row.Scan(
		&id, &advisor, &t.Name, &t.Destinations, &t.Notes,
		&t.StartDate, &t.EndDate, &status, &t.Budget, &t.Currency,
		&approved, &t.ApprovedAt,
		&t.ShareToken, &t.SharingEnabled,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triprepo.Trip{}, triprepo.ErrNotFound
		}
		return triprepo.Trip{}, err
	}
	t.ID = domain.TripID(id)
	t.AdvisorID = domain.AdvisorID(advisor)
	t.Status = domain.TripStatus(status)
	if approved != nil {
		v := domain.VersionID(*approved)
		t.ApprovedVersionID = &v
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
