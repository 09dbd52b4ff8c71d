package versionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// Repo is a Postgres implementation of versionrepo.Repository.
type Repo struct {
	db postgres.PgxPool
}

func NewRepo(db postgres.PgxPool) *Repo {
	return &Repo{db: db}
}

const versionColumns = `
	id, trip_id, name, is_primary, show_pricing,
	discount, discount_type, discount_label,
	created_at, updated_at`

func (r *Repo) Create(ctx context.Context, v versionrepo.Version) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO versions (
			id, trip_id, name, is_primary, show_pricing,
			discount, discount_type, discount_label,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, versionArgs(v)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return versionrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, v versionrepo.Version) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE versions SET
			trip_id = $2,
			name = $3,
			is_primary = $4,
			show_pricing = $5,
			discount = $6,
			discount_type = $7,
			discount_label = $8,
			created_at = $9,
			updated_at = $10
		WHERE id = $1
	`, versionArgs(v)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return versionrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.VersionID) (versionrepo.Version, error) {
	row := r.db.QueryRow(ctx, `SELECT`+versionColumns+` FROM versions WHERE id = $1`, string(id))
	return scanVersion(row)
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]versionrepo.Version, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+versionColumns+`
		FROM versions
		WHERE trip_id = $1
		ORDER BY created_at ASC, id ASC
	`, string(tripID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []versionrepo.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.VersionID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM versions WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return versionrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM versions WHERE trip_id = $1`, string(tripID))
	return err
}

func versionArgs(v versionrepo.Version) []any {
	return []any{
		string(v.ID),
		string(v.TripID),
		v.Name,
		v.IsPrimary,
		v.ShowPricing,
		v.Discount,
		string(v.DiscountType),
		v.DiscountLabel,
		v.CreatedAt.UTC(),
		v.UpdatedAt.UTC(),
	}
}

func scanVersion(row pgx.Row) (versionrepo.Version, error) {
	var (
		v            versionrepo.Version
		id, tripID   string
		discountType string
	)
	err := row.Scan(
		&id, &tripID, &v.Name, &v.IsPrimary, &v.ShowPricing,
		&v.Discount, &discountType, &v.DiscountLabel,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return versionrepo.Version{}, versionrepo.ErrNotFound
		}
		return versionrepo.Version{}, err
	}
	v.ID = domain.VersionID(id)
	v.TripID = domain.TripID(tripID)
	v.DiscountType = domain.DiscountType(discountType)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v, nil
}
