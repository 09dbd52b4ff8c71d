package segmentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	postgres "github.com/meridian-travel/itinerary-api/internal/adapters/postgres"
	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
)

// Repo is a Postgres implementation of segmentrepo.Repository.
//
// The version-wide segment order is materialized in the position column;
// Create appends, Reorder rewrites the column transactionally.
type Repo struct {
	db postgres.PgxPool
}

func NewRepo(db postgres.PgxPool) *Repo {
	return &Repo{db: db}
}

const segmentColumns = `
	id, trip_id, version_id, type, day_number,
	title, subtitle, start_time, end_time, confirmation_number,
	cost, currency, quantity, price_per_unit, notes,
	refundability, refund_deadline, metadata, has_variants,
	journey_id, property_group_id,
	created_at, updated_at`

func (r *Repo) Create(ctx context.Context, s segmentrepo.Segment) error {
	args := append([]any{}, segmentArgs(s)...)
	_, err := r.db.Exec(ctx, `
		INSERT INTO segments (
			id, trip_id, version_id, type, day_number,
			title, subtitle, start_time, end_time, confirmation_number,
			cost, currency, quantity, price_per_unit, notes,
			refundability, refund_deadline, metadata, has_variants,
			journey_id, property_group_id,
			created_at, updated_at, position
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM segments WHERE version_id = $3)
		)
	`, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return segmentrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) Save(ctx context.Context, s segmentrepo.Segment) error {
	args := append([]any{}, segmentArgs(s)...)
	tag, err := r.db.Exec(ctx, `
		UPDATE segments SET
			trip_id = $2,
			version_id = $3,
			type = $4,
			day_number = $5,
			title = $6,
			subtitle = $7,
			start_time = $8,
			end_time = $9,
			confirmation_number = $10,
			cost = $11,
			currency = $12,
			quantity = $13,
			price_per_unit = $14,
			notes = $15,
			refundability = $16,
			refund_deadline = $17,
			metadata = $18,
			has_variants = $19,
			journey_id = $20,
			property_group_id = $21,
			created_at = $22,
			updated_at = $23
		WHERE id = $1
	`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return segmentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.SegmentID) (segmentrepo.Segment, error) {
	row := r.db.QueryRow(ctx, `SELECT`+segmentColumns+` FROM segments WHERE id = $1`, string(id))
	return scanSegment(row)
}

func (r *Repo) ListByVersion(ctx context.Context, versionID domain.VersionID) ([]segmentrepo.Segment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+segmentColumns+`
		FROM segments
		WHERE version_id = $1
		ORDER BY position ASC
	`, string(versionID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []segmentrepo.Segment
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, id domain.SegmentID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM segments WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return segmentrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) DeleteByVersion(ctx context.Context, versionID domain.VersionID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM segments WHERE version_id = $1`, string(versionID))
	return err
}

func (r *Repo) Reorder(ctx context.Context, versionID domain.VersionID, orderedIDs []domain.SegmentID) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id FROM segments WHERE version_id = $1 FOR UPDATE
		`, string(versionID))
		if err != nil {
			return err
		}
		current := make(map[string]bool)
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			current[id] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(orderedIDs) != len(current) {
			return segmentrepo.ErrInvalidOrder
		}
		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			s := string(id)
			if !current[s] || seen[s] {
				return segmentrepo.ErrInvalidOrder
			}
			seen[s] = true
		}

		for pos, id := range orderedIDs {
			if _, err := tx.Exec(ctx, `
				UPDATE segments SET position = $1 WHERE id = $2
			`, pos, string(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repo) AddVariant(ctx context.Context, v segmentrepo.Variant) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO variants (
			id, segment_id, label, variant_type,
			cost, currency, quantity, price_per_unit,
			refundability, refund_deadline,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, variantArgs(v)...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return segmentrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) SaveVariant(ctx context.Context, v segmentrepo.Variant) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE variants SET
			segment_id = $2,
			label = $3,
			variant_type = $4,
			cost = $5,
			currency = $6,
			quantity = $7,
			price_per_unit = $8,
			refundability = $9,
			refund_deadline = $10,
			created_at = $11,
			updated_at = $12
		WHERE id = $1
	`, variantArgs(v)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return segmentrepo.ErrVariantNotFound
	}
	return nil
}

const variantColumns = `
	id, segment_id, label, variant_type,
	cost, currency, quantity, price_per_unit,
	refundability, refund_deadline,
	created_at, updated_at`

func (r *Repo) GetVariant(ctx context.Context, id domain.VariantID) (segmentrepo.Variant, error) {
	row := r.db.QueryRow(ctx, `SELECT`+variantColumns+` FROM variants WHERE id = $1`, string(id))
	return scanVariant(row)
}

func (r *Repo) ListVariants(ctx context.Context, segmentID domain.SegmentID) ([]segmentrepo.Variant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+variantColumns+`
		FROM variants
		WHERE segment_id = $1
		ORDER BY created_at ASC, id ASC
	`, string(segmentID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []segmentrepo.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteVariant(ctx context.Context, id domain.VariantID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM variants WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return segmentrepo.ErrVariantNotFound
	}
	return nil
}

func segmentArgs(s segmentrepo.Segment) []any {
	return []any{
		string(s.ID),
		string(s.TripID),
		string(s.VersionID),
		string(s.Type),
		s.DayNumber,
		s.Title,
		s.Subtitle,
		s.StartTime,
		s.EndTime,
		s.ConfirmationNumber,
		s.Cost,
		s.Currency,
		s.Quantity,
		s.PricePerUnit,
		s.Notes,
		string(s.Refundability),
		s.RefundDeadline,
		s.Metadata,
		s.HasVariants,
		s.JourneyID,
		s.PropertyGroupID,
		s.CreatedAt.UTC(),
		s.UpdatedAt.UTC(),
	}
}

func scanSegment(row pgx.Row) (segmentrepo.Segment, error) {
	var (
		s                   segmentrepo.Segment
		id, tripID, version string
		segType, refund     string
	)
	err := row.Scan(
		&id, &tripID, &version, &segType, &s.DayNumber,
		&s.Title, &s.Subtitle, &s.StartTime, &s.EndTime, &s.ConfirmationNumber,
		&s.Cost, &s.Currency, &s.Quantity, &s.PricePerUnit, &s.Notes,
		&refund, &s.RefundDeadline, &s.Metadata, &s.HasVariants,
		&s.JourneyID, &s.PropertyGroupID,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return segmentrepo.Segment{}, segmentrepo.ErrNotFound
		}
		return segmentrepo.Segment{}, err
	}
	s.ID = domain.SegmentID(id)
	s.TripID = domain.TripID(tripID)
	s.VersionID = domain.VersionID(version)
	s.Type = domain.SegmentType(segType)
	s.Refundability = domain.Refundability(refund)
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func variantArgs(v segmentrepo.Variant) []any {
	return []any{
		string(v.ID),
		string(v.SegmentID),
		v.Label,
		string(v.VariantType),
		v.Cost,
		v.Currency,
		v.Quantity,
		v.PricePerUnit,
		string(v.Refundability),
		v.RefundDeadline,
		v.CreatedAt.UTC(),
		v.UpdatedAt.UTC(),
	}
}

func scanVariant(row pgx.Row) (segmentrepo.Variant, error) {
	var (
		v             segmentrepo.Variant
		id, segmentID string
		vType, refund string
	)
	err := row.Scan(
		&id, &segmentID, &v.Label, &vType,
		&v.Cost, &v.Currency, &v.Quantity, &v.PricePerUnit,
		&refund, &v.RefundDeadline,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return segmentrepo.Variant{}, segmentrepo.ErrVariantNotFound
		}
		return segmentrepo.Variant{}, err
	}
	v.ID = domain.VariantID(id)
	v.SegmentID = domain.SegmentID(segmentID)
	v.VariantType = domain.VariantType(vType)
	v.Refundability = domain.Refundability(refund)
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v, nil
}
