package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/localguide/internal/core/domain"
)

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// Upsert inserts or updates a single place.
func (r *PlaceRepo) Upsert(ctx context.Context, p *domain.Place) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO places (id, name, category, location, institution_id)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, NULLIF($6, ''))
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, category = EXCLUDED.category,
		    location = EXCLUDED.location,
		    institution_id = EXCLUDED.institution_id
	`, p.ID, p.Name, p.Category, p.Location.Lng, p.Location.Lat, p.InstitutionID)
	return err
}

// UpsertBatch inserts many places using pgx.Batch.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for _, p := range places {
		batch.Queue(`
			INSERT INTO places (id, name, category, location, institution_id)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, NULLIF($6, ''))
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, category = EXCLUDED.category, location = EXCLUDED.location
		`, p.ID, p.Name, p.Category, p.Location.Lng, p.Location.Lat, p.InstitutionID)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a place by its identifier.
func (r *PlaceRepo) GetByID(ctx context.Context, id string) (*domain.Place, error) {
	var p domain.Place
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, category,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lng,
		       COALESCE(institution_id, ''), created_at
		FROM places WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.Category,
		&p.Location.Lat, &p.Location.Lng,
		&p.InstitutionID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCategory returns every place of a category, ordered by id so that
// downstream selection is stable.
func (r *PlaceRepo) ListByCategory(ctx context.Context, category string) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, category,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lng,
		       COALESCE(institution_id, ''), created_at
		FROM places WHERE category = $1
		ORDER BY id
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlaces(rows)
}

// List returns all places, ordered by id.
func (r *PlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, category,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lng,
		       COALESCE(institution_id, ''), created_at
		FROM places
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPlaces(rows)
}

func scanPlaces(rows pgx.Rows) ([]domain.Place, error) {
	var places []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category,
			&p.Location.Lat, &p.Location.Lng,
			&p.InstitutionID, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
