package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// CityRepo implements ports.CityRepository with pgx.
type CityRepo struct {
	db *DB
}

// NewCityRepo creates a new CityRepo.
func NewCityRepo(db *DB) *CityRepo {
	return &CityRepo{db: db}
}

// Replace clears the cities table and bulk-inserts the given rows.
// region_code is never written here; only the backfill assigns it.
func (r *CityRepo) Replace(ctx context.Context, cities []domain.City) (int, error) {
	if err := r.Clear(ctx); err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	queued := 0
	written := 0

	flush := func() error {
		if queued == 0 {
			return nil
		}
		if err := flushBatch(ctx, r.db, batch, queued); err != nil {
			return fmt.Errorf("insert cities: %w", err)
		}
		written += queued
		batch = &pgx.Batch{}
		queued = 0
		return nil
	}

	for _, c := range cities {
		batch.Queue(`
			INSERT INTO cities (code, name, country_alpha2, country_alpha3, geom)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($5), 4326)))
		`, c.Code, c.Name, c.CountryAlpha2, c.CountryAlpha3, string(c.Geometry))
		queued++
		if queued >= insertBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}

// Clear empties the cities table.
func (r *CityRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `TRUNCATE cities RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear cities: %w", err)
	}
	return nil
}

// BackfillRegions assigns a region to every city with a null region whose
// centroid lies inside a region sharing a country code. One bulk statement,
// no per-row round trips. DISTINCT ON with the ORDER BY below fixes the
// tie-break: the lowest region id wins for each city, lowest city id first.
func (r *CityRepo) BackfillRegions(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE cities c
		SET region_code = m.region_code
		FROM (
			SELECT DISTINCT ON (ci.id) ci.id AS city_id, re.code AS region_code
			FROM cities ci
			JOIN regions re
			  ON (re.country_alpha2 IS NOT NULL AND re.country_alpha2 = ci.country_alpha2)
			  OR (re.country_alpha3 IS NOT NULL AND re.country_alpha3 = ci.country_alpha3)
			WHERE ci.region_code IS NULL
			  AND ST_Contains(re.geom, ST_Centroid(ci.geom))
			ORDER BY ci.id, re.id
		) m
		WHERE c.id = m.city_id
	`)
	if err != nil {
		return 0, fmt.Errorf("backfill regions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListNonLatinNames selects city names needing transliteration, capped at limit.
func (r *CityRepo) ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error) {
	return listNonLatinNames(ctx, r.db, "cities", limit)
}

// UpdateNames writes one batch of transliterated names in a single transaction.
func (r *CityRepo) UpdateNames(ctx context.Context, updates []domain.NameUpdate) error {
	return updateNames(ctx, r.db, "cities", updates)
}
