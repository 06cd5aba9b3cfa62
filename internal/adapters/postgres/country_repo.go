package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// CountryRepo implements ports.CountryRepository with pgx.
type CountryRepo struct {
	db *DB
}

// NewCountryRepo creates a new CountryRepo.
func NewCountryRepo(db *DB) *CountryRepo {
	return &CountryRepo{db: db}
}

const insertBatchSize = 500

// Replace clears the countries table and bulk-inserts the given rows.
// Re-running with the same input yields the same row set.
func (r *CountryRepo) Replace(ctx context.Context, countries []domain.Country) (int, error) {
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
			return fmt.Errorf("insert countries: %w", err)
		}
		written += queued
		batch = &pgx.Batch{}
		queued = 0
		return nil
	}

	for _, c := range countries {
		batch.Queue(`
			INSERT INTO countries (alpha2, alpha3, name, geom)
			VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($4), 4326)))
		`, c.Alpha2, c.Alpha3, c.Name, string(c.Geometry))
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

// Clear empties the countries table.
func (r *CountryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `TRUNCATE countries RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear countries: %w", err)
	}
	return nil
}
