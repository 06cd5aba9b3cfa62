package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// RegionRepo implements ports.RegionRepository with pgx.
type RegionRepo struct {
	db *DB
}

// NewRegionRepo creates a new RegionRepo.
func NewRegionRepo(db *DB) *RegionRepo {
	return &RegionRepo{db: db}
}

// Replace clears the regions table and bulk-inserts the given rows.
func (r *RegionRepo) Replace(ctx context.Context, regions []domain.Region) (int, error) {
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
			return fmt.Errorf("insert regions: %w", err)
		}
		written += queued
		batch = &pgx.Batch{}
		queued = 0
		return nil
	}

	for _, reg := range regions {
		batch.Queue(`
			INSERT INTO regions (code, name, country_alpha2, country_alpha3, geom)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($5), 4326)))
		`, reg.Code, reg.Name, reg.CountryAlpha2, reg.CountryAlpha3, string(reg.Geometry))
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

// Clear empties the regions table.
func (r *RegionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `TRUNCATE regions RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear regions: %w", err)
	}
	return nil
}

// ListNonLatinNames selects region names needing transliteration, capped at limit.
func (r *RegionRepo) ListNonLatinNames(ctx context.Context, limit int) ([]domain.NameRow, error) {
	return listNonLatinNames(ctx, r.db, "regions", limit)
}

// UpdateNames writes one batch of transliterated names in a single transaction.
func (r *RegionRepo) UpdateNames(ctx context.Context, updates []domain.NameUpdate) error {
	return updateNames(ctx, r.db, "regions", updates)
}
