package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// LocationRepo implements ports.LocationRepository: the read path is a thin
// composition of four independent containment queries.
type LocationRepo struct {
	db *DB
}

// NewLocationRepo creates a new LocationRepo.
func NewLocationRepo(db *DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// ResolvePoint looks up country, region, city and timezone for a point.
// Missing matches leave the corresponding fields empty; ties resolve to the
// lowest row id for reproducibility.
func (r *LocationRepo) ResolvePoint(ctx context.Context, lat, lon float64) (*domain.LocationInfo, error) {
	info := &domain.LocationInfo{}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT name, COALESCE(alpha2, '')
		FROM countries
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY id
		LIMIT 1
	`, lon, lat).Scan(&info.Country, &info.CountryAlpha2)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("resolve country: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT name
		FROM regions
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY id
		LIMIT 1
	`, lon, lat).Scan(&info.Region)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("resolve region: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT name
		FROM cities
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY id
		LIMIT 1
	`, lon, lat).Scan(&info.City)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("resolve city: %w", err)
	}

	err = r.db.Pool.QueryRow(ctx, `
		SELECT tzid
		FROM timezones
		WHERE ST_Contains(geom, ST_SetSRID(ST_MakePoint($1, $2), 4326))
		ORDER BY id
		LIMIT 1
	`, lon, lat).Scan(&info.TimezoneID)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("resolve timezone: %w", err)
	}

	return info, nil
}

// Status returns row counts and the last completed pipeline run.
func (r *LocationRepo) Status(ctx context.Context) (*domain.DatasetStatus, error) {
	var st domain.DatasetStatus
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM countries),
			(SELECT count(*) FROM regions),
			(SELECT count(*) FROM cities),
			(SELECT count(*) FROM timezones),
			(SELECT updated_at FROM last_update WHERE id = 1)
	`).Scan(&st.Countries, &st.Regions, &st.Cities, &st.Timezones, &st.LastUpdate)
	if err != nil {
		return nil, fmt.Errorf("dataset status: %w", err)
	}
	return &st, nil
}
