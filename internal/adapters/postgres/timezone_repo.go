package postgres

import (
	"context"
	"fmt"
)

// TimezoneRepo implements ports.TimezoneRepository. The pipeline clears the
// table on each run but does not load it yet; the read path falls back to a
// longitude-based offset while it stays empty.
type TimezoneRepo struct {
	db *DB
}

// NewTimezoneRepo creates a new TimezoneRepo.
func NewTimezoneRepo(db *DB) *TimezoneRepo {
	return &TimezoneRepo{db: db}
}

// Clear empties the timezones table.
func (r *TimezoneRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `TRUNCATE timezones RESTART IDENTITY`); err != nil {
		return fmt.Errorf("clear timezones: %w", err)
	}
	return nil
}
