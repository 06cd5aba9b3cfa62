package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// LastUpdateRepo implements ports.LastUpdateRepository on the single-row
// last_update table. Consumers treat the timestamp as the sole signal that a
// complete, consistent dataset is published.
type LastUpdateRepo struct {
	db *DB
}

// NewLastUpdateRepo creates a new LastUpdateRepo.
func NewLastUpdateRepo(db *DB) *LastUpdateRepo {
	return &LastUpdateRepo{db: db}
}

// Touch records pipeline completion.
func (r *LastUpdateRepo) Touch(ctx context.Context, at time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO last_update (id, updated_at) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at
	`, at.UTC())
	if err != nil {
		return fmt.Errorf("touch last_update: %w", err)
	}
	return nil
}

// Get returns the last completion time, or nil if no run has finished.
func (r *LastUpdateRepo) Get(ctx context.Context) (*time.Time, error) {
	var at time.Time
	err := r.db.Pool.QueryRow(ctx, `SELECT updated_at FROM last_update WHERE id = 1`).Scan(&at)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last_update: %w", err)
	}
	return &at, nil
}
