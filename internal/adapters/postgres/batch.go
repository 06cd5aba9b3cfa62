package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// flushBatch sends one pgx.Batch and drains every result.
func flushBatch(ctx context.Context, db *DB, batch *pgx.Batch, count int) error {
	br := db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < count; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}
