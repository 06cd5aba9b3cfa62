package postgres

import (
	"context"
	"fmt"

	"github.com/lurraldea/geopoint/internal/core/domain"
)

// listNonLatinNames selects rows whose name contains characters outside the
// basic Latin letter/digit/space/hyphen/period set. The selection is capped
// to keep memory and lock duration predictable.
func listNonLatinNames(ctx context.Context, db *DB, table string, limit int) ([]domain.NameRow, error) {
	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id, name FROM %s
		WHERE name ~ '[^A-Za-z0-9 .\-]'
		ORDER BY id
		LIMIT $1
	`, table), limit)
	if err != nil {
		return nil, fmt.Errorf("select non-latin names from %s: %w", table, err)
	}
	defer rows.Close()

	var out []domain.NameRow
	for rows.Next() {
		var nr domain.NameRow
		if err := rows.Scan(&nr.ID, &nr.Name); err != nil {
			return nil, err
		}
		out = append(out, nr)
	}
	return out, rows.Err()
}

// updateNames applies one bounded batch of name updates inside an explicit
// transaction: the batch commits or rolls back together, and a failure here
// does not affect rows committed by earlier batches.
func updateNames(ctx context.Context, db *DB, table string, updates []domain.NameUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, table)
	for _, u := range updates {
		if _, err := tx.Exec(ctx, stmt, u.Name, u.ID); err != nil {
			return fmt.Errorf("update %s name id=%d: %w", table, u.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
