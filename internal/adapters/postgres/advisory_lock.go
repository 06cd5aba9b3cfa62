package postgres

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pipelineLockName keys the cluster-wide advisory lock. The key is derived
// from the name so every deployment node computes the same value.
const pipelineLockName = "geopoint-pipeline"

// AdvisoryLock implements ports.PipelineLock on a Postgres session-scoped
// advisory lock. The lock lives on a dedicated pooled connection; if the
// process crashes the session ends and the lock drops with it.
type AdvisoryLock struct {
	db   *DB
	key  int64
	conn *pgxpool.Conn
}

// NewAdvisoryLock creates the pipeline lock.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(pipelineLockName))
	return &AdvisoryLock{db: db, key: int64(h.Sum64())}
}

// Acquire polls pg_try_advisory_lock until it succeeds or maxWait elapses.
// Returns false without error when another run holds the lock.
func (l *AdvisoryLock) Acquire(ctx context.Context, maxWait time.Duration) (bool, error) {
	conn, err := l.db.Pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	deadline := time.Now().Add(maxWait)
	for {
		var got bool
		if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&got); err != nil {
			conn.Release()
			return false, fmt.Errorf("try advisory lock: %w", err)
		}
		if got {
			l.conn = conn
			return true, nil
		}
		if time.Now().After(deadline) {
			conn.Release()
			return false, nil
		}
		select {
		case <-ctx.Done():
			conn.Release()
			return false, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

// Release unlocks and returns the connection to the pool. Safe to call when
// the lock was never acquired.
func (l *AdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	defer func() {
		l.conn.Release()
		l.conn = nil
	}()

	var unlocked bool
	if err := l.conn.QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, l.key).Scan(&unlocked); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	if !unlocked {
		return fmt.Errorf("advisory unlock: lock %d was not held by this session", l.key)
	}
	return nil
}
