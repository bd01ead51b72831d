// Package database opens the Postgres pool shared by the server and the
// control tool.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Pool sizes the connection pool. Zero values keep database/sql defaults.
type Pool struct {
	MaxOpenConns int
	MaxIdleConns int
}

type backoff struct {
	pingTimeout time.Duration
	maxWait     time.Duration
	initial     time.Duration
	max         time.Duration
}

var defaultBackoff = backoff{
	pingTimeout: 5 * time.Second,
	maxWait:     30 * time.Second,
	initial:     500 * time.Millisecond,
	max:         5 * time.Second,
}

// Open establishes a database connection and retries until the instance responds.
func Open(ctx context.Context, dsn string, pool Pool) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := waitForPing(ctx, db, defaultBackoff); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func waitForPing(ctx context.Context, db *sql.DB, b backoff) error {
	deadline := time.Now().Add(b.maxWait)
	delay := b.initial
	var lastErr error

	for {
		pingCtx, cancel := context.WithTimeout(ctx, b.pingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
		delay *= 2
		if delay > b.max {
			delay = b.max
		}
	}

	return fmt.Errorf("ping database: %w", lastErr)
}
