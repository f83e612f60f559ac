package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// statement cache schema, applied on first connect
const cacheSchema = `
CREATE TABLE IF NOT EXISTS dart_statements (
	corp_code  TEXT        NOT NULL,
	bsns_year  INT         NOT NULL,
	reprt_code TEXT        NOT NULL,
	fs_div     TEXT        NOT NULL,
	data       JSONB       NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (corp_code, bsns_year, reprt_code, fs_div)
)`

// InitDB initializes the shared pool from DATABASE_URL and ensures the
// statement cache table exists. Returns an error when the variable is
// unset; callers treat that as "run without a database".
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if _, execErr := pool.Exec(ctx, cacheSchema); execErr != nil {
			err = fmt.Errorf("failed to ensure cache schema: %w", execErr)
		}
	})
	return err
}

// GetPool returns the shared pool, nil when InitDB has not succeeded.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the shared pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
