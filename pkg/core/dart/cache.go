package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"dart_collector/pkg/models"
)

// StatementCache stores fetched statements keyed by
// (corp_code, year, report kind, consolidation kind).
// Hybrid: Postgres primary when a pool is configured, JSON files otherwise.
// A corrupt or unreadable entry is a miss, never an error: the caller will
// simply re-fetch.
type StatementCache struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewStatementCache creates a cache. If pool is nil it falls back to files
// under dir; if dir is also empty it defaults to .cache/dart/statements.
func NewStatementCache(pool *pgxpool.Pool, dir string) *StatementCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "dart", "statements")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[dart] WARNING: cannot create cache dir %s: %v\n", dir, err)
		}
	}
	return &StatementCache{pool: pool, fileDir: dir}
}

// Get returns the cached statement or nil on a miss.
func (c *StatementCache) Get(ctx context.Context, corpCode string, year int, kind models.ReportKind, fs models.ConsolidationKind) *models.PeriodStatement {
	if c.pool != nil {
		query := `
			SELECT data
			FROM dart_statements
			WHERE corp_code = $1 AND bsns_year = $2 AND reprt_code = $3 AND fs_div = $4
			LIMIT 1
		`
		var data []byte
		err := c.pool.QueryRow(ctx, query, corpCode, year, string(kind), string(fs)).Scan(&data)
		if err != nil {
			return nil
		}
		var stmt models.PeriodStatement
		if err := json.Unmarshal(data, &stmt); err != nil {
			return nil
		}
		return &stmt
	}

	if c.fileDir == "" {
		return nil
	}
	data, err := os.ReadFile(c.filePath(corpCode, year, kind, fs))
	if err != nil {
		return nil
	}
	var stmt models.PeriodStatement
	if err := json.Unmarshal(data, &stmt); err != nil {
		return nil
	}
	return &stmt
}

// Put stores a statement under its composite key.
func (c *StatementCache) Put(ctx context.Context, stmt *models.PeriodStatement) error {
	if stmt == nil {
		return nil
	}
	data, err := json.MarshalIndent(stmt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statement: %w", err)
	}

	if c.pool != nil {
		query := `
			INSERT INTO dart_statements (corp_code, bsns_year, reprt_code, fs_div, data, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (corp_code, bsns_year, reprt_code, fs_div)
			DO UPDATE SET data = EXCLUDED.data, fetched_at = EXCLUDED.fetched_at
		`
		_, err := c.pool.Exec(ctx, query,
			stmt.CorpCode, stmt.FiscalYear, string(stmt.Report), string(stmt.Consolidation), data, stmt.FetchedAt)
		if err != nil {
			return fmt.Errorf("failed to cache statement in db: %w", err)
		}
		return nil
	}

	if c.fileDir == "" {
		return nil
	}
	path := c.filePath(stmt.CorpCode, stmt.FiscalYear, stmt.Report, stmt.Consolidation)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// filePath follows the layout <dir>/<corp_code>/<year>_<kind>_<fs>.json.
func (c *StatementCache) filePath(corpCode string, year int, kind models.ReportKind, fs models.ConsolidationKind) string {
	name := fmt.Sprintf("%d_%s_%s.json", year, kind.ShortName(), fs)
	return filepath.Join(c.fileDir, corpCode, name)
}
