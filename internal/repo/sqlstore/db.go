// Package sqlstore persists product prices through database/sql. The same
// queries run on PostgreSQL (lib/pq) and SQLite (go-sqlite3).
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
)

const tableName = "product_price"

var schemas = map[string][]string{
	config.DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS product_price (
			id           SERIAL PRIMARY KEY,
			product_name VARCHAR(200) NOT NULL,
			price        NUMERIC(10, 2) NOT NULL CHECK (price > 0),
			image_path   VARCHAR(500),
			extracted_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			metadata     JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_name ON product_price (product_name)`,
		`CREATE INDEX IF NOT EXISTS idx_extracted_at ON product_price (extracted_at)`,
	},
	config.DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS product_price (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			product_name VARCHAR(200) NOT NULL,
			price        NUMERIC(10, 2) NOT NULL CHECK (price > 0),
			image_path   VARCHAR(500),
			extracted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			metadata     TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_name ON product_price (product_name)`,
		`CREATE INDEX IF NOT EXISTS idx_extracted_at ON product_price (extracted_at)`,
	},
}

// Open connects to the configured SQL database and creates the schema if needed.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.PostgresDSN())
	case config.DriverSQLite:
		db, err = sql.Open("sqlite3", cfg.SQLitePath)
		if err == nil {
			// one writer; also keeps ":memory:" databases on a single connection
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	if err := EnsureSchema(ctx, db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the product_price table and its indexes. It is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	stmts, ok := schemas[driver]
	if !ok {
		return fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
