package data

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var createBooksTable = map[string]string{
	DialectPostgres: `
		CREATE TABLE IF NOT EXISTS books (
			id        SERIAL PRIMARY KEY,
			title     TEXT NOT NULL,
			author    TEXT NOT NULL,
			isbn      TEXT,
			rating    DOUBLE PRECISION,
			notes     TEXT,
			date_read DATE
		)`,
	DialectSQLite: `
		CREATE TABLE IF NOT EXISTS books (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			title     TEXT NOT NULL,
			author    TEXT NOT NULL,
			isbn      TEXT,
			rating    REAL,
			notes     TEXT,
			date_read DATE
		)`,
}

// Migrate creates the books table if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB, dialect string) error {
	ddl, ok := createBooksTable[dialect]
	if !ok {
		return fmt.Errorf("migrate: unsupported dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
