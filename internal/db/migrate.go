package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Every statement is idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS events (
		seq      INTEGER PRIMARY KEY,
		date     TEXT NOT NULL,
		year     INTEGER NOT NULL,
		month    INTEGER NOT NULL CHECK(month BETWEEN 1 AND 12),
		day      INTEGER NOT NULL CHECK(day BETWEEN 1 AND 31),
		time     TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		activity TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_date ON events(year, month, day)`,
}
