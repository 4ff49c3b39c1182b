package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/smartcal/internal/db"
	"github.com/alexanderramin/smartcal/internal/domain"
)

// SQLiteBackend stores events in the events table. Save replaces every row
// inside one transaction; seq preserves the in-memory order.
type SQLiteBackend struct {
	db   *sql.DB
	name string
}

// NewSQLiteBackend creates a backend over an already-migrated database.
func NewSQLiteBackend(database *sql.DB, name string) *SQLiteBackend {
	return &SQLiteBackend{db: database, name: name}
}

func (b *SQLiteBackend) Describe() string { return "sqlite:" + b.name }

func (b *SQLiteBackend) Load() ([]domain.Event, error) {
	rows, err := b.db.Query(`SELECT date, year, month, day, time, location, activity
		FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.Date, &e.Year, &e.Month, &e.Day, &e.Time, &e.Location, &e.Activity); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func (b *SQLiteBackend) Save(events []domain.Event) error {
	return db.WithinTx(context.Background(), b.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM events`); err != nil {
			return fmt.Errorf("clearing events: %w", err)
		}
		stmt, err := tx.Prepare(`INSERT INTO events (seq, date, year, month, day, time, location, activity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for i, e := range events {
			if _, err := stmt.Exec(i, e.Date, e.Year, e.Month, e.Day, e.Time, e.Location, e.Activity); err != nil {
				return fmt.Errorf("inserting event %d: %w", i, err)
			}
		}
		return nil
	})
}
