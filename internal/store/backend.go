package store

import "github.com/alexanderramin/smartcal/internal/domain"

// Backend persists the whole event collection. Save always overwrites
// everything previously stored. Load returns an empty slice and no error when
// nothing has been stored yet.
type Backend interface {
	Load() ([]domain.Event, error)
	Save(events []domain.Event) error
	Describe() string
}
