package service

import (
	"context"
	"io"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/extract"
	"github.com/alexanderramin/smartcal/internal/ics"
)

// EventRepository is the event collection the service reads and mutates.
// *store.EventStore implements it.
type EventRepository interface {
	Add(e domain.Event) bool
	AddAll(events []domain.Event) int
	Delete(e domain.Event) bool
	DeleteDay(day, year, month int) bool
	QueryDay(day, year, month int) []domain.Event
	QueryMonth(year, month int) []domain.Event
	DaysWithEvents(year, month int) map[int]bool
	HasEvents(day, year, month int) bool
	All() []domain.Event
}

// Extractor turns free text into the model's raw JSON reply.
// *extract.Client implements it.
type Extractor interface {
	HasCredential() bool
	Configure(ctx context.Context, key string) (bool, string)
	Extract(text string, onComplete extract.Callback) *extract.Ticket
	ExtractSync(ctx context.Context, text string) (string, error)
}

// ImportResult counts what happened to a batch of extracted events.
type ImportResult struct {
	Parsed     int
	Added      int
	Duplicates int
	Events     []domain.Event
}

// MonthView is one month of the calendar.
type MonthView struct {
	Year   int
	Month  int
	Events []domain.Event
	Days   map[int]bool
}

type CalendarService interface {
	ImportJSON(ctx context.Context, raw string) ImportResult
	ImportFile(ctx context.Context, path string) (ImportResult, error)
	ExtractAndImport(ctx context.Context, text string) (ImportResult, error)
	ExtractAsync(text string, onDone func(ImportResult, error)) *extract.Ticket
	Configure(ctx context.Context, key string) (bool, string)
	CanExtract() bool

	AddManual(ctx context.Context, date, clock, location, activity string) (domain.Event, bool, error)
	Day(ctx context.Context, day, year, month int) []domain.Event
	Month(ctx context.Context, year, month int) MonthView
	All(ctx context.Context) []domain.Event
	DeleteEvent(ctx context.Context, e domain.Event) bool
	DeleteDay(ctx context.Context, day, year, month int) bool

	Export(ctx context.Context, w io.Writer, opts ics.Options) (int, error)
}
