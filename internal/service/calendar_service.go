package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/extract"
	"github.com/alexanderramin/smartcal/internal/ics"
	"github.com/alexanderramin/smartcal/internal/normalize"
)

type calendarService struct {
	events    EventRepository
	extractor Extractor
	observer  UseCaseObserver
}

// NewCalendarService wires the store and the extractor. extractor may be nil,
// in which case extraction calls fail with ErrExtractionUnavailable.
func NewCalendarService(events EventRepository, extractor Extractor, observers ...UseCaseObserver) CalendarService {
	obs := UseCaseObserver(NoopUseCaseObserver{})
	for _, o := range observers {
		if o != nil {
			obs = o
			break
		}
	}
	return &calendarService{
		events:    events,
		extractor: extractor,
		observer:  obs,
	}
}

func (s *calendarService) ImportJSON(ctx context.Context, raw string) ImportResult {
	start := time.Now()
	parsed := normalize.Normalize(raw)
	added := s.events.AddAll(parsed)

	res := ImportResult{
		Parsed:     len(parsed),
		Added:      added,
		Duplicates: len(parsed) - added,
		Events:     parsed,
	}
	s.observe(ctx, "import_json", start, nil, map[string]any{"parsed": res.Parsed, "added": res.Added})
	return res
}

func (s *calendarService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading import file: %w", err)
	}
	return s.ImportJSON(ctx, string(data)), nil
}

func (s *calendarService) ExtractAndImport(ctx context.Context, text string) (res ImportResult, err error) {
	start := time.Now()
	defer func() {
		s.observe(ctx, "extract_and_import", start, err, map[string]any{"added": res.Added})
	}()

	if err := s.checkExtract(text); err != nil {
		return ImportResult{}, err
	}
	raw, err := s.extractor.ExtractSync(ctx, text)
	if err != nil {
		return ImportResult{}, err
	}
	return s.ImportJSON(ctx, raw), nil
}

// ExtractAsync runs the extraction on the extractor's pool and imports the
// reply before calling onDone. onDone runs on a pool goroutine unless the
// outcome is known immediately.
func (s *calendarService) ExtractAsync(text string, onDone func(ImportResult, error)) *extract.Ticket {
	if err := s.checkExtract(text); err != nil {
		onDone(ImportResult{}, err)
		return &extract.Ticket{}
	}
	return s.extractor.Extract(text, func(ok bool, payload string) {
		if !ok {
			onDone(ImportResult{}, errors.New(payload))
			return
		}
		onDone(s.ImportJSON(context.Background(), payload), nil)
	})
}

func (s *calendarService) checkExtract(text string) error {
	if s.extractor == nil {
		return ErrExtractionUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	return nil
}

func (s *calendarService) Configure(ctx context.Context, key string) (bool, string) {
	if s.extractor == nil {
		return false, ErrExtractionUnavailable.Error()
	}
	start := time.Now()
	ok, msg := s.extractor.Configure(ctx, key)
	var err error
	if !ok {
		err = errors.New(msg)
	}
	s.observe(ctx, "configure_key", start, err, nil)
	return ok, msg
}

func (s *calendarService) CanExtract() bool {
	return s.extractor != nil && s.extractor.HasCredential()
}

// AddManual adds one event typed in by the user. The bool is false when an
// event with the same date, time and activity already exists.
func (s *calendarService) AddManual(ctx context.Context, date, clock, location, activity string) (domain.Event, bool, error) {
	if strings.TrimSpace(activity) == "" {
		return domain.Event{}, false, ErrActivityRequired
	}
	e, err := domain.NewEvent(date, clock, location, activity)
	if err != nil {
		return domain.Event{}, false, err
	}
	start := time.Now()
	added := s.events.Add(e)
	s.observe(ctx, "add_manual", start, nil, map[string]any{"added": added})
	return e, added, nil
}

func (s *calendarService) Day(_ context.Context, day, year, month int) []domain.Event {
	return s.events.QueryDay(day, year, month)
}

func (s *calendarService) Month(_ context.Context, year, month int) MonthView {
	return MonthView{
		Year:   year,
		Month:  month,
		Events: s.events.QueryMonth(year, month),
		Days:   s.events.DaysWithEvents(year, month),
	}
}

func (s *calendarService) All(context.Context) []domain.Event {
	return s.events.All()
}

// DeleteEvent removes events matching e on every field including location.
// Like the store, it reports true even when nothing matched.
func (s *calendarService) DeleteEvent(ctx context.Context, e domain.Event) bool {
	start := time.Now()
	ok := s.events.Delete(e)
	s.observe(ctx, "delete_event", start, nil, nil)
	return ok
}

func (s *calendarService) DeleteDay(ctx context.Context, day, year, month int) bool {
	start := time.Now()
	changed := s.events.DeleteDay(day, year, month)
	s.observe(ctx, "delete_day", start, nil, map[string]any{"changed": changed})
	return changed
}

// Export writes every stored event as iCalendar and returns how many were written.
func (s *calendarService) Export(ctx context.Context, w io.Writer, opts ics.Options) (int, error) {
	start := time.Now()
	events := s.events.All()
	err := ics.Export(w, events, opts)
	s.observe(ctx, "export_ics", start, err, map[string]any{"count": len(events)})
	if err != nil {
		return 0, err
	}
	return len(events), nil
}
