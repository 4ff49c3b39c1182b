package store

import (
	"sort"
	"sync"

	"github.com/alexanderramin/smartcal/internal/domain"
	"go.uber.org/zap"
)

// EventStore is the in-memory event collection, kept sorted by domain.Less and
// free of IdentityKey duplicates. Every mutation is written through to the
// backend. All methods are safe for concurrent use.
type EventStore struct {
	mu      sync.Mutex
	events  []domain.Event
	backend Backend
	log     *zap.SugaredLogger

	// dirty is set while the collection differs from the last successful save.
	dirty bool
}

// NewEventStore creates an empty store. Call Load to read persisted events.
func NewEventStore(backend Backend, log *zap.SugaredLogger) *EventStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &EventStore{
		events:  []domain.Event{},
		backend: backend,
		log:     log,
	}
}

// Load replaces the collection with the persisted events, sorted by
// domain.Less. Read or decode failures are logged and leave the store empty.
func (s *EventStore) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.backend.Load()
	if err != nil {
		s.log.Errorw("loading events failed", "backend", s.backend.Describe(), "err", err)
		s.events = []domain.Event{}
		s.dirty = false
		return
	}
	sort.SliceStable(events, func(i, j int) bool {
		return domain.Less(events[i], events[j])
	})
	s.events = events
	s.dirty = false
	s.log.Infow("loaded events", "backend", s.backend.Describe(), "count", len(events))
}

// Save writes the whole collection. Failures are logged, not returned.
func (s *EventStore) Save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked()
}

// Flush saves the collection only if an earlier save failed, so a run that
// changed nothing never rewrites the backend.
func (s *EventStore) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	s.saveLocked()
}

func (s *EventStore) saveLocked() {
	if err := s.backend.Save(s.events); err != nil {
		s.dirty = true
		s.log.Errorw("saving events failed", "backend", s.backend.Describe(), "count", len(s.events), "err", err)
		return
	}
	s.dirty = false
	s.log.Debugw("saved events", "backend", s.backend.Describe(), "count", len(s.events))
}

// Add inserts e unless an event with the same IdentityKey exists.
func (s *EventStore) Add(e domain.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.addLocked(e) {
		return false
	}
	s.saveLocked()
	return true
}

// AddAll adds each event in turn and persists once. It returns how many were
// new.
func (s *EventStore) AddAll(events []domain.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, e := range events {
		if s.addLocked(e) {
			added++
		}
	}
	if added > 0 {
		s.saveLocked()
	}
	return added
}

func (s *EventStore) addLocked(e domain.Event) bool {
	key := e.IdentityKey()
	for _, existing := range s.events {
		if existing.IdentityKey() == key {
			return false
		}
	}
	s.events = append(s.events, e)
	sort.SliceStable(s.events, func(i, j int) bool {
		return domain.Less(s.events[i], s.events[j])
	})
	return true
}

// Delete removes every event whose FullKey equals e's. It reports true even
// when nothing matched.
func (s *EventStore) Delete(e domain.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.FullKey()
	removed := s.removeLocked(func(existing domain.Event) bool {
		return existing.FullKey() == key
	})
	if removed > 0 {
		s.saveLocked()
	}
	return true
}

// DeleteDay removes all events on the given date and reports whether any
// were removed.
func (s *EventStore) DeleteDay(day, year, month int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.removeLocked(func(existing domain.Event) bool {
		return existing.OnDay(day, year, month)
	})
	if removed == 0 {
		return false
	}
	s.saveLocked()
	return true
}

func (s *EventStore) removeLocked(match func(domain.Event) bool) int {
	kept := s.events[:0:0]
	for _, e := range s.events {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	removed := len(s.events) - len(kept)
	s.events = kept
	return removed
}

// QueryDay returns the events on the given date in store order.
func (s *EventStore) QueryDay(day, year, month int) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, e := range s.events {
		if e.OnDay(day, year, month) {
			out = append(out, e)
		}
	}
	return out
}

// HasEvents reports whether any event falls on the given date.
func (s *EventStore) HasEvents(day, year, month int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.OnDay(day, year, month) {
			return true
		}
	}
	return false
}

// QueryMonth returns the events in the given month in store order.
func (s *EventStore) QueryMonth(year, month int) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Event
	for _, e := range s.events {
		if e.Year == year && e.Month == month {
			out = append(out, e)
		}
	}
	return out
}

// DaysWithEvents returns the set of days in the month that have events.
func (s *EventStore) DaysWithEvents(year, month int) map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make(map[int]bool)
	for _, e := range s.events {
		if e.Year == year && e.Month == month {
			days[e.Day] = true
		}
	}
	return days
}

// All returns a copy of the collection in store order.
func (s *EventStore) All() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
