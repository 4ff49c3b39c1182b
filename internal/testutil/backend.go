package testutil

import (
	"sync"

	"github.com/alexanderramin/smartcal/internal/domain"
)

// MemoryBackend is an in-memory store backend that records every save.
// LoadErr and SaveErr, when set, are returned from the matching call.
type MemoryBackend struct {
	mu      sync.Mutex
	Events  []domain.Event
	Saves   int
	LoadErr error
	SaveErr error
}

func (b *MemoryBackend) Describe() string { return "memory" }

func (b *MemoryBackend) Load() ([]domain.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoadErr != nil {
		return nil, b.LoadErr
	}
	out := make([]domain.Event, len(b.Events))
	copy(out, b.Events)
	return out, nil
}

func (b *MemoryBackend) Save(events []domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Saves++
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.Events = make([]domain.Event, len(events))
	copy(b.Events, events)
	return nil
}

// SaveCount returns the number of Save calls so far.
func (b *MemoryBackend) SaveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Saves
}
