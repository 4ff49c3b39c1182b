package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/fsutil"
)

// JSONFileBackend stores events as a pretty-printed JSON array.
type JSONFileBackend struct {
	path string
}

// NewJSONFileBackend creates a backend writing to path.
func NewJSONFileBackend(path string) *JSONFileBackend {
	return &JSONFileBackend{path: path}
}

func (b *JSONFileBackend) Describe() string { return b.path }

func (b *JSONFileBackend) Load() ([]domain.Event, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", b.path, err)
	}

	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", b.path, err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// Save writes to a temp file in the target directory and renames it over the
// target, so readers never observe a partially written log.
func (b *JSONFileBackend) Save(events []domain.Event) error {
	if events == nil {
		events = []domain.Event{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(events); err != nil {
		return fmt.Errorf("encoding events: %w", err)
	}
	return fsutil.WriteFileAtomic(b.path, buf.Bytes(), 0o644)
}
