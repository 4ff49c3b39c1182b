package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileBackend_MissingFileIsEmpty(t *testing.T) {
	b := NewJSONFileBackend(filepath.Join(t.TempDir(), "calendar_events.log"))

	events, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestJSONFileBackend_CorruptFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar_events.log")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewJSONFileBackend(path).Load()
	assert.Error(t, err)
}

func TestJSONFileBackend_WritesReadableUnicodeArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar_events.log")
	b := NewJSONFileBackend(path)
	e := testutil.NewTestEvent(2023, 10, 5, "会议", testutil.WithTime("14:00"))

	require.NoError(t, b.Save([]domain.Event{e}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"activity": "会议"`)
	assert.Contains(t, string(data), `"year": 2023`)
	assert.Equal(t, byte('['), data[0])
}

func TestJSONFileBackend_EmptyCollectionWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar_events.log")

	require.NoError(t, NewJSONFileBackend(path).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestJSONFileBackend_AtomicReplaceLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar_events.log")
	b := NewJSONFileBackend(path)

	require.NoError(t, b.Save([]domain.Event{testutil.NewTestEvent(2024, 1, 1, "a")}))
	require.NoError(t, b.Save([]domain.Event{testutil.NewTestEvent(2024, 1, 2, "b")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "calendar_events.log", entries[0].Name())
}

func TestEventStore_RoundTripThroughJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "calendar_events.log")

	first := NewEventStore(NewJSONFileBackend(path), nil)
	first.Load()
	first.AddAll([]domain.Event{
		testutil.NewTestEvent(2024, 3, 2, "b", testutil.WithLocation("office")),
		testutil.NewTestEvent(2024, 3, 1, "a", testutil.WithTime("13:00-17:00")),
		testutil.NewTestEvent(2024, 3, 1, "c", testutil.WithTime("08:00")),
	})
	first.Save()

	second := NewEventStore(NewJSONFileBackend(path), nil)
	second.Load()

	assert.Equal(t, first.All(), second.All())
}

func TestEventStore_LoadsLegacyLogWrittenByHand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar_events.log")
	legacy := `[
  {"date": "2023-10-05", "year": 2023, "month": 10, "day": 5, "time": "14:00", "location": "会议室", "activity": "项目会议"},
  {"date": "2024-01-02", "year": 2024, "month": 1, "day": 2, "time": "09:00", "location": "未指定", "activity": "复诊"},
  {"date": "2024-01-01", "year": 2024, "month": 1, "day": 1, "time": "20:00", "location": "未指定", "activity": "跨年"},
  {"date": "2023-10-05", "year": 2023, "month": 10, "day": 5, "time": "09:00", "location": "未指定", "activity": "早会"}
]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	s := NewEventStore(NewJSONFileBackend(path), nil)
	s.Load()

	got := s.QueryDay(5, 2023, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "早会", got[0].Activity)
	assert.Equal(t, "会议室", got[1].Location)

	var dates []string
	for _, e := range s.All() {
		dates = append(dates, e.Date+" "+e.Time)
	}
	assert.Equal(t, []string{
		"2023-10-05 09:00",
		"2023-10-05 14:00",
		"2024-01-01 20:00",
		"2024-01-02 09:00",
	}, dates)
}
