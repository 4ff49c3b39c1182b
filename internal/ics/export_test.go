package ics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/testutil"
)

var stamp = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func TestSpan(t *testing.T) {
	tests := []struct {
		name      string
		clock     string
		ok        bool
		wantStart string
		wantEnd   string
	}{
		{"point", "14:00", true, "2024-03-05 14:00", "2024-03-05 15:00"},
		{"range", "13:00-17:00", true, "2024-03-05 13:00", "2024-03-05 17:00"},
		{"full-width colon", "9：30", true, "2024-03-05 09:30", "2024-03-05 10:30"},
		{"evening band", "17:00-24:00", true, "2024-03-05 17:00", "2024-03-06 00:00"},
		{"late night band", "24:00-06:00", true, "2024-03-06 00:00", "2024-03-06 06:00"},
		{"overnight", "22:00-02:00", true, "2024-03-05 22:00", "2024-03-06 02:00"},
		{"text around", "下午 3:15 左右", true, "2024-03-05 03:15", "2024-03-05 04:15"},
		{"unspecified", domain.Unspecified, false, "", ""},
		{"out of range", "25:00", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testutil.NewTestEvent(2024, 3, 5, "x", testutil.WithTime(tt.clock))
			start, end, ok := Span(e, time.UTC)

			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantStart, start.Format("2006-01-02 15:04"))
			assert.Equal(t, tt.wantEnd, end.Format("2006-01-02 15:04"))
		})
	}
}

func TestUID_StableAndDistinct(t *testing.T) {
	a := testutil.NewTestEvent(2024, 1, 1, "会议", testutil.WithLocation("A"))
	b := testutil.NewTestEvent(2024, 1, 1, "会议", testutil.WithLocation("B"))

	assert.Equal(t, UID(a), UID(a))
	assert.NotEqual(t, UID(a), UID(b))
	assert.True(t, strings.HasSuffix(UID(a), "@smartcal"))
}

func TestExport_RoundTripsThroughParser(t *testing.T) {
	events := []domain.Event{
		testutil.NewTestEvent(2024, 1, 5, "项目会议", testutil.WithTime("14:00"), testutil.WithLocation("会议室")),
		testutil.NewTestEvent(2024, 1, 6, "全天培训", testutil.WithTime(domain.Unspecified)),
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, events, Options{Name: "smartcal", Location: time.UTC, Now: stamp}))

	out := buf.String()
	assert.Contains(t, out, "X-WR-CALNAME:smartcal")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240106")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240107")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	parsed := cal.Events()
	require.Len(t, parsed, 2)

	first := parsed[0]
	assert.Equal(t, UID(events[0]), first.Id())
	assert.Equal(t, "项目会议", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "会议室", first.GetProperty(ical.ComponentPropertyLocation).Value)
	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)))

	assert.Nil(t, parsed[1].GetProperty(ical.ComponentPropertyLocation), "unspecified location is omitted")
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, Options{Now: stamp}))

	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
}
