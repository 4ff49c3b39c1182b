// Package ics writes stored events as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/alexanderramin/smartcal/internal/domain"
)

const productID = "-//smartcal//event export//ZH"

// uidNamespace scopes the name-based UIDs of exported events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://smartcal.local/events"))

var clockPattern = regexp.MustCompile(`(\d{1,2})[:：](\d{2})`)

// Options controls an export.
type Options struct {
	// Name is the calendar display name.
	Name string
	// Location is the zone the stored wall-clock times are in. Defaults to time.Local.
	Location *time.Location
	// Now stamps every VEVENT. Defaults to time.Now().
	Now time.Time
}

// Export writes events to w as a single VCALENDAR.
func Export(w io.Writer, events []domain.Event, opts Options) error {
	if err := Build(events, opts).SerializeTo(w); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// Build converts events into a calendar. Events whose time has no "HH:MM"
// become all-day events.
func Build(events []domain.Event, opts Options) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	for _, e := range events {
		ev := cal.AddEvent(UID(e))
		ev.SetDtStampTime(now)
		ev.SetSummary(e.Activity)
		if e.Location != "" && e.Location != domain.Unspecified {
			ev.SetLocation(e.Location)
		}
		if e.Time != "" && e.Time != domain.Unspecified {
			ev.SetDescription(e.Time)
		}

		if start, end, ok := Span(e, loc); ok {
			ev.SetStartAt(start)
			ev.SetEndAt(end)
			continue
		}
		day := time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, loc)
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
	}
	return cal
}

// UID returns a stable identifier derived from the event's delete identity,
// so exporting the same store twice yields the same UIDs.
func UID(e domain.Event) string {
	name := fmt.Sprintf("%04d-%02d-%02d|%s|%s|%s", e.Year, e.Month, e.Day, e.Time, e.Activity, e.Location)
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@smartcal"
}

// Span reads the first one or two "HH:MM" clock values out of the event time.
// A single value gives a one-hour slot. "24:00" is midnight at the end of the
// day, and an end not after the start rolls over to the next day.
func Span(e domain.Event, loc *time.Location) (start, end time.Time, ok bool) {
	matches := clockPattern.FindAllStringSubmatch(e.Time, 2)
	if len(matches) == 0 {
		return time.Time{}, time.Time{}, false
	}

	day := time.Date(e.Year, time.Month(e.Month), e.Day, 0, 0, 0, 0, loc)
	start, ok = clockOn(day, matches[0])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if len(matches) == 1 {
		return start, start.Add(time.Hour), true
	}

	end, ok = clockOn(day, matches[1])
	if !ok {
		return start, start.Add(time.Hour), true
	}
	for !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, true
}

func clockOn(day time.Time, m []string) (time.Time, bool) {
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h > 24 || mm > 59 || (h == 24 && mm != 0) {
		return time.Time{}, false
	}
	return day.Add(time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute), true
}
