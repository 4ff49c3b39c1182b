package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unspecified is stored in place of a location, time, or activity the source
// text did not mention.
const Unspecified = "未指定"

// ErrInvalidDate is returned when a date string is not three dash-separated
// integers naming a real calendar day.
var ErrInvalidDate = errors.New("invalid date")

// Event is a single scheduled activity. The JSON tags are the on-disk format
// of the event log.
type Event struct {
	Date     string `json:"date"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Time     string `json:"time"`
	Location string `json:"location"`
	Activity string `json:"activity"`
}

// NewEvent parses date and fills empty text fields with Unspecified.
func NewEvent(date, clock, location, activity string) (Event, error) {
	y, m, d, err := ParseDate(date)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Date:     strings.TrimSpace(date),
		Year:     y,
		Month:    m,
		Day:      d,
		Time:     orUnspecified(clock),
		Location: orUnspecified(location),
		Activity: orUnspecified(activity),
	}, nil
}

func orUnspecified(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Unspecified
	}
	return s
}

// ParseDate splits "YYYY-M-D" (zero padding optional) into its components and
// checks the day against the length of the month.
func ParseDate(s string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(strings.TrimSpace(p))
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	year, month, day = nums[0], nums[1], nums[2]
	if year < 1 || month < 1 || month > 12 || day < 1 || day > DaysIn(year, month) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return year, month, day, nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IdentityKey identifies an event for add and dedup. Location is not part of it.
type IdentityKey struct {
	Year, Month, Day int
	Time, Activity   string
}

// FullKey identifies an event for delete-by-value. It extends IdentityKey with
// the location.
type FullKey struct {
	IdentityKey
	Location string
}

// IdentityKey returns the add/dedup identity of e.
func (e Event) IdentityKey() IdentityKey {
	return IdentityKey{Year: e.Year, Month: e.Month, Day: e.Day, Time: e.Time, Activity: e.Activity}
}

// FullKey returns the delete identity of e.
func (e Event) FullKey() FullKey {
	return FullKey{IdentityKey: e.IdentityKey(), Location: e.Location}
}

// OnDay reports whether e falls on the given date. Argument order matches the
// store queries: day, year, month.
func (e Event) OnDay(day, year, month int) bool {
	return e.Year == year && e.Month == month && e.Day == day
}

// Less orders events by (year, month, day, time). Time is compared as a plain
// string, which is chronological only for "HH:MM"-prefixed values.
func Less(a, b Event) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	if a.Day != b.Day {
		return a.Day < b.Day
	}
	return a.Time < b.Time
}

// ISODate renders the event date as zero-padded YYYY-MM-DD.
func (e Event) ISODate() string {
	return fmt.Sprintf("%04d-%02d-%02d", e.Year, e.Month, e.Day)
}
