package testutil

import (
	"fmt"

	"github.com/alexanderramin/smartcal/internal/domain"
)

// EventOption customizes a fixture event.
type EventOption func(*domain.Event)

func WithLocation(loc string) EventOption {
	return func(e *domain.Event) {
		e.Location = loc
	}
}

func WithTime(t string) EventOption {
	return func(e *domain.Event) {
		e.Time = t
	}
}

// NewTestEvent builds an event on year-month-day. Time defaults to 09:00 and
// location to the Unspecified sentinel.
func NewTestEvent(year, month, day int, activity string, opts ...EventOption) domain.Event {
	e := domain.Event{
		Date:     fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Year:     year,
		Month:    month,
		Day:      day,
		Time:     "09:00",
		Location: domain.Unspecified,
		Activity: activity,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
