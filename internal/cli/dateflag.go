package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/smartcal/internal/domain"
)

// dateValue is a pflag.Value holding a validated calendar date.
type dateValue struct {
	raw              string
	year, month, day int
}

var _ pflag.Value = (*dateValue)(nil)

func (v *dateValue) Set(s string) error {
	y, m, d, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	v.raw = strings.TrimSpace(s)
	v.year, v.month, v.day = y, m, d
	return nil
}

func (v *dateValue) String() string { return v.raw }

func (v *dateValue) Type() string { return "date" }

func (v *dateValue) isSet() bool { return v.raw != "" }

// resolveDay reads an optional YYYY-MM-DD argument, also accepting "today",
// "tomorrow", 今天 and 明天. It falls back to now.
func resolveDay(args []string, now time.Time) (day, year, month int, err error) {
	if len(args) == 0 {
		return now.Day(), now.Year(), int(now.Month()), nil
	}
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "today", "今天":
		return now.Day(), now.Year(), int(now.Month()), nil
	case "tomorrow", "明天":
		t := now.AddDate(0, 0, 1)
		return t.Day(), t.Year(), int(t.Month()), nil
	}
	year, month, day, err = domain.ParseDate(args[0])
	return day, year, month, err
}

// resolveMonth reads an optional YYYY-MM argument, falling back to now.
func resolveMonth(args []string, now time.Time) (year, month int, err error) {
	if len(args) == 0 {
		return now.Year(), int(now.Month()), nil
	}
	parts := strings.Split(strings.TrimSpace(args[0]), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", args[0])
	}
	year, yErr := strconv.Atoi(parts[0])
	month, mErr := strconv.Atoi(parts[1])
	if yErr != nil || mErr != nil || year < 1 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q: want YYYY-MM", args[0])
	}
	return year, month, nil
}
