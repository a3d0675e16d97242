// Package daterange resolves the time window a backtest or plot covers.
package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidRange is returned when start falls after end.
	ErrInvalidRange = errors.New("start must not be after end")
	// ErrNegative is returned for negative look-back amounts.
	ErrNegative = errors.New("look-back amount must not be negative")
	// ErrBadSpecifier is returned when a "last" string cannot be parsed.
	ErrBadSpecifier = errors.New("invalid look-back specifier")
)

// Day-based units used by the look-back helpers. Calendar months and leap
// years are ignored.
const (
	Day   = 24 * time.Hour
	Month = 30 * Day
	Year  = 365 * Day
)

var lastPattern = regexp.MustCompile(`^(\d+)([ymdh])$`)

// Range is an inclusive [Start, End] window.
type Range struct {
	Start time.Time
	End   time.Time
}

// New validates and returns the window. A zero start means "from the beginning".
func New(start, end time.Time) (Range, error) {
	if !start.IsZero() && start.After(end) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{Start: start, End: end}, nil
}

// Contains reports whether t lies inside the window.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// String renders the window for logs.
func (r Range) String() string {
	return r.Start.Format(time.DateOnly) + ".." + r.End.Format(time.DateOnly)
}

func back(n int, unit time.Duration, now time.Time) (Range, error) {
	if n < 0 {
		return Range{}, fmt.Errorf("%w: %d", ErrNegative, n)
	}
	return Range{Start: now.Add(-time.Duration(n) * unit), End: now}, nil
}

// YearsBack covers the last n 365-day years up to now.
func YearsBack(n int, now time.Time) (Range, error) { return back(n, Year, now) }

// MonthsBack covers the last n 30-day months up to now.
func MonthsBack(n int, now time.Time) (Range, error) { return back(n, Month, now) }

// DaysBack covers the last n days up to now.
func DaysBack(n int, now time.Time) (Range, error) { return back(n, Day, now) }

// HoursBack covers the last n hours up to now.
func HoursBack(n int, now time.Time) (Range, error) { return back(n, time.Hour, now) }

// FromLast parses specifiers such as "5y", "6m", "30d" or "12h".
func FromLast(spec string, now time.Time) (Range, error) {
	m := lastPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(spec)))
	if m == nil {
		return Range{}, fmt.Errorf("%w: %q", ErrBadSpecifier, spec)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrBadSpecifier, spec)
	}
	switch m[2] {
	case "y":
		return YearsBack(n, now)
	case "m":
		return MonthsBack(n, now)
	case "d":
		return DaysBack(n, now)
	default:
		return HoursBack(n, now)
	}
}

// Resolve prefers a look-back specifier and falls back to explicit bounds.
// Empty bounds mean the beginning of time and now respectively.
func Resolve(last, start, end string, now time.Time) (Range, error) {
	if strings.TrimSpace(last) != "" {
		return FromLast(last, now)
	}
	var (
		from time.Time
		to   = now
		err  error
	)
	if start != "" {
		if from, err = parseTime(start); err != nil {
			return Range{}, err
		}
	}
	if end != "" {
		if to, err = parseTime(end); err != nil {
			return Range{}, err
		}
	}
	return New(from, to)
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q: expected ISO-8601", value)
}
