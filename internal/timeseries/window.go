// Package timeseries buckets computed emissions into ordered, gap-filled
// periods over a time window.
//
// Buckets are grouped by a structural PeriodKey (granularity plus period
// index) and labelled separately, so periods in different years never merge
// even when their short labels coincide. Record dates are calendar values:
// their wall-clock fields are reinterpreted in the window's location before
// filtering and bucketing.
package timeseries

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Granularity is the bucket size of a window.
type Granularity int

const (
	Day Granularity = iota
	Week
	Month
	Year
)

// Default relative window lengths, in periods of the granularity.
const (
	DefaultDays   = 30
	DefaultWeeks  = 12
	DefaultMonths = 12
	DefaultYears  = 5

	// MaxPeriods bounds the number of buckets a window may span.
	MaxPeriods = 10000
)

// ErrInvalidWindow is returned when a window cannot be parsed.
var ErrInvalidWindow = errors.New("invalid time window")

// String returns "day", "week", "month" or "year".
func (g Granularity) String() string {
	switch g {
	case Day:
		return "day"
	case Week:
		return "week"
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
}

// ParseGranularity parses a granularity name; plural forms are accepted.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "day":
		return Day, nil
	case "week":
		return Week, nil
	case "month":
		return Month, nil
	case "year":
		return Year, nil
	default:
		return Month, fmt.Errorf("%w: unknown granularity %q", ErrInvalidWindow, s)
	}
}

// Window is a reporting time window: either the last N periods ending
// now, or an explicit [Start, End] range bucketed at Granularity.
type Window struct {
	Granularity Granularity
	// Last is the number of periods for relative windows.
	Last int
	// Start and End bound a custom window; both are inclusive.
	Start time.Time
	End   time.Time
	// Custom marks an explicit range.
	Custom bool
}

// LastDays returns a relative window of n daily buckets.
func LastDays(n int) Window { return Window{Granularity: Day, Last: n} }

// LastWeeks returns a relative window of n weekly buckets.
func LastWeeks(n int) Window { return Window{Granularity: Week, Last: n} }

// LastMonths returns a relative window of n monthly buckets.
func LastMonths(n int) Window { return Window{Granularity: Month, Last: n} }

// LastYears returns a relative window of n yearly buckets.
func LastYears(n int) Window { return Window{Granularity: Year, Last: n} }

// CustomRange returns an explicit window. Custom ranges bucket monthly
// unless another granularity is supplied.
func CustomRange(start, end time.Time, g ...Granularity) Window {
	w := Window{Granularity: Month, Start: start, End: end, Custom: true}
	if len(g) > 0 {
		w.Granularity = g[0]
	}
	return w
}

// DefaultWindow returns the standard relative window for a granularity:
// 30 days, 12 weeks, 12 months or 5 years.
func DefaultWindow(g Granularity) Window {
	return Window{Granularity: g, Last: defaultLast(g)}
}

func defaultLast(g Granularity) int {
	switch g {
	case Day:
		return DefaultDays
	case Week:
		return DefaultWeeks
	case Month:
		return DefaultMonths
	case Year:
		return DefaultYears
	default:
		return DefaultMonths
	}
}

// Range returns the inclusive [start, end] instant range of the window.
// Relative windows start at the beginning of the period Last-1 periods
// before the one containing now, and end at now. A non-positive Last uses
// the granularity's default length.
func (w Window) Range(now time.Time) (time.Time, time.Time) {
	if w.Custom {
		loc := now.Location()
		return civil(w.Start, loc), civil(w.End, loc)
	}
	n := w.Last
	if n <= 0 {
		n = defaultLast(w.Granularity)
	}
	start := PeriodStart(w.Granularity, now)
	start = Advance(w.Granularity, start, -(n - 1))
	return start, now
}

// Periods returns the number of buckets the window spans at now.
func (w Window) Periods(now time.Time) int {
	start, end := w.Range(now)
	if end.Before(start) {
		return 0
	}
	a, b := KeyOf(w.Granularity, start), KeyOf(w.Granularity, end)
	return a.Distance(b) + 1
}

// String describes the window, e.g. "last 12 months" or
// "2025-01-01..2025-03-31 by month".
func (w Window) String() string {
	if w.Custom {
		return fmt.Sprintf("%s..%s by %s", w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly), w.Granularity)
	}
	n := w.Last
	if n <= 0 {
		n = defaultLast(w.Granularity)
	}
	unit := w.Granularity.String()
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("last %d %s", n, unit)
}

// Contains reports whether a record date falls inside the window at now.
// Zero dates are never contained.
func (w Window) Contains(date, now time.Time) bool {
	if date.IsZero() {
		return false
	}
	start, end := w.Range(now)
	d := civil(date, now.Location())
	return !d.Before(start) && !d.After(end)
}

// Validate reports malformed windows.
func (w Window) Validate() error {
	if w.Granularity < Day || w.Granularity > Year {
		return fmt.Errorf("%w: granularity %d", ErrInvalidWindow, int(w.Granularity))
	}
	if w.Custom {
		if w.Start.IsZero() || w.End.IsZero() {
			return fmt.Errorf("%w: custom range needs start and end", ErrInvalidWindow)
		}
		if w.End.Before(w.Start) {
			return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
				w.End.Format(time.DateOnly), w.Start.Format(time.DateOnly))
		}
		return w.Bounded()
	}
	if w.Last < 0 {
		return fmt.Errorf("%w: negative period count %d", ErrInvalidWindow, w.Last)
	}
	return w.Bounded()
}

// Bounded reports an error when the window spans more than MaxPeriods
// buckets. A custom range that ends before it starts spans none.
func (w Window) Bounded() error {
	n := w.Last
	if w.Custom {
		n = 0
		if !w.End.Before(w.Start) {
			n = KeyOf(w.Granularity, w.Start).Distance(KeyOf(w.Granularity, w.End)) + 1
		}
	}
	if n > MaxPeriods {
		return fmt.Errorf("%w: %d %ss exceeds the limit of %d", ErrInvalidWindow, n, w.Granularity, MaxPeriods)
	}
	return nil
}

// civil reinterprets t's wall-clock fields in loc.
func civil(t time.Time, loc *time.Location) time.Time {
	if t.Location() == loc {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
