package timeseries

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// PeriodKey identifies one bucket structurally. Index is the day number
// since 1970-01-01 for days, the day number of the week's Sunday for weeks,
// year*12+month-1 for months and the year for years.
type PeriodKey struct {
	Granularity Granularity `json:"granularity"`
	Index       int64       `json:"index"`
}

// String returns a stable, sortable representation such as "month:24303".
func (k PeriodKey) String() string {
	return fmt.Sprintf("%s:%d", k.Granularity, k.Index)
}

// Distance returns the number of periods from k to other.
func (k PeriodKey) Distance(other PeriodKey) int {
	d := other.Index - k.Index
	if k.Granularity == Week {
		d /= 7
	}
	return int(d)
}

// PeriodStart returns midnight at the start of the period containing t, in
// t's location. Weeks start on Sunday.
func PeriodStart(g Granularity, t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Day:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case Week:
		return time.Date(y, m, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case Month:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case Year:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
}

// Advance moves a period start by n periods (negative n moves back).
func Advance(g Granularity, start time.Time, n int) time.Time {
	switch g {
	case Day:
		return start.AddDate(0, 0, n)
	case Week:
		return start.AddDate(0, 0, 7*n)
	case Month:
		return start.AddDate(0, n, 0)
	case Year:
		return start.AddDate(n, 0, 0)
	default:
		return start.AddDate(0, 0, n)
	}
}

// KeyOf returns the key of the period containing t.
func KeyOf(g Granularity, t time.Time) PeriodKey {
	start := PeriodStart(g, t)
	switch g {
	case Day, Week:
		return PeriodKey{Granularity: g, Index: dayNumber(start)}
	case Month:
		return PeriodKey{Granularity: g, Index: int64(start.Year())*12 + int64(start.Month()) - 1}
	case Year:
		return PeriodKey{Granularity: g, Index: int64(start.Year())}
	default:
		return PeriodKey{Granularity: g, Index: dayNumber(start)}
	}
}

// dayNumber counts calendar days since 1970-01-01 independent of location
// and DST.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// Label formats a period for display: "Jan 2" for days, "Week Jan 2" for
// weeks, "Jan 2006" for months and "2006" for years.
func Label(g Granularity, start time.Time) string {
	switch g {
	case Day:
		return start.Format("Jan 2")
	case Week:
		return "Week " + start.Format("Jan 2")
	case Month:
		return start.Format("Jan 2006")
	case Year:
		return start.Format("2006")
	default:
		return start.Format(time.DateOnly)
	}
}
