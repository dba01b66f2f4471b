package rollup

import (
	"fmt"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/greenops"
)

// Scope breakdown chart colours.
const (
	ColorScope1 = "#00BCD4"
	ColorScope2 = "#FF5252"
	ColorScope3 = "#4CAF50"
)

// PeriodTotals is a comparison value for month-over-month change.
type PeriodTotals struct {
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// Summarize computes Stats for the categorised emissions. The previous
// calendar month is derived from the same data.
func Summarize(c Categorised, now time.Time) Stats {
	return SummarizeAgainst(c, now, nil)
}

// SummarizeAgainst is Summarize with an explicit previous-period comparison.
// A nil previous falls back to the previous calendar month found in c.
//
// Emissions count toward the scope of the category they are grouped under.
// Undated emissions contribute to every total except the monthly ones.
func SummarizeAgainst(c Categorised, now time.Time, previous *PeriodTotals) Stats {
	acc := newAccumulator(now)

	for _, cat := range c.Keys() {
		cs := acc.category(cat)
		for _, e := range c[cat] {
			acc.add(cs, e)
		}
	}

	s := acc.stats
	s.Stationary = acc.category(emissions.CategoryStationary).Total
	s.Mobile = acc.category(emissions.CategoryMobile).Total
	s.Fugitive = acc.category(emissions.CategoryFugitive).Total

	s.Categories = make([]CategoryStats, 0, len(acc.order))
	for _, cat := range acc.order {
		cs := *acc.perCategory[cat]
		cs.Percentage = Percentage(cs.Total, s.Total)
		s.Categories = append(s.Categories, cs)
	}

	s.ByScope = make([]ScopeShare, 0, len(emissions.Scopes))
	for _, scope := range emissions.Scopes {
		total := s.ScopeTotal(scope)
		s.ByScope = append(s.ByScope, ScopeShare{
			Scope:      scope,
			Name:       scope.String(),
			Total:      total,
			Percentage: Percentage(total, s.Total),
			Color:      ScopeColor(scope),
		})
	}

	prev := acc.previous
	if previous != nil {
		prev = *previous
	}
	s.PreviousMonth = prev.Total
	s.Change = MonthOverMonth(s.CurrentMonth, prev)
	return s
}

type accumulator struct {
	stats       Stats
	perCategory map[emissions.Category]*CategoryStats
	order       []emissions.Category
	previous    PeriodTotals

	curYear, prevYear   int
	curMonth, prevMonth time.Month
}

func newAccumulator(now time.Time) *accumulator {
	a := &accumulator{
		perCategory: make(map[emissions.Category]*CategoryStats, len(emissions.Categories)),
	}
	a.curYear, a.curMonth, _ = now.Date()
	a.prevYear, a.prevMonth, _ = time.Date(a.curYear, a.curMonth-1, 1, 0, 0, 0, 0, now.Location()).Date()
	for _, cat := range emissions.Categories {
		a.category(cat)
	}
	return a
}

func (a *accumulator) category(cat emissions.Category) *CategoryStats {
	cs, ok := a.perCategory[cat]
	if !ok {
		cs = &CategoryStats{Category: cat, Scope: cat.Scope()}
		a.perCategory[cat] = cs
		a.order = append(a.order, cat)
	}
	return cs
}

func (a *accumulator) add(cs *CategoryStats, e emissions.ComputedEmission) {
	s := &a.stats
	cs.Total += e.TotalCO2e
	cs.Count++

	s.EntryCount++
	s.Total += e.TotalCO2e
	if !e.Computable {
		s.NotComputable++
	}

	scope := cs.Scope
	if scope == emissions.ScopeUnknown {
		scope = e.Scope()
	}
	switch scope {
	case emissions.Scope1:
		s.Scope1 += e.TotalCO2e
	case emissions.Scope2:
		s.Scope2 += e.TotalCO2e
	case emissions.Scope3:
		s.Scope3 += e.TotalCO2e
	case emissions.ScopeUnknown:
	}

	if !e.HasDate() {
		s.Undated++
		return
	}
	if e.Date.After(s.LastEntryDate) {
		s.LastEntryDate = e.Date
	}
	y, m, _ := e.Date.Date()
	switch {
	case y == a.curYear && m == a.curMonth:
		s.CurrentMonth += e.TotalCO2e
		s.CurrentMonthCount++
	case y == a.prevYear && m == a.prevMonth:
		a.previous.Total += e.TotalCO2e
		a.previous.Count++
	}
}

// Percentage returns part as a percentage of total, or 0 when total is 0.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100 //nolint:mnd // percent
}

// MonthOverMonth compares current against a previous period. The change is
// unavailable when the previous period has no entries or a zero total.
func MonthOverMonth(current float64, previous PeriodTotals) Change {
	ch := Change{Current: current, Previous: previous.Total}
	switch {
	case previous.Count == 0:
		ch.Reason = fmt.Errorf("%w: no entries in previous period", emissions.ErrDivisionGuard)
	case previous.Total == 0:
		ch.Reason = fmt.Errorf("%w: previous period total is zero", emissions.ErrDivisionGuard)
	default:
		ch.Available = true
		ch.Percent = (current - previous.Total) / previous.Total * 100 //nolint:mnd // percent
	}
	return ch
}

// ScopeColor returns the chart colour for a scope.
func ScopeColor(s emissions.Scope) string {
	switch s {
	case emissions.Scope1:
		return ColorScope1
	case emissions.Scope2:
		return ColorScope2
	case emissions.Scope3:
		return ColorScope3
	case emissions.ScopeUnknown:
		return ""
	default:
		return ""
	}
}

func formatSignedPercent(p float64) string {
	s := greenops.FormatPercent(p)
	if greenops.Round(p, 1) > 0 {
		return "+" + s
	}
	return s
}
