// Package rollup computes dashboard summary statistics over categorised
// computed emissions: grand and per-scope totals, per-category subtotals and
// shares, the current calendar month, and month-over-month change.
package rollup

import (
	"slices"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
)

// NoPreviousData is the display text for an unavailable change percentage.
const NoPreviousData = "No previous data"

// Categorised groups computed emissions by the category they were fetched as.
type Categorised map[emissions.Category][]emissions.ComputedEmission

// Add appends emissions under their own method category.
func (c Categorised) Add(items ...emissions.ComputedEmission) {
	for _, it := range items {
		cat := it.Category()
		c[cat] = append(c[cat], it)
	}
}

// Keys returns the categories present in c: the known categories in display
// order, then any others sorted by name.
func (c Categorised) Keys() []emissions.Category {
	keys := make([]emissions.Category, 0, len(c))
	for _, cat := range emissions.Categories {
		if _, ok := c[cat]; ok {
			keys = append(keys, cat)
		}
	}
	var extra []emissions.Category
	for cat := range c {
		if !slices.Contains(emissions.Categories, cat) {
			extra = append(extra, cat)
		}
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// All flattens the groups in Keys order.
func (c Categorised) All() []emissions.ComputedEmission {
	var out []emissions.ComputedEmission
	for _, cat := range c.Keys() {
		out = append(out, c[cat]...)
	}
	return out
}

// CategoryStats is the summary for one category.
type CategoryStats struct {
	Category   emissions.Category `json:"category"`
	Scope      emissions.Scope    `json:"scope"`
	Total      float64            `json:"total"`
	Count      int                `json:"count"`
	Percentage float64            `json:"percentage"`
}

// ScopeShare is one slice of the scope breakdown chart.
type ScopeShare struct {
	Scope      emissions.Scope `json:"scope"`
	Name       string          `json:"name"`
	Total      float64         `json:"total"`
	Percentage float64         `json:"percentage"`
	Color      string          `json:"color"`
}

// Change is a month-over-month comparison. Percent is meaningful only when
// Available is true; otherwise Reason explains why.
type Change struct {
	Available bool    `json:"available"`
	Percent   float64 `json:"percent"`
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	Reason    error   `json:"-"`
}

// String renders "+12.5%", "-3.0%" or NoPreviousData.
func (c Change) String() string {
	if !c.Available {
		return NoPreviousData
	}
	return formatSignedPercent(c.Percent)
}

// Stats is a dashboard snapshot.
type Stats struct {
	Total float64 `json:"total_emissions"`

	Scope1 float64 `json:"scope1"`
	Scope2 float64 `json:"scope2"`
	Scope3 float64 `json:"scope3"`

	// Stationary, Mobile and Fugitive are the scope 1 sub-categories.
	Stationary float64 `json:"stationary"`
	Mobile     float64 `json:"mobile"`
	Fugitive   float64 `json:"fugitive"`

	CurrentMonth  float64 `json:"current_month"`
	PreviousMonth float64 `json:"previous_month"`
	Change        Change  `json:"change"`

	EntryCount        int `json:"entries_count"`
	CurrentMonthCount int `json:"current_month_count"`
	NotComputable     int `json:"not_computable"`
	Undated           int `json:"undated"`

	LastEntryDate time.Time `json:"last_entry_date,omitzero"`

	Categories []CategoryStats `json:"categories"`
	ByScope    []ScopeShare    `json:"by_scope"`
}

// ScopeTotal returns the subtotal for s.
func (s Stats) ScopeTotal(scope emissions.Scope) float64 {
	switch scope {
	case emissions.Scope1:
		return s.Scope1
	case emissions.Scope2:
		return s.Scope2
	case emissions.Scope3:
		return s.Scope3
	case emissions.ScopeUnknown:
		return 0
	default:
		return 0
	}
}

// Category returns the stats for cat, or a zero value with the category set.
func (s Stats) Category(cat emissions.Category) CategoryStats {
	for _, c := range s.Categories {
		if c.Category == cat {
			return c
		}
	}
	return CategoryStats{Category: cat, Scope: cat.Scope()}
}
