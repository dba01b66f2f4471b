// Package engine exposes the three projections the presentation layer
// consumes: computed emissions for a record set, a bucketed trend for a
// window, and dashboard stats for categorised emissions.
//
// All three are pure functions of their inputs. Engine adds optional
// memoisation on top; a memo miss, error or absence always falls back to
// recomputing from scratch.
package engine

import (
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// EmissionsView is the computed projection of a raw record set.
type EmissionsView struct {
	Computed []emissions.ComputedEmission `json:"computed"`
	// IsLoading is true when the records have not been fetched yet.
	IsLoading bool `json:"is_loading"`
}

// Total returns the sum of computed totals.
func (v EmissionsView) Total() float64 {
	var t float64
	for _, c := range v.Computed {
		t += c.TotalCO2e
	}
	return t
}

// TrendView is the bucketed projection of computed emissions.
type TrendView struct {
	Buckets []timeseries.Bucket `json:"buckets"`
	Window  timeseries.Window   `json:"window"`
}

// Trend buckets computed emissions over w.
func Trend(computed []emissions.ComputedEmission, w timeseries.Window, now time.Time) TrendView {
	return TrendView{Buckets: timeseries.Aggregate(computed, w, now), Window: w}
}

// Stats summarises categorised emissions. A nil previous compares the
// current month against the previous calendar month in the data.
func Stats(c rollup.Categorised, now time.Time, previous *rollup.PeriodTotals) rollup.Stats {
	return rollup.SummarizeAgainst(c, now, previous)
}

// selectMethod keeps records of method; MethodUnknown keeps everything.
func selectMethod(records []emissions.ActivityRecord, method emissions.Method) ([]emissions.ActivityRecord, int) {
	if method == emissions.MethodUnknown {
		return records, 0
	}
	out := make([]emissions.ActivityRecord, 0, len(records))
	for _, r := range records {
		if recordMethod(r) == method {
			out = append(out, r)
		}
	}
	return out, len(records) - len(out)
}

func recordMethod(r emissions.ActivityRecord) emissions.Method {
	if r.Input != nil {
		return r.Input.Method()
	}
	return r.Method
}
