package timeseries

import (
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/greenops"
)

// Bucket is one period of a series. PeriodStart is inclusive and PeriodEnd
// exclusive.
type Bucket struct {
	Key         PeriodKey `json:"key"`
	Label       string    `json:"label"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Total       float64   `json:"total"`
	Scope1      float64   `json:"scope1"`
	Scope2      float64   `json:"scope2"`
	Scope3      float64   `json:"scope3"`
	Count       int       `json:"count"`
}

// DisplayTotal returns Total rounded to two decimals.
func (b Bucket) DisplayTotal() float64 {
	return greenops.Round2(b.Total)
}

// ScopeTotal returns the bucket subtotal for a scope.
func (b Bucket) ScopeTotal(s emissions.Scope) float64 {
	switch s {
	case emissions.Scope1:
		return b.Scope1
	case emissions.Scope2:
		return b.Scope2
	case emissions.Scope3:
		return b.Scope3
	case emissions.ScopeUnknown:
		return 0
	default:
		return 0
	}
}

// Series is an aggregation result with bookkeeping about excluded records.
type Series struct {
	Window  Window    `json:"window"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Buckets []Bucket  `json:"buckets"`
	// Undated counts records skipped for a missing or invalid date.
	Undated int `json:"undated"`
	// OutOfRange counts dated records outside [Start, End].
	OutOfRange int `json:"out_of_range"`
}

// Total returns the sum of all bucket totals.
func (s Series) Total() float64 {
	var t float64
	for _, b := range s.Buckets {
		t += b.Total
	}
	return t
}

// Aggregate buckets records over the window and returns the buckets in
// chronological order. Every period in the window is present, including
// those with no records.
func Aggregate(records []emissions.ComputedEmission, w Window, now time.Time) []Bucket {
	return Build(records, w, now).Buckets
}

// Build is Aggregate with exclusion counts. It is a pure function of its
// inputs: identical arguments always yield identical series.
func Build(records []emissions.ComputedEmission, w Window, now time.Time) Series {
	start, end := w.Range(now)
	s := Series{Window: w, Start: start, End: end}
	if end.Before(start) {
		s.Buckets = []Bucket{}
		return s
	}

	g := w.Granularity
	buckets := make([]Bucket, 0, min(w.Periods(now), MaxPeriods))
	index := make(map[PeriodKey]int)
	last := KeyOf(g, end)
	for p := PeriodStart(g, start); ; p = Advance(g, p, 1) {
		k := KeyOf(g, p)
		if k.Index > last.Index {
			break
		}
		index[k] = len(buckets)
		buckets = append(buckets, Bucket{
			Key:         k,
			Label:       Label(g, p),
			PeriodStart: p,
			PeriodEnd:   Advance(g, p, 1),
		})
	}

	loc := now.Location()
	for _, r := range records {
		if !r.HasDate() {
			s.Undated++
			continue
		}
		d := civil(r.Date, loc)
		if d.Before(start) || d.After(end) {
			s.OutOfRange++
			continue
		}
		i, ok := index[KeyOf(g, d)]
		if !ok {
			s.OutOfRange++
			continue
		}
		b := &buckets[i]
		b.Total += r.TotalCO2e
		b.Count++
		switch r.Scope() {
		case emissions.Scope1:
			b.Scope1 += r.TotalCO2e
		case emissions.Scope2:
			b.Scope2 += r.TotalCO2e
		case emissions.Scope3:
			b.Scope3 += r.TotalCO2e
		case emissions.ScopeUnknown:
		}
	}

	s.Buckets = buckets
	return s
}
