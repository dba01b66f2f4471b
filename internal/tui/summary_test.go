package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

//nolint:gochecknoglobals // Fixed clock for deterministic tests.
var now = time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func em(date time.Time, method emissions.Method, total float64) emissions.ComputedEmission {
	return emissions.ComputedEmission{Date: date, Method: method, TotalCO2e: total, Computable: true}
}

func sampleEmissions() []emissions.ComputedEmission {
	return []emissions.ComputedEmission{
		em(day(2025, 3, 2), emissions.MethodStationary, 10),
		em(day(2025, 2, 14), emissions.MethodMobileFuel, 5),
		em(day(2025, 3, 20), emissions.MethodFugitiveSimple, 5),
		em(day(2025, 3, 5), emissions.MethodElectricity, 20),
		em(day(2024, 12, 1), emissions.MethodTravelSpend, 10),
	}
}

func sampleStats() rollup.Stats {
	c := rollup.Categorised{}
	c.Add(sampleEmissions()...)
	return rollup.Summarize(c, now)
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleStats(), 100)

	assert.Contains(t, out, "EMISSIONS SUMMARY")
	assert.Contains(t, out, "50.00 tCO2e")
	assert.Contains(t, out, "35.00 tCO2e")
	assert.Contains(t, out, "+600.0%")
	assert.Contains(t, out, "Last entry:")
	assert.Contains(t, out, "2025-03-20")
	assert.Contains(t, out, "BY SCOPE")
	assert.Contains(t, out, "Scope 1")
	assert.Contains(t, out, "40.0%")
	assert.Contains(t, out, "Equivalent to driving")
}

func TestRenderSummary_Empty(t *testing.T) {
	out := RenderSummary(rollup.Summarize(rollup.Categorised{}, now), 80)
	assert.Contains(t, out, "No activity records")
}

func TestRenderSummary_NoPreviousMonth(t *testing.T) {
	c := rollup.Categorised{}
	c.Add(em(day(2025, 3, 1), emissions.MethodStationary, 1), em(time.Time{}, emissions.MethodStationary, 2))
	out := RenderSummary(rollup.Summarize(c, now), 100)

	assert.Contains(t, out, rollup.NoPreviousData)
	assert.Contains(t, out, "1 undated record(s)")
}

func TestRenderChange(t *testing.T) {
	tests := []struct {
		name string
		ch   rollup.Change
		want string
	}{
		{name: "increase", ch: rollup.Change{Available: true, Percent: 12.5}, want: "+12.5%"},
		{name: "decrease", ch: rollup.Change{Available: true, Percent: -3}, want: "-3.0%"},
		{name: "flat", ch: rollup.Change{Available: true}, want: "0.0%"},
		{name: "unavailable", ch: rollup.Change{}, want: rollup.NoPreviousData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, RenderChange(tt.ch), tt.want)
		})
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name     string
		fraction float64
		width    int
		filled   int
	}{
		{name: "half", fraction: 0.5, width: 10, filled: 5},
		{name: "full", fraction: 1, width: 10, filled: 10},
		{name: "clamped above", fraction: 3, width: 4, filled: 4},
		{name: "clamped below", fraction: -1, width: 4, filled: 0},
		{name: "rounds", fraction: 0.26, width: 10, filled: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderBar(tt.fraction, tt.width, rollup.ColorScope1)
			assert.Equal(t, tt.filled, strings.Count(bar, barFull))
			assert.Equal(t, tt.width-tt.filled, strings.Count(bar, barEmpty))
		})
	}
	assert.Empty(t, RenderBar(0.5, 0, ""))
}

func TestRenderTrendChart(t *testing.T) {
	series := timeseries.Build(sampleEmissions(), timeseries.LastMonths(3), now)
	out := RenderTrendChart(series, 100)

	assert.Contains(t, out, "last 3 months")
	assert.Contains(t, out, "Jan 2025")
	assert.Contains(t, out, "Mar 2025")
	assert.Contains(t, out, "40.00 tCO2e")
	assert.NotContains(t, out, "Dec 2024")
}

func TestDominantScope(t *testing.T) {
	assert.Equal(t, emissions.Scope2, dominantScope(timeseries.Bucket{Scope1: 1, Scope2: 3, Scope3: 2}))
	assert.Equal(t, emissions.ScopeUnknown, dominantScope(timeseries.Bucket{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Mobile ...", truncate("Mobile Combustion", 10))
}
