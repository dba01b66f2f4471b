package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/engine/cache"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

//nolint:gochecknoglobals // Fixed clock for deterministic tests.
var now = time.Date(2025, time.June, 18, 15, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func electricity(id string, date time.Time, kwh float64) emissions.ActivityRecord {
	return emissions.ActivityRecord{
		ID:     id,
		Date:   date,
		Method: emissions.MethodElectricity,
		Input:  emissions.ElectricityInput{ActivityData: kwh, Unit: emissions.UnitKWh},
	}
}

func spend(id string, date time.Time, amount float64) emissions.ActivityRecord {
	return emissions.ActivityRecord{
		ID:     id,
		Date:   date,
		Method: emissions.MethodTravelSpend,
		Input:  emissions.TravelSpendInput{AmountSpent: amount, Currency: "USD"},
	}
}

// countingMemo wraps a Memo and counts reads that hit.
type countingMemo struct {
	Memo
	hits, sets int
}

func (m *countingMemo) Get(key string) (*cache.Entry, error) {
	e, err := m.Memo.Get(key)
	if err == nil {
		m.hits++
	}
	return e, err
}

func (m *countingMemo) Set(key, kind string, data json.RawMessage) error {
	m.sets++
	return m.Memo.Set(key, kind, data)
}

func newMemo(t *testing.T) *countingMemo {
	t.Helper()
	store, err := cache.NewFileStore(t.TempDir(), true, cache.DefaultTTLSeconds)
	require.NoError(t, err)
	return &countingMemo{Memo: store}
}

func TestComputeEmissions_Loading(t *testing.T) {
	e := NewDefault()
	view := e.ComputeEmissions(context.Background(), nil, emissions.MethodElectricity)
	assert.True(t, view.IsLoading)
	assert.Empty(t, view.Computed)

	view = e.ComputeEmissions(context.Background(), []emissions.ActivityRecord{}, emissions.MethodElectricity)
	assert.False(t, view.IsLoading)
	assert.NotNil(t, view.Computed)
	assert.Empty(t, view.Computed)
}

func TestComputeEmissions_FiltersByMethod(t *testing.T) {
	records := []emissions.ActivityRecord{
		electricity("e1", day(2025, 6, 1), 1000),
		spend("s1", day(2025, 6, 2), 100),
	}
	e := NewDefault()

	view := e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	require.Len(t, view.Computed, 1)
	assert.Equal(t, "e1", view.Computed[0].RecordID)
	assert.InDelta(t, 757, view.Total(), 1e-9)

	all := e.ComputeEmissions(context.Background(), records, emissions.MethodUnknown)
	assert.Len(t, all.Computed, 2)
}

func TestComputeEmissions_LogsNotComputable(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewWriterLogger(&buf, logging.Config{Level: "debug"})
	ctx := l.WithContext(context.Background())

	records := []emissions.ActivityRecord{electricity("zero", day(2025, 6, 1), 0)}
	view := NewDefault().ComputeEmissions(ctx, records, emissions.MethodElectricity)

	require.Len(t, view.Computed, 1)
	assert.False(t, view.Computed[0].Computable)
	assert.Contains(t, buf.String(), "record not computable")
	assert.Contains(t, buf.String(), `"record_id":"zero"`)
}

func TestComputeEmissions_Memo(t *testing.T) {
	memo := newMemo(t)
	e := NewDefault(WithMemo(memo))
	records := []emissions.ActivityRecord{
		electricity("e1", day(2025, 6, 1), 1000),
		electricity("e2", day(2025, 6, 2), 0),
	}

	first := e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	second := e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	assert.Equal(t, 1, memo.hits)
	require.Len(t, second.Computed, 2)
	assert.InDelta(t, first.Total(), second.Total(), 1e-12)
	assert.ErrorIs(t, second.Computed[1].Reason, emissions.ErrMissingInput)
	assert.True(t, first.Computed[0].Date.Equal(second.Computed[0].Date))

	// Any input change produces a new key.
	records[0] = electricity("e1", day(2025, 6, 1), 2000)
	third := e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	assert.Equal(t, 1, memo.hits)
	assert.InDelta(t, 1514, third.Total(), 1e-9)
}

func TestComputeEmissions_NoTableIdentityNoMemo(t *testing.T) {
	memo := newMemo(t)
	base := NewDefault()
	e := New(base.calc, WithMemo(memo))

	records := []emissions.ActivityRecord{electricity("e1", day(2025, 6, 1), 1000)}
	e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	assert.Zero(t, memo.sets)
}

func TestTrend_MemoMatchesRecompute(t *testing.T) {
	memo := newMemo(t)
	e := NewDefault(WithMemo(memo))
	computed := e.ComputeEmissions(context.Background(), []emissions.ActivityRecord{
		electricity("e1", day(2025, 6, 1), 1000),
		spend("s1", day(2025, 5, 2), 100),
	}, emissions.MethodUnknown).Computed

	w := timeseries.LastMonths(12)
	fresh := Trend(computed, w, now)
	a := e.Trend(context.Background(), computed, w, now)
	b := e.Trend(context.Background(), computed, w, now)

	assert.Equal(t, 1, memo.hits)
	require.Len(t, b.Buckets, len(fresh.Buckets))
	for i := range fresh.Buckets {
		assert.Equal(t, fresh.Buckets[i].Key, b.Buckets[i].Key)
		assert.Equal(t, fresh.Buckets[i].Label, b.Buckets[i].Label)
		assert.InDelta(t, fresh.Buckets[i].Total, b.Buckets[i].Total, 1e-12)
		assert.True(t, fresh.Buckets[i].PeriodStart.Equal(b.Buckets[i].PeriodStart))
	}
	assert.Equal(t, a.Window, b.Window)
}

func TestTrend_OutOfRangeRecordsDoNotChangeKey(t *testing.T) {
	memo := newMemo(t)
	e := NewDefault(WithMemo(memo))
	inRange := emissions.ComputedEmission{Date: day(2025, 6, 1), Method: emissions.MethodElectricity, TotalCO2e: 1}
	old := emissions.ComputedEmission{Date: day(2020, 1, 1), Method: emissions.MethodElectricity, TotalCO2e: 9}

	w := timeseries.LastMonths(3)
	e.Trend(context.Background(), []emissions.ComputedEmission{inRange}, w, now)
	e.Trend(context.Background(), []emissions.ComputedEmission{inRange, old}, w, now)
	assert.Equal(t, 1, memo.hits)

	moved := inRange
	moved.TotalCO2e = 2
	view := e.Trend(context.Background(), []emissions.ComputedEmission{moved}, w, now)
	assert.Equal(t, 1, memo.hits)
	assert.InDelta(t, 2, view.Buckets[2].Total, 1e-12)
}

type failingMemo struct{}

func (failingMemo) Get(string) (*cache.Entry, error) { return nil, errors.New("disk on fire") }

func (failingMemo) Set(string, string, json.RawMessage) error { return errors.New("disk on fire") }

func TestEngine_MemoFailureFallsBack(t *testing.T) {
	e := NewDefault(WithMemo(failingMemo{}))
	records := []emissions.ActivityRecord{electricity("e1", day(2025, 6, 1), 1000)}
	view := e.ComputeEmissions(context.Background(), records, emissions.MethodElectricity)
	assert.InDelta(t, 757, view.Total(), 1e-9)

	trend := e.Trend(context.Background(), view.Computed, timeseries.LastMonths(1), now)
	require.Len(t, trend.Buckets, 1)
	assert.InDelta(t, 757, trend.Buckets[0].Total, 1e-9)
}

func TestStats(t *testing.T) {
	c := rollup.Categorised{}
	c.Add(emissions.ComputedEmission{Date: day(2025, 6, 3), Method: emissions.MethodElectricity, TotalCO2e: 3, Computable: true})

	s := NewDefault().Stats(context.Background(), c, now, nil)
	assert.InDelta(t, 3, s.CurrentMonth, 1e-9)
	assert.False(t, s.Change.Available)

	s = Stats(c, now, &rollup.PeriodTotals{Total: 2, Count: 1})
	assert.InDelta(t, 50, s.Change.Percent, 1e-9)
}

func BenchmarkComputeEmissions(b *testing.B) {
	e := NewDefault()
	records := make([]emissions.ActivityRecord, 0, 500)
	for i := range 500 {
		records = append(records, electricity("e", now.AddDate(0, 0, -i), float64(i)))
	}
	ctx := context.Background()
	for b.Loop() {
		_ = e.ComputeEmissions(ctx, records, emissions.MethodUnknown)
	}
}
