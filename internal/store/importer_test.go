package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/notify"
)

func manyRecords(n int) []emissions.ActivityRecord {
	out := make([]emissions.ActivityRecord, 0, n)
	for i := range n {
		out = append(out, electricity(fmt.Sprintf("r%04d", i), day(2025, 1, 1).AddDate(0, 0, i%28), float64(i)))
	}
	return out
}

func TestNewImporter_BatchSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{name: "min", size: MinImportBatchSize},
		{name: "default", size: DefaultImportBatchSize},
		{name: "max", size: MaxImportBatchSize},
		{name: "zero", size: 0, wantErr: true},
		{name: "too large", size: MaxImportBatchSize + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, err := NewImporter(tt.size)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidBatchSize)
				assert.Nil(t, im)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, im)
		})
	}
}

func TestImporter_Batches(t *testing.T) {
	im, err := NewImporter(10)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 10}, {10, 20}, {20, 25}}, im.Batches(25))
	assert.Empty(t, im.Batches(0))
}

func TestImporter_ImportReportsProgress(t *testing.T) {
	ctx := context.Background()
	s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)

	var snapshots []ImportProgress
	im, err := NewImporter(10)
	require.NoError(t, err)
	im.WithProgress(func(p ImportProgress) { snapshots = append(snapshots, p) })

	n, err := im.Import(ctx, s, manyRecords(25))
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	require.Len(t, snapshots, 3)
	last := snapshots[2]
	assert.Equal(t, 25, last.StoredRecords)
	assert.Equal(t, 3, last.ProcessedBatches)
	assert.Equal(t, 3, last.TotalBatches)
	assert.InDelta(t, 100, last.PercentComplete(), 1e-9)
	assert.InDelta(t, 40, snapshots[0].PercentComplete(), 1e-9)

	all, err := s.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 25)
}

func TestImporter_StopsAtFailedBatch(t *testing.T) {
	ctx := context.Background()
	s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)

	records := manyRecords(15)
	records[12].ID = records[1].ID

	bus := notify.NewBus()
	defer bus.Close()
	events, cancel := bus.Subscribe(4)
	defer cancel()

	im, err := NewImporter(5)
	require.NoError(t, err)
	im.WithPublisher(bus)

	n, err := im.Import(ctx, s, records)
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Contains(t, err.Error(), "batch 2")
	assert.Equal(t, 10, n)

	ev := <-events
	assert.Equal(t, notify.RecordFailed, ev.Kind)

	all, err := s.List(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestImporter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)

	im, err := NewImporter(DefaultImportBatchSize)
	require.NoError(t, err)
	n, err := im.Import(ctx, s, manyRecords(3))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestImporter_PublishesSummary(t *testing.T) {
	s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)
	bus := notify.NewBus()
	defer bus.Close()
	events, cancel := bus.Subscribe(1)
	defer cancel()

	im, err := NewImporter(DefaultImportBatchSize)
	require.NoError(t, err)
	_, err = im.WithPublisher(bus).Import(context.Background(), s, manyRecords(3))
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, notify.Imported, ev.Kind)
	assert.Equal(t, 3, ev.Count)
}

func TestImportProgress_Rates(t *testing.T) {
	p := ImportProgress{TotalRecords: 10, StoredRecords: 5, Elapsed: 2 * time.Second}
	assert.InDelta(t, 50, p.PercentComplete(), 1e-9)
	assert.InDelta(t, 2.5, p.RecordsPerSecond(), 1e-9)
	assert.Zero(t, ImportProgress{}.PercentComplete())
	assert.Zero(t, ImportProgress{}.RecordsPerSecond())
}

func TestDecodeCSV(t *testing.T) {
	in := strings.Join([]string{
		"name,method,date,company,activity_data,unit_selection",
		"e1,electricity,2025-03-01,Acme,1000,kWh",
		"e2,electricity,,Acme,250,",
	}, "\n")

	records, err := DecodeCSV(strings.NewReader(in), emissions.MethodUnknown)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "e1", records[0].ID)
	assert.Equal(t, day(2025, 3, 1), records[0].Date)
	assert.False(t, records[1].HasDate())
	in2, ok := records[1].Input.(emissions.ElectricityInput)
	require.True(t, ok)
	assert.InDelta(t, 250, in2.ActivityData, 1e-9)
	assert.Equal(t, emissions.UnitKWh, in2.Unit)
}

func TestDecodeCSV_Errors(t *testing.T) {
	records, err := DecodeCSV(strings.NewReader(""), emissions.MethodUnknown)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, err = DecodeCSV(strings.NewReader("name,method\nx,teleport\n"), emissions.MethodUnknown)
	require.ErrorIs(t, err, emissions.ErrUnknownMethod)
	assert.Contains(t, err.Error(), "line 2")

	records, err = DecodeCSV(strings.NewReader("name,amount_spent\nt1,500\n"), emissions.MethodTravelSpend)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, emissions.MethodTravelSpend, records[0].Method)
}
