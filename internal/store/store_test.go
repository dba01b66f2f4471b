package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/notify"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func electricity(id string, date time.Time, kwh float64) emissions.ActivityRecord {
	return emissions.ActivityRecord{
		ID:      id,
		Company: "Acme",
		Date:    date,
		Input:   emissions.ElectricityInput{ActivityData: kwh, Unit: emissions.UnitKWh},
	}
}

func stationary(id string, date time.Time) emissions.ActivityRecord {
	return emissions.ActivityRecord{
		ID:      id,
		Company: "Globex",
		Date:    date,
		Input: emissions.StationaryInput{
			FuelType:     "Liquid fuels",
			FuelName:     "Diesel",
			ActivityData: 100,
			Unit:         emissions.UnitLitre,
		},
	}
}

type opener func(t *testing.T) RecordStore

func backends() map[string]opener {
	return map[string]opener{
		"yaml": func(t *testing.T) RecordStore {
			t.Helper()
			s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
			require.NoError(t, err)
			return s
		},
		"sqlite": func(t *testing.T) RecordStore {
			t.Helper()
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "records.db"), zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestRecordStore_AddListGetDelete(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			stored, err := s.Add(ctx,
				electricity("b", day(2025, 3, 1), 1000),
				electricity("a", day(2025, 3, 1), 2000),
				stationary("c", day(2025, 5, 1)),
				electricity("d", time.Time{}, 10),
			)
			require.NoError(t, err)
			require.Len(t, stored, 4)
			assert.Equal(t, emissions.MethodElectricity, stored[0].Method)

			all, err := s.List(ctx, Query{})
			require.NoError(t, err)
			ids := make([]string, 0, len(all))
			for _, r := range all {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, []string{"c", "a", "b", "d"}, ids, "newest first, ties by id, undated last")

			got, err := s.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "Acme", got.Company)
			assert.Equal(t, day(2025, 3, 1), got.Date)
			in, ok := got.Input.(emissions.ElectricityInput)
			require.True(t, ok)
			assert.InDelta(t, 2000, in.ActivityData, 1e-9)

			require.NoError(t, s.Delete(ctx, "a"))
			_, err = s.Get(ctx, "a")
			require.ErrorIs(t, err, ErrNotFound)
			require.ErrorIs(t, s.Delete(ctx, "a"), ErrNotFound)
		})
	}
}

func TestRecordStore_Query(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			_, err := s.Add(ctx,
				electricity("e1", day(2025, 1, 1), 1),
				stationary("s1", day(2025, 1, 2)),
			)
			require.NoError(t, err)

			byMethod, err := s.List(ctx, Query{Method: emissions.MethodStationary})
			require.NoError(t, err)
			require.Len(t, byMethod, 1)
			assert.Equal(t, "s1", byMethod[0].ID)

			byCategory, err := s.List(ctx, Query{Category: emissions.CategoryElectricity})
			require.NoError(t, err)
			require.Len(t, byCategory, 1)
			assert.Equal(t, "e1", byCategory[0].ID)

			byCompany, err := s.List(ctx, Query{Company: "acme"})
			require.NoError(t, err)
			require.Len(t, byCompany, 1)

			none, err := s.List(ctx, Query{Company: "Initech"})
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestRecordStore_AddIsAllOrNothing(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			_, err := s.Add(ctx, electricity("x", day(2025, 1, 1), 1))
			require.NoError(t, err)

			_, err = s.Add(ctx, electricity("y", day(2025, 1, 1), 1), electricity("x", day(2025, 1, 1), 1))
			require.ErrorIs(t, err, ErrDuplicateID)

			all, err := s.List(ctx, Query{})
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestRecordStore_AssignsIDs(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			stored, err := open(t).Add(context.Background(), electricity("", day(2025, 1, 1), 1))
			require.NoError(t, err)
			require.Len(t, stored, 1)
			assert.Len(t, stored[0].ID, 26)
		})
	}
}

func TestPrepare_Rejects(t *testing.T) {
	_, err := prepare([]emissions.ActivityRecord{{ID: "x"}})
	require.ErrorIs(t, err, ErrNoInput)

	_, err = prepare([]emissions.ActivityRecord{
		electricity("dup", time.Time{}, 1),
		electricity("dup", time.Time{}, 2),
	})
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestYAMLStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "records.yaml")

	s, err := OpenYAML(path)
	require.NoError(t, err)
	_, err = s.Add(ctx, stationary("s1", day(2025, 2, 3)), electricity("e1", time.Time{}, 5))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.List(ctx, Query{})
	require.ErrorIs(t, err, ErrClosed)

	reopened, err := OpenYAML(path)
	require.NoError(t, err)
	all, err := reopened.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "s1", all[0].ID)
	assert.Equal(t, day(2025, 2, 3), all[0].Date)
	assert.False(t, all[1].HasDate())
	assert.Equal(t, path, reopened.Path())
}

func TestSQLStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	s, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	_, err = s.Add(ctx, stationary("s1", day(2025, 2, 3)))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, emissions.MethodStationary, got.Method)
}

func TestOpenSQLite_FailedMigrationReleasesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite database, just some text padding it out"), 0o600))

	s, err := OpenSQLite(path, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, s)

	require.NoError(t, os.Remove(path))
	s, err = OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSortRecords(t *testing.T) {
	records := []emissions.ActivityRecord{
		{ID: "undated"},
		{ID: "old", Date: day(2024, 1, 1)},
		{ID: "b", Date: day(2025, 1, 1)},
		{ID: "a", Date: day(2025, 1, 1)},
	}
	SortRecords(records)
	assert.Equal(t, "a", records[0].ID)
	assert.Equal(t, "b", records[1].ID)
	assert.Equal(t, "old", records[2].ID)
	assert.Equal(t, "undated", records[3].ID)
}

func TestNotifying_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := notify.NewBus()
	defer bus.Close()
	events, cancel := bus.Subscribe(8)
	defer cancel()

	base, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)
	s := WithNotifications(base, bus)

	_, err = s.Add(ctx, electricity("e1", day(2025, 1, 1), 1))
	require.NoError(t, err)
	ev := <-events
	assert.Equal(t, notify.RecordSaved, ev.Kind)
	assert.Equal(t, "e1", ev.RecordID)
	assert.Equal(t, notify.SeveritySuccess, ev.Severity)

	_, err = s.Add(ctx, electricity("e1", day(2025, 1, 1), 1))
	require.Error(t, err)
	ev = <-events
	assert.Equal(t, notify.RecordFailed, ev.Kind)
	assert.ErrorIs(t, ev.Err, ErrDuplicateID)

	require.NoError(t, s.Delete(ctx, "e1"))
	ev = <-events
	assert.Equal(t, notify.RecordDeleted, ev.Kind)

	require.Error(t, s.Delete(ctx, "e1"))
	ev = <-events
	assert.Equal(t, notify.RecordFailed, ev.Kind)
	assert.ErrorIs(t, ev.Err, ErrNotFound)
}

func TestFetchByCategory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenYAML(filepath.Join(t.TempDir(), "records.yaml"))
	require.NoError(t, err)
	_, err = s.Add(ctx,
		electricity("e1", day(2025, 1, 1), 1),
		electricity("e2", day(2025, 1, 2), 1),
		stationary("s1", day(2025, 1, 3)),
	)
	require.NoError(t, err)

	got, err := FetchByCategory(ctx, s, "")
	require.NoError(t, err)
	require.Len(t, got, len(emissions.Categories))
	assert.Len(t, got[emissions.CategoryElectricity], 2)
	assert.Len(t, got[emissions.CategoryStationary], 1)
	assert.NotNil(t, got[emissions.CategoryMobile])
	assert.Empty(t, got[emissions.CategoryMobile])

	onlyAcme, err := FetchByCategory(ctx, s, "ACME", emissions.CategoryStationary)
	require.NoError(t, err)
	require.Len(t, onlyAcme, 1)
	assert.Empty(t, onlyAcme[emissions.CategoryStationary])
}

type failingStore struct {
	RecordStore
}

var errBackend = errors.New("backend down")

func (failingStore) List(context.Context, Query) ([]emissions.ActivityRecord, error) {
	return nil, errBackend
}

func TestFetchByCategory_PropagatesError(t *testing.T) {
	_, err := FetchByCategory(context.Background(), failingStore{}, "")
	require.ErrorIs(t, err, errBackend)
}
