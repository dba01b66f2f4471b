package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entry := NewEntry("abc", "trend", json.RawMessage(`{"x":1}`), 60, created)

	assert.False(t, entry.ExpiredAt(created.Add(59*time.Second)))
	assert.True(t, entry.ExpiredAt(created.Add(61*time.Second)))

	var v struct{ X int }
	require.NoError(t, entry.Decode(&v))
	assert.Equal(t, 1, v.X)

	t.Run("JSON", func(t *testing.T) {
		encoded, err := json.Marshal(entry)
		require.NoError(t, err)

		var decoded Entry
		require.NoError(t, json.Unmarshal(encoded, &decoded))
		assert.Equal(t, entry.Key, decoded.Key)
		assert.Equal(t, entry.Kind, decoded.Kind)
		assert.True(t, entry.ExpiresAt.Equal(decoded.ExpiresAt))
	})
}

func TestKeyBuilder(t *testing.T) {
	k1, err := NewKey("Trend").With("window", "last 12 months").With("records", []int{1, 2}).Build()
	require.NoError(t, err)
	k2, err := NewKey(" trend ").With("records", []int{1, 2}).With("window", "last 12 months").Build()
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "component order and kind case do not matter")
	assert.True(t, validKey(k1))

	k3, err := NewKey("trend").With("window", "last 12 months").With("records", []int{1, 3}).Build()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	k4, err := NewKey("stats").With("window", "last 12 months").With("records", []int{1, 2}).Build()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4)

	_, err = NewKey("bad").With("ch", make(chan int)).Build()
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store, err := NewFileStore(dir, true, 60)
	require.NoError(t, err)
	store.WithClock(func() time.Time { return clock })
	assert.True(t, store.IsEnabled())
	assert.Equal(t, dir, store.Directory())
	assert.Equal(t, 60, store.TTL())

	key, err := Fingerprint("payload")
	require.NoError(t, err)
	data := json.RawMessage(`{"hello":"world"}`)

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.Set(key, "test", data))

		entry, getErr := store.Get(key)
		require.NoError(t, getErr)
		assert.JSONEq(t, string(data), string(entry.Data))
		assert.Equal(t, "test", entry.Kind)

		count, _ := store.Count()
		assert.Equal(t, 1, count)
		size, _ := store.Size()
		assert.Positive(t, size)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(key))
		_, getErr := store.Get(key)
		assert.ErrorIs(t, getErr, ErrCacheNotFound)
		require.NoError(t, store.Delete(key), "delete is idempotent")
	})

	t.Run("RejectsNonFingerprintKeys", func(t *testing.T) {
		assert.ErrorIs(t, store.Set("../escape", "x", data), ErrInvalidCacheKey)
		_, getErr := store.Get("")
		assert.ErrorIs(t, getErr, ErrInvalidCacheKey)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, store.Set(key, "test", data))
		clock = clock.Add(2 * time.Minute)
		_, getErr := store.Get(key)
		assert.ErrorIs(t, getErr, ErrCacheExpired)
		_, statErr := os.Stat(filepath.Join(dir, key+".json"))
		assert.True(t, os.IsNotExist(statErr), "expired entry removed on read")
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		require.NoError(t, store.Set("aa", "test", data))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bb.json"), []byte("not json"), 0o600))
		clock = clock.Add(2 * time.Minute)
		require.NoError(t, store.Set("cc", "test", data))

		require.NoError(t, store.CleanupExpired())
		count, _ := store.Count()
		assert.Equal(t, 1, count)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.Set("dd", "test", data))
		require.NoError(t, store.Clear())
		count, _ := store.Count()
		assert.Zero(t, count)
	})

	t.Run("Disabled", func(t *testing.T) {
		disabled, disErr := NewFileStore("", false, 60)
		require.NoError(t, disErr)
		assert.False(t, disabled.IsEnabled())
		assert.ErrorIs(t, disabled.Set(key, "x", data), ErrCacheDisabled)
		_, getErr := disabled.Get(key)
		assert.ErrorIs(t, getErr, ErrCacheDisabled)
	})

	t.Run("EnabledNeedsDirectory", func(t *testing.T) {
		_, dirErr := NewFileStore("", true, 60)
		assert.Error(t, dirErr)
	})
}

func TestTTL(t *testing.T) {
	require.NoError(t, ValidateTTL(120))
	assert.ErrorIs(t, ValidateTTL(10), ErrInvalidTTL)

	t.Run("Env", func(t *testing.T) {
		t.Setenv(EnvTTLSeconds, "500")
		assert.Equal(t, 500, TTLFromEnv(DefaultTTLSeconds))
		t.Setenv(EnvTTLSeconds, "5")
		assert.Equal(t, DefaultTTLSeconds, TTLFromEnv(DefaultTTLSeconds))

		t.Setenv(EnvCacheEnabled, "false")
		assert.False(t, EnabledFromEnv(true))
		t.Setenv(EnvCacheEnabled, "maybe")
		assert.True(t, EnabledFromEnv(true))

		t.Setenv(EnvCacheDir, "/tmp/x")
		assert.Equal(t, "/tmp/x", DirFromEnv())
	})

	t.Run("FormatDuration", func(t *testing.T) {
		assert.Equal(t, "30s", FormatDuration(30*time.Second))
		assert.Equal(t, "5m", FormatDuration(5*time.Minute))
		assert.Equal(t, "2h", FormatDuration(2*time.Hour))
		assert.Equal(t, "2h30m", FormatDuration(2*time.Hour+30*time.Minute))
		assert.Equal(t, "3d", FormatDuration(72*time.Hour))
		assert.Equal(t, "3d2h", FormatDuration(74*time.Hour))
	})

	t.Run("ParseTTL", func(t *testing.T) {
		ttl, err := ParseTTL("3600")
		require.NoError(t, err)
		assert.Equal(t, 3600, ttl)

		ttl, err = ParseTTL("1h")
		require.NoError(t, err)
		assert.Equal(t, 3600, ttl)

		_, err = ParseTTL("invalid")
		require.Error(t, err)
		_, err = ParseTTL("10s")
		assert.ErrorIs(t, err, ErrInvalidTTL)
	})
}
