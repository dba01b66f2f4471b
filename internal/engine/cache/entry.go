package cache

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is one memoised projection result.
type Entry struct {
	// Key is the content fingerprint the entry was stored under.
	Key string `json:"key"`

	// Kind names the projection, e.g. "trend" or "emissions".
	Kind string `json:"kind,omitempty"`

	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	TTLSeconds int `json:"ttl_seconds"`
}

// NewEntry creates an entry created at now and expiring ttlSeconds later.
func NewEntry(key, kind string, data json.RawMessage, ttlSeconds int, now time.Time) *Entry {
	return &Entry{
		Key:        key,
		Kind:       kind,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// ExpiredAt reports whether the entry has expired at t.
func (e *Entry) ExpiredAt(t time.Time) bool {
	return t.After(e.ExpiresAt)
}

// IsExpired checks the entry against the wall clock.
func (e *Entry) IsExpired() bool {
	return e.ExpiredAt(time.Now())
}

// Age returns the duration since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// Decode unmarshals the cached data into v.
func (e *Entry) Decode(v any) error {
	if e == nil {
		return errors.New("decode nil cache entry")
	}
	return json.Unmarshal(e.Data, v)
}

// MarshalJSON formats times as RFC3339 for readable cache files.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type alias Entry
	return json.Marshal(&struct {
		*alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias:     (*alias)(e),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		ExpiresAt: e.ExpiresAt.Format(time.RFC3339),
	})
}

// UnmarshalJSON parses the RFC3339 timestamps written by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type alias Entry
	aux := &struct {
		*alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		alias: (*alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339, aux.CreatedAt); err != nil {
		return err
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt); err != nil {
		return err
	}
	return nil
}
