package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const entryFileExtension = ".json"

// Cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key must be a hex fingerprint")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// FileStore keeps entries as one JSON file per key in a directory.
// It is safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int
	now        func() time.Time

	mu sync.RWMutex
}

// NewFileStore opens a store in directory, creating it if needed. A disabled
// store accepts no writes and misses every read.
func NewFileStore(directory string, enabled bool, ttlSeconds int) (*FileStore, error) {
	if !enabled {
		return &FileStore{now: time.Now}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		now:        time.Now,
	}, nil
}

// WithClock replaces the store's clock, for tests.
func (s *FileStore) WithClock(now func() time.Time) *FileStore {
	s.now = now
	return s
}

// Get returns the entry for key. Expired entries are removed and reported as
// ErrCacheExpired.
func (s *FileStore) Get(key string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if !validKey(key) {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	path := s.path(key)
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return &entry, nil
}

// Set stores data under key, overwriting any previous entry.
func (s *FileStore) Set(key, kind string, data json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if !validKey(key) {
		return ErrInvalidCacheKey
	}

	entry := NewEntry(key, kind, data, s.ttlSeconds, s.now())
	encoded, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, encoded, 0o600); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

// Delete removes the entry for key. Missing entries are not an error.
func (s *FileStore) Delete(key string) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if !validKey(key) {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *FileStore) Clear() error {
	return s.prune(func(*Entry) bool { return true })
}

// CleanupExpired removes expired entries and unreadable files.
func (s *FileStore) CleanupExpired() error {
	now := s.now()
	return s.prune(func(e *Entry) bool { return e == nil || e.ExpiredAt(now) })
}

func (s *FileStore) prune(remove func(*Entry) bool) error {
	if !s.enabled {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.files()
	if err != nil {
		return err
	}
	for _, path := range files {
		var entry *Entry
		if data, readErr := os.ReadFile(path); readErr == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil {
				entry = &e
			}
		}
		if !remove(entry) {
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("removing cache file %s: %w", filepath.Base(path), rmErr)
		}
	}
	return nil
}

// Count returns the number of stored entries, expired ones included.
func (s *FileStore) Count() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	files, err := s.files()
	return len(files), err
}

// Size returns the total size of stored entries in bytes.
func (s *FileStore) Size() (int64, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.files()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, path := range files {
		if info, statErr := os.Stat(path); statErr == nil {
			total += info.Size()
		}
	}
	return total, nil
}

// IsEnabled reports whether the store reads and writes entries.
func (s *FileStore) IsEnabled() bool { return s.enabled }

// Directory returns the cache directory.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the entry lifetime in seconds.
func (s *FileStore) TTL() int { return s.ttlSeconds }

func (s *FileStore) files() ([]string, error) {
	dir, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("reading cache directory: %w", err)
	}
	var out []string
	for _, d := range dir {
		if d.IsDir() || filepath.Ext(d.Name()) != entryFileExtension {
			continue
		}
		out = append(out, filepath.Join(s.directory, d.Name()))
	}
	return out, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.directory, key+entryFileExtension)
}

// validKey accepts the lowercase hex strings produced by Fingerprint.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
