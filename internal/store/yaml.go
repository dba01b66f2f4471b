package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rshade/ghgledger/internal/emissions"
)

// yamlFile is the on-disk layout of a YAMLStore.
type yamlFile struct {
	Records []emissions.Fields `yaml:"records"`
}

// YAMLStore keeps every record in one YAML file, rewritten atomically on each
// change. It suits personal ledgers of a few thousand records.
type YAMLStore struct {
	path string

	mu      sync.RWMutex
	records []emissions.ActivityRecord
	closed  bool
}

// OpenYAML loads path, creating an empty ledger if it does not exist.
// Entries that fail to decode are reported together.
func OpenYAML(path string) (*YAMLStore, error) {
	s := &YAMLStore{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}

	var f yamlFile
	if err = yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing record file %s: %w", path, err)
	}
	var errs []error
	for i, fields := range f.Records {
		rec, decErr := emissions.DecodeRecord(emissions.MethodUnknown, fields)
		if decErr != nil {
			errs = append(errs, fmt.Errorf("record %d (%s): %w", i, fields.Text(emissions.FieldID), decErr))
			continue
		}
		s.records = append(s.records, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return s, nil
}

// Path returns the backing file.
func (s *YAMLStore) Path() string { return s.path }

// List returns matching records, newest first.
func (s *YAMLStore) List(_ context.Context, q Query) ([]emissions.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]emissions.ActivityRecord, 0, len(s.records))
	for _, r := range s.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	SortRecords(out)
	return out, nil
}

// Get returns the record with id.
func (s *YAMLStore) Get(_ context.Context, id string) (emissions.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return emissions.ActivityRecord{}, ErrClosed
	}
	if i := s.index(id); i >= 0 {
		return s.records[i], nil
	}
	return emissions.ActivityRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Add stores records and rewrites the file.
func (s *YAMLStore) Add(_ context.Context, records ...emissions.ActivityRecord) ([]emissions.ActivityRecord, error) {
	prepared, err := prepare(records)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	for _, r := range prepared {
		if s.index(r.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
	}

	next := append(append([]emissions.ActivityRecord(nil), s.records...), prepared...)
	if err = s.write(next); err != nil {
		return nil, err
	}
	s.records = next
	return prepared, nil
}

// Delete removes the record with id and rewrites the file.
func (s *YAMLStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := append(append([]emissions.ActivityRecord(nil), s.records[:i]...), s.records[i+1:]...)
	if err := s.write(next); err != nil {
		return err
	}
	s.records = next
	return nil
}

// Close marks the store closed. The file is not held open between writes.
func (s *YAMLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *YAMLStore) index(id string) int {
	for i, r := range s.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *YAMLStore) write(records []emissions.ActivityRecord) error {
	f := yamlFile{Records: make([]emissions.Fields, 0, len(records))}
	for _, r := range records {
		fields, err := emissions.EncodeRecord(r)
		if err != nil {
			return err
		}
		f.Records = append(f.Records, fields)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating record directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing record file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing record file: %w", err)
	}
	return nil
}
