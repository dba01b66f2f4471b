// Package store persists activity records. It is the boundary between the
// pure calculation core and wherever records live: a YAML file for
// single-user setups or a SQLite database through gorm.
//
// Records cross the boundary as flat field maps (emissions.Fields), the
// same shape the data-entry forms produce, and are decoded into typed
// records on the way out.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/ghgledger/internal/emissions"
)

// Store errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record id already exists")
	ErrNoInput     = errors.New("record has no activity input")
	ErrClosed      = errors.New("store is closed")
)

// Query filters List. Zero fields match everything.
type Query struct {
	Method   emissions.Method
	Category emissions.Category
	Company  string
}

// Matches reports whether r passes the filter.
func (q Query) Matches(r emissions.ActivityRecord) bool {
	if q.Method != emissions.MethodUnknown && r.Method != q.Method {
		return false
	}
	if q.Category != "" && r.Method.Category() != q.Category {
		return false
	}
	if q.Company != "" && !strings.EqualFold(r.Company, q.Company) {
		return false
	}
	return true
}

// RecordStore reads and writes activity records.
type RecordStore interface {
	// List returns matching records, newest first. Undated records sort last.
	List(ctx context.Context, q Query) ([]emissions.ActivityRecord, error)
	Get(ctx context.Context, id string) (emissions.ActivityRecord, error)
	// Add stores records, assigning IDs to those without one, and returns
	// them as stored. Either every record is stored or none is.
	Add(ctx context.Context, records ...emissions.ActivityRecord) ([]emissions.ActivityRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh, time-sortable record ID.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// prepare validates records for insertion and assigns missing IDs.
func prepare(records []emissions.ActivityRecord) ([]emissions.ActivityRecord, error) {
	out := make([]emissions.ActivityRecord, len(records))
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.Input == nil {
			return nil, ErrNoInput
		}
		r.Method = r.Input.Method()
		if r.ID == "" {
			r.ID = NewID()
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
		out[i] = r
	}
	return out, nil
}

// SortRecords orders records newest first; undated records go last and ties
// break on ID.
func SortRecords(records []emissions.ActivityRecord) {
	slices.SortStableFunc(records, func(a, b emissions.ActivityRecord) int {
		switch {
		case a.HasDate() && !b.HasDate():
			return -1
		case !a.HasDate() && b.HasDate():
			return 1
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		default:
			return strings.Compare(a.ID, b.ID)
		}
	})
}
