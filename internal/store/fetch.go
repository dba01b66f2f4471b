package store

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/ghgledger/internal/emissions"
)

// FetchByCategory lists each category concurrently, mirroring how the
// dashboard loads every category independently. Categories with no records
// map to empty, non-nil slices. The first failure cancels the rest.
func FetchByCategory(
	ctx context.Context,
	s RecordStore,
	company string,
	categories ...emissions.Category,
) (map[emissions.Category][]emissions.ActivityRecord, error) {
	if len(categories) == 0 {
		categories = emissions.Categories
	}

	var mu sync.Mutex
	out := make(map[emissions.Category][]emissions.ActivityRecord, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range categories {
		g.Go(func() error {
			records, err := s.List(gctx, Query{Category: cat, Company: company})
			if err != nil {
				return fmt.Errorf("fetching %s records: %w", cat, err)
			}
			if records == nil {
				records = []emissions.ActivityRecord{}
			}
			mu.Lock()
			out[cat] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
