package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/notify"
)

// Import batch sizing.
const (
	DefaultImportBatchSize = 100
	MinImportBatchSize     = 1
	MaxImportBatchSize     = 1000

	percentMultiplier = 100
)

// ErrInvalidBatchSize is returned for batch sizes outside the allowed range.
var ErrInvalidBatchSize = fmt.Errorf("batch size must be between %d and %d", MinImportBatchSize, MaxImportBatchSize)

// ImportProgress is a snapshot taken after each stored batch.
type ImportProgress struct {
	TotalRecords     int
	StoredRecords    int
	TotalBatches     int
	ProcessedBatches int
	Elapsed          time.Duration
}

// PercentComplete returns the stored share in 0..100.
func (p ImportProgress) PercentComplete() float64 {
	if p.TotalRecords == 0 {
		return 0
	}
	return float64(p.StoredRecords) / float64(p.TotalRecords) * percentMultiplier
}

// RecordsPerSecond returns the storage rate so far.
func (p ImportProgress) RecordsPerSecond() float64 {
	if p.Elapsed <= 0 {
		return 0
	}
	return float64(p.StoredRecords) / p.Elapsed.Seconds()
}

// Importer writes large record sets to a store in fixed-size batches. Each
// batch is atomic; a failure stops the import with earlier batches kept.
type Importer struct {
	batchSize  int
	onProgress func(ImportProgress)
	pub        notify.Publisher
}

// NewImporter returns an importer with the given batch size.
func NewImporter(batchSize int) (*Importer, error) {
	if batchSize < MinImportBatchSize || batchSize > MaxImportBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Importer{batchSize: batchSize, pub: notify.Discard{}}, nil
}

// WithProgress sets a callback invoked after every batch.
func (im *Importer) WithProgress(fn func(ImportProgress)) *Importer {
	im.onProgress = fn
	return im
}

// WithPublisher publishes one summary event when the import ends.
func (im *Importer) WithPublisher(pub notify.Publisher) *Importer {
	if pub != nil {
		im.pub = pub
	}
	return im
}

// Batches returns the [start, end) bounds of each batch for n records.
func (im *Importer) Batches(n int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += im.batchSize {
		out = append(out, [2]int{start, min(start+im.batchSize, n)})
	}
	return out
}

// Import stores records and returns how many were stored.
func (im *Importer) Import(ctx context.Context, s RecordStore, records []emissions.ActivityRecord) (int, error) {
	bounds := im.Batches(len(records))
	progress := ImportProgress{TotalRecords: len(records), TotalBatches: len(bounds)}
	start := time.Now()

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return im.finish(progress.StoredRecords, err)
		}
		if _, err := s.Add(ctx, records[b[0]:b[1]]...); err != nil {
			return im.finish(progress.StoredRecords, fmt.Errorf("batch %d: %w", i, err))
		}
		progress.StoredRecords += b[1] - b[0]
		progress.ProcessedBatches++
		progress.Elapsed = time.Since(start)
		if im.onProgress != nil {
			im.onProgress(progress)
		}
	}
	return im.finish(progress.StoredRecords, nil)
}

func (im *Importer) finish(stored int, err error) (int, error) {
	if err != nil {
		im.pub.Publish(notify.Failed("import", "", err))
		return stored, err
	}
	im.pub.Publish(notify.ImportedN(stored))
	return stored, nil
}

// DecodeCSV reads records from CSV with a header row of field names. A
// "method" column is required unless method is given. Blank cells are
// omitted so that numeric fields read as zero.
func DecodeCSV(r io.Reader, method emissions.Method) ([]emissions.ActivityRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []emissions.ActivityRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var (
		out  []emissions.ActivityRecord
		errs []error
	)
	for line := 2; ; line++ {
		row, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, readErr)
		}
		fields := emissions.Fields{}
		for i, v := range row {
			if i < len(header) && strings.TrimSpace(v) != "" {
				fields[header[i]] = v
			}
		}
		rec, decErr := emissions.DecodeRecord(method, fields)
		if decErr != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, decErr))
			continue
		}
		out = append(out, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if out == nil {
		out = []emissions.ActivityRecord{}
	}
	return out, nil
}
