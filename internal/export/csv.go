package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// WriteEmissionsCSV writes one row per computed emission.
func WriteEmissionsCSV(w io.Writer, items []emissions.ComputedEmission) error {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, EmissionRow(e))
	}
	return writeCSV(w, EmissionColumns, rows)
}

// WriteBucketsCSV writes one row per bucket.
func WriteBucketsCSV(w io.Writer, buckets []timeseries.Bucket) error {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, BucketRow(b))
	}
	return writeCSV(w, BucketColumns, rows)
}

// WriteReportCSV writes the series when present, otherwise the emissions.
// CSV has no sheets, so a report carries a single table.
func WriteReportCSV(w io.Writer, r Report) error {
	if r.Series != nil {
		return WriteBucketsCSV(w, r.Series.Buckets)
	}
	return WriteEmissionsCSV(w, r.Emissions)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}
