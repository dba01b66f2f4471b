// Package export writes computed emissions, trend series and summary stats
// in machine formats (CSV, XLSX, JSON, NDJSON) and as plain text tables.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatTable  Format = "table"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatNDJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s (supported: table, json, ndjson, csv, xlsx)", ErrUnsupportedFormat, s)
	}
}

// Report is everything an export can contain. Zero-valued parts are skipped
// by formats that write several sections.
type Report struct {
	GeneratedAt time.Time
	Company     string
	Emissions   []emissions.ComputedEmission
	Series      *timeseries.Series
	Stats       *rollup.Stats
}

// Total returns the summed tCO2e of the report's emissions.
func (r Report) Total() float64 {
	var t float64
	for _, e := range r.Emissions {
		t += e.TotalCO2e
	}
	return t
}

// EmissionColumns is the header of per-record exports.
//
//nolint:gochecknoglobals // Fixed column order.
var EmissionColumns = []string{
	"record_id", "date", "company", "method", "category", "scope",
	"e_co2", "e_ch4", "e_n2o", "e_total_co2e", "computable", "reason",
}

// BucketColumns is the header of trend exports.
//
//nolint:gochecknoglobals // Fixed column order.
var BucketColumns = []string{
	"period", "period_start", "period_end", "total", "scope1", "scope2", "scope3", "count",
}

// CategoryColumns is the header of the summary category breakdown.
//
//nolint:gochecknoglobals // Fixed column order.
var CategoryColumns = []string{"category", "scope", "total", "count", "percentage"}

// EmissionRow flattens one emission in EmissionColumns order. Undated
// emissions have an empty date and computable ones an empty reason.
func EmissionRow(e emissions.ComputedEmission) []string {
	reason := ""
	if !e.Computable {
		reason = emissions.ReasonCode(e.Reason)
	}
	return []string{
		e.RecordID,
		formatDate(e.Date),
		e.Company,
		e.Method.String(),
		string(e.Category()),
		e.Scope().String(),
		formatNumber(e.CO2),
		formatNumber(e.CH4),
		formatNumber(e.N2O),
		formatNumber(e.TotalCO2e),
		strconv.FormatBool(e.Computable),
		reason,
	}
}

// BucketRow flattens one bucket in BucketColumns order.
func BucketRow(b timeseries.Bucket) []string {
	return []string{
		b.Label,
		formatDate(b.PeriodStart),
		formatDate(b.PeriodEnd),
		formatNumber(b.Total),
		formatNumber(b.Scope1),
		formatNumber(b.Scope2),
		formatNumber(b.Scope3),
		strconv.Itoa(b.Count),
	}
}

// CategoryRow flattens one category summary in CategoryColumns order.
func CategoryRow(c rollup.CategoryStats) []string {
	return []string{
		string(c.Category),
		c.Scope.String(),
		formatNumber(c.Total),
		strconv.Itoa(c.Count),
		formatNumber(c.Percentage),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
