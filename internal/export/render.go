package export

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/greenops"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// notComputableMark replaces the total of a not-computable record.
const notComputableMark = "n/a"

// RenderEmissionsTable writes computed emissions as an aligned text table
// followed by a total line.
func RenderEmissionsTable(w io.Writer, items []emissions.ComputedEmission) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	if _, err := fmt.Fprintln(tw, "RECORD\tDATE\tMETHOD\tSCOPE\tTCO2E\tNOTE"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "------\t----\t------\t-----\t-----\t----"); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	var total float64
	for _, e := range items {
		date := formatDate(e.Date)
		if date == "" {
			date = "-"
		}
		amount, note := greenops.FormatFloat(e.TotalCO2e, greenops.DisplayPrecision), ""
		if !e.Computable {
			amount, note = notComputableMark, emissions.ReasonCode(e.Reason)
		}
		total += e.TotalCO2e
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.RecordID, date, e.Method, e.Scope(), amount, note); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	_, err := fmt.Fprintf(w, "\nTotal: %s (%d records)\n", greenops.FormatTCO2e(total), len(items))
	return err
}

// RenderTrendTable writes a bucket series, optionally with per-scope columns.
func RenderTrendTable(w io.Writer, s timeseries.Series, byScope bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', tabwriter.AlignRight)
	header := "PERIOD\tTCO2E\tRECORDS\t"
	if byScope {
		header = "PERIOD\tSCOPE 1\tSCOPE 2\tSCOPE 3\tTCO2E\tRECORDS\t"
	}
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range s.Buckets {
		var err error
		if byScope {
			_, err = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t\n", b.Label,
				greenops.FormatFloat(b.Scope1, greenops.DisplayPrecision),
				greenops.FormatFloat(b.Scope2, greenops.DisplayPrecision),
				greenops.FormatFloat(b.Scope3, greenops.DisplayPrecision),
				greenops.FormatFloat(b.Total, greenops.DisplayPrecision), b.Count)
		} else {
			_, err = fmt.Fprintf(tw, "%s\t%s\t%d\t\n", b.Label,
				greenops.FormatFloat(b.Total, greenops.DisplayPrecision), b.Count)
		}
		if err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	if _, err := fmt.Fprintf(w, "\n%s: %s\n", s.Window, greenops.FormatTCO2e(s.Total())); err != nil {
		return err
	}
	if s.Undated > 0 {
		if _, err := fmt.Fprintf(w, "%d undated records not shown\n", s.Undated); err != nil {
			return err
		}
	}
	return nil
}

// RenderStatsText writes a plain, unstyled summary for non-terminal output.
func RenderStatsText(w io.Writer, s rollup.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	lines := [][2]string{
		{"Total emissions", greenops.FormatTCO2e(s.Total)},
		{"Scope 1", greenops.FormatTCO2e(s.Scope1)},
		{"Scope 2", greenops.FormatTCO2e(s.Scope2)},
		{"Scope 3", greenops.FormatTCO2e(s.Scope3)},
		{"This month", greenops.FormatTCO2e(s.CurrentMonth)},
		{"Change vs last month", s.Change.String()},
		{"Entries", greenops.FormatNumber(int64(s.EntryCount))},
	}
	if !s.LastEntryDate.IsZero() {
		lines = append(lines, [2]string{"Last entry", formatDate(s.LastEntryDate)})
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", l[0], l[1]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	if _, err := fmt.Fprintln(tw); err != nil {
		return err
	}
	for _, c := range s.Categories {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\t%s\n", c.Category.Label(),
			greenops.FormatTCO2e(c.Total), greenops.FormatPercent(c.Percentage)); err != nil {
			return fmt.Errorf("writing category: %w", err)
		}
	}
	return tw.Flush()
}

// Metadata heads every JSON document.
type Metadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Company     string    `json:"company,omitempty"`
}

// JSONOutput is the document written by RenderJSON. Parts absent from the
// report are omitted.
type JSONOutput struct {
	Metadata  Metadata                     `json:"metadata"`
	Emissions []emissions.ComputedEmission `json:"emissions,omitempty"`
	Trend     *timeseries.Series           `json:"trend,omitempty"`
	Summary   *rollup.Stats                `json:"summary,omitempty"`
}

// RenderJSON writes the report as one indented JSON document.
func RenderJSON(w io.Writer, r Report) error {
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	out := JSONOutput{
		Metadata:  Metadata{GeneratedAt: generated, Company: r.Company},
		Emissions: r.Emissions,
		Trend:     r.Series,
		Summary:   r.Stats,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// RenderNDJSON writes each emission, or each bucket when the report has a
// series, as one JSON line with no wrapper.
func RenderNDJSON(w io.Writer, r Report) error {
	if r.Series != nil {
		for _, b := range r.Series.Buckets {
			if err := writeLine(w, b); err != nil {
				return err
			}
		}
		return nil
	}
	for _, e := range r.Emissions {
		if err := writeLine(w, e); err != nil {
			return err
		}
	}
	return nil
}

func writeLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling row: %w", err)
	}
	if _, err = fmt.Fprintf(w, "%s\n", data); err != nil {
		return fmt.Errorf("writing NDJSON line: %w", err)
	}
	return nil
}

// WriteValues writes arbitrary values as one indented JSON array or as
// NDJSON lines.
func WriteValues[T any](w io.Writer, f Format, values []T) error {
	switch f {
	case FormatNDJSON:
		for _, v := range values {
			if err := writeLine(w, v); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(values); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// Write renders r in format f. Table output picks the most specific part:
// stats, then series, then emissions.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatTable:
		switch {
		case r.Stats != nil:
			return RenderStatsText(w, *r.Stats)
		case r.Series != nil:
			return RenderTrendTable(w, *r.Series, false)
		default:
			return RenderEmissionsTable(w, r.Emissions)
		}
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatNDJSON:
		return RenderNDJSON(w, r)
	case FormatCSV:
		return WriteReportCSV(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}
