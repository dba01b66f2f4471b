package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/rshade/ghgledger/internal/greenops"
)

// Sheet names of an XLSX report.
const (
	SheetEmissions = "Emissions"
	SheetTrend     = "Trend"
	SheetSummary   = "Summary"
)

const (
	headerFill      = "4472C4"
	headerFontColor = "FFFFFF"
	numFmtTwoDP     = 4 // #,##0.00
	minColWidth     = 10
	maxColWidth     = 40
)

// WorkbookOptions configures XLSX output.
type WorkbookOptions struct {
	FreezeHeader bool
	AutoFilter   bool
}

// DefaultWorkbookOptions freezes and filters every header row.
func DefaultWorkbookOptions() WorkbookOptions {
	return WorkbookOptions{FreezeHeader: true, AutoFilter: true}
}

// BuildWorkbook lays out a report as a workbook with one sheet per non-empty
// part. The caller owns the returned file and must Close it.
func BuildWorkbook(r Report, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &workbook{file: f, opts: opts}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: headerFontColor},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	b.headerStyle = header

	if err = b.writeSheet(SheetEmissions, EmissionColumns, emissionRows(r)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if r.Series != nil {
		if err = b.writeSheet(SheetTrend, BucketColumns, bucketRows(r)); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if r.Stats != nil {
		if err = b.writeSummary(r); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	if idx, idxErr := f.GetSheetIndex(SheetEmissions); idxErr == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// WriteXLSX builds the workbook for r and writes it to w.
func WriteXLSX(w io.Writer, r Report) error {
	f, err := BuildWorkbook(r, DefaultWorkbookOptions())
	if err != nil {
		return err
	}
	defer f.Close()
	if err = f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type workbook struct {
	file        *excelize.File
	opts        WorkbookOptions
	headerStyle int
	sheets      int
}

// writeSheet writes a header and rows. Cells in numeric columns are stored
// as numbers so spreadsheets can sum them.
func (b *workbook) writeSheet(name string, columns []string, rows [][]string) error {
	f := b.file
	if b.sheets == 0 {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	b.sheets++

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return err
	}
	if err = f.SetCellStyle(name, "A1", lastCol+"1", b.headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", name, err)
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for i, row := range rows {
		values := make([]any, len(row))
		for j, cell := range row {
			values[j] = cellValue(cell, j < len(columns) && numericColumns[columns[j]])
			if j < len(widths) && len(cell) > widths[j] {
				widths[j] = len(cell)
			}
		}
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return cellErr
		}
		if err = f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(min(max(w+2, minColWidth), maxColWidth))
		if err = f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	if b.opts.FreezeHeader {
		if err = f.SetPanes(name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze %s header: %w", name, err)
		}
	}
	if b.opts.AutoFilter && len(rows) > 0 {
		if err = f.AutoFilter(name, "A1:"+lastCol+"1", nil); err != nil {
			return fmt.Errorf("failed to add %s filter: %w", name, err)
		}
	}
	return nil
}

// writeSummary writes headline figures above the category breakdown.
func (b *workbook) writeSummary(r Report) error {
	s := r.Stats
	rows := make([][]string, 0, len(s.Categories)+len(s.ByScope))
	for _, c := range s.Categories {
		rows = append(rows, CategoryRow(c))
	}
	if err := b.writeSheet(SheetSummary, CategoryColumns, rows); err != nil {
		return err
	}

	f := b.file
	start := len(rows) + 3
	headline := [][2]any{
		{"Total emissions (tCO2e)", greenops.Round2(s.Total)},
		{"Scope 1", greenops.Round2(s.Scope1)},
		{"Scope 2", greenops.Round2(s.Scope2)},
		{"Scope 3", greenops.Round2(s.Scope3)},
		{"Current month", greenops.Round2(s.CurrentMonth)},
		{"Change vs previous month", s.Change.String()},
		{"Entries", s.EntryCount},
	}
	numStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDP})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	for i, kv := range headline {
		row := start + i
		if err = f.SetSheetRow(SheetSummary, "A"+strconv.Itoa(row), &[]any{kv[0], kv[1]}); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		if _, ok := kv[1].(float64); ok {
			cell := "B" + strconv.Itoa(row)
			if err = f.SetCellStyle(SheetSummary, cell, cell, numStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

func emissionRows(r Report) [][]string {
	rows := make([][]string, 0, len(r.Emissions))
	for _, e := range r.Emissions {
		rows = append(rows, EmissionRow(e))
	}
	return rows
}

func bucketRows(r Report) [][]string {
	rows := make([][]string, 0, len(r.Series.Buckets))
	for _, b := range r.Series.Buckets {
		rows = append(rows, BucketRow(b))
	}
	return rows
}

//nolint:gochecknoglobals // Read-only lookup table.
var numericColumns = map[string]bool{
	"e_co2": true, "e_ch4": true, "e_n2o": true, "e_total_co2e": true,
	"total": true, "scope1": true, "scope2": true, "scope3": true,
	"count": true, "percentage": true,
}

func cellValue(s string, numeric bool) any {
	if s == "" {
		return nil
	}
	if numeric {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return n
		}
	}
	return s
}
