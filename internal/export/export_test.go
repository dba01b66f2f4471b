package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

//nolint:gochecknoglobals // Fixed clock for deterministic tests.
var now = time.Date(2025, time.March, 31, 12, 0, 0, 0, time.UTC)

func sampleEmissions() []emissions.ComputedEmission {
	return []emissions.ComputedEmission{
		{
			RecordID:   "e1",
			Company:    "Acme",
			Date:       time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
			Method:     emissions.MethodElectricity,
			CO2:        0.757,
			TotalCO2e:  0.757,
			Computable: true,
		},
		{
			RecordID: "s1",
			Method:   emissions.MethodStationary,
			Reason:   emissions.ErrFactorNotFound,
		},
	}
}

func sampleReport(t *testing.T) Report {
	t.Helper()
	items := sampleEmissions()
	series := timeseries.Build(items, timeseries.LastMonths(3), now)
	c := rollup.Categorised{}
	c.Add(items...)
	stats := rollup.Summarize(c, now)
	return Report{GeneratedAt: now, Company: "Acme", Emissions: items, Series: &series, Stats: &stats}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "table", want: FormatTable},
		{in: "JSON", want: FormatJSON},
		{in: " ndjson ", want: FormatNDJSON},
		{in: "csv", want: FormatCSV},
		{in: "xlsx", want: FormatXLSX},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmissionRow(t *testing.T) {
	items := sampleEmissions()
	row := EmissionRow(items[0])
	require.Len(t, row, len(EmissionColumns))
	assert.Equal(t, "2025-03-05", row[1])
	assert.Equal(t, "electricity", row[3])
	assert.Equal(t, "0.757", row[9])
	assert.Empty(t, row[11])

	bad := EmissionRow(items[1])
	assert.Empty(t, bad[1], "undated record has no date")
	assert.Equal(t, "false", bad[10])
	assert.Equal(t, emissions.ReasonFactorNotFound, bad[11])
}

func TestWriteEmissionsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEmissionsCSV(&buf, sampleEmissions()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, EmissionColumns, rows[0])
	assert.Equal(t, "e1", rows[1][0])
}

func TestWriteReportCSV_PrefersSeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, sampleReport(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, BucketColumns, rows[0])
	assert.Equal(t, "Jan 2025", rows[1][0])
	assert.Equal(t, "Mar 2025", rows[3][0])
	assert.Equal(t, "0.757", rows[3][3])
	assert.Equal(t, "1", rows[3][7])
}

func TestBuildWorkbook(t *testing.T) {
	f, err := BuildWorkbook(sampleReport(t), DefaultWorkbookOptions())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetEmissions, SheetTrend, SheetSummary}, f.GetSheetList())

	header, err := f.GetCellValue(SheetEmissions, "A1")
	require.NoError(t, err)
	assert.Equal(t, "record_id", header)

	id, err := f.GetCellValue(SheetEmissions, "A2")
	require.NoError(t, err)
	assert.Equal(t, "e1", id)

	cellType, err := f.GetCellType(SheetTrend, "D4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
}

func TestBuildWorkbook_EmissionsOnly(t *testing.T) {
	f, err := BuildWorkbook(Report{Emissions: sampleEmissions()}, WorkbookOptions{})
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetEmissions}, f.GetSheetList())
}

func TestWriteXLSX_Readable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetEmissions)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRenderEmissionsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderEmissionsTable(&buf, sampleEmissions()))
	out := buf.String()
	assert.Contains(t, out, "RECORD")
	assert.Contains(t, out, "0.76")
	assert.Contains(t, out, notComputableMark)
	assert.Contains(t, out, emissions.ReasonFactorNotFound)
	assert.Contains(t, out, "Total: 0.76 tCO2e (2 records)")
}

func TestRenderTrendTable(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, RenderTrendTable(&buf, *r.Series, true))
	out := buf.String()
	assert.Contains(t, out, "SCOPE 2")
	assert.Contains(t, out, "Mar 2025")
	assert.Contains(t, out, "last 3 months: 0.76 tCO2e")
	assert.Contains(t, out, "1 undated records not shown")
}

func TestRenderStatsText(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, RenderStatsText(&buf, *r.Stats))
	out := buf.String()
	assert.Contains(t, out, "Total emissions:")
	assert.Contains(t, out, rollup.NoPreviousData)
	assert.Contains(t, out, "Last entry:")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, sampleReport(t)))

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Contains(t, doc, "metadata")
	assert.Contains(t, doc, "emissions")
	assert.Contains(t, doc, "trend")
	assert.Contains(t, doc, "summary")

	var items []emissions.ComputedEmission
	require.NoError(t, json.Unmarshal(doc["emissions"], &items))
	require.Len(t, items, 2)
	assert.ErrorIs(t, items[1].Reason, emissions.ErrFactorNotFound)
}

func TestRenderNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderNDJSON(&buf, Report{Emissions: sampleEmissions()}))

	sc := bufio.NewScanner(&buf)
	var lines int
	for sc.Scan() {
		lines++
		assert.True(t, json.Valid(sc.Bytes()))
	}
	assert.Equal(t, 2, lines)
}

func TestWrite_Dispatch(t *testing.T) {
	r := sampleReport(t)
	for _, f := range []Format{FormatTable, FormatJSON, FormatNDJSON, FormatCSV, FormatXLSX} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, f, r))
			assert.NotZero(t, buf.Len())
		})
	}
	require.ErrorIs(t, Write(&bytes.Buffer{}, Format("pdf"), r), ErrUnsupportedFormat)
}

func TestWrite_TableFallsBackToEmissions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, Report{Emissions: sampleEmissions()}))
	assert.True(t, strings.HasPrefix(buf.String(), "RECORD"))
}
