package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/timeseries"
	"github.com/rshade/ghgledger/internal/tui"
)

// displayFlags select between plain and styled terminal output.
type displayFlags struct {
	plain      bool
	noColor    bool
	forceColor bool
}

func (f *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.plain, "plain", false, "plain text output")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colors")
	cmd.Flags().BoolVar(&f.forceColor, "force-color", false, "styled output even when stdout is not a terminal")
}

func (f *displayFlags) mode() tui.OutputMode {
	return tui.DetectOutputMode(f.forceColor, f.noColor, f.plain)
}

// trendParams holds the parameters for the trend command.
type trendParams struct {
	window  windowFlags
	display displayFlags
	byScope bool
	output  string
}

// NewTrendCmd creates the trend command.
func NewTrendCmd() *cobra.Command {
	var params trendParams

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Show emissions bucketed over a time window",
		Long: `Buckets the computed emissions of every stored record by day, week, month or
year over a time window ending today, or over a custom date range. Every
period of the window is shown, including periods with no records.

Records without a usable date are counted separately and never bucketed.`,
		Example: `  # Last 12 months (the default window)
  ghgledger trend

  # Last 8 weeks split by scope
  ghgledger trend --window week --last 8 --by-scope

  # Calendar 2024, monthly, as JSON
  ghgledger trend --from 2024-01-01 --to 2024-12-31 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrend(cmd, params)
		},
	}

	params.window.register(cmd)
	params.display.register(cmd)
	cmd.Flags().BoolVar(&params.byScope, "by-scope", false, "show scope 1, 2 and 3 columns")
	cmd.Flags().StringVar(&params.output, "output", "", "output format: table, json or ndjson (default from config)")

	return cmd
}

func runTrend(cmd *cobra.Command, params trendParams) error {
	ctx := cmd.Context()
	now := time.Now()
	audit := newAuditContext(ctx, "trend", map[string]string{"window": params.window.window})

	format, err := resolveFormat(params.output, export.FormatTable, export.FormatJSON, export.FormatNDJSON)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	w, err := params.window.resolve(currentConfig().Reporting.DefaultWindow, now)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	l, cleanup, err := openLedger(ctx, audit)
	if err != nil {
		return err
	}
	defer cleanup()

	_, computed, err := l.computeAll(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	series := l.series(ctx, computed, w, now)
	audit.logSuccess(ctx, len(computed), series.Total())

	if format != export.FormatTable {
		return export.Write(cmd.OutOrStdout(), format, export.Report{
			GeneratedAt: now,
			Company:     l.cfg.Store.Company,
			Series:      &series,
		})
	}
	if params.display.mode() == tui.OutputModePlain {
		return export.RenderTrendTable(cmd.OutOrStdout(), series, params.byScope)
	}
	cmd.Println(tui.RenderTrendChart(series, tui.TerminalWidth()))
	return nil
}

// series buckets computed over w through the engine and adds the window
// bounds and the undated count.
func (l *ledger) series(
	ctx context.Context,
	computed []emissions.ComputedEmission,
	w timeseries.Window,
	now time.Time,
) timeseries.Series {
	view := l.engine.Trend(ctx, computed, w, now)
	s := timeseries.Series{Window: view.Window, Buckets: view.Buckets}
	s.Start, s.End = w.Range(now)
	for _, c := range computed {
		switch {
		case c.Date.IsZero():
			s.Undated++
		case !w.Contains(c.Date, now):
			s.OutOfRange++
		}
	}
	return s
}
