package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/tui"
)

// summaryParams holds the parameters for the summary command.
type summaryParams struct {
	display displayFlags
	output  string
}

// NewSummaryCmd creates the summary command.
func NewSummaryCmd() *cobra.Command {
	var params summaryParams

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard summary of all stored records",
		Long: `Summarises every stored record: the all-time total, the scope 1, 2 and 3
subtotals with their shares, the stationary, mobile and fugitive
breakdown of scope 1, and this month's total compared with last month.

The month-over-month change is shown only when last month has records
and a nonzero total.`,
		Example: `  # Summary cards
  ghgledger summary

  # Machine-readable summary
  ghgledger summary --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, params)
		},
	}

	params.display.register(cmd)
	cmd.Flags().StringVar(&params.output, "output", "", "output format: table, json or ndjson (default from config)")

	return cmd
}

func runSummary(cmd *cobra.Command, params summaryParams) error {
	ctx := cmd.Context()
	now := time.Now()
	audit := newAuditContext(ctx, "summary", nil)

	format, err := resolveFormat(params.output, export.FormatTable, export.FormatJSON, export.FormatNDJSON)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	l, cleanup, err := openLedger(ctx, audit)
	if err != nil {
		return err
	}
	defer cleanup()

	categorised, computed, err := l.computeAll(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	stats := l.engine.Stats(ctx, categorised, now, nil)
	audit.logSuccess(ctx, len(computed), stats.Total)

	switch {
	case format == export.FormatNDJSON:
		return export.WriteValues(cmd.OutOrStdout(), format, []any{stats})
	case format != export.FormatTable:
		return export.Write(cmd.OutOrStdout(), format, export.Report{
			GeneratedAt: now,
			Company:     l.cfg.Store.Company,
			Stats:       &stats,
		})
	case params.display.mode() == tui.OutputModePlain:
		return export.RenderStatsText(cmd.OutOrStdout(), stats)
	default:
		cmd.Println(tui.RenderSummary(stats, tui.TerminalWidth()))
		return nil
	}
}
