package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
	"github.com/rshade/ghgledger/internal/tui"
)

// dashboardParams holds the parameters for the dashboard command.
type dashboardParams struct {
	window  windowFlags
	display displayFlags
}

// NewDashboardCmd creates the dashboard command.
func NewDashboardCmd() *cobra.Command {
	var params dashboardParams

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive emissions dashboard",
		Long: `Opens an interactive dashboard with the emissions trend and the summary
cards. Keys: d/w/m/y switch granularity, s toggles scope columns, enter
shows the summary, r reloads, q quits.

Outside an interactive terminal the summary and the trend chart are
printed instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, params)
		},
	}

	params.window.register(cmd)
	params.display.register(cmd)

	return cmd
}

func runDashboard(cmd *cobra.Command, params dashboardParams) error {
	ctx := cmd.Context()
	now := time.Now()
	audit := newAuditContext(ctx, "dashboard", map[string]string{"window": params.window.window})

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

	if params.display.mode() == tui.OutputModeInteractive {
		load := func(ctx context.Context) ([]emissions.ComputedEmission, error) {
			_, computed, loadErr := l.computeAll(ctx)
			return computed, loadErr
		}
		model, _ := tui.NewDashboardModel(ctx, load, l.engine, tui.WithWindow(w))
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err = p.Run(); err != nil {
			audit.logFailure(ctx, err)
			return fmt.Errorf("failed to run interactive dashboard: %w", err)
		}
		audit.logSuccess(ctx, 0, 0)
		return nil
	}

	categorised, computed, err := l.computeAll(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	stats := l.engine.Stats(ctx, categorised, now, nil)
	series := l.series(ctx, computed, w, now)
	audit.logSuccess(ctx, len(computed), stats.Total)

	return renderDashboard(cmd.OutOrStdout(), params.display.mode(), stats, series)
}

// renderDashboard prints the non-interactive dashboard.
func renderDashboard(out io.Writer, mode tui.OutputMode, stats rollup.Stats, series timeseries.Series) error {
	if mode == tui.OutputModePlain {
		if err := export.RenderStatsText(out, stats); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out)
		return export.RenderTrendTable(out, series, true)
	}
	width := tui.TerminalWidth()
	_, _ = fmt.Fprintln(out, tui.RenderSummary(stats, width))
	_, _ = fmt.Fprintln(out, tui.RenderTrendChart(series, width))
	return nil
}
