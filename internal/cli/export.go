package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/tui"
)

// exportParams holds the parameters for the export command.
type exportParams struct {
	window        windowFlags
	format        string
	out           string
	emissionsOnly bool
}

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	var params exportParams

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export emissions, the trend and the summary to a file",
		Long: `Writes a report of every computed emission together with the trend over a
time window and the summary statistics.

Formats:
  xlsx    one sheet each for emissions, trend and summary
  csv     the trend buckets, or the emissions with --emissions-only
  json    one document with every part
  ndjson  one line per trend bucket, or per emission with --emissions-only`,
		Example: `  # Workbook of the last 5 years
  ghgledger export --format xlsx --out ledger.xlsx --window year

  # Every computed emission as CSV on stdout
  ghgledger export --format csv --emissions-only`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, params)
		},
	}

	params.window.register(cmd)
	cmd.Flags().StringVar(&params.format, "format", string(export.FormatXLSX), "export format: xlsx, csv, json or ndjson")
	cmd.Flags().StringVarP(&params.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&params.emissionsOnly, "emissions-only", false, "export the computed emissions without trend or summary")

	return cmd
}

func runExport(cmd *cobra.Command, params exportParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	now := time.Now()
	audit := newAuditContext(ctx, "export", map[string]string{
		"format": params.format,
		"out":    params.out,
	})

	format, err := resolveFormat(params.format,
		export.FormatXLSX, export.FormatCSV, export.FormatJSON, export.FormatNDJSON)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	if format == export.FormatXLSX && params.out == "" && tui.IsTTY() {
		err = errors.New("refusing to write a workbook to a terminal; use --out")
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

	categorised, computed, err := l.computeAll(ctx)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	report := export.Report{
		GeneratedAt: now,
		Company:     l.cfg.Store.Company,
		Emissions:   computed,
	}
	if !params.emissionsOnly {
		series := l.series(ctx, computed, w, now)
		stats := l.engine.Stats(ctx, categorised, now, nil)
		report.Series = &series
		report.Stats = &stats
	}

	dest, closeDest, err := openOutput(cmd, params.out)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	if err = export.Write(dest, format, report); err != nil {
		_ = closeDest()
		audit.logFailure(ctx, err)
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	if err = closeDest(); err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("closing %s: %w", params.out, err)
	}

	log.Info().Ctx(ctx).
		Str("format", string(format)).
		Str("out", params.out).
		Int("emissions", len(computed)).
		Msg("export written")
	audit.logSuccess(ctx, len(computed), report.Total())
	if params.out != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d emission(s) to %s\n", len(computed), params.out)
	}
	return nil
}

// openOutput returns the file at path, or the command's stdout when path
// is empty, with a matching close function.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, f.Close, nil
}
