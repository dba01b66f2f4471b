package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/config"
	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/logging"
)

// NewCalcCmd creates the calc command, which computes one record against
// the loaded factor table without storing it.
func NewCalcCmd() *cobra.Command {
	var (
		fields []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "calc <method>",
		Short: "Compute emissions for a single activity record",
		Long: `Computes the emissions of one activity record without storing it.

Methods: ` + methodList() + `

Fields are given as repeated --field key=value flags using the same names as
records add and CSV import. A result that cannot be computed is reported
with its reason instead of failing the command.`,
		Example: `  # Grid electricity
  ghgledger calc electricity --field activity_data=12000 --field unit_selection=kWh

  # Refrigerant top-up with the simple method
  ghgledger calc fugitive_simple --field type_refrigeration=R-410A --field amount_purchased=3.5 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalc(cmd, args[0], fields, output)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "record field as key=value (repeatable)")
	cmd.Flags().StringVar(&output, "output", "", "output format: table, json or ndjson (default from config)")

	return cmd
}

func runCalc(cmd *cobra.Command, methodName string, pairs []string, output string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	audit := newAuditContext(ctx, "calc", map[string]string{"method": methodName})

	format, err := resolveFormat(output, export.FormatTable, export.FormatJSON, export.FormatNDJSON)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	method, err := emissions.ParseMethod(methodName)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	fields, err := parseFields(pairs)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	record, err := emissions.DecodeRecord(method, fields)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("decoding %s record: %w", method, err)
	}

	cfg := currentConfig()
	table, err := loadFactorTable(ctx, cfg, audit)
	if err != nil {
		return err
	}
	eng := newEngine(ctx, cfg, table)
	view := eng.ComputeEmissions(ctx, []emissions.ActivityRecord{record}, method)

	log.Debug().Ctx(ctx).Stringer("method", method).Int("fields", len(fields)).Msg("record computed")
	audit.logSuccess(ctx, len(view.Computed), view.Total())

	return export.Write(cmd.OutOrStdout(), format, export.Report{
		GeneratedAt: time.Now(),
		Emissions:   view.Computed,
	})
}

// resolveFormat parses flag, falling back to output.default_format, and
// checks it is one of allowed.
func resolveFormat(flag string, allowed ...export.Format) (export.Format, error) {
	if flag == "" {
		flag = config.GetDefaultOutputFormat()
	}
	f, err := export.ParseFormat(flag)
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", fmt.Errorf("%w: %s (supported here: %s)", export.ErrUnsupportedFormat, f, strings.Join(names, ", "))
}

func methodList() string {
	methods := emissions.AllMethods()
	names := make([]string, len(methods))
	for i, m := range methods {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}
