package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/greenops"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/notify"
	"github.com/rshade/ghgledger/internal/store"
)

// recordsListParams holds the parameters for records list.
type recordsListParams struct {
	method   string
	category string
	company  string
	output   string
	raw      bool
}

// NewRecordsListCmd creates the records list command.
func NewRecordsListCmd() *cobra.Command {
	var params recordsListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored activity records with their emissions",
		Long: `Lists stored activity records, newest first, with the emissions computed
for each. Records that cannot be computed are listed with their reason.
Use --raw to list the stored records without computing them.`,
		Example: `  # Everything on file
  ghgledger records list

  # Scope 2 electricity records as JSON
  ghgledger records list --category electricity --output json

  # Stored records only
  ghgledger records list --method stationary --raw`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecordsList(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.method, "method", "", "only records of this calculation method")
	cmd.Flags().StringVar(&params.category, "category", "", "only records of this category")
	cmd.Flags().StringVar(&params.company, "company", "", "only records of this company (default store.company)")
	cmd.Flags().StringVar(&params.output, "output", "", "output format: table, json or ndjson (default from config)")
	cmd.Flags().BoolVar(&params.raw, "raw", false, "list stored records without computing emissions")

	return cmd
}

func runRecordsList(cmd *cobra.Command, params recordsListParams) error {
	ctx := cmd.Context()
	audit := newAuditContext(ctx, "records list", map[string]string{
		"method":   params.method,
		"category": params.category,
	})

	format, err := resolveFormat(params.output, export.FormatTable, export.FormatJSON, export.FormatNDJSON)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	q, err := buildQuery(params)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}

	l, cleanup, err := openLedger(ctx, audit)
	if err != nil {
		return err
	}
	defer cleanup()

	if q.Company == "" {
		q.Company = l.cfg.Store.Company
	}
	records, err := l.store.List(ctx, q)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("listing records: %w", err)
	}

	if params.raw {
		audit.logSuccess(ctx, len(records), 0)
		if format == export.FormatTable {
			return renderRecordsTable(cmd, records)
		}
		return writeRecordsJSON(cmd, format, records)
	}

	view := l.engine.ComputeEmissions(ctx, records, emissions.MethodUnknown)
	audit.logSuccess(ctx, len(view.Computed), view.Total())
	return export.Write(cmd.OutOrStdout(), format, export.Report{
		GeneratedAt: time.Now(),
		Company:     q.Company,
		Emissions:   view.Computed,
	})
}

func buildQuery(params recordsListParams) (store.Query, error) {
	q := store.Query{Company: params.company}
	if params.method != "" {
		m, err := emissions.ParseMethod(params.method)
		if err != nil {
			return store.Query{}, err
		}
		q.Method = m
	}
	if params.category != "" {
		c, err := emissions.ParseCategory(params.category)
		if err != nil {
			return store.Query{}, err
		}
		q.Category = c
	}
	return q, nil
}

func renderRecordsTable(cmd *cobra.Command, records []emissions.ActivityRecord) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATE\tMETHOD\tCOMPANY")
	for _, r := range records {
		date := "-"
		if r.HasDate() {
			date = r.Date.Format(time.DateOnly)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, date, r.Method, r.Company)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\n%d record(s)\n", len(records))
	return nil
}

// writeRecordsJSON writes stored records as their field maps.
func writeRecordsJSON(cmd *cobra.Command, format export.Format, records []emissions.ActivityRecord) error {
	out := make([]emissions.Fields, 0, len(records))
	for _, r := range records {
		f, err := emissions.EncodeRecord(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID, err)
		}
		out = append(out, f)
	}
	return export.WriteValues(cmd.OutOrStdout(), format, out)
}

// NewRecordsAddCmd creates the records add command.
func NewRecordsAddCmd() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "add <method>",
		Short: "Store an activity record",
		Long: `Stores one activity record. Fields are given as repeated --field key=value
flags. The record is validated on the way in; a record that decodes but
cannot be computed (for example an unknown fuel) is stored and reported
with its reason.

Methods: ` + methodList(),
		Example: `  # Company car fuel receipt
  ghgledger records add mobile_fuel --field date=2025-02-03 --field vehicle_no=CAR-12 \
    --field fuel_selection=Diesel --field fuel_used=45 --field unit_selection=Litre`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsAdd(cmd, args[0], fields)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "record field as key=value (repeatable)")

	return cmd
}

func runRecordsAdd(cmd *cobra.Command, methodName string, pairs []string) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	audit := newAuditContext(ctx, "records add", map[string]string{"method": methodName})

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
	if _, ok := fields[emissions.FieldCompany]; !ok && currentConfig().Store.Company != "" {
		fields[emissions.FieldCompany] = currentConfig().Store.Company
	}
	record, err := emissions.DecodeRecord(method, fields)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("decoding %s record: %w", method, err)
	}

	l, cleanup, err := openLedger(ctx, audit)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := notify.NewBus()
	defer bus.Close()
	flush := watchNotifications(bus, cmd.ErrOrStderr())
	defer flush()

	stored, err := store.WithNotifications(l.store, bus).Add(ctx, record)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("storing record: %w", err)
	}

	view := l.engine.ComputeEmissions(ctx, stored, method)
	log.Info().Ctx(ctx).Str("record_id", stored[0].ID).Stringer("method", method).Msg("record stored")
	audit.logSuccess(ctx, len(stored), view.Total())

	for _, c := range view.Computed {
		if c.Computable {
			cmd.Printf("%s: %s\n", c.RecordID, greenops.FormatTCO2e(c.TotalCO2e))
			continue
		}
		cmd.Printf("%s: not computable (%s)\n", c.RecordID, emissions.ReasonCode(c.Reason))
	}
	return nil
}

// NewRecordsDeleteCmd creates the records delete command.
func NewRecordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored activity record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			audit := newAuditContext(ctx, "records delete", map[string]string{"id": args[0]})

			l, cleanup, err := openLedger(ctx, audit)
			if err != nil {
				return err
			}
			defer cleanup()

			bus := notify.NewBus()
			defer bus.Close()
			flush := watchNotifications(bus, cmd.ErrOrStderr())
			defer flush()

			if err = store.WithNotifications(l.store, bus).Delete(ctx, args[0]); err != nil {
				audit.logFailure(ctx, err)
				return fmt.Errorf("deleting record %s: %w", args[0], err)
			}
			audit.logSuccess(ctx, 1, 0)
			return nil
		},
	}
}

// recordsImportParams holds the parameters for records import.
type recordsImportParams struct {
	method    string
	batchSize int
}

// NewRecordsImportCmd creates the records import command.
func NewRecordsImportCmd() *cobra.Command {
	var params recordsImportParams

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk import activity records from CSV",
		Long: `Imports activity records from a CSV file whose header row names the record
fields. Every row is decoded before anything is stored; a file with bad
rows is rejected with one error per row.

Records are stored in batches. Each batch is stored atomically; if a batch
fails the import stops and the batches before it are kept.`,
		Example: `  # CSV with a method column
  ghgledger records import ledger.csv

  # CSV of one method, in batches of 500
  ghgledger records import fleet.csv --method mobile_fuel --batch-size 500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsImport(cmd, args[0], params)
		},
	}

	cmd.Flags().StringVar(&params.method, "method", "", "method of every row (default: read from a method column)")
	cmd.Flags().IntVar(&params.batchSize, "batch-size", store.DefaultImportBatchSize,
		fmt.Sprintf("records per batch (%d-%d)", store.MinImportBatchSize, store.MaxImportBatchSize))

	return cmd
}

func runRecordsImport(cmd *cobra.Command, path string, params recordsImportParams) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)
	audit := newAuditContext(ctx, "records import", map[string]string{
		"file":   path,
		"method": params.method,
	})

	importer, err := store.NewImporter(params.batchSize)
	if err != nil {
		audit.logFailure(ctx, err)
		return err
	}
	method := emissions.MethodUnknown
	if params.method != "" {
		if method, err = emissions.ParseMethod(params.method); err != nil {
			audit.logFailure(ctx, err)
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := store.DecodeCSV(f, method)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("reading %s: %w", path, err)
	}

	l, cleanup, err := openLedger(ctx, audit)
	if err != nil {
		return err
	}
	defer cleanup()

	bus := notify.NewBus()
	defer bus.Close()
	flush := watchNotifications(bus, cmd.ErrOrStderr())
	defer flush()

	errOut := cmd.ErrOrStderr()
	importer.WithPublisher(bus).WithProgress(func(p store.ImportProgress) {
		log.Debug().Ctx(ctx).
			Int("stored", p.StoredRecords).
			Int("total", p.TotalRecords).
			Float64("records_per_second", p.RecordsPerSecond()).
			Msg("import batch stored")
		_, _ = fmt.Fprintf(errOut, "batch %d/%d: %d/%d records (%.0f%%)\n",
			p.ProcessedBatches, p.TotalBatches, p.StoredRecords, p.TotalRecords, p.PercentComplete())
	})

	stored, err := importer.Import(ctx, l.store, records)
	if err != nil {
		audit.logFailure(ctx, err)
		return fmt.Errorf("import stopped after %d of %d records: %w", stored, len(records), err)
	}

	audit.logSuccess(ctx, stored, 0)
	cmd.Printf("Imported %d record(s) from %s\n", stored, path)
	return nil
}
