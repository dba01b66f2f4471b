package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/export"
	"github.com/rshade/ghgledger/internal/factors"
)

// Factor table sections.
const (
	sectionStationary   = "stationary"
	sectionMobile       = "mobile"
	sectionRefrigerants = "refrigerants"
	sectionElectricity  = "electricity"
	sectionTravel       = "travel"
)

// NewFactorsListCmd creates the factors list command.
func NewFactorsListCmd() *cobra.Command {
	var (
		section string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the loaded emission factor table",
		Long: `Lists the emission factor table records are computed against: the built-in
table, or the file named by factors.path.

Sections: stationary, mobile, refrigerants, electricity, travel.`,
		Example: `  # Refrigerant GWP values
  ghgledger factors list --section refrigerants

  # The whole table as JSON
  ghgledger factors list --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			audit := newAuditContext(ctx, "factors list", map[string]string{"section": section})

			format, err := resolveFormat(output, export.FormatTable, export.FormatJSON)
			if err != nil {
				audit.logFailure(ctx, err)
				return err
			}
			t, err := loadFactorTable(ctx, currentConfig(), audit)
			if err != nil {
				return err
			}
			audit.logSuccess(ctx, 0, 0)
			if format == export.FormatJSON {
				return export.WriteValues(cmd.OutOrStdout(), format, []*factors.Table{t})
			}
			return renderFactorTable(cmd.OutOrStdout(), t, strings.ToLower(section))
		},
	}

	cmd.Flags().StringVar(&section, "section", "", "only this section of the table")
	cmd.Flags().StringVar(&output, "output", "", "output format: table or json (default from config)")

	return cmd
}

func renderFactorTable(out io.Writer, t *factors.Table, section string) error {
	sections := []string{sectionStationary, sectionMobile, sectionRefrigerants, sectionElectricity, sectionTravel}
	if section != "" {
		found := false
		for _, s := range sections {
			found = found || s == section
		}
		if !found {
			return fmt.Errorf("unknown section %q (want %s)", section, strings.Join(sections, ", "))
		}
		sections = []string{section}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, s := range sections {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, strings.ToUpper(s))
		switch s {
		case sectionStationary:
			_, _ = fmt.Fprintln(w, "FUEL TYPE\tFUEL\tENERGY CO2\tMASS CO2\tLIQUID CO2\tGAS CO2")
			for _, f := range t.Stationary {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%g\n",
					f.FuelType, f.FuelName, f.Energy.CO2, f.Mass.CO2, f.Liquid.CO2, f.Gas.CO2)
			}
		case sectionMobile:
			_, _ = fmt.Fprintln(w, "NAME\tMETHOD\tVEHICLE\tFUEL\tEF CO2\tEF CH4\tEF N2O\tUNIT")
			for _, f := range t.Mobile {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%g\t%s\n",
					f.Name, f.CalculationMethod, f.VehicleCategory, f.FuelType, f.CO2, f.CH4, f.N2O, f.Unit)
			}
		case sectionRefrigerants:
			_, _ = fmt.Fprintln(w, "GAS\tGWP AR6\tGWP")
			for _, g := range t.Refrigerants {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", g.Name, optional(g.GWPAR6), optional(g.GWP))
			}
		case sectionElectricity:
			_, _ = fmt.Fprintln(w, "GRID\tFACTOR (tCO2e/kWh)")
			for _, g := range t.Electricity {
				_, _ = fmt.Fprintf(w, "%s\t%g\n", g.Name, g.Factor)
			}
			_, _ = fmt.Fprintf(w, "(fallback)\t%g\n", t.Constants.GridFactor)
		case sectionTravel:
			_, _ = fmt.Fprintln(w, "METHOD\tKEY\tFACTOR\tUNIT")
			for _, f := range t.Travel {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", f.Method, f.Key, f.Factor, f.Unit)
			}
		}
	}
	return w.Flush()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

// NewFactorsUnitsCmd creates the factors units command.
func NewFactorsUnitsCmd() *cobra.Command {
	var fuelType, fuelName string

	cmd := &cobra.Command{
		Use:   "units",
		Short: "Show the units offered for stationary fuels",
		Long: `Shows the stationary fuel types and fuels of the loaded table with the
unit selections each one accepts.`,
		Example: `  # Every fuel
  ghgledger factors units

  # One fuel type
  ghgledger factors units --fuel-type "Liquid fossil"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			audit := newAuditContext(ctx, "factors units", map[string]string{
				"fuel_type": fuelType,
				"fuel_name": fuelName,
			})
			t, err := loadFactorTable(ctx, currentConfig(), audit)
			if err != nil {
				return err
			}
			audit.logSuccess(ctx, 0, 0)
			return renderUnits(cmd.OutOrStdout(), t, fuelType, fuelName)
		},
	}

	cmd.Flags().StringVar(&fuelType, "fuel-type", "", "only fuels of this type")
	cmd.Flags().StringVar(&fuelName, "fuel-name", "", "only this fuel")

	return cmd
}

func renderUnits(out io.Writer, t *factors.Table, fuelType, fuelName string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FUEL TYPE\tFUEL\tUNITS")
	rows := 0
	for _, ft := range t.FuelTypes() {
		if fuelType != "" && !strings.EqualFold(ft, fuelType) {
			continue
		}
		for _, name := range t.Fuels(ft) {
			if fuelName != "" && !strings.EqualFold(name, fuelName) {
				continue
			}
			units := factors.AllowedUnits(ft, name)
			names := make([]string, len(units))
			for i, u := range units {
				names[i] = string(u)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", ft, name, strings.Join(names, ", "))
			rows++
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no stationary fuel matches type %q name %q", fuelType, fuelName)
	}
	return nil
}
