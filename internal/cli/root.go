package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/config"
	"github.com/rshade/ghgledger/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the ghgledger CLI.
// It resolves configuration, wires up logging, tracing and audit logging,
// and registers the subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
	)

	cmd := &cobra.Command{
		Use:     "ghgledger",
		Short:   "Greenhouse-gas activity ledger",
		Long:    "ghgledger: Record activity data, compute Scope 1-3 emissions and report trends",
		Version: ver,
		Example: rootCmdExample,
		// Errors are reported once by main.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Negative values cause undefined cache expiry behaviour.
			cacheTTL, _ := cmd.Flags().GetInt("cache-ttl")
			if cacheTTL < 0 {
				return fmt.Errorf("cache-ttl must be >= 0, got %d", cacheTTL)
			}

			if err := loadConfig(cmd, projectDir); err != nil {
				return err
			}

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding .ghgledger/ (default: walk up from the working directory)")
	cmd.PersistentFlags().
		Int("cache-ttl", 0, "cache TTL in seconds (0 = use config default, overrides config file and env var)")
	cmd.PersistentFlags().Bool("no-cache", false, "disable the projection cache for this invocation")

	cmd.AddCommand(
		NewCalcCmd(),
		newRecordsCmd(),
		NewTrendCmd(),
		NewSummaryCmd(),
		newFactorsCmd(),
		NewExportCmd(),
		NewDashboardCmd(),
		newConfigCmd(),
	)

	return cmd
}

// loadConfig resolves the project directory, merges the project overlay
// over the global configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command, projectFlag string) error {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	projectDir := config.ResolveProjectDir(cmd.Context(), projectFlag, cwd)
	config.SetResolvedProjectDir(projectDir)

	cfg := config.NewWithProjectDir(cmd.Context(), projectDir)
	if cmd.Flags().Changed("cache-ttl") {
		if ttl, _ := cmd.Flags().GetInt("cache-ttl"); ttl > 0 {
			cfg.Cache.TTLSeconds = ttl
		}
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	config.SetGlobalConfig(cfg)
	return nil
}

const rootCmdExample = `  # Compute a stationary combustion record without storing it
  ghgledger calc stationary --field fuel_type="Liquid fossil" --field fuel_selection="Gas/Diesel oil" \
    --field activity_data=1200 --field unit_selection=Litre

  # Store a record and list what is on file
  ghgledger records add electricity --field date=2025-03-14 --field activity_data=48000
  ghgledger records list

  # Bulk import a CSV export of mobile combustion records
  ghgledger records import fleet.csv --method mobile_fuel

  # Monthly trend for the last 12 months, split by scope
  ghgledger trend --window month --by-scope

  # Dashboard summary as JSON
  ghgledger summary --output json

  # Export the last 5 years to a workbook
  ghgledger export --format xlsx --out ledger.xlsx --window year

  # Initialize configuration
  ghgledger config init`

// newRecordsCmd creates the records command group.
func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "records", Short: "Activity record management commands"}
	cmd.AddCommand(
		NewRecordsListCmd(), NewRecordsAddCmd(),
		NewRecordsDeleteCmd(), NewRecordsImportCmd(),
	)
	return cmd
}

// newFactorsCmd creates the factors command group.
func newFactorsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "factors", Short: "Emission factor reference commands"}
	cmd.AddCommand(NewFactorsListCmd(), NewFactorsUnitsCmd())
	return cmd
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
