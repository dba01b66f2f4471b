package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/ghgledger/internal/config"
	"github.com/rshade/ghgledger/internal/factors"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global merged with the project
config) for syntax and semantic correctness.

This includes:
- Output format and precision
- Store driver and path
- Cache TTL
- Default reporting window
- The factor table named by factors.path, if any`,
		Example: `  # Validate current configuration
  ghgledger config validate

  # Validate and show detailed information
  ghgledger config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := loadEditableConfig(false)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	effective := currentConfig()
	if effective.Factors.Path != "" {
		if _, err = factors.Load(effective.Factors.Path); err != nil {
			return fmt.Errorf("factor table validation failed: %w", err)
		}
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, effective)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Store: %s at %s\n", cfg.Store.Driver, cfg.Store.Path)
	if cfg.Store.Company != "" {
		cmd.Printf("  Company: %s\n", cfg.Store.Company)
	}
	if cfg.Factors.Path != "" {
		cmd.Printf("  Factor table: %s\n", cfg.Factors.Path)
	} else {
		cmd.Println("  Factor table: built-in")
	}
	if cfg.Cache.Enabled {
		cmd.Printf("  Cache: %s (ttl %ds)\n", cfg.Cache.Directory, cfg.Cache.TTLSeconds)
	} else {
		cmd.Println("  Cache: disabled")
	}
	cmd.Printf("  Default window: %s\n", cfg.Reporting.DefaultWindow)
	if dir := config.GetResolvedProjectDir(); dir != "" {
		cmd.Printf("  Project: %s\n", dir)
	}
}
