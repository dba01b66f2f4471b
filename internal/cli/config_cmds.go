package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ghgledger/internal/config"
)

// loadEditableConfig loads the file config set writes to: the project
// config inside a project unless global is set, else the global config.
func loadEditableConfig(global bool) (*config.Config, error) {
	if dir := config.GetResolvedProjectDir(); dir != "" && !global {
		return config.Load(filepath.Join(dir, "config.yaml"))
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return config.Load(filepath.Join(dir, "config.yaml"))
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Sets a configuration value by dotted key. The value is parsed as YAML, so
numbers and booleans keep their type. The resulting configuration must
validate; otherwise nothing is written.

reporting.grid_factor and reporting.avg_transport_constant are read-only.`,
		Example: `  # Store records in SQLite
  ghgledger config set store.driver sqlite
  ghgledger config set store.path ~/.ghgledger/records.db

  # Default to JSON output
  ghgledger config set output.default_format json`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value.
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEditableConfig(global)
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Set %s = %s in %s\n", args[0], args[1], cfg.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "write the global configuration even inside a project")

	return cmd
}

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  `Prints the effective value of a dotted key, or a whole section as YAML.`,
		Example: `  ghgledger config get store.driver
  ghgledger config get cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := currentConfig().Get(args[0])
			if err != nil {
				return err
			}
			if section, ok := v.(map[string]any); ok {
				data, marshalErr := yaml.Marshal(section)
				if marshalErr != nil {
					return fmt.Errorf("encoding %s: %w", args[0], marshalErr)
				}
				cmd.Print(string(data))
				return nil
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every effective configuration value",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := currentConfig().List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, k := range config.Keys(values) {
				_, _ = fmt.Fprintf(w, "%s\t%s\n", k, values[k])
			}
			return w.Flush()
		},
	}
}
