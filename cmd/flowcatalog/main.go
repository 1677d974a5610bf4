// Package main is the entrypoint for the flow catalog CLI.
package main

import (
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/MacJediWizard/flowcatalog/internal/config"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by the catalog commands.
type globalFlags struct {
	configPath  string
	databaseURL string
	output      string
	pageSize    int
	verbose     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "flowcatalog",
		Short: "Browse the workflow scheduler's flow catalog",
		Long: `flowcatalog lists the projects, flows and jobs that the workflow
scheduler has recorded for an application.

The database URL is taken from --db, then DATABASE_URL, then the
config file (~/.flowcatalog/config.yml).`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file path (default ~/.flowcatalog/config.yml)")
	pf.StringVar(&flags.databaseURL, "db", "", "Database URL")
	pf.StringVarP(&flags.output, "output", "o", "", "Output format: table or json")
	pf.IntVar(&flags.pageSize, "size", 0, "Items per page")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log catalog queries")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(flags),
		newProjectsCmd(flags),
		newFlowsCmd(flags),
		newJobsCmd(flags),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "flowcatalog %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig reads the CLI config from the flag path or the default location.
func (f *globalFlags) loadConfig() (*config.CLIConfig, string, error) {
	path := f.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// settings merges flags, environment and the config file, in that order.
func (f *globalFlags) settings() (*config.CLIConfig, error) {
	cfg, _, err := f.loadConfig()
	if err != nil {
		return nil, err
	}
	return mergeSettings(cfg, f, os.Getenv("DATABASE_URL"))
}

func mergeSettings(file *config.CLIConfig, f *globalFlags, envURL string) (*config.CLIConfig, error) {
	merged := *file
	if envURL != "" {
		merged.DatabaseURL = envURL
	}
	if f.databaseURL != "" {
		merged.DatabaseURL = f.databaseURL
	}
	if f.output != "" {
		merged.Output = strings.ToLower(f.output)
	}
	if f.pageSize != 0 {
		merged.PageSize = f.pageSize
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(flags),
		newConfigSetCmd(flags),
	)

	return cmd
}

func newConfigShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := flags.loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file:  %s\n\n", path)
			if cfg.DatabaseURL == "" {
				fmt.Fprintln(out, "Database URL: (not set)")
			} else {
				fmt.Fprintf(out, "Database URL: %s\n", redactDatabaseURL(cfg.DatabaseURL))
			}
			if cfg.PageSize > 0 {
				fmt.Fprintf(out, "Page size:    %d\n", cfg.PageSize)
			} else {
				fmt.Fprintln(out, "Page size:    (server default)")
			}
			fmt.Fprintf(out, "Output:       %s\n", cfg.OutputFormat())
			return nil
		},
	}
}

func newConfigSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set <database_url|page_size|output> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := flags.loadConfig()
			if err != nil {
				return err
			}

			if err := applySetting(cfg, args[0], args[1]); err != nil {
				return err
			}

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", args[0], path)
			return nil
		},
	}
}

func applySetting(cfg *config.CLIConfig, key, value string) error {
	switch key {
	case "database_url":
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid database URL: %w", err)
		}
		if parsed.Scheme != "postgres" && parsed.Scheme != "postgresql" {
			return fmt.Errorf("database URL must use the postgres or postgresql scheme")
		}
		cfg.DatabaseURL = value
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("page_size must be a non-negative integer")
		}
		cfg.PageSize = n
	case "output":
		v := strings.ToLower(value)
		if v != config.OutputJSON && v != config.OutputTable {
			return fmt.Errorf("output must be %q or %q", config.OutputJSON, config.OutputTable)
		}
		cfg.Output = v
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

const unparseableURL = "(unparseable, hidden)"

// redactDatabaseURL hides the password of a database URL.
func redactDatabaseURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return unparseableURL
	}
	return parsed.Redacted()
}
