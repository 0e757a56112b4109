package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"samparkdash/internal/config"
)

var (
	envFile string
	cfg     *config.Config
	logger  = slog.Default()

	rootCmd = &cobra.Command{
		Use:   "samparkdash",
		Short: "Sampark Dashboard - Browse smart-classroom indicators by district, block and school",
		Long: `Sampark Dashboard is a CLI/TUI for the Sampark education monitoring API.
It shows leading, class observation and lagging indicators for a state,
lets you drill down into districts and blocks, and exports any table as CSV.

When run without commands, it launches an interactive TUI.
Set SAMPARK_API_URL to the API base URL, or pass --demo to browse sample data.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		Run: func(cmd *cobra.Command, args []string) {
			src, cleanup, err := OpenSource(cfg, logger)
			if err != nil {
				HandleError(err, "Failed to open data source")
			}
			defer cleanup()

			if err := LaunchTUI(cfg, src, logger); err != nil {
				HandleError(err, "TUI failed")
			}
		},
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file to load before reading SAMPARK_* variables")
	flags.StringP("data-dir", "d", "tmpdata", "Directory for the session, snapshots, exports and log")
	flags.String("api-url", "", "Sampark API base URL (overrides SAMPARK_API_URL)")
	flags.Bool("demo", false, "Use the bundled sample data instead of the API")
}

// initConfig loads settings with flags taking precedence over the
// environment, then opens the log file.
func initConfig(cmd *cobra.Command) error {
	v, err := config.New(envFile)
	if err != nil {
		return err
	}
	bindFlags(v, cmd, map[string]string{
		"data_dir":  "data-dir",
		"api_url":   "api-url",
		"demo":      "demo",
		"port":      "port",
		"page_size": "page-size",
	})

	cfg, err = config.FromViper(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if SetupLogger != nil {
		l, err := SetupLogger(cfg.DataDir)
		if err != nil {
			return err
		}
		logger = l
	}
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
