// Package cli implements the waybill command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/config"
	"github.com/tOgg1/waybill/internal/db"
	"github.com/tOgg1/waybill/internal/logging"
)

var (
	cfgFile        string
	jsonOutput     bool
	jsonlOutput    bool
	logLevel       string
	nonInteractive bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "waybill",
	Short: "Browse and manage shipment waybills",
	Long: `waybill lists received and shipped parcels by status, supports
pull-to-refresh and infinite scroll, and cancels shipments that are still
awaiting collection.

Run without a subcommand to open the interactive page.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/waybill/config.yaml)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never open the TUI")

	addRouteFlags(rootCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	rootCmd.Version = version
	return rootCmd.ExecuteContext(ctx)
}

func initConfig() error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	appConfig = cfg
	initLogging(cfg.Logging, os.Stderr)

	log := logging.Component("cli")
	log.Debug().
		Str("config_file", loader.ConfigFileUsed()).
		Str("data_dir", cfg.Global.DataDir).
		Msg("configuration loaded")
	return nil
}

func initLogging(cfg config.LoggingConfig, out io.Writer) {
	logging.Init(logging.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       out,
		EnableCaller: cfg.EnableCaller,
	})
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsNonInteractive reports whether interactive UIs are disabled.
func IsNonInteractive() bool {
	return nonInteractive || os.Getenv("WAYBILL_NON_INTERACTIVE") != ""
}

func openDatabase(ctx context.Context) (*db.DB, error) {
	cfg := GetConfig()
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	database, err := db.Open(db.Config{
		Path:           cfg.DatabasePath(),
		MaxConnections: cfg.Database.MaxConnections,
		BusyTimeoutMs:  cfg.Database.BusyTimeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := database.MigrateUp(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}
