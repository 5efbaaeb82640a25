package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tOgg1/waybill/internal/config"
	"github.com/tOgg1/waybill/internal/lookup"
	"github.com/tOgg1/waybill/internal/waybilltui"
)

func init() {
	rootCmd.AddCommand(uiCmd)
	addRouteFlags(uiCmd)
}

var uiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"ui"},
	Short:   "Open the interactive waybill page",
	Long:    "Open the waybill list in the terminal. Tabs switch between received and shipped parcels.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	if IsNonInteractive() || !hasTTY() {
		return &PreflightError{
			Message:  "the waybill page requires an interactive terminal",
			Hint:     "Run with a TTY, or use the list command",
			NextStep: "waybill list --type ship",
		}
	}

	cfg := GetConfig()
	// The screen owns stderr while the TUI runs.
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		initLogging(cfg.Logging, f)
	} else {
		initLogging(config.LoggingConfig{Level: "disabled"}, os.Stderr)
	}

	ctx := cmd.Context()
	contexts := config.NewContextStore(cfg.ContextPath())
	route, err := resolveRoute(cmd, contexts)
	if err != nil {
		return err
	}

	env, err := openPageEnv(ctx, false)
	if err != nil {
		return err
	}
	defer env.Close()

	return waybilltui.Run(ctx, waybilltui.Config{
		Route:           route,
		Catalog:         cfg.Catalog,
		Store:           env.store,
		Storage:         env.kv,
		Bus:             env.bus,
		Finder:          lookup.NewFinder(env.waybills, lookup.DefaultLimit),
		Theme:           cfg.TUI.Theme,
		CardWidth:       cfg.TUI.CardWidth,
		PageID:          cfg.Page.ID,
		GuideStorageKey: cfg.Page.GuideStorageKey,
		ToastDuration:   cfg.Page.ToastDuration,
		OnChange:        saveContextOnChange(contexts),
	})
}
