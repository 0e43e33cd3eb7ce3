package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/app"
	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/screen"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the question bank and compose a paper",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}

func init() {
	browseCmd.Flags().Int("page-size", 0, "Questions per browser page (overrides browser.page_size)")
}

// runApp opens the store, builds dependencies, and launches the TUI. Logs
// go to a file so they do not draw over the alt screen. With browse set the
// TUI opens on the question browser instead of the home menu.
func runApp(cmd *cobra.Command, browse bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, logFile, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()

	e, err := openEnvLogger(cfg, log)
	if err != nil {
		return err
	}
	defer e.Close()

	log.Info("starting tui", "db", cfg.DBPath)
	deps := screen.Deps{
		Bank:     e.bank,
		Taxonomy: e.tax,
		Papers:   e.store.PaperRepo(),
		Paper:    composer.New(),
		Browser:  cfg.Browser,
		Layout:   cfg.Render,
		Log:      log,
	}
	if err := app.Run(deps, app.Options{Browse: browse}); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
