package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/taxonomy"
)

var rootCmd = &cobra.Command{
	Use:   "qbank",
	Short: "Question bank and exam paper composer",
	Long: "qbank keeps a taxonomy-tagged bank of MCQ, descriptive and passage questions " +
		"and composes them into printable exam papers.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides QBANK_DB env var)")
	pf.String("config", "", "Config file (yaml, json or toml)")
	pf.String("env-file", ".env", "dotenv file read before QBANK_* variables; ignored when missing")
	pf.String("log-level", "", "Log level: debug, info, warn or error (overrides QBANK_LOG_LEVEL)")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(taxonomyCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(paperCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// flagKeys maps config keys to the flag names that override them. Flags a
// command does not define are skipped.
var flagKeys = map[string]string{
	config.KeyDB:               "db",
	config.KeyLogLevel:         "log-level",
	config.KeyBrowserPageSize:  "page-size",
	config.KeyRenderWidth:      "width",
	config.KeyRenderPageHeight: "height",
	config.KeyServerAddr:       "addr",
	config.KeyLLMProvider:      "provider",
}

// loadConfig resolves settings for cmd: flag, then QBANK_* env, then the
// config file, then defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	flags := make(map[string]*pflag.Flag, len(flagKeys))
	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			flags[key] = f
		}
	}

	cfg, err := config.Load(config.Options{File: file, EnvFile: envFile, Flags: flags})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// env is what most commands need: the opened store and the services over it.
type env struct {
	cfg   *config.Config
	store *store.Store
	tax   *taxonomy.Index
	bank  *bank.Service
	log   *slog.Logger
}

// openEnv loads the configuration and opens the database. Logs go to
// stderr; the TUI swaps in a file logger with openEnvLogger.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openEnvLogger(cfg, config.NewLogger(os.Stderr, cfg.LogLevel))
}

func openEnvLogger(cfg *config.Config, log *slog.Logger) (*env, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	tax := taxonomy.NewIndex(st.TaxonomyRepo())
	return &env{
		cfg:   cfg,
		store: st,
		tax:   tax,
		bank:  bank.New(st.QuestionRepo(), tax, log),
		log:   log,
	}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}
