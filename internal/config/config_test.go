package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/llm"
)

// isolate points the database at a temp dir and clears QBANK_* variables
// a developer may have exported.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, k := range []string{
		"QBANK_LOG_LEVEL", "QBANK_BROWSER_PAGE_SIZE", "QBANK_RENDER_WIDTH",
		"QBANK_LLM_PROVIDER", "QBANK_LLM_OPENAI_API_KEY", "QBANK_SERVER_ADDR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("QBANK_DB", filepath.Join(dir, "bank.db"))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bank.db"), cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.Browser.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Browser.Debounce)
	assert.Equal(t, 80, cfg.Render.Width)
	assert.Equal(t, 60, cfg.Render.PageHeight)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "claude-haiku", cfg.LLM.Selected().Model)
	assert.Equal(t, filepath.Join(dir, "qbank.log"), cfg.LogFilePath())
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("QBANK_LOG_LEVEL", "debug")
	t.Setenv("QBANK_BROWSER_PAGE_SIZE", "25")
	t.Setenv("QBANK_BROWSER_DEBOUNCE", "150ms")
	t.Setenv("QBANK_LLM_PROVIDER", "OpenAI")
	t.Setenv("QBANK_LLM_OPENAI_API_KEY", "sk-test")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.Browser.PageSize)
	assert.Equal(t, 150*time.Millisecond, cfg.Browser.Debounce)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.Selected().APIKey)
	assert.NoError(t, cfg.LLM.Validate())
}

func TestLoad_ConfigFileAndPrecedence(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "qbank.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
render:
  width: 100
  page_height: 40
server:
  addr: ":9000"
browser:
  page_size: 20
`), 0o644))

	t.Setenv("QBANK_RENDER_WIDTH", "120")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("page-size", 0, "")
	require.NoError(t, flags.Parse([]string{"--page-size=5"}))

	cfg, err := Load(Options{
		File:  file,
		Flags: map[string]*pflag.Flag{KeyBrowserPageSize: flags.Lookup("page-size")},
	})
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Render.Width, "env beats file")
	assert.Equal(t, 40, cfg.Render.PageHeight, "file beats default")
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, 5, cfg.Browser.PageSize, "flag beats file")
}

func TestLoad_UnchangedFlagDoesNotOverride(t *testing.T) {
	isolate(t)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load(Options{Flags: map[string]*pflag.Flag{KeyDB: flags.Lookup("db")}})
	require.NoError(t, err)
	assert.Equal(t, "bank.db", filepath.Base(cfg.DBPath))
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("QBANK_SERVER_ADDR")
	t.Cleanup(func() { os.Unsetenv("QBANK_SERVER_ADDR") })

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("QBANK_SERVER_ADDR=0.0.0.0:7000\n"), 0o644))

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.ServerAddr)

	_, err = Load(Options{EnvFile: filepath.Join(dir, "missing.env")})
	assert.NoError(t, err, "a missing .env file is not an error")
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)
	t.Setenv("QBANK_LOG_LEVEL", "loud")
	_, err := Load(Options{})
	assert.ErrorContains(t, err, "log.level")

	t.Setenv("QBANK_LOG_LEVEL", "info")
	t.Setenv("QBANK_BROWSER_PAGE_SIZE", "0")
	_, err = Load(Options{})
	assert.ErrorContains(t, err, "browser.page_size")

	_, err = Load(Options{File: "/nonexistent/qbank.yaml"})
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "id", "q1")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "id=q1")

	l, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestOpenLogFile(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(Options{})
	require.NoError(t, err)

	log, f, err := cfg.OpenLogFile()
	require.NoError(t, err)
	log.Info("started")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(dir, "qbank.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=started")
}
