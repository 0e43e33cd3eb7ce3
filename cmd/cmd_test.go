package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/qbank/internal/question"
)

func TestParseChild(t *testing.T) {
	c, err := parseChild("mcq| 1 |Which gas?|Oxygen*; Nitrogen")
	require.NoError(t, err)
	assert.Equal(t, question.KindMCQ, c.Kind)
	assert.Equal(t, 1, c.Marks)
	assert.Equal(t, "Which gas?", c.Body)
	require.Len(t, c.Options, 2)
	assert.True(t, c.Options[0].IsCorrect)

	c, err = parseChild("descriptive|2|Explain | in one line")
	require.NoError(t, err)
	assert.Equal(t, "Explain", c.Body)
	assert.Equal(t, question.Options{{Text: "in one line"}}, c.Options, "fourth field is always options")

	for _, bad := range []string{"mcq|1", "essay|1|x", "mcq|one|x"} {
		_, err := parseChild(bad)
		assert.Error(t, err, bad)
	}
}

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addFilterFlags(c)
	c.Flags().String("db", "", "")
	c.Flags().String("config", "", "")
	c.Flags().String("env-file", "", "")
	c.Flags().String("log-level", "", "")
	c.Flags().Int("page-size", 0, "")
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestFilterFromFlags(t *testing.T) {
	c := newTestCmd(t, "--segment", " k12 ", "--group", "g10", "--kind", "passage", "--tag", "optics", "--text", "lens")
	f, err := filterFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, "k12", f.Classification.SegmentID)
	assert.Equal(t, "g10", f.Classification.GroupID)
	assert.Empty(t, f.Classification.SubjectID)
	assert.Equal(t, question.KindPassage, f.Kind)
	assert.Equal(t, "optics", f.Tag)
	assert.Equal(t, "lens", f.Text)

	_, err = filterFromFlags(newTestCmd(t, "--kind", "essay"))
	assert.Error(t, err)
}

func TestLoadConfig_FlagsOverride(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bank.db")
	t.Setenv("QBANK_LOG_LEVEL", "warn")
	t.Setenv("QBANK_BROWSER_PAGE_SIZE", "25")

	cfg, err := loadConfig(newTestCmd(t, "--db", db, "--log-level", "debug"))
	require.NoError(t, err)
	assert.Equal(t, db, cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel, "a set flag beats the environment")
	assert.Equal(t, 25, cfg.Browser.PageSize, "an unset flag leaves the environment value")

	cfg, err = loadConfig(newTestCmd(t, "--db", db, "--page-size", "7"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Browser.PageSize)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestBuildVersion_PrefersStamp(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })

	version = "v1.4.0"
	assert.Equal(t, "v1.4.0", buildVersion())

	version = ""
	assert.NotEmpty(t, buildVersion())
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"browse"},
		{"question", "import"},
		{"taxonomy", "load"},
		{"tags", "suggest"},
		{"paper", "render"},
		{"generate"},
		{"llm", "stats"},
		{"serve"},
		{"version"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}

	browse, _, err := rootCmd.Find([]string{"browse"})
	require.NoError(t, err)
	assert.NotNil(t, browse.Flags().Lookup("page-size"))
	assert.NotNil(t, browse.InheritedFlags().Lookup("db"))
}
