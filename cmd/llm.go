package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/store"
	"github.com/abhisek/qbank/internal/ui/theme"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls and their cost",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		list, err := e.store.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No LLM calls recorded.")
			return nil
		}
		fmt.Println(eventTable(list))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and raw output of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ev, err := e.store.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if ev == nil {
			return fmt.Errorf("event %d not found", id)
		}
		writeEvent(os.Stdout, ev)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events := e.store.EventRepo()
		byPurpose, err := events.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No LLM usage recorded.")
			return nil
		}
		byModel, err := events.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		fmt.Println(theme.Title.Render("Usage by purpose"))
		fmt.Println(usageTable(byPurpose))
		fmt.Println()
		fmt.Println(theme.Title.Render("Estimated cost (USD)"))
		costs, unpriced := costTable(byModel)
		fmt.Println(costs)
		if len(unpriced) > 0 {
			fmt.Printf("No pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func newTable(headers ...string) *table.Table {
	head := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return head
			}
			return cell
		})
}

func eventTable(list []store.LLMEvent) string {
	t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
	for _, ev := range list {
		ok := "✓"
		if !ev.Success {
			ok = "✗"
		}
		t.Row(
			strconv.Itoa(ev.ID),
			ev.Timestamp.Local().Format(timeLayout),
			truncate(ev.Purpose, 16),
			truncate(ev.Model, 28),
			strconv.Itoa(ev.InputTokens),
			strconv.Itoa(ev.OutputTokens),
			strconv.FormatInt(ev.LatencyMs, 10),
			ok,
		)
	}
	return t.String()
}

func writeEvent(w io.Writer, ev *store.LLMEvent) {
	fmt.Fprintf(w, "%-9s %d\n", "ID", ev.ID)
	fmt.Fprintf(w, "%-9s %s\n", "Time", ev.Timestamp.Local().Format(timeLayout))
	fmt.Fprintf(w, "%-9s %s / %s\n", "Model", ev.Provider, ev.Model)
	fmt.Fprintf(w, "%-9s %s\n", "Purpose", ev.Purpose)
	fmt.Fprintf(w, "%-9s %d in / %d out, %dms\n", "Tokens", ev.InputTokens, ev.OutputTokens, ev.LatencyMs)
	if ev.ErrorMessage != "" {
		fmt.Fprintf(w, "%-9s %s\n", "Error", ev.ErrorMessage)
	}
	for _, part := range []struct{ name, body string }{
		{"REQUEST", ev.RequestBody},
		{"RESPONSE", ev.ResponseBody},
	} {
		fmt.Fprintf(w, "\n%s %s\n", theme.Title.Render(part.name), strings.Repeat("─", 50))
		if part.body == "" {
			fmt.Fprintln(w, theme.Hint.Render("(not captured)"))
			continue
		}
		fmt.Fprintln(w, part.body)
	}
}

func usageTable(rows []store.LLMUsage) string {
	t := newTable("Purpose", "Calls", "Input", "Output", "Avg ms")
	var calls, in, out int
	for _, u := range rows {
		t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	t.Row("total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(out), "")
	return t.String()
}

// costTable prices each model's usage. Models without a known price are
// listed with "?" and returned so the total can be flagged as partial.
func costTable(rows []store.LLMUsage) (string, []string) {
	t := newTable("Model", "Calls", "Input", "Output", "Cost")
	var (
		total    float64
		unpriced []string
	)
	for _, u := range rows {
		cost := "?"
		if c := llm.LookupCost(u.Model); c != nil {
			usd := c.Cost(u.InputTokens, u.OutputTokens)
			total += usd
			cost = formatCost(usd)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		t.Row(truncate(u.Model, 32), strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
			strconv.Itoa(u.OutputTokens), cost)
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	t.Row(label, "", "", "", formatCost(total))
	return t.String(), unpriced
}

// truncate shortens s to at most n terminal cells.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "…")
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only calls with this purpose (e.g. question-draft)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
