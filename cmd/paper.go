package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/composer"
	"github.com/abhisek/qbank/internal/render"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Compose, list and print exam papers",
}

var paperListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved papers, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		papers, err := e.store.PaperRepo().List(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("list papers: %w", err)
		}
		if len(papers) == 0 {
			fmt.Println("No saved papers.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-30s  %9s  %5s\n", "ID", "Saved", "Title", "Questions", "Marks")
		fmt.Println(strings.Repeat("─", 108))
		for _, p := range papers {
			fmt.Printf("%-36s  %-19s  %-30s  %9d  %5d\n",
				p.ID,
				p.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				truncate(p.Title, 30),
				p.Questions,
				p.TotalMarks,
			)
		}
		return nil
	},
}

var paperShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved paper's details and question list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.store.PaperRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get paper %s: %w", args[0], err)
		}

		fmt.Printf("ID:           %s\n", p.ID)
		fmt.Printf("Title:        %s\n", p.Meta.Title)
		if p.Meta.InstituteLabel != "" {
			fmt.Printf("Institute:    %s\n", p.Meta.InstituteLabel)
		}
		if p.Meta.Duration != "" {
			fmt.Printf("Duration:     %s\n", p.Meta.Duration)
		}
		fmt.Printf("Saved:        %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Total marks:  %d\n", p.TotalMarks)
		if p.Meta.Instructions != "" {
			fmt.Printf("Instructions: %s\n", oneLine(p.Meta.Instructions))
		}

		fmt.Println()
		for i, en := range p.Entries {
			fmt.Printf("%3d.  %-11s  %3d marks  %s\n",
				i+1, en.Question.Kind.Label(), en.Marks, truncate(oneLine(en.Question.Body), 60))
		}
		return nil
	},
}

var paperRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Print a saved paper as paginated plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		p, err := e.store.PaperRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get paper %s: %w", args[0], err)
		}
		return writeText(out, render.Render(*p, e.cfg.Render))
	},
}

var paperCreateCmd = &cobra.Command{
	Use:   "create <question-id[=marks]>...",
	Short: "Compose and save a paper from question ids",
	Example: `  qbank paper create --title "Unit Test 1" --duration "1 hour" 3f2a...=5 9c1d...`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var meta composer.Meta
		meta.Title, _ = cmd.Flags().GetString("title")
		meta.InstituteLabel, _ = cmd.Flags().GetString("institute")
		meta.Duration, _ = cmd.Flags().GetString("duration")
		meta.Instructions, _ = cmd.Flags().GetString("instructions")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		comp := composer.New()
		comp.SetMeta(meta)
		for _, arg := range args {
			id, marks, hasMarks := strings.Cut(arg, "=")
			q, err := e.bank.Get(ctx, id)
			if err != nil {
				return err
			}
			if !comp.Add(*q) {
				return fmt.Errorf("question %s is listed twice", id)
			}
			if hasMarks {
				comp.SetMarksInput(q.ID, marks)
			}
		}

		p, err := comp.Save(ctx, e.store.PaperRepo())
		if err != nil {
			return err
		}
		e.log.Info("paper saved", "id", p.ID, "questions", len(p.Entries), "total_marks", p.TotalMarks)
		fmt.Printf("Saved %s (%d questions, %d marks)\n", p.ID, len(p.Entries), p.TotalMarks)
		return nil
	},
}

func init() {
	paperListCmd.Flags().IntP("limit", "n", 20, "Number of papers to show")

	rf := paperRenderCmd.Flags()
	rf.Int("width", 0, "Page width in characters (overrides render.width)")
	rf.Int("height", 0, "Lines per page (overrides render.page_height)")
	rf.StringP("out", "o", "", "Output file (default stdout)")

	cf := paperCreateCmd.Flags()
	cf.String("title", "", "Paper title (default \"Untitled paper\")")
	cf.String("institute", "", "Institute name printed in the header")
	cf.String("duration", "", `Duration, e.g. "2 hours"`)
	cf.String("instructions", "", "Instructions printed under the header")

	paperCmd.AddCommand(paperListCmd)
	paperCmd.AddCommand(paperShowCmd)
	paperCmd.AddCommand(paperRenderCmd)
	paperCmd.AddCommand(paperCreateCmd)
}

// writeText writes text to path, or to stdout when path is empty or "-".
func writeText(path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Print(text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
