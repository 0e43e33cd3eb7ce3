package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/importer"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/screens/detail"
	"github.com/abhisek/qbank/internal/taxonomy"
)

var questionCmd = &cobra.Command{
	Use:     "question",
	Aliases: []string{"q"},
	Short:   "Author and inspect questions",
}

var questionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a question",
	Example: `  qbank question add --kind mcq --body "Capital of France?" --options "Paris*; Lyon; Nice" --marks 1
  qbank question add --kind passage --body "Read the text..." \
      --child "descriptive|2|What is the main idea?" --child "mcq|1|Tone?|Calm*; Angry"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := questionFromFlags(cmd)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.bank.Create(cmd.Context(), q)
		if err != nil {
			return describeError(err)
		}
		fmt.Println(id)
		return nil
	},
}

var questionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a question with its options and sub-questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.bank.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(detail.Format(*q, e.cfg.Render.Width))
		return nil
	},
}

var questionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		if size <= 0 {
			size = bank.DefaultPageSize
		}
		page = max(page, 1)

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.bank.Find(cmd.Context(), f, bank.Page{Number: page - 1, Size: size})
		if err != nil {
			return err
		}
		if res.Total == 0 {
			fmt.Println("No questions found.")
			return nil
		}
		printQuestions(os.Stdout, res.Records)
		pages := (res.Total + size - 1) / size
		fmt.Printf("\nPage %d of %d (%d questions)\n", page, pages, res.Total)
		return nil
	},
}

var questionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a question and, for a passage, its sub-questions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.bank.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

var questionImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: `Create questions from a {"questions":[...]} file`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		rep, err := importer.Import(cmd.Context(), f, e.bank, importer.Options{DryRun: dryRun, Logger: e.log})
		if err != nil {
			var se *importer.SchemaError
			if errors.As(err, &se) {
				for _, p := range se.Problems {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", p.Path, p.Message)
				}
				return fmt.Errorf("%s does not match the import format", args[0])
			}
			return err
		}

		for _, fail := range rep.Failures {
			fmt.Fprintf(os.Stderr, "#%d %q: %v\n", fail.Index+1, truncate(oneLine(fail.Body), 40), fail.Err)
		}
		if rep.DryRun {
			fmt.Printf("%d of %d questions are valid (dry run, nothing created)\n", rep.Valid, rep.Total())
		} else {
			fmt.Printf("Created %d of %d questions\n", len(rep.Created), rep.Total())
		}
		if len(rep.Failures) > 0 {
			return fmt.Errorf("%d questions failed", len(rep.Failures))
		}
		return nil
	},
}

var questionExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching questions in the import format",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFromFlags(cmd)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var all []question.Question
		for n := 0; ; n++ {
			res, err := e.bank.Find(cmd.Context(), f, bank.Page{Number: n, Size: exportPageSize})
			if err != nil {
				return err
			}
			all = append(all, res.Records...)
			if len(res.Records) < exportPageSize || len(all) >= res.Total {
				break
			}
		}

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		if err := importer.Export(w, all); err != nil {
			return err
		}
		if w != os.Stdout {
			fmt.Fprintf(os.Stderr, "Exported %d questions to %s\n", len(all), out)
		}
		return nil
	},
}

const exportPageSize = 200

func init() {
	af := questionAddCmd.Flags()
	af.String("kind", string(question.KindMCQ), "Question type: mcq, descriptive or passage")
	af.String("body", "", "Question text")
	af.Int("marks", 1, "Marks (ignored for a passage, whose marks come from its sub-questions)")
	af.String("options", "", `MCQ options separated by ";", the correct one suffixed with "*"`)
	af.String("explanation", "", "Explanation shown with the answer")
	af.StringSlice("tag", nil, "Topic tag (repeatable or comma separated)")
	af.StringArray("child", nil, `Passage sub-question as "kind|marks|body[|options]" (repeatable)`)
	addClassFlags(questionAddCmd)
	_ = questionAddCmd.MarkFlagRequired("body")

	lf := questionListCmd.Flags()
	lf.Int("page", 1, "Page number, starting at 1")
	lf.Int("size", bank.DefaultPageSize, "Questions per page")
	addFilterFlags(questionListCmd)

	questionImportCmd.Flags().Bool("dry-run", false, "Validate every question without creating any")

	questionExportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	addFilterFlags(questionExportCmd)

	questionCmd.AddCommand(questionAddCmd)
	questionCmd.AddCommand(questionShowCmd)
	questionCmd.AddCommand(questionListCmd)
	questionCmd.AddCommand(questionDeleteCmd)
	questionCmd.AddCommand(questionImportCmd)
	questionCmd.AddCommand(questionExportCmd)
}

func addClassFlags(cmd *cobra.Command) {
	cmd.Flags().String("segment", "", "Segment id")
	cmd.Flags().String("group", "", "Group id")
	cmd.Flags().String("subject", "", "Subject id")
}

func addFilterFlags(cmd *cobra.Command) {
	addClassFlags(cmd)
	cmd.Flags().String("kind", "", "Only this question type")
	cmd.Flags().String("tag", "", "Tag substring")
	cmd.Flags().String("text", "", "Body substring")
}

func classFromFlags(cmd *cobra.Command) taxonomy.Classification {
	seg, _ := cmd.Flags().GetString("segment")
	grp, _ := cmd.Flags().GetString("group")
	sub, _ := cmd.Flags().GetString("subject")
	return taxonomy.Classification{
		SegmentID: strings.TrimSpace(seg),
		GroupID:   strings.TrimSpace(grp),
		SubjectID: strings.TrimSpace(sub),
	}
}

func filterFromFlags(cmd *cobra.Command) (bank.Filter, error) {
	f := bank.Filter{Classification: classFromFlags(cmd)}
	if k, _ := cmd.Flags().GetString("kind"); k != "" {
		kind, err := question.ParseKind(k)
		if err != nil {
			return f, err
		}
		f.Kind = kind
	}
	f.Tag, _ = cmd.Flags().GetString("tag")
	f.Text, _ = cmd.Flags().GetString("text")
	return f, nil
}

func questionFromFlags(cmd *cobra.Command) (question.Question, error) {
	k, _ := cmd.Flags().GetString("kind")
	kind, err := question.ParseKind(k)
	if err != nil {
		return question.Question{}, err
	}
	body, _ := cmd.Flags().GetString("body")
	marks, _ := cmd.Flags().GetInt("marks")
	opts, _ := cmd.Flags().GetString("options")
	expl, _ := cmd.Flags().GetString("explanation")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	children, _ := cmd.Flags().GetStringArray("child")

	q := question.Question{
		Kind:           kind,
		Body:           body,
		Marks:          marks,
		Explanation:    expl,
		Tags:           tags,
		Classification: classFromFlags(cmd),
		Options:        question.ParseOptionList(opts),
	}
	for i, raw := range children {
		c, err := parseChild(raw)
		if err != nil {
			return q, fmt.Errorf("--child #%d: %w", i+1, err)
		}
		q.Children = append(q.Children, c)
	}
	q.Normalize()
	return q, nil
}

// parseChild reads "kind|marks|body[|options]".
func parseChild(raw string) (question.Child, error) {
	parts := strings.SplitN(raw, "|", 4)
	if len(parts) < 3 {
		return question.Child{}, fmt.Errorf("want kind|marks|body[|options], got %q", raw)
	}
	kind, err := question.ParseKind(strings.TrimSpace(parts[0]))
	if err != nil {
		return question.Child{}, err
	}
	marks, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return question.Child{}, fmt.Errorf("marks %q is not a number", parts[1])
	}
	c := question.Child{Kind: kind, Marks: marks, Body: strings.TrimSpace(parts[2])}
	if len(parts) == 4 {
		c.Options = question.ParseOptionList(parts[3])
	}
	return c, nil
}

func printQuestions(w io.Writer, qs []question.Question) {
	fmt.Fprintf(w, "%-36s  %-11s  %5s  %-40s  %s\n", "ID", "Type", "Marks", "Body", "Tags")
	fmt.Fprintln(w, strings.Repeat("─", 110))
	for _, q := range qs {
		fmt.Fprintf(w, "%-36s  %-11s  %5d  %-40s  %s\n",
			q.ID, q.Kind.Label(), q.TotalMarks(),
			truncate(oneLine(q.Body), 40), strings.Join(q.Tags, ", "))
	}
}

// describeError expands a validation error into one line per field.
func describeError(err error) error {
	var ve *bank.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for _, fe := range ve.Fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Error)
	}
	return errors.New("question is not valid")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
