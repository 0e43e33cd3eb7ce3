package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/questiongen"
	"github.com/abhisek/qbank/internal/screens/detail"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft questions on a topic with the configured LLM provider",
	Long: `generate asks the LLM provider for question drafts, checks each one with the
same rules as authoring and prints the ones that pass. Drafts are only added
to the bank with --save.

The provider is chosen by llm.provider (QBANK_LLM_PROVIDER). When it has no
API key, the first of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY and
OPENROUTER_API_KEY that is set is used.`,
	Example: `  qbank generate --kind mcq --topic "refraction of light" --count 5 --segment k12 --group c10 --subject phy10
  qbank generate --kind passage --topic "photosynthesis" --save`,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		marks, _ := cmd.Flags().GetInt("marks")
		tagList, _ := cmd.Flags().GetStringSlice("tag")
		save, _ := cmd.Flags().GetBool("save")

		input := questiongen.Input{
			Topic:          topic,
			Count:          count,
			Marks:          marks,
			Classification: classFromFlags(cmd),
			Tags:           tagList,
		}
		if k, _ := cmd.Flags().GetString("kind"); k != "" {
			kind, err := question.ParseKind(k)
			if err != nil {
				return err
			}
			input.Kind = kind
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		llmCfg, ok := llm.Discover(e.cfg.LLM)
		if !ok {
			return fmt.Errorf("no API key for LLM provider %q: set QBANK_LLM_%s_API_KEY",
				llmCfg.Provider, strings.ToUpper(llmCfg.Provider))
		}

		ctx := cmd.Context()
		provider, err := llm.NewProvider(ctx, llmCfg, e.store.EventRepo(), e.log)
		if err != nil {
			return err
		}

		genCfg := questiongen.DefaultConfig()
		genCfg.Timeout = llmCfg.Timeout

		existing, err := e.bank.Find(ctx, bank.Filter{Classification: input.Classification, Kind: input.Kind},
			bank.Page{Size: genCfg.MaxExisting})
		if err != nil {
			return err
		}
		for _, q := range existing.Records {
			input.Existing = append(input.Existing, q.Body)
		}

		e.log.Info("generating drafts", "provider", llmCfg.Provider, "model", provider.ModelID(),
			"topic", topic, "count", input.Count)
		gen := questiongen.New(provider, e.bank, genCfg)
		res, err := gen.Generate(ctx, input)
		if res != nil {
			for _, r := range res.Rejected {
				fmt.Fprintf(os.Stderr, "rejected %q: %s\n", truncate(oneLine(r.Draft.Body), 50), r.Reason)
			}
		}
		if err != nil {
			var rl *llm.ErrRateLimit
			if errors.As(err, &rl) {
				return fmt.Errorf("provider is rate limiting requests, try again later: %w", err)
			}
			return err
		}

		for i, q := range res.Drafts {
			if i > 0 {
				fmt.Println(strings.Repeat("─", 40))
			}
			if save {
				id, err := e.bank.Create(ctx, q)
				if err != nil {
					return describeError(err)
				}
				q.ID = id
			}
			fmt.Println(detail.Format(q, e.cfg.Render.Width))
		}

		if save {
			fmt.Printf("\nSaved %d drafts\n", len(res.Drafts))
		} else {
			fmt.Printf("\n%d drafts (not saved, rerun with --save to keep them)\n", len(res.Drafts))
		}
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.String("kind", "", "Question type: mcq, descriptive or passage (default: any mix)")
	f.String("topic", "", "Topic to draft questions on")
	f.Int("count", 3, fmt.Sprintf("Number of drafts, at most %d", questiongen.MaxCount))
	f.Int("marks", 0, "Suggested marks per question (0 lets the model choose)")
	f.StringSlice("tag", nil, "Tag added to every draft (repeatable or comma separated)")
	f.Bool("save", false, "Add the accepted drafts to the bank")
	f.String("provider", "", "LLM provider: anthropic, openai, gemini or openrouter (overrides llm.provider)")
	addClassFlags(generateCmd)
	_ = generateCmd.MarkFlagRequired("topic")
}
