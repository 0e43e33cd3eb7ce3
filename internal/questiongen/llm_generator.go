package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/qbank/internal/llm"
	"github.com/abhisek/qbank/internal/question"
	"github.com/abhisek/qbank/internal/tags"
)

// Purpose labels the LLM events recorded for drafting.
const Purpose = "question-draft"

// ErrNoDrafts is returned when the provider answered but every draft was
// rejected.
var ErrNoDrafts = errors.New("no usable drafts")

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	checker  Checker
	config   Config
}

// New creates an LLMGenerator. checker may be nil, in which case only the
// structural checks here are applied.
func New(provider llm.Provider, checker Checker, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, checker: checker, config: cfg}
}

type optionOutput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type childOutput struct {
	Type    string         `json:"type"`
	Body    string         `json:"body"`
	Marks   int            `json:"marks"`
	Options []optionOutput `json:"options"`
}

type draftOutput struct {
	Type        string         `json:"type"`
	Body        string         `json:"body"`
	Marks       int            `json:"marks"`
	Explanation string         `json:"explanation"`
	TopicTags   []string       `json:"topicTags"`
	Options     []optionOutput `json:"options"`
	Children    []childOutput  `json:"children"`
}

type draftsOutput struct {
	Questions []draftOutput `json:"questions"`
}

// Generate requests input.Count drafts and validates each one.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) (*Result, error) {
	if strings.TrimSpace(input.Topic) == "" {
		return nil, errors.New("topic is required")
	}
	if input.Count <= 0 {
		input.Count = 1
	}
	if input.Count > MaxCount {
		return nil, fmt.Errorf("at most %d drafts per request, asked for %d", MaxCount, input.Count)
	}
	if input.Kind != "" {
		if _, err := question.ParseKind(string(input.Kind)); err != nil {
			return nil, err
		}
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      DraftsSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw draftsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	seen := make(map[string]bool, len(input.Existing)+len(raw.Questions))
	for _, body := range input.Existing {
		seen[fingerprint(body)] = true
	}

	res := &Result{Drafts: []question.Question{}}
	for _, out := range raw.Questions {
		q := toQuestion(out, input)

		if reason := g.check(ctx, q, input); reason != "" {
			res.Rejected = append(res.Rejected, Rejection{Draft: q, Reason: reason})
			continue
		}
		fp := fingerprint(q.Body)
		if seen[fp] {
			res.Rejected = append(res.Rejected, Rejection{Draft: q, Reason: "duplicates an existing question"})
			continue
		}
		seen[fp] = true
		res.Drafts = append(res.Drafts, q)
	}

	if len(res.Drafts) == 0 {
		return res, fmt.Errorf("%w: %d of %d rejected", ErrNoDrafts, len(res.Rejected), len(raw.Questions))
	}
	return res, nil
}

func (g *LLMGenerator) check(ctx context.Context, q question.Question, input Input) string {
	if input.Kind != "" && q.Kind != input.Kind {
		return fmt.Sprintf("asked for %s, got %s", input.Kind, q.Kind)
	}
	if len(q.Body) > maxBodyLen {
		return fmt.Sprintf("body exceeds %d characters", maxBodyLen)
	}
	if len(q.Options) > maxOptionCount {
		return fmt.Sprintf("more than %d options", maxOptionCount)
	}
	if q.Kind == question.KindMCQ && q.Options.CorrectIndex() < 0 {
		return "no option is marked correct"
	}
	for i, c := range q.Children {
		if c.Kind == question.KindMCQ && c.Options.CorrectIndex() < 0 {
			return fmt.Sprintf("child %d has no option marked correct", i+1)
		}
	}
	if g.checker != nil {
		if err := g.checker.Validate(ctx, q); err != nil {
			return err.Error()
		}
	}
	return ""
}

// toQuestion maps the model output onto a draft. Options and children the
// type does not allow are kept so validation reports them.
func toQuestion(out draftOutput, input Input) question.Question {
	q := question.Question{
		Kind:           question.Kind(strings.ToLower(strings.TrimSpace(out.Type))),
		Body:           strings.TrimSpace(out.Body),
		Marks:          out.Marks,
		Explanation:    strings.TrimSpace(out.Explanation),
		Tags:           tags.Normalize(append(append([]string{}, input.Tags...), out.TopicTags...)),
		Classification: input.Classification,
		Options:        toOptions(out.Options),
	}
	if q.Kind == question.KindPassage {
		q.Marks = 0
	}
	for _, c := range out.Children {
		q.Children = append(q.Children, question.Child{
			Kind:    question.Kind(strings.ToLower(strings.TrimSpace(c.Type))),
			Body:    strings.TrimSpace(c.Body),
			Marks:   c.Marks,
			Options: toOptions(c.Options),
		})
	}
	return q
}

func toOptions(in []optionOutput) question.Options {
	if len(in) == 0 {
		return nil
	}
	opts := make(question.Options, len(in))
	for i, o := range in {
		opts[i] = question.Option{Text: strings.TrimSpace(o.Text), IsCorrect: o.IsCorrect}
	}
	return opts
}
