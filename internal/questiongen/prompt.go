package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced teacher drafting questions for an exam question bank.

Rules:
- Write clear, self-contained questions for the requested topic and level.
- "mcq" questions have two to six options with exactly one marked correct. Distractors should reflect common misconceptions.
- "descriptive" questions have no options. Put a concise model answer in the explanation.
- "passage" questions carry a reading passage in the body, marks 0, no options, and two to five children. Each child is an "mcq" or "descriptive" sub-question with its own marks.
- Children never contain further children.
- Marks are whole numbers and reflect the effort the answer needs.
- Do not repeat or paraphrase any question from the "already in the bank" list.`

// buildUserMessage constructs the request from Input and Config limits.
func buildUserMessage(input Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", strings.TrimSpace(input.Topic))
	fmt.Fprintf(&b, "Number of questions: %d\n", input.Count)
	if input.Kind != "" {
		fmt.Fprintf(&b, "Question type: %s\n", input.Kind)
	} else {
		b.WriteString("Question type: any mix of mcq, descriptive and passage\n")
	}
	if input.Marks > 0 {
		fmt.Fprintf(&b, "Marks per question: %d\n", input.Marks)
	}
	if c := input.Classification; !c.IsEmpty() {
		var levels []string
		for _, id := range []string{c.SegmentID, c.GroupID, c.SubjectID} {
			if id != "" {
				levels = append(levels, id)
			}
		}
		fmt.Fprintf(&b, "Level: %s\n", strings.Join(levels, " / "))
	}
	if len(input.Tags) > 0 {
		fmt.Fprintf(&b, "Include tags: %s\n", strings.Join(input.Tags, ", "))
	}

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(input.Existing, cfg.MaxExisting))

	return b.String()
}
