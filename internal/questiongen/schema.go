package questiongen

import "github.com/abhisek/qbank/internal/llm"

func object(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func field(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func optionsField() map[string]any {
	return map[string]any{
		"type": "array",
		"items": object(map[string]any{
			"text":      field("string", "Option text shown after its letter"),
			"isCorrect": field("boolean", "True for the single correct option"),
		}),
		"description": "Answer options for an mcq, in display order. Empty array for other types.",
	}
}

// DraftsSchema is the JSON schema the provider must answer with. Every
// property is required so that strict structured-output modes accept it;
// non-applicable fields are sent empty.
var DraftsSchema = &llm.Schema{
	Name:        "question-drafts",
	Description: "Exam question drafts for a question bank",
	Definition: object(map[string]any{
		"questions": map[string]any{
			"type": "array",
			"items": object(map[string]any{
				"type": map[string]any{
					"type":        "string",
					"enum":        []any{"mcq", "descriptive", "passage"},
					"description": "Question type",
				},
				"body":        field("string", "Question text, or the passage text for a passage"),
				"marks":       field("integer", "Marks for the question. 0 for a passage; its children carry the marks."),
				"explanation": field("string", "Model answer or worked solution"),
				"topicTags": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Two to four short topic tags",
				},
				"options": optionsField(),
				"children": map[string]any{
					"type": "array",
					"items": object(map[string]any{
						"type": map[string]any{
							"type": "string",
							"enum": []any{"mcq", "descriptive"},
						},
						"body":    field("string", "Sub-question text"),
						"marks":   field("integer", "Marks for the sub-question"),
						"options": optionsField(),
					}),
					"description": "Sub-questions of a passage. Empty array for other types.",
				},
			}),
		},
	}),
}
