package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func optionSchema() *Schema {
	return &Schema{
		Name:        "test-option",
		Description: "One MCQ option",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":      map[string]any{"type": "string", "minLength": 1},
				"isCorrect": map[string]any{"type": "boolean"},
				"kind":      map[string]any{"type": "string", "enum": []any{"mcq", "descriptive"}},
			},
			"required": []any{"text", "isCorrect"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text":"Paris","isCorrect":true,"kind":"mcq"}`, false},
		{"optional field omitted", `{"text":"Lyon","isCorrect":false}`, false},
		{"missing required", `{"text":"Nice"}`, true},
		{"wrong type", `{"text":"Nice","isCorrect":"yes"}`, true},
		{"enum violation", `{"text":"Nice","isCorrect":false,"kind":"essay"}`, true},
		{"blank text", `{"text":"","isCorrect":false}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty response", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(optionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T", err)
			}
			if string(invErr.Content) != tt.raw {
				t.Fatalf("error should carry the raw content, got %q", invErr.Content)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name:        "test-nested",
		Description: "Questions with options",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"body":  map[string]any{"type": "string"},
							"marks": map[string]any{"type": "integer", "minimum": 0},
						},
						"required": []any{"body", "marks"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}

	valid := json.RawMessage(`{"questions":[{"body":"Unit of force?","marks":1}]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"questions":[{"body":"Unit of force?","marks":-1}]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for negative marks")
	}
}
