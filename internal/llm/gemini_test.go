package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildGeminiSchema_DraftShape(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"body":  map[string]any{"type": "string", "description": "Question text"},
			"marks": map[string]any{"type": "integer"},
			"type":  map[string]any{"type": "string", "enum": []any{"mcq", "descriptive", "passage"}},
			"topicTags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"ratio": map[string]any{"type": "number"},
		},
		"required":             []any{"body", "marks"},
		"additionalProperties": false,
	}

	s := buildGeminiSchema(def)

	assert.Equal(t, genai.TypeObject, s.Type)
	require.Len(t, s.Properties, 5)
	assert.Equal(t, genai.TypeString, s.Properties["body"].Type)
	assert.Equal(t, "Question text", s.Properties["body"].Description)
	assert.Equal(t, genai.TypeInteger, s.Properties["marks"].Type)
	assert.Equal(t, genai.TypeNumber, s.Properties["ratio"].Type)
	assert.Equal(t, []string{"mcq", "descriptive", "passage"}, s.Properties["type"].Enum)
	assert.Equal(t, genai.TypeArray, s.Properties["topicTags"].Type)
	require.NotNil(t, s.Properties["topicTags"].Items)
	assert.Equal(t, genai.TypeString, s.Properties["topicTags"].Items.Type)
	assert.Equal(t, []string{"body", "marks"}, s.Required)
	assert.Empty(t, s.PropertyOrdering, "ordering is only set when every property is required")
}

func TestBuildGeminiSchema_OrdersRequiredProperties(t *testing.T) {
	s := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"body":  map[string]any{"type": "string"},
			"marks": map[string]any{"type": "integer"},
		},
		"required": []any{"body", "marks"},
	})
	assert.Equal(t, []string{"body", "marks"}, s.PropertyOrdering)
}

func TestGeminiConfig(t *testing.T) {
	gc := geminiConfig(Request{
		System:      "You draft exam questions.",
		MaxTokens:   1024,
		Temperature: 0.3,
		Schema:      &Schema{Name: "question-drafts", Definition: map[string]any{"type": "object"}},
	})
	assert.EqualValues(t, 1024, gc.MaxOutputTokens)
	require.NotNil(t, gc.Temperature)
	assert.InDelta(t, 0.3, *gc.Temperature, 1e-6)
	require.NotNil(t, gc.SystemInstruction)
	assert.Equal(t, "You draft exam questions.", gc.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", gc.ResponseMIMEType)
	assert.Equal(t, genai.TypeObject, gc.ResponseSchema.Type)

	plain := geminiConfig(Request{MaxTokens: 10})
	assert.Nil(t, plain.Temperature)
	assert.Nil(t, plain.ResponseSchema)
}

func TestGeminiContents_MapsRoles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "draft"},
		{Role: RoleAssistant, Content: "{}"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
}
