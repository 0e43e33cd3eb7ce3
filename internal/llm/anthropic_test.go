package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// messagesServer replies to every Messages call with status and body, and
// hands the decoded request to seen.
func messagesServer(t *testing.T, status int, body any, seen func(map[string]any)) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if seen != nil {
			seen(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(ProviderConfig{APIKey: "test-key", Model: "claude-haiku", BaseURL: srv.URL})
	require.NoError(t, err)
	return p
}

func message(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func apiError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	var got map[string]any
	p := messagesServer(t, http.StatusOK, message(`{"questions":[]}`, "end_turn"), func(r map[string]any) { got = r })
	assert.Equal(t, "claude-haiku-4-5", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:      "You draft exam questions.",
		Messages:    []Message{{Role: RoleUser, Content: "Two questions on thermodynamics."}},
		MaxTokens:   512,
		Temperature: 0.4,
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"questions":[]}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
	assert.Equal(t, StopEnd, resp.StopReason)

	assert.Equal(t, "claude-haiku-4-5", got["model"])
	assert.EqualValues(t, 512, got["max_tokens"])
	assert.InDelta(t, 0.4, got["temperature"], 1e-9)
	assert.NotEmpty(t, got["system"])
}

func TestAnthropicProvider_MaxTokensIsError(t *testing.T) {
	p := messagesServer(t, http.StatusOK, message(`{"questions":[{"bo`, "max_tokens"), nil)

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 16,
	})
	var mt *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &mt)
	assert.Equal(t, `{"questions":[{"bo`, string(mt.Content))
}

func TestAnthropicProvider_NoTextBlock(t *testing.T) {
	body := message("", "end_turn")
	body["content"] = []map[string]any{}
	p := messagesServer(t, http.StatusOK, body, nil)

	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}, MaxTokens: 16})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestAnthropicProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   string
		target any
	}{
		{http.StatusTooManyRequests, "rate_limit_error", new(*ErrRateLimit)},
		{http.StatusUnauthorized, "authentication_error", new(*ErrAuth)},
		{http.StatusForbidden, "permission_error", new(*ErrAuth)},
		{http.StatusInternalServerError, "api_error", new(*ErrProviderUnavailable)},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			calls := 0
			p := messagesServer(t, tt.status, apiError(tt.kind), func(map[string]any) { calls++ })

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			assert.ErrorAs(t, err, tt.target)
			assert.Equal(t, 1, calls, "the SDK must not retry on its own")
		})
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	_, err := NewAnthropicProvider(ProviderConfig{Model: "claude-haiku"})
	assert.Error(t, err)
}
