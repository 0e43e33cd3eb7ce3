// Package llm drafts structured JSON through a hosted model. Providers for
// Anthropic, OpenAI (and OpenRouter) and Gemini share one interface; the
// factory stacks retry and event logging on top of the selected one.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is one configured model endpoint.
type Provider interface {
	// Generate runs req. With req.Schema set the output is requested in
	// that shape and validated before it is returned. Output cut off by
	// the token limit is an *ErrMaxTokensExceeded, never a Response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, after alias resolution.
	ModelID() string
}

// Request is a single-turn prompt in practice: a system prompt and one
// user message.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, is passed to the provider's structured output
	// mode. Without it Content is whatever text the model produced.
	Schema *Schema

	MaxTokens int

	// Temperature is in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON schema, e.g. "question-drafts". Definition is the
// schema document itself.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a successful generation.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the call, which may be a dated
	// snapshot of ModelID.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Stop reasons, normalised across providers.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// complete turns a provider's raw output into a Response: truncated
// output is rejected, then the output is checked against req.Schema.
func complete(req Request, content json.RawMessage, stop string, usage Usage, model string) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
