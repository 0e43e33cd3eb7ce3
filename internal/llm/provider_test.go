package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "question-draft")
	if p := PurposeFrom(ctx); p != "question-draft" {
		t.Fatalf("expected 'question-draft', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	withKey := func(provider string) Config {
		cfg := DefaultConfig()
		cfg.Provider = provider
		cfg.Credentials[provider] = ProviderConfig{APIKey: "sk-test"}
		return cfg
	}
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", withKey(ProviderAnthropic), false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", withKey(ProviderOpenAI), false},
		{"openrouter with key", withKey(ProviderOpenRouter), false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateNamesSetting(t *testing.T) {
	err := Config{Provider: ProviderGemini}.Validate()
	if err == nil || !strings.Contains(err.Error(), "QBANK_LLM_GEMINI_API_KEY") {
		t.Fatalf("expected error naming the env variable, got %v", err)
	}
}

func TestConfig_ValidateWrapsNotConfigured(t *testing.T) {
	err := Config{Provider: ProviderAnthropic}.Validate()
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		provider, name, want string
	}{
		{ProviderAnthropic, "claude-haiku", "claude-haiku-4-5"},
		{ProviderAnthropic, "claude-sonnet-4-20250514", "claude-sonnet-4-20250514"},
		{ProviderOpenAI, "gpt-mini", "gpt-4o-mini"},
		{ProviderGemini, "gemini-flash", "gemini-2.5-flash"},
		{ProviderGemini, "claude-haiku", "claude-haiku"},
		{ProviderOpenRouter, "gemini-flash", "gemini-flash"},
	}
	for _, tt := range tests {
		if got := ResolveModel(tt.provider, tt.name); got != tt.want {
			t.Errorf("ResolveModel(%q, %q) = %q, want %q", tt.provider, tt.name, got, tt.want)
		}
	}
}

func TestDiscover(t *testing.T) {
	for _, vk := range vendorKeys {
		t.Setenv(vk.env, "")
	}

	cfg := DefaultConfig()
	if _, ok := Discover(cfg); ok {
		t.Fatal("expected no credentials")
	}

	t.Setenv("OPENAI_API_KEY", "sk-env")
	got, ok := Discover(cfg)
	if !ok {
		t.Fatal("expected OPENAI_API_KEY to be discovered")
	}
	if got.Provider != ProviderOpenAI || got.Selected().APIKey != "sk-env" {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.Selected().Model != "gpt-4o-mini" {
		t.Fatalf("default model should be kept, got %q", got.Selected().Model)
	}
	if cfg.Credentials[ProviderOpenAI].APIKey != "" {
		t.Fatal("Discover must not modify its input")
	}

	// An explicit key for the selected provider wins over the environment.
	explicit := DefaultConfig()
	explicit.Credentials[ProviderAnthropic] = ProviderConfig{APIKey: "sk-ant"}
	got, _ = Discover(explicit)
	if got.Provider != ProviderAnthropic {
		t.Fatalf("expected anthropic, got %q", got.Provider)
	}
}
