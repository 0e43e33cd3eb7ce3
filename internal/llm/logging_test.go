package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/qbank/internal/store"
)

func openEventStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type failingEventRepo struct {
	store.EventRepo
}

func (failingEventRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("database is locked")
}

func TestLogging_RecordsEvents(t *testing.T) {
	s := openEventStore(t)
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[]}`), Usage: Usage{InputTokens: 120, OutputTokens: 40}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, ProviderAnthropic, s.EventRepo(), nil)
	ctx := WithPurpose(context.Background(), "question-draft")

	req := Request{
		System:   "You draft exam questions.",
		Messages: []Message{{Role: RoleUser, Content: "Two MCQs on optics."}},
		Schema:   &Schema{Name: "question-drafts", Definition: map[string]any{"type": "object"}},
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected provider error to pass through")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	failed, ok := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("newest event should be the failure: %+v", failed)
	}
	if !ok.Success || ok.InputTokens != 120 || ok.OutputTokens != 40 {
		t.Fatalf("unexpected success event: %+v", ok)
	}
	if ok.Provider != ProviderAnthropic || ok.Model != "mock" || ok.Purpose != "question-draft" {
		t.Fatalf("unexpected labels: %+v", ok.LLMRequestEventData)
	}
	for _, want := range []string{"[system]", "[user]", "Two MCQs on optics.", "[schema: question-drafts]"} {
		if !strings.Contains(ok.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, ok.RequestBody)
		}
	}
	if ok.ResponseBody != `{"questions":[]}` {
		t.Fatalf("unexpected response body %q", ok.ResponseBody)
	}
}

func TestLogging_EventFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, failingEventRepo{}, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, nil, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestLogging_KeepsRawOutputOfRejectedResponse(t *testing.T) {
	s := openEventStore(t)
	mock := NewMockProvider(MockResponse{Err: &ErrInvalidResponse{
		Content: json.RawMessage(`{"questions":"oops"}`),
		Err:     errors.New("schema question-drafts: expected array"),
	}})
	p := WithLogging(mock, ProviderGemini, s.EventRepo(), nil)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected invalid response error")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ResponseBody != `{"questions":"oops"}` {
		t.Fatalf("expected raw output to be kept, got %q", events[0].ResponseBody)
	}
	if events[0].Purpose != UnknownPurpose {
		t.Fatalf("expected purpose %q, got %q", UnknownPurpose, events[0].Purpose)
	}
}
