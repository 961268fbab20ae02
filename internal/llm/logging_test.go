package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mizuki/toeflsim/internal/storage"
)

// memorySink collects request log entries for assertions.
type memorySink struct {
	entries []storage.RequestLogEntry
}

func (s *memorySink) Append(_ context.Context, e storage.RequestLogEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func TestLogging_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{
			Content: json.RawMessage(`{"ok":true}`),
			Usage:   Usage{InputTokens: 120, OutputTokens: 40, TotalTokens: 160},
		},
	)
	sink := &memorySink{}
	p := WithLogging(mock, sink)

	ctx := WithPurpose(context.Background(), "writing_grading")
	if _, err := p.Generate(ctx, Request{System: "grade this essay"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if !e.Success {
		t.Error("expected Success=true")
	}
	if e.Purpose != "writing_grading" {
		t.Errorf("Purpose = %q", e.Purpose)
	}
	if e.InputTokens != 120 || e.OutputTokens != 40 {
		t.Errorf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	if !strings.Contains(e.RequestBody, "grade this essay") {
		t.Errorf("RequestBody missing system prompt: %q", e.RequestBody)
	}
	if e.ResponseBody != `{"ok":true}` {
		t.Errorf("ResponseBody = %q", e.ResponseBody)
	}
}

func TestLogging_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	sink := &memorySink{}
	p := WithLogging(mock, sink)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(sink.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Success {
		t.Error("expected Success=false")
	}
	if e.ErrorMessage == "" {
		t.Error("expected ErrorMessage")
	}
	if e.Purpose != "unknown" {
		t.Errorf("Purpose = %q, want unknown", e.Purpose)
	}
}
