package contentgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/fingerprint"
	"github.com/mizuki/toeflsim/internal/history"
	"github.com/mizuki/toeflsim/internal/llm"
	"github.com/mizuki/toeflsim/internal/storage"
)

func readingJSON(title, body string) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"title": %q,
		"paragraphs": [%q],
		"questions": [{
			"questionText": "What is the main idea?",
			"type": "SINGLE_CHOICE",
			"options": [{"id": "a", "text": "First"}, {"id": "b", "text": "Second"}],
			"correctOptionIds": ["a"],
			"difficulty": "Medium",
			"category": "Factual Information",
			"categoryLabel": "内容一致問題",
			"explanation": "e",
			"tips": "t",
			"relevantContext": "r"
		}]
	}`, title, body))
}

func newTestService(mock *llm.MockProvider) (*Service, *history.Store, *bytes.Buffer) {
	hist := history.NewStore(storage.NewMemoryKV())
	svc := New(mock, hist, DefaultConfig())
	warn := &bytes.Buffer{}
	svc.warn = warn
	svc.randFloat = func() float64 { return 0 }
	svc.randIntN = func(n int) int { return 0 }
	return svc, hist, warn
}

func TestGenerateReading_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: readingJSON("Glacier Dynamics", "Glaciers carve valleys across continents over millennia."),
	})
	svc, hist, warn := newTestService(mock)

	p, err := svc.GenerateReading(context.Background(), ReadingParams{Topic: "Geology"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Glacier Dynamics" {
		t.Errorf("Title = %q", p.Title)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
	if got := hist.Recent(10, content.TypeReading); len(got) != 1 || got[0].Topic != "Glacier Dynamics" {
		t.Errorf("fingerprint not recorded: %+v", got)
	}
	if warn.Len() != 0 {
		t.Errorf("unexpected warning: %s", warn.String())
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Geology") {
		t.Errorf("topic missing from prompt: %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestGenerateReading_DuplicateRetryThenNovel(t *testing.T) {
	dup := readingJSON("Coral Reefs", "Coral reefs shelter thousands of marine species worldwide.")
	novel := readingJSON("Desert Climates", "Arid regions experience extreme temperature swings between day and night.")

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: dup},
		llm.MockResponse{Content: novel},
	)
	svc, hist, warn := newTestService(mock)

	// Seed the exact fingerprint the first response will produce.
	seeded, err := content.NormalizePassage(dup)
	if err != nil {
		t.Fatal(err)
	}
	if err := hist.Append(fingerprint.New(content.TypeReading, seeded.Topic(), seeded.FingerprintText())); err != nil {
		t.Fatal(err)
	}

	p, err := svc.GenerateReading(context.Background(), ReadingParams{Topic: "Anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Desert Climates" {
		t.Errorf("accepted %q, want the novel retry result", p.Title)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
	if warn.Len() != 0 {
		t.Errorf("novel retry should not warn: %s", warn.String())
	}
}

func TestGenerateReading_DuplicateExhaustionAcceptsLast(t *testing.T) {
	dup := readingJSON("Coral Reefs", "Coral reefs shelter thousands of marine species worldwide.")
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: dup},
		llm.MockResponse{Content: dup},
		llm.MockResponse{Content: dup},
	)
	svc, hist, warn := newTestService(mock)

	seeded, err := content.NormalizePassage(dup)
	if err != nil {
		t.Fatal(err)
	}
	if err := hist.Append(fingerprint.New(content.TypeReading, seeded.Topic(), seeded.FingerprintText())); err != nil {
		t.Fatal(err)
	}

	p, err := svc.GenerateReading(context.Background(), ReadingParams{Topic: "Anything"})
	if err != nil {
		t.Fatalf("exhaustion must not fail: %v", err)
	}
	if p.Title != "Coral Reefs" {
		t.Errorf("Title = %q", p.Title)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
	if !strings.Contains(warn.String(), "repeated") {
		t.Errorf("expected warning, got %q", warn.String())
	}
	// Last fingerprint is still recorded.
	if got := hist.Recent(10, content.TypeReading); len(got) != 2 {
		t.Errorf("history entries = %d, want 2", len(got))
	}
}

func TestGenerateReading_TemperatureRamp(t *testing.T) {
	dup := readingJSON("Coral Reefs", "Coral reefs shelter thousands of marine species worldwide.")
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: dup},
		llm.MockResponse{Content: dup},
		llm.MockResponse{Content: dup},
	)
	svc, hist, _ := newTestService(mock)

	seeded, _ := content.NormalizePassage(dup)
	if err := hist.Append(fingerprint.New(content.TypeReading, seeded.Topic(), seeded.FingerprintText())); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.GenerateReading(context.Background(), ReadingParams{Topic: "X"}); err != nil {
		t.Fatal(err)
	}

	want := []float64{0.3, 0.5, 0.7}
	for i, w := range want {
		got := mock.Calls[i].Temperature
		if got < w-1e-9 || got > w+1e-9 {
			t.Errorf("attempt %d temperature = %v, want %v", i, got, w)
		}
	}
}

func TestGenerateReading_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
	)
	svc, _, _ := newTestService(mock)

	_, err := svc.GenerateReading(context.Background(), ReadingParams{})
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %T", err)
	}
	if genErr.Type != content.TypeReading {
		t.Errorf("Type = %q", genErr.Type)
	}
	// Provider failures are not retried at this layer.
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestGenerateReading_MalformedContent(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"title":"T","paragraphs":[],"questions":[]}`)},
	)
	svc, _, _ := newTestService(mock)

	_, err := svc.GenerateReading(context.Background(), ReadingParams{})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestGenerateReading_SteersTowardUnderusedTopic(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: readingJSON("Something", "Body text for the steering test case."),
	})
	svc, hist, _ := newTestService(mock)

	// Use up every pool topic except Astronomy.
	for _, topic := range topicPools[content.TypeReading] {
		if topic == "Astronomy" {
			continue
		}
		for i := 0; i < 2; i++ {
			fp := fingerprint.New(content.TypeReading, topic, topic+" body")
			fp.Hash = fmt.Sprintf("%s-%d", topic, i)
			if err := hist.Append(fp); err != nil {
				t.Fatal(err)
			}
		}
	}

	if _, err := svc.GenerateReading(context.Background(), ReadingParams{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Astronomy") {
		t.Errorf("prompt did not steer to underused topic: %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestGenerateListening_LectureBranch(t *testing.T) {
	raw := `{
		"type": "LECTURE",
		"title": "Star Formation",
		"transcript": "So, um, today we look at how stars form from collapsing gas clouds.",
		"japaneseTranscript": "星の形成について。",
		"questions": [{
			"questionText": "What is the lecture mainly about?",
			"type": "SINGLE_CHOICE",
			"options": [{"id": "a", "text": "Star formation"}, {"id": "b", "text": "Planets"}],
			"correctOptionIds": ["a"],
			"difficulty": "Medium", "category": "Main Idea", "categoryLabel": "主旨問題",
			"explanation": "e", "tips": "t", "relevantContext": "r"
		}]
	}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(raw)})
	svc, hist, _ := newTestService(mock)

	set, err := svc.GenerateListening(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Kind != content.Lecture {
		t.Errorf("Kind = %q", set.Kind)
	}
	// randFloat 0 < 0.6 selects the lecture branch.
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Lecture") {
		t.Errorf("prompt = %q", mock.Calls[0].Messages[0].Content)
	}
	if got := hist.Recent(10, content.TypeListening); len(got) != 1 {
		t.Errorf("fingerprint not recorded")
	}
}

func TestGenerateSpeaking(t *testing.T) {
	raw := `{
		"type": "INDEPENDENT",
		"prompt": "Do you agree or disagree that students should work part time?",
		"preparationTime": 15,
		"recordingTime": 45
	}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(raw)})
	svc, _, _ := newTestService(mock)

	task, err := svc.GenerateSpeaking(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Kind != content.Independent {
		t.Errorf("Kind = %q", task.Kind)
	}
	// randIntN 0 selects Task 1.
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Task 1") {
		t.Errorf("prompt = %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestGenerateWriting_IntegratedBranch(t *testing.T) {
	raw := `{
		"type": "INTEGRATED",
		"title": "Collapse of the Bronze Age",
		"reading": "Three arguments support the invasion theory.",
		"listeningTranscript": "The professor casts doubt on each argument.",
		"question": "Summarize the points made in the lecture."
	}`
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(raw)})
	svc, _, _ := newTestService(mock)

	task, err := svc.GenerateWriting(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Kind != content.IntegratedWriting {
		t.Errorf("Kind = %q", task.Kind)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Integrated") {
		t.Errorf("prompt = %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestGenerateVocabLesson_NoFingerprint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: readingJSON("語彙・熟語特訓", "Vocabulary drill body."),
	})
	svc, hist, _ := newTestService(mock)

	p, err := svc.GenerateVocabLesson(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Questions) != 1 {
		t.Errorf("questions = %d", len(p.Questions))
	}
	if got := hist.Recent(10, ""); len(got) != 0 {
		t.Errorf("vocab lessons must not be fingerprinted, got %d entries", len(got))
	}
}
