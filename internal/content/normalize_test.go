package content

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const validReadingJSON = `{
	"title": "The Evolution of Coral Reefs",
	"paragraphs": ["Coral reefs are among the oldest ecosystems.", "They form over millennia."],
	"questions": [
		{
			"questionText": "What is the main idea?",
			"type": "SINGLE_CHOICE",
			"options": [
				{"id": "a", "text": "Reefs are old"},
				{"id": "b", "text": "Reefs are new"}
			],
			"correctOptionIds": ["a"],
			"paragraphRef": 1,
			"difficulty": "Easy",
			"category": "Factual Information",
			"categoryLabel": "内容一致問題",
			"explanation": "Stated in paragraph 1.",
			"tips": "Scan for the thesis.",
			"relevantContext": "Coral reefs are among the oldest ecosystems."
		}
	]
}`

func TestNormalizePassage_Valid(t *testing.T) {
	p, err := NormalizePassage(json.RawMessage(validReadingJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == "" {
		t.Error("expected synthesized passage id")
	}
	if p.Title != "The Evolution of Coral Reefs" {
		t.Errorf("Title = %q", p.Title)
	}
	if len(p.Questions) != 1 {
		t.Fatalf("len(Questions) = %d", len(p.Questions))
	}
	q := p.Questions[0]
	if q.ID != "q_0" {
		t.Errorf("question id = %q, want q_0", q.ID)
	}
	if q.Kind != SingleChoice {
		t.Errorf("Kind = %q", q.Kind)
	}
	if q.CategoryLabel != "内容一致問題" {
		t.Errorf("CategoryLabel = %q", q.CategoryLabel)
	}
	if q.ParagraphRef != 1 {
		t.Errorf("ParagraphRef = %d", q.ParagraphRef)
	}
}

func TestNormalizePassage_FingerprintTextAndTopic(t *testing.T) {
	p, err := NormalizePassage(json.RawMessage(validReadingJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Topic() != p.Title {
		t.Errorf("Topic = %q, want title", p.Topic())
	}
	want := p.Title + " " + strings.Join(p.Paragraphs, " ")
	if p.FingerprintText() != want {
		t.Errorf("FingerprintText = %q", p.FingerprintText())
	}
}

func TestNormalizePassage_DefaultsForOptionalFields(t *testing.T) {
	raw := `{
		"title": "T",
		"paragraphs": ["p"],
		"questions": [{
			"questionText": "Q?",
			"type": "SINGLE_CHOICE",
			"options": [{"id": "a", "text": "x"}, {"id": "b", "text": "y"}],
			"correctOptionIds": ["b"]
		}]
	}`
	p, err := NormalizePassage(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := p.Questions[0]
	if q.Difficulty != Medium {
		t.Errorf("Difficulty = %q, want Medium default", q.Difficulty)
	}
	if q.Category != "General" || q.CategoryLabel != "General" {
		t.Errorf("Category = %q / %q", q.Category, q.CategoryLabel)
	}
	if q.Explanation == "" || q.Tips == "" {
		t.Error("expected placeholder explanation and tips")
	}
}

func TestNormalizePassage_SynthesizesOptionIDs(t *testing.T) {
	raw := `{
		"title": "T",
		"paragraphs": ["p"],
		"questions": [{
			"questionText": "Q?",
			"type": "SINGLE_CHOICE",
			"options": [{"text": "x"}, {"text": "y"}],
			"correctOptionIds": ["opt_0_1"]
		}]
	}`
	p, err := NormalizePassage(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	opts := p.Questions[0].Options
	if opts[0].ID != "opt_0_0" || opts[1].ID != "opt_0_1" {
		t.Errorf("option ids = %q, %q", opts[0].ID, opts[1].ID)
	}
}

func TestNormalizePassage_Rejections(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty title", `{"title":" ","paragraphs":["p"],"questions":[]}`},
		{"no paragraphs", `{"title":"T","paragraphs":[],"questions":[]}`},
		{"no questions", `{"title":"T","paragraphs":["p"],"questions":[]}`},
		{"unknown kind", `{"title":"T","paragraphs":["p"],"questions":[{"questionText":"Q","type":"ESSAY","options":[{"id":"a","text":"x"},{"id":"b","text":"y"}],"correctOptionIds":["a"]}]}`},
		{"one option", `{"title":"T","paragraphs":["p"],"questions":[{"questionText":"Q","type":"SINGLE_CHOICE","options":[{"id":"a","text":"x"}],"correctOptionIds":["a"]}]}`},
		{"no correct answers", `{"title":"T","paragraphs":["p"],"questions":[{"questionText":"Q","type":"SINGLE_CHOICE","options":[{"id":"a","text":"x"},{"id":"b","text":"y"}],"correctOptionIds":[]}]}`},
		{"dangling answer ref", `{"title":"T","paragraphs":["p"],"questions":[{"questionText":"Q","type":"SINGLE_CHOICE","options":[{"id":"a","text":"x"},{"id":"b","text":"y"}],"correctOptionIds":["z"]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePassage(json.RawMessage(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			var nerr *NormalizeError
			if !errors.As(err, &nerr) {
				t.Fatalf("expected NormalizeError, got %T", err)
			}
		})
	}
}

func TestNormalizeListening(t *testing.T) {
	raw := `{
		"type": "LECTURE",
		"title": "Bird Migration",
		"transcript": "Okay, um, today we'll look at how birds navigate.",
		"japaneseTranscript": "今日は鳥の渡りについて話します。",
		"imageDescription": "A professor at a whiteboard",
		"questions": [{
			"questionText": "What is the lecture mainly about?",
			"type": "SINGLE_CHOICE",
			"options": [{"id": "a", "text": "Navigation"}, {"id": "b", "text": "Feeding"}],
			"correctOptionIds": ["a"]
		}]
	}`
	s, err := NormalizeListening(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Kind != Lecture {
		t.Errorf("Kind = %q", s.Kind)
	}
	if s.TranslatedTranscript == "" {
		t.Error("expected translated transcript")
	}
	if s.Topic() != "Bird Migration" {
		t.Errorf("Topic = %q", s.Topic())
	}
	if !strings.Contains(s.FingerprintText(), "birds navigate") {
		t.Errorf("FingerprintText = %q", s.FingerprintText())
	}

	if _, err := NormalizeListening(json.RawMessage(`{"type":"PODCAST","title":"T","transcript":"x","questions":[]}`)); err == nil {
		t.Error("expected error for unknown listening kind")
	}
}

func TestNormalizeSpeaking(t *testing.T) {
	raw := `{
		"type": "INDEPENDENT",
		"prompt": "Some people prefer studying alone. Do you agree or disagree?",
		"preparationTime": 15,
		"recordingTime": 45
	}`
	task, err := NormalizeSpeaking(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Kind != Independent {
		t.Errorf("Kind = %q", task.Kind)
	}
	if task.PreparationSeconds != 15 || task.RecordingSeconds != 45 {
		t.Errorf("times = %d/%d", task.PreparationSeconds, task.RecordingSeconds)
	}
	if len(task.Topic()) > 50 {
		t.Errorf("Topic longer than 50 runes: %q", task.Topic())
	}
}

func TestNormalizeSpeaking_DefaultsMissingTimes(t *testing.T) {
	raw := `{"type": "INDEPENDENT", "prompt": "Describe your favorite place."}`
	task, err := NormalizeSpeaking(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.PreparationSeconds != 15 || task.RecordingSeconds != 45 {
		t.Errorf("defaulted times = %d/%d, want 15/45", task.PreparationSeconds, task.RecordingSeconds)
	}
}

func TestNormalizeSpeaking_IntegratedNeedsSources(t *testing.T) {
	raw := `{"type": "INTEGRATED", "prompt": "Summarize the lecture."}`
	if _, err := NormalizeSpeaking(json.RawMessage(raw)); err == nil {
		t.Fatal("expected error for integrated task without sources")
	}
}

func TestNormalizeWriting(t *testing.T) {
	raw := `{
		"type": "ACADEMIC_DISCUSSION",
		"title": "Should grading be abolished?",
		"question": "Write a post responding to the professor's question.",
		"studentResponses": [
			{"name": "Paul", "text": "I think yes."},
			{"name": "Claire", "text": "I disagree."}
		]
	}`
	task, err := NormalizeWriting(json.RawMessage(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Kind != AcademicDiscussion {
		t.Errorf("Kind = %q", task.Kind)
	}
	if len(task.StudentPosts) != 2 || task.StudentPosts[1].Name != "Claire" {
		t.Errorf("StudentPosts = %+v", task.StudentPosts)
	}
	if task.MinWords() != 100 {
		t.Errorf("MinWords = %d, want 100", task.MinWords())
	}
	if task.TimeLimitSeconds() != 600 {
		t.Errorf("TimeLimitSeconds = %d, want 600", task.TimeLimitSeconds())
	}
}

func TestNormalizeWriting_IntegratedNeedsBothSources(t *testing.T) {
	raw := `{
		"type": "INTEGRATED",
		"title": "Theories of Collapse",
		"question": "Summarize the lecture points.",
		"reading": "The reading presents three arguments."
	}`
	if _, err := NormalizeWriting(json.RawMessage(raw)); err == nil {
		t.Fatal("expected error for integrated writing without lecture source")
	}

	full := `{
		"type": "INTEGRATED",
		"title": "Theories of Collapse",
		"question": "Summarize the lecture points.",
		"reading": "The reading presents three arguments.",
		"listeningTranscript": "The professor casts doubt on each point."
	}`
	task, err := NormalizeWriting(json.RawMessage(full))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.MinWords() != 150 {
		t.Errorf("MinWords = %d, want 150", task.MinWords())
	}
	if task.TimeLimitSeconds() != 1200 {
		t.Errorf("TimeLimitSeconds = %d, want 1200", task.TimeLimitSeconds())
	}
}
