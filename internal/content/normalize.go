package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Raw wire shapes as the LLM schemas define them. Field names match the
// JSON schemas sent with the generation request.

type rawOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type rawQuestion struct {
	QuestionText     string      `json:"questionText"`
	Type             string      `json:"type"`
	Options          []rawOption `json:"options"`
	CorrectOptionIDs []string    `json:"correctOptionIds"`
	ParagraphRef     int         `json:"paragraphRef"`
	Difficulty       string      `json:"difficulty"`
	Category         string      `json:"category"`
	CategoryLabel    string      `json:"categoryLabel"`
	Explanation      string      `json:"explanation"`
	Tips             string      `json:"tips"`
	RelevantContext  string      `json:"relevantContext"`
}

type rawPassage struct {
	Title      string        `json:"title"`
	Paragraphs []string      `json:"paragraphs"`
	Questions  []rawQuestion `json:"questions"`
}

type rawListening struct {
	Type               string        `json:"type"`
	Title              string        `json:"title"`
	Transcript         string        `json:"transcript"`
	JapaneseTranscript string        `json:"japaneseTranscript"`
	ImageDescription   string        `json:"imageDescription"`
	Questions          []rawQuestion `json:"questions"`
}

type rawSpeaking struct {
	Type                        string `json:"type"`
	Prompt                      string `json:"prompt"`
	Reading                     string `json:"reading"`
	ListeningTranscript         string `json:"listeningTranscript"`
	JapaneseListeningTranscript string `json:"japaneseListeningTranscript"`
	PreparationTime             int    `json:"preparationTime"`
	RecordingTime               int    `json:"recordingTime"`
}

type rawWriting struct {
	Type                string `json:"type"`
	Title               string `json:"title"`
	Reading             string `json:"reading"`
	ListeningTranscript string `json:"listeningTranscript"`
	Question            string `json:"question"`
	StudentResponses    []struct {
		Name string `json:"name"`
		Text string `json:"text"`
	} `json:"studentResponses"`
}

// NormalizeError reports a structural problem in generated content that
// survived schema validation.
type NormalizeError struct {
	Field string
	Msg   string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize %s: %s", e.Field, e.Msg)
}

func normErr(field, format string, args ...any) error {
	return &NormalizeError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NormalizePassage converts raw reading JSON into a typed Passage.
// Required fields missing or inconsistent answer references are errors;
// optional metadata gets defaults.
func NormalizePassage(raw json.RawMessage) (*Passage, error) {
	var r rawPassage
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode reading content: %w", err)
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, normErr("title", "empty")
	}
	if len(r.Paragraphs) == 0 {
		return nil, normErr("paragraphs", "empty")
	}
	questions, err := normalizeQuestions(r.Questions)
	if err != nil {
		return nil, err
	}
	return &Passage{
		ID:         uuid.NewString(),
		Title:      r.Title,
		Paragraphs: r.Paragraphs,
		Questions:  questions,
	}, nil
}

// NormalizeListening converts raw listening JSON into a typed ListeningSet.
func NormalizeListening(raw json.RawMessage) (*ListeningSet, error) {
	var r rawListening
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode listening content: %w", err)
	}
	kind := ListeningKind(r.Type)
	if kind != Conversation && kind != Lecture {
		return nil, normErr("type", "unknown listening kind %q", r.Type)
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, normErr("title", "empty")
	}
	if strings.TrimSpace(r.Transcript) == "" {
		return nil, normErr("transcript", "empty")
	}
	questions, err := normalizeQuestions(r.Questions)
	if err != nil {
		return nil, err
	}
	return &ListeningSet{
		ID:                   uuid.NewString(),
		Kind:                 kind,
		Title:                r.Title,
		Transcript:           r.Transcript,
		TranslatedTranscript: r.JapaneseTranscript,
		ImageDescription:     r.ImageDescription,
		Questions:            questions,
	}, nil
}

// NormalizeSpeaking converts raw speaking JSON into a typed SpeakingTask.
// Missing prep/recording times fall back to the independent-task standard
// (15s / 45s).
func NormalizeSpeaking(raw json.RawMessage) (*SpeakingTask, error) {
	var r rawSpeaking
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode speaking content: %w", err)
	}
	kind := SpeakingKind(r.Type)
	if kind != Independent && kind != Integrated {
		return nil, normErr("type", "unknown speaking kind %q", r.Type)
	}
	if strings.TrimSpace(r.Prompt) == "" {
		return nil, normErr("prompt", "empty")
	}
	if kind == Integrated && r.Reading == "" && r.ListeningTranscript == "" {
		return nil, normErr("reading", "integrated task has no source material")
	}
	prep, rec := r.PreparationTime, r.RecordingTime
	if prep <= 0 {
		prep = 15
	}
	if rec <= 0 {
		rec = 45
	}
	return &SpeakingTask{
		ID:                  uuid.NewString(),
		Kind:                kind,
		Prompt:              r.Prompt,
		Reading:             r.Reading,
		ListeningTranscript: r.ListeningTranscript,
		TranslatedListening: r.JapaneseListeningTranscript,
		PreparationSeconds:  prep,
		RecordingSeconds:    rec,
	}, nil
}

// NormalizeWriting converts raw writing JSON into a typed WritingTask.
func NormalizeWriting(raw json.RawMessage) (*WritingTask, error) {
	var r rawWriting
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode writing content: %w", err)
	}
	kind := WritingKind(r.Type)
	if kind != IntegratedWriting && kind != AcademicDiscussion {
		return nil, normErr("type", "unknown writing kind %q", r.Type)
	}
	if strings.TrimSpace(r.Title) == "" {
		return nil, normErr("title", "empty")
	}
	if strings.TrimSpace(r.Question) == "" {
		return nil, normErr("question", "empty")
	}
	if kind == IntegratedWriting && (r.Reading == "" || r.ListeningTranscript == "") {
		return nil, normErr("reading", "integrated task needs reading and lecture sources")
	}
	task := &WritingTask{
		ID:                  uuid.NewString(),
		Kind:                kind,
		Title:               r.Title,
		Reading:             r.Reading,
		ListeningTranscript: r.ListeningTranscript,
		Question:            r.Question,
	}
	for _, s := range r.StudentResponses {
		task.StudentPosts = append(task.StudentPosts, StudentPost{Name: s.Name, Text: s.Text})
	}
	return task, nil
}

// normalizeQuestions validates and converts a question list, synthesizing
// stable ids for questions and any options that arrived without one.
func normalizeQuestions(raws []rawQuestion) ([]Question, error) {
	if len(raws) == 0 {
		return nil, normErr("questions", "empty")
	}

	out := make([]Question, 0, len(raws))
	for i, r := range raws {
		field := fmt.Sprintf("questions[%d]", i)

		kind := QuestionKind(r.Type)
		if !kind.Valid() {
			return nil, normErr(field, "unknown question kind %q", r.Type)
		}
		if strings.TrimSpace(r.QuestionText) == "" {
			return nil, normErr(field, "empty question text")
		}
		if len(r.Options) < 2 {
			return nil, normErr(field, "needs at least 2 options, got %d", len(r.Options))
		}
		if len(r.CorrectOptionIDs) == 0 {
			return nil, normErr(field, "no correct answers")
		}

		options := make([]Option, len(r.Options))
		ids := make(map[string]bool, len(r.Options))
		for j, opt := range r.Options {
			id := opt.ID
			if id == "" {
				id = fmt.Sprintf("opt_%d_%d", i, j)
			}
			options[j] = Option{ID: id, Text: opt.Text}
			ids[id] = true
		}

		for _, c := range r.CorrectOptionIDs {
			if !ids[c] {
				return nil, normErr(field, "correct answer %q references no option", c)
			}
		}

		q := Question{
			ID:              fmt.Sprintf("q_%d", i),
			Kind:            kind,
			Prompt:          r.QuestionText,
			Options:         options,
			CorrectAnswers:  r.CorrectOptionIDs,
			ParagraphRef:    r.ParagraphRef,
			Difficulty:      Difficulty(r.Difficulty),
			Category:        r.Category,
			CategoryLabel:   r.CategoryLabel,
			Explanation:     r.Explanation,
			Tips:            r.Tips,
			RelevantContext: r.RelevantContext,
		}
		if q.Difficulty != Easy && q.Difficulty != Medium && q.Difficulty != Hard {
			q.Difficulty = Medium
		}
		if q.Category == "" {
			q.Category = "General"
		}
		if q.CategoryLabel == "" {
			q.CategoryLabel = q.Category
		}
		if q.Explanation == "" {
			q.Explanation = "No explanation provided."
		}
		if q.Tips == "" {
			q.Tips = "No tips provided."
		}
		out = append(out, q)
	}
	return out, nil
}
