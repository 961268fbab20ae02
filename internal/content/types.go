// Package content defines the typed model for generated test material and
// the normalization layer that converts raw LLM output into it.
package content

import "strings"

// Type identifies a test section.
type Type string

const (
	TypeReading   Type = "Reading"
	TypeListening Type = "Listening"
	TypeSpeaking  Type = "Speaking"
	TypeWriting   Type = "Writing"
)

// Types lists all sections in test order.
var Types = []Type{TypeReading, TypeListening, TypeSpeaking, TypeWriting}

// QuestionKind distinguishes objective question formats.
type QuestionKind string

const (
	SingleChoice QuestionKind = "SINGLE_CHOICE"
	InsertText   QuestionKind = "INSERT_TEXT"
	ProseSummary QuestionKind = "PROSE_SUMMARY"
)

// Valid reports whether k is a known question kind.
func (k QuestionKind) Valid() bool {
	switch k {
	case SingleChoice, InsertText, ProseSummary:
		return true
	}
	return false
}

// Difficulty is a coarse question difficulty label.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Option is one answer choice.
type Option struct {
	ID   string
	Text string
}

// Question is a single objective question. CorrectAnswers holds option ids;
// single-choice and insert-text questions have one, prose summary has three.
type Question struct {
	ID              string
	Kind            QuestionKind
	Prompt          string
	Options         []Option
	CorrectAnswers  []string
	ParagraphRef    int // 1-based paragraph reference, 0 when absent
	Difficulty      Difficulty
	Category        string
	CategoryLabel   string
	Explanation     string
	Tips            string
	RelevantContext string
}

// Passage is a reading set: an academic passage plus its questions.
type Passage struct {
	ID         string
	Title      string
	Paragraphs []string
	Questions  []Question
}

// FingerprintText returns the text the duplicate detector hashes.
func (p *Passage) FingerprintText() string {
	return p.Title + " " + strings.Join(p.Paragraphs, " ")
}

// Topic returns the label used for diversity tracking.
func (p *Passage) Topic() string { return p.Title }

// ListeningKind distinguishes the two listening formats.
type ListeningKind string

const (
	Conversation ListeningKind = "CONVERSATION"
	Lecture      ListeningKind = "LECTURE"
)

// ListeningSet is a listening section item: a spoken transcript plus
// questions. TranslatedTranscript carries the beginner-mode subtitle text.
type ListeningSet struct {
	ID                   string
	Kind                 ListeningKind
	Title                string
	Transcript           string
	TranslatedTranscript string
	ImageDescription     string
	Questions            []Question
}

func (s *ListeningSet) FingerprintText() string {
	return s.Title + " " + s.Transcript
}

func (s *ListeningSet) Topic() string { return s.Title }

// SpeakingKind distinguishes independent and integrated speaking tasks.
type SpeakingKind string

const (
	Independent SpeakingKind = "INDEPENDENT"
	Integrated  SpeakingKind = "INTEGRATED"
)

// SpeakingTask is one speaking prompt. Integrated tasks carry a reading
// excerpt and/or a listening transcript as source material.
type SpeakingTask struct {
	ID                  string
	Kind                SpeakingKind
	Prompt              string
	Reading             string
	ListeningTranscript string
	TranslatedListening string
	PreparationSeconds  int
	RecordingSeconds    int
}

func (t *SpeakingTask) FingerprintText() string {
	return t.Prompt + " " + t.Reading + " " + t.ListeningTranscript
}

// Topic truncates the prompt to a short label.
func (t *SpeakingTask) Topic() string {
	const max = 50
	r := []rune(t.Prompt)
	if len(r) <= max {
		return t.Prompt
	}
	return string(r[:max])
}

// WritingKind distinguishes the two writing formats.
type WritingKind string

const (
	IntegratedWriting  WritingKind = "INTEGRATED"
	AcademicDiscussion WritingKind = "ACADEMIC_DISCUSSION"
)

// StudentPost is one forum reply in an academic discussion task.
type StudentPost struct {
	Name string
	Text string
}

// WritingTask is one writing prompt. Integrated tasks carry a reading and a
// lecture transcript; discussion tasks carry the professor's question and
// two student posts.
type WritingTask struct {
	ID                  string
	Kind                WritingKind
	Title               string
	Reading             string
	ListeningTranscript string
	Question            string
	StudentPosts        []StudentPost
}

func (t *WritingTask) FingerprintText() string {
	return t.Title + " " + t.Question + " " + t.Reading
}

func (t *WritingTask) Topic() string { return t.Title }

// MinWords returns the expected minimum word count for a response.
func (t *WritingTask) MinWords() int {
	if t.Kind == IntegratedWriting {
		return 150
	}
	return 100
}

// TimeLimitSeconds returns the writing-phase time limit.
func (t *WritingTask) TimeLimitSeconds() int {
	if t.Kind == IntegratedWriting {
		return 1200
	}
	return 600
}
