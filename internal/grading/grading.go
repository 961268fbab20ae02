// Package grading sends subjective responses to the LLM for rubric-based
// scoring and produces tutor-style analysis of objective results.
package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/llm"
)

// Grade is the rater's verdict on one response.
type Grade struct {
	Score    int
	MaxScore int
	Feedback string
}

// Grader scores speaking and writing responses.
type Grader interface {
	// GradeSpeaking scores a spoken-response transcript on the 0-4 scale.
	GradeSpeaking(ctx context.Context, task *content.SpeakingTask, transcript string) (Grade, error)
	// GradeWriting scores an essay on the 0-5 scale.
	GradeWriting(ctx context.Context, task *content.WritingTask, essay string) (Grade, error)
}

// GradingError reports a failed grading call. The session ends without a
// score; the submission is not retried.
type GradingError struct {
	Section content.Type
	Err     error
}

func (e *GradingError) Error() string {
	return fmt.Sprintf("grade %s response: %v", e.Section, e.Err)
}

func (e *GradingError) Unwrap() error { return e.Err }

// gradeSchema is the structured verdict shape.
var gradeSchema = &llm.Schema{
	Name:        "grade",
	Description: "A rubric score with actionable feedback",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":    map[string]any{"type": "integer"},
			"feedback": map[string]any{"type": "string"},
		},
		"required": []any{"score", "feedback"},
	},
}

// LLMGrader implements Grader over an llm.Provider.
type LLMGrader struct {
	provider  llm.Provider
	maxTokens int
}

// NewLLMGrader creates a grader.
func NewLLMGrader(provider llm.Provider) *LLMGrader {
	return &LLMGrader{provider: provider, maxTokens: 2048}
}

func (g *LLMGrader) GradeSpeaking(ctx context.Context, task *content.SpeakingTask, transcript string) (Grade, error) {
	prompt := speakingRubricPrompt(task, transcript)
	grade, err := g.grade(llm.WithPurpose(ctx, "speaking_grading"), prompt, 4)
	if err != nil {
		return Grade{}, &GradingError{Section: content.TypeSpeaking, Err: err}
	}
	return grade, nil
}

func (g *LLMGrader) GradeWriting(ctx context.Context, task *content.WritingTask, essay string) (Grade, error) {
	prompt := writingRubricPrompt(task, essay)
	grade, err := g.grade(llm.WithPurpose(ctx, "writing_grading"), prompt, 5)
	if err != nil {
		return Grade{}, &GradingError{Section: content.TypeWriting, Err: err}
	}
	return grade, nil
}

// grade performs the single rating call. Scores outside [0, max] are
// rejected as invalid rater output.
func (g *LLMGrader) grade(ctx context.Context, prompt string, max int) (Grade, error) {
	req := llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Schema:    gradeSchema,
		MaxTokens: g.maxTokens,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return Grade{}, err
	}

	var out struct {
		Score    int    `json:"score"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return Grade{}, fmt.Errorf("parse grade: %w", err)
	}
	if out.Score < 0 || out.Score > max {
		return Grade{}, fmt.Errorf("score %d outside 0-%d", out.Score, max)
	}
	return Grade{Score: out.Score, MaxScore: max, Feedback: out.Feedback}, nil
}

// AnalyzeReading asks the LLM for a tutor-style breakdown of a finished
// objective section. results maps question ids to correctness.
func (g *LLMGrader) AnalyzeReading(ctx context.Context, passage *content.Passage, answers map[string][]string) (string, error) {
	var lines []string
	for i, q := range passage.Questions {
		verdict := "Incorrect"
		if answersMatch(answers[q.ID], q.CorrectAnswers) {
			verdict = "Correct"
		}
		lines = append(lines, fmt.Sprintf("Q%d [%s]: %s", i+1, q.CategoryLabel, verdict))
	}

	prompt := fmt.Sprintf(`Analyze these TOEFL Reading results like a tutor.
Topic: %s
Results:
%s

Provide a Japanese analysis covering:
1. **Weakness Identification**: Which question types (Inference, Summary, etc.) were missed?
2. **Score Estimate**: Approximate TOEFL Reading score (0-30).
3. **Actionable Advice**: Specific study tips based on the missed questions.`,
		passage.Title, strings.Join(lines, "\n"))

	return g.freeText(llm.WithPurpose(ctx, "reading_analysis"), prompt)
}

// AnalyzeHistory asks the LLM for a performance report over aggregated
// category results. sections maps section name to category totals.
func (g *LLMGrader) AnalyzeHistory(ctx context.Context, sections map[string]map[string]CategoryTotal) (string, error) {
	data, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are an elite TOEFL Tutor. Analyze the student's performance history data below.

%s

Provide a **Comprehensive Performance Report in Japanese** using standard Markdown.

**RESPONSE STRUCTURE (Strictly Follow):**

# 📊 TOEFL Performance Report

(For EACH Section that has data - Reading/Listening/Speaking/Writing):
## [Icon] [Section Name] Section
### 📉 弱点と傾向 (Weakness Analysis)
- Analyze the sub-categories or scores.
### 🚀 具体的対策 (Actionable Training)
- Provide specific exercises (e.g., "Shadowing for Listening", "Template usage for Speaking").

---

## 🧠 重点ボキャブラリー (Priority Vocabulary)
- Based on weak topics, list 5-10 essential TOEFL words.
- Format: **Word** (Meaning): Example usage context.

## 💡 総合アドバイス (Overall Strategy)
- 3 key takeaways for the next test.`, data)

	return g.freeText(llm.WithPurpose(ctx, "history_analysis"), prompt)
}

// CategoryTotal aggregates correct/total counts for one category.
type CategoryTotal struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (g *LLMGrader) freeText(ctx context.Context, prompt string) (string, error) {
	req := llm.Request{
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		MaxTokens: g.maxTokens,
	}
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Content), nil
}

func speakingRubricPrompt(task *content.SpeakingTask, transcript string) string {
	return fmt.Sprintf(`Act as a certified TOEFL iBT Speaking Rater.

**Task**: %s
**Prompt**: %s

**Rubric Criteria**:
1. **Delivery**: Flow, pacing, pronunciation (simulated check), natural pauses.
2. **Language Use**: Grammar, effective vocab.
3. **Topic Development**: Did they answer the prompt? Did they use details from the sources?

**Advice Style**:
- Did they use a clear template? (e.g., "The reading states... The professor disagrees...")
- Did they use transition words?

**Context**:
- Reading: %s
- Listening: %s
- User Speech Transcript: %q

**Output**:
1. Estimated Score (0-4).
2. Actionable Feedback in Japanese (Focus on template usage and signal words).`,
		task.Kind, task.Prompt, orNA(task.Reading), orNA(task.ListeningTranscript), transcript)
}

func writingRubricPrompt(task *content.WritingTask, essay string) string {
	return fmt.Sprintf(`Act as a certified TOEFL iBT Writing Rater.

**Task**: %s
**Question**: %s

**Rubric Criteria**:
1. **Development**: Is the idea well-developed? (Integrated: Did they accurately connect Reading & Listening?)
2. **Organization**: Is there a clear structure (Intro, Body, Conclusion)?
3. **Language Use**: Grammar, vocabulary variety, sentence complexity.

**Inputs**:
- Reading Source: %s
- Listening Source: %s
- User Essay: %q

**Output**:
1. Estimated Scaled Score (0-5).
2. Actionable Feedback in Japanese (Start with "Good points", then "Improvements").`,
		task.Kind, task.Question, orNA(task.Reading), orNA(task.ListeningTranscript), essay)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// answersMatch reports whether the user selection equals the correct set,
// order-independent.
func answersMatch(user, correct []string) bool {
	if len(user) != len(correct) || len(user) == 0 {
		return false
	}
	set := make(map[string]bool, len(correct))
	for _, c := range correct {
		set[c] = true
	}
	for _, u := range user {
		if !set[u] {
			return false
		}
	}
	return true
}
