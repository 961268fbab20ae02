// Package result reviews a finished objective section: score summary,
// per-question review, and on-demand AI analysis.
package result

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/content"
	"github.com/mizuki/toeflsim/internal/exam"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

type analysisMsg struct {
	Text string
	Err  error
}

// ResultScreen shows a completed objective section.
type ResultScreen struct {
	services *screen.Services
	passage  *content.Passage
	answers  map[string][]string
	score    exam.SectionScore

	cursor    int
	analyzing bool
	analysis  string
	errMsg    string
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

// New creates a result screen for a scored question set.
func New(services *screen.Services, passage *content.Passage, answers map[string][]string, score exam.SectionScore) *ResultScreen {
	return &ResultScreen{
		services: services,
		passage:  passage,
		answers:  answers,
		score:    score,
	}
}

// NewForListening adapts a listening set into the same review flow.
func NewForListening(services *screen.Services, set *content.ListeningSet, answers map[string][]string, score exam.SectionScore) *ResultScreen {
	p := &content.Passage{
		ID:        set.ID,
		Title:     set.Title,
		Questions: set.Questions,
	}
	return New(services, p, answers, score)
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Results"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Review questions"},
		{Key: "A", Description: "AI analysis"},
		{Key: "Esc", Description: "Done"},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case analysisMsg:
		s.analyzing = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.analysis = msg.Text
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.passage.Questions)-1 {
				s.cursor++
			}
		case "a", "A":
			if !s.analyzing && s.analysis == "" {
				s.analyzing = true
				s.errMsg = ""
				return s, s.analyze()
			}
		}
	}
	return s, nil
}

func (s *ResultScreen) analyze() tea.Cmd {
	return func() tea.Msg {
		text, err := s.services.Grader.AnalyzeReading(context.Background(), s.passage, s.answers)
		return analysisMsg{Text: text, Err: err}
	}
}

func (s *ResultScreen) View(width, height int) string {
	var b strings.Builder

	pct := s.score.Percentage()
	summary := fmt.Sprintf("%d/%d correct   %d%%   scaled %d/30",
		s.score.Correct, s.score.Total, pct, s.score.Scaled())

	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render(s.passage.Title))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(scoreColor(pct)).Bold(true).
		Render(summary))
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(pct)/100, false, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	q := s.passage.Questions[s.cursor]
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Q%d/%d [%s]  %s", s.cursor+1, len(s.passage.Questions), q.CategoryLabel, q.Prompt)))
	b.WriteString("\n\n")
	b.WriteString("  " + strings.ReplaceAll(components.ReviewView(q, s.answers[q.ID]), "\n", "\n  "))
	b.WriteString("\n")
	if q.Explanation != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width-8).PaddingLeft(4).Foreground(theme.TextDim).
			Render("解説: " + q.Explanation))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case s.analyzing:
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("AI is analyzing your results..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Analysis failed: " + s.errMsg))
	case s.analysis != "":
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
			Render(s.analysis))
	}

	return b.String()
}

func scoreColor(pct int) color.Color {
	switch {
	case pct >= 80:
		return theme.Success
	case pct >= 50:
		return theme.Warning
	default:
		return theme.Error
	}
}
