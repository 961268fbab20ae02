// Package feedback shows the graded verdict for a subjective response.
package feedback

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mizuki/toeflsim/internal/grading"
	"github.com/mizuki/toeflsim/internal/router"
	"github.com/mizuki/toeflsim/internal/screen"
	"github.com/mizuki/toeflsim/internal/ui/components"
	"github.com/mizuki/toeflsim/internal/ui/layout"
	"github.com/mizuki/toeflsim/internal/ui/theme"
)

// FeedbackScreen shows a rubric score with its feedback text.
type FeedbackScreen struct {
	section  string
	grade    grading.Grade
	response string
}

var _ screen.Screen = (*FeedbackScreen)(nil)
var _ screen.KeyHintProvider = (*FeedbackScreen)(nil)
var _ screen.SectionBadgeProvider = (*FeedbackScreen)(nil)

// New creates a feedback screen. response is the graded transcript or
// essay, shown under the verdict.
func New(section string, grade grading.Grade, response string) *FeedbackScreen {
	return &FeedbackScreen{section: section, grade: grade, response: response}
}

func (s *FeedbackScreen) Init() tea.Cmd { return nil }

func (s *FeedbackScreen) Title() string { return s.section + " Feedback" }

func (s *FeedbackScreen) SectionBadge() string { return s.section }

func (s *FeedbackScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Esc", Description: "Done"}}
}

func (s *FeedbackScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "enter":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *FeedbackScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("Score: %d / %d", s.grade.Score, s.grade.MaxScore)))
	b.WriteString("\n")

	frac := 0.0
	if s.grade.MaxScore > 0 {
		frac = float64(s.grade.Score) / float64(s.grade.MaxScore)
	}
	bar := components.NewProgressBar("", frac, false, min(width-8, 40))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Feedback"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.Text).
		Render(s.grade.Feedback))
	b.WriteString("\n\n")

	if s.response != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  Your response"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(min(width-8, 90)).PaddingLeft(4).Foreground(theme.TextDim).
			Render(s.response))
		b.WriteString("\n")
	}

	return b.String()
}
